package paths

import (
	"errors"
	"strings"
)

// ErrEmptyPath, ErrPathStartsWithSlash, ErrPathEndsWithSlash, ErrNulInPath
// and ErrPathNotNormalized are the distinct reasons a string fails to
// parse as a PurePath.
var (
	ErrEmptyPath           = errors.New("paths cannot be empty")
	ErrPathStartsWithSlash = errors.New("paths cannot start with a forward slash")
	ErrPathEndsWithSlash   = errors.New("paths cannot end with a forward slash")
	ErrNulInPath           = errors.New("paths cannot contain NUL")
	ErrPathNotNormalized   = errors.New("path is not normalized")
)

// ZarrExtensions are the (case-sensitive) file extensions, including the
// leading period, that mark a path component as the root of a Zarr.
var ZarrExtensions = [...]string{".zarr", ".ngff"}

// PurePath is a nonempty, forward-slash-separated path with no ".", "..",
// leading/trailing slash, doubled slash, or NUL.
type PurePath string

// ParsePurePath validates s and returns it as a PurePath.
func ParsePurePath(s string) (PurePath, error) {
	switch {
	case s == "":
		return "", ErrEmptyPath
	case strings.HasPrefix(s, "/"):
		return "", ErrPathStartsWithSlash
	case strings.HasSuffix(s, "/"):
		return "", ErrPathEndsWithSlash
	case strings.Contains(s, "\x00"):
		return "", ErrNulInPath
	}
	for _, p := range strings.Split(s, "/") {
		if p == "" || p == "." || p == ".." {
			return "", ErrPathNotNormalized
		}
	}
	return PurePath(s), nil
}

func (p PurePath) String() string {
	return string(p)
}

// NameStr returns the final component of p.
func (p PurePath) NameStr() string {
	s := string(p)
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// JoinOne appends a single Component to p.
func (p PurePath) JoinOne(c Component) PurePath {
	return PurePath(string(p) + "/" + string(c))
}

// IsStrictlyUnder reports whether p lies strictly inside the directory dir.
func (p PurePath) IsStrictlyUnder(dir PureDirPath) bool {
	return strings.HasPrefix(string(p), string(dir))
}

// RelativeTo returns p with the dir prefix stripped, or ("", false) if p
// does not lie under dir.
func (p PurePath) RelativeTo(dir PureDirPath) (PurePath, bool) {
	s, ok := strings.CutPrefix(string(p), string(dir))
	if !ok || s == "" {
		return "", false
	}
	return PurePath(s), true
}

// ToDirPath returns p as a directory path (with a trailing slash).
func (p PurePath) ToDirPath() PureDirPath {
	return PureDirPath(string(p) + "/")
}

// Components splits p into its Component parts.
func (p PurePath) Components() []Component {
	parts := strings.Split(string(p), "/")
	out := make([]Component, len(parts))
	for i, s := range parts {
		out[i] = Component(s)
	}
	return out
}

// ZarrCandidate is one split point yielded by SplitZarrCandidates: zarrPath
// is the path through a non-final component ending in a Zarr extension,
// entryPath is everything after it.
type ZarrCandidate struct {
	ZarrPath  PurePath
	EntryPath PurePath
}

// SplitZarrCandidates yields, for each non-final component of p whose name
// ends (case-sensitively) in a ZarrExtensions suffix, the split of p at
// that component: the path up through it, and the remainder. Candidates
// are yielded in path order (outermost Zarr first).
func (p PurePath) SplitZarrCandidates() []ZarrCandidate {
	s := string(p)
	var out []ZarrCandidate
	for i := 0; i < len(s); i++ {
		if s[i] != '/' {
			continue
		}
		zarrPath := s[:i]
		entryPath := s[i+1:]
		for _, ext := range ZarrExtensions {
			pre, ok := strings.CutSuffix(zarrPath, ext)
			if !ok {
				continue
			}
			if pre == "" || strings.HasSuffix(pre, "/") {
				continue
			}
			out = append(out, ZarrCandidate{
				ZarrPath:  PurePath(zarrPath),
				EntryPath: PurePath(entryPath),
			})
			break
		}
	}
	return out
}
