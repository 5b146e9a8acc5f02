package zarrman

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/terrycain/dandidav/pkg/apperr"
)

// ManifestEntry is a single leaf entry of a manifest, decoded from the
// positional array [version_id, modified, size, etag]. Field order below
// must track the wire array order exactly.
type ManifestEntry struct {
	VersionID string
	Modified  time.Time
	Size      int64
	ETag      string
}

func (e *ManifestEntry) UnmarshalJSON(data []byte) error {
	var arr [4]json.RawMessage
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	var versionID, modifiedStr, etag string
	var size int64
	if err := json.Unmarshal(arr[0], &versionID); err != nil {
		return err
	}
	if err := json.Unmarshal(arr[1], &modifiedStr); err != nil {
		return err
	}
	if err := json.Unmarshal(arr[2], &size); err != nil {
		return err
	}
	if err := json.Unmarshal(arr[3], &etag); err != nil {
		return err
	}
	modified, err := time.Parse(time.RFC3339, modifiedStr)
	if err != nil {
		return err
	}
	e.VersionID = versionID
	e.Modified = modified
	e.Size = size
	e.ETag = etag
	return nil
}

// FolderEntry is one value in a ManifestFolder: either a nested
// ManifestFolder or a leaf ManifestEntry. The wire format is untagged
// (an object for a folder, a 4-element array for an entry).
type FolderEntry struct {
	Folder *ManifestFolder
	Entry  *ManifestEntry
}

func (f *FolderEntry) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var e ManifestEntry
		if err := json.Unmarshal(data, &e); err != nil {
			return err
		}
		f.Entry = &e
		return nil
	}
	var m ManifestFolder
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	f.Folder = &m
	return nil
}

// ManifestFolder maps a name to its FolderEntry.
type ManifestFolder map[string]FolderEntry

// Manifest is a full Zarr manifest: a tree of every entry of a Zarr as
// it existed at some point in time.
type Manifest struct {
	Entries ManifestFolder `json:"entries"`
}

// ApproxSize estimates the in-memory footprint of a manifest for cache
// accounting purposes, approximated (per the component design) by the
// serialized byte count.
func (m *Manifest) ApproxSize() (int64, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return 0, apperr.Wrap(apperr.Internal, "failed to size manifest", err)
	}
	return int64(len(b)), nil
}

// EntryRefKind discriminates the result of Manifest.Get.
type EntryRefKind int

const (
	RefNone EntryRefKind = iota
	RefFolder
	RefEntry
)

// EntryRef is the result of walking a manifest tree to a path.
type EntryRef struct {
	Kind   EntryRefKind
	Folder ManifestFolder
	Entry  *ManifestEntry
}

// Get walks path's components through the manifest tree. Looking up a
// path that continues past a leaf Entry returns RefNone, not an error:
// a Folder cannot be indexed into an Entry.
func (m *Manifest) Get(components []string) EntryRef {
	folder := m.Entries
	for i, c := range components {
		fe, ok := folder[c]
		if !ok {
			return EntryRef{Kind: RefNone}
		}
		last := i == len(components)-1
		switch {
		case fe.Folder != nil && last:
			return EntryRef{Kind: RefFolder, Folder: *fe.Folder}
		case fe.Folder != nil:
			folder = *fe.Folder
		case fe.Entry != nil && last:
			return EntryRef{Kind: RefEntry, Entry: fe.Entry}
		default:
			// fe.Entry != nil but path continues past a leaf.
			return EntryRef{Kind: RefNone}
		}
	}
	return EntryRef{Kind: RefFolder, Folder: folder}
}
