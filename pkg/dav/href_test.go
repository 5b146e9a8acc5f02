package dav

import "testing"

func TestEncodeHref(t *testing.T) {
	tables := []struct {
		name string
		in   string
		want string
	}{
		{"no escaping needed", "/dandisets/000001/draft/", "/dandisets/000001/draft/"},
		{"space", "/~cleesh/foo bar/baz_quux.gnusto/red&green?blue",
			"/~cleesh/foo%20bar/baz_quux.gnusto/red%26green%3Fblue"},
		{"percent itself", "/100%done", "/100%25done"},
		{"unreserved punctuation passes through", "/a-b_c.d~e/f", "/a-b_c.d~e/f"},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			if got := EncodeHref(table.in); got != table.want {
				t.Errorf("EncodeHref(%q) = %q, want %q", table.in, got, table.want)
			}
		})
	}
}
