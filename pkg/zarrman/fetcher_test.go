package zarrman

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/terrycain/dandidav/pkg/apperr"
	"github.com/terrycain/dandidav/pkg/httpx"
)

func newTestFetcherClient(handler http.HandlerFunc) (*Client, func()) {
	srv := httptest.NewServer(handler)
	c := New(httpx.New(5*time.Second, "dandidav-test"), 1024*1024, time.Hour)
	c.root = srv.URL + "/"
	return c, srv.Close
}

func TestFetchIndex(t *testing.T) {
	c, closeFn := newTestFetcherClient(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"files": ["a.json"], "directories": ["abc"]}`))
	})
	defer closeFn()

	idx, err := c.FetchIndex(context.Background(), "")
	if err != nil {
		t.Fatalf("FetchIndex() error: %v", err)
	}
	if len(idx.Files) != 1 || idx.Files[0] != "a.json" || len(idx.Directories) != 1 {
		t.Errorf("FetchIndex() = %+v", idx)
	}
}

func TestFetchIndexNotFound(t *testing.T) {
	c, closeFn := newTestFetcherClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer closeFn()

	_, err := c.FetchIndex(context.Background(), "missing/")
	if !apperr.Is(err, apperr.NotFound) {
		t.Errorf("FetchIndex() error = %v, want NotFound", err)
	}
}

func TestFetchManifestCachesResult(t *testing.T) {
	var calls int32
	c, closeFn := newTestFetcherClient(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"entries": {}}`))
	})
	defer closeFn()

	key := ManifestPath{ZarrID: "abc", Checksum: "def"}
	m1, err := c.FetchManifest(context.Background(), key)
	if err != nil {
		t.Fatalf("FetchManifest() error: %v", err)
	}
	m2, err := c.FetchManifest(context.Background(), key)
	if err != nil {
		t.Fatalf("FetchManifest() second call error: %v", err)
	}
	if m1 != m2 {
		t.Errorf("FetchManifest() returned distinct manifests across calls, want the cached pointer")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("upstream called %d times, want 1 (second call should hit cache)", calls)
	}
}

func TestFetchManifestCoalescesConcurrentFetches(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	c, closeFn := newTestFetcherClient(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		<-release
		_, _ = w.Write([]byte(`{"entries": {}}`))
	})
	defer closeFn()

	key := ManifestPath{ZarrID: "abc", Checksum: "def"}
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.FetchManifest(context.Background(), key); err != nil {
				t.Errorf("FetchManifest() error: %v", err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("upstream called %d times concurrently, want 1 (singleflight should coalesce)", calls)
	}
}

func TestFetchManifestUpstreamMalformed(t *testing.T) {
	c, closeFn := newTestFetcherClient(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})
	defer closeFn()

	_, err := c.FetchManifest(context.Background(), ManifestPath{ZarrID: "abc", Checksum: "def"})
	if !apperr.Is(err, apperr.UpstreamMalformed) {
		t.Errorf("FetchManifest() error = %v, want UpstreamMalformed", err)
	}
}
