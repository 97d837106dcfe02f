package blob

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// memFile is an in-memory File without seek support
type memFile struct {
	name string
	data []byte
}

func (f memFile) Name() string { return f.name }

func (f memFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

func newTestServer(t *testing.T) (*Store, *httptest.Server) {
	t.Helper()

	r := mux.NewRouter()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	s := NewStore(srv.URL, zerolog.Nop())
	s.Register(r)
	return s, srv
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestStore_CreateServesBytes(t *testing.T) {
	s, srv := newTestServer(t)

	url := s.Create(memFile{name: "clip.webm", data: []byte("webm-bytes")})
	if !strings.HasPrefix(url, srv.URL+PathPrefix) {
		t.Fatalf("unexpected url %q", url)
	}

	status, body := get(t, url)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body != "webm-bytes" {
		t.Errorf("body = %q", body)
	}
}

func TestStore_CreateReturnsDistinctURLs(t *testing.T) {
	s, _ := newTestServer(t)

	a := s.Create(memFile{name: "a.webm"})
	b := s.Create(memFile{name: "a.webm"})
	if a == b {
		t.Errorf("expected distinct urls, got %q twice", a)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestStore_RevokeStopsServing(t *testing.T) {
	s, _ := newTestServer(t)

	url := s.Create(memFile{name: "a.webm", data: []byte("x")})
	if !s.Revoke(url) {
		t.Fatal("Revoke() = false for registered url")
	}
	if s.Revoke(url) {
		t.Error("second Revoke() = true")
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}

	status, _ := get(t, url)
	if status != http.StatusNotFound {
		t.Errorf("status after revoke = %d, want 404", status)
	}
}

func TestStore_RevokeForeignURL(t *testing.T) {
	s, _ := newTestServer(t)
	if s.Revoke("https://example.com/a.webm") {
		t.Error("Revoke() = true for url not created by the store")
	}
}

func TestStore_OSFileSupportsRanges(t *testing.T) {
	s, _ := newTestServer(t)

	path := filepath.Join(t.TempDir(), "local.webm")
	if err := os.WriteFile(path, []byte("0123456789"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	f := OSFile(path)
	if f.Name() != "local.webm" {
		t.Errorf("Name() = %q", f.Name())
	}

	url := s.Create(f)
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	req.Header.Set("Range", "bytes=2-4")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusPartialContent {
		t.Fatalf("status = %d, want 206", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "234" {
		t.Errorf("body = %q, want 234", body)
	}
}

func TestStore_MissingFileOnDisk(t *testing.T) {
	s, _ := newTestServer(t)

	url := s.Create(OSFile(filepath.Join(t.TempDir(), "gone.webm")))
	status, _ := get(t, url)
	if status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", status)
	}
}
