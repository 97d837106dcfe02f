// Package blob hands out revocable HTTP URLs for local files, so that
// local media can be played through the same URL-based sink as remote media.
package blob

import (
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/jfmyers9/threadplay/internal/metrics"
)

// PathPrefix is the URL path under which blobs are served
const PathPrefix = "/blob/"

// File is a user-selected local file
type File interface {
	// Name returns the file's display name
	Name() string

	// Open returns a stream of the file's bytes. If the stream also
	// implements io.Seeker, range requests are supported.
	Open() (io.ReadCloser, error)
}

// OSFile returns a File backed by a path on disk
func OSFile(path string) File {
	return osFile(path)
}

type osFile string

func (f osFile) Name() string {
	return filepath.Base(string(f))
}

func (f osFile) Open() (io.ReadCloser, error) {
	return os.Open(string(f))
}

// Store maps generated URLs to local files until they are revoked
type Store struct {
	baseURL string
	logger  zerolog.Logger

	mu    sync.RWMutex
	files map[string]File
}

// NewStore creates a store whose URLs start with baseURL (e.g. "http://127.0.0.1:8080")
func NewStore(baseURL string, logger zerolog.Logger) *Store {
	return &Store{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger.With().Str("component", "blob").Logger(),
		files:   make(map[string]File),
	}
}

// Create registers f and returns a URL that serves its bytes
func (s *Store) Create(f File) string {
	id := uuid.NewString()

	s.mu.Lock()
	s.files[id] = f
	count := len(s.files)
	s.mu.Unlock()

	metrics.BlobsActive.Set(float64(count))
	s.logger.Debug().Str("id", id).Str("name", f.Name()).Msg("Registered file")

	return s.baseURL + PathPrefix + id
}

// Revoke releases url. It returns false if url was not registered.
func (s *Store) Revoke(url string) bool {
	id := strings.TrimPrefix(url, s.baseURL+PathPrefix)
	if id == url {
		return false
	}

	s.mu.Lock()
	_, ok := s.files[id]
	delete(s.files, id)
	count := len(s.files)
	s.mu.Unlock()

	if ok {
		metrics.BlobsActive.Set(float64(count))
		s.logger.Debug().Str("id", id).Msg("Revoked file")
	}
	return ok
}

// Len returns the number of registered files
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

// Register adds the blob route to r
func (s *Store) Register(r *mux.Router) {
	r.HandleFunc(PathPrefix+"{id}", s.serve).Methods(http.MethodGet, http.MethodHead)
}

func (s *Store) serve(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.RLock()
	f, ok := s.files[id]
	s.mu.RUnlock()

	if !ok {
		metrics.BlobRequestsTotal.WithLabelValues("not_found").Inc()
		http.NotFound(w, r)
		return
	}

	rc, err := f.Open()
	if err != nil {
		metrics.BlobRequestsTotal.WithLabelValues("error").Inc()
		s.logger.Warn().Err(err).Str("name", f.Name()).Msg("Failed to open file")
		http.Error(w, "failed to open file", http.StatusInternalServerError)
		return
	}
	defer rc.Close()

	metrics.BlobRequestsTotal.WithLabelValues("ok").Inc()

	if rs, ok := rc.(io.ReadSeeker); ok {
		http.ServeContent(w, r, f.Name(), time.Time{}, rs)
		return
	}

	if ct := mime.TypeByExtension(filepath.Ext(f.Name())); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, rc); err != nil {
		s.logger.Debug().Err(err).Str("name", f.Name()).Msg("Copy interrupted")
	}
}
