package boards

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
)

func TestDirectory_RemoteNames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(boardsResponse{
			Boards: []boardEntry{
				{Board: "wsg", Title: "Worksafe GIF (remote)"},
				{Board: "new", Title: "Brand New"},
			},
		})
	}))
	defer srv.Close()

	d := New(srv.URL, nil, zerolog.Nop())

	if got := d.Name(context.Background(), "wsg"); got != "Worksafe GIF (remote)" {
		t.Errorf("Name(wsg) = %q", got)
	}
	if got := d.Name(context.Background(), "/new/"); got != "Brand New" {
		t.Errorf("Name(/new/) = %q", got)
	}
	// Missing from the remote directory falls back to the built-in table
	if got := d.Name(context.Background(), "g"); got != "Technology" {
		t.Errorf("Name(g) = %q", got)
	}
}

func TestDirectory_FetchesOnce(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_ = json.NewEncoder(w).Encode(boardsResponse{Boards: []boardEntry{{Board: "g", Title: "Technology"}}})
	}))
	defer srv.Close()

	d := New(srv.URL, nil, zerolog.Nop())
	d.Name(context.Background(), "g")
	d.Name(context.Background(), "zz")
	d.Name(context.Background(), "g")

	if n := hits.Load(); n != 1 {
		t.Errorf("expected 1 HTTP request, got %d", n)
	}
}

func TestDirectory_DegradesOnFailure(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := New(srv.URL, nil, zerolog.Nop())

	if got := d.Name(context.Background(), "wsg"); got != "Worksafe GIF" {
		t.Errorf("Name(wsg) = %q, want built-in name", got)
	}
	if got := d.Name(context.Background(), "unknownboard"); got != "" {
		t.Errorf("Name(unknownboard) = %q, want empty", got)
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("failed fetch should not be retried, got %d requests", n)
	}
}

func TestDirectory_Overrides(t *testing.T) {
	d := New("", map[string]string{"WSG": "Webm Share"}, zerolog.Nop())

	tests := []struct {
		board string
		want  string
	}{
		{"wsg", "Webm Share"},
		{"/wsg/", "Webm Share"},
		{"g", "Technology"},
		{"", ""},
		{"nope", ""},
	}

	for _, tt := range tests {
		t.Run(tt.board, func(t *testing.T) {
			if got := d.Name(context.Background(), tt.board); got != tt.want {
				t.Errorf("Name(%q) = %q, want %q", tt.board, got, tt.want)
			}
		})
	}
}
