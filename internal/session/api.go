package session

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Control actions accepted by POST /api/control/{action}
const (
	ActionNext    = "next"
	ActionPrev    = "prev"
	ActionToggle  = "toggle"
	ActionPause   = "pause"
	ActionResume  = "resume"
	ActionLoop    = "loop"
	ActionRefresh = "refresh"
)

// StateResponse is the body of GET /api/state
type StateResponse struct {
	Index    int    `json:"index"`
	Position int    `json:"position"`
	Total    int    `json:"total"`
	URL      string `json:"url"`
	Title    string `json:"title"`
	Loop     bool   `json:"loop"`
	Paused   bool   `json:"paused"`
	Label    string `json:"label"`
	Location string `json:"location,omitempty"`
}

// PlaylistItem is an entry of GET /api/playlist
type PlaylistItem struct {
	Position  int    `json:"position"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Current   bool   `json:"current,omitempty"`
}

// PlaylistResponse is the body of GET /api/playlist
type PlaylistResponse struct {
	Label string         `json:"label"`
	Items []PlaylistItem `json:"items"`
}

// LoadRequest is the body of POST /api/load
type LoadRequest struct {
	URL string `json:"url"`
}

func (s *Session) routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	if s.blobs != nil {
		s.blobs.Register(r)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	api.HandleFunc("/playlist", s.handlePlaylist).Methods(http.MethodGet)
	api.HandleFunc("/control/{action}", s.handleControl).Methods(http.MethodPost)
	api.HandleFunc("/play/{position:[0-9]+}", s.handlePlay).Methods(http.MethodPost)
	api.HandleFunc("/load", s.handleLoad).Methods(http.MethodPost)

	return r
}

// Handler returns the session's HTTP handler
func (s *Session) Handler() http.Handler {
	return s.server.Handler
}

func (s *Session) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSONStatus(w, "ok")
}

func (s *Session) handleState(w http.ResponseWriter, _ *http.Request) {
	st := s.ctrl.State()
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, s.logger, StateResponse{
		Index:    st.Index,
		Position: st.Position(),
		Total:    st.Total,
		URL:      st.URL,
		Title:    st.Title,
		Loop:     st.Loop,
		Paused:   st.Paused,
		Label:    s.ctrl.Label(),
		Location: s.ctrl.Location(),
	})
}

func (s *Session) handlePlaylist(w http.ResponseWriter, _ *http.Request) {
	items := s.ctrl.Items()
	current := s.ctrl.State().Index
	resp := PlaylistResponse{
		Label: s.ctrl.Label(),
		Items: make([]PlaylistItem, 0, len(items)),
	}
	for i, item := range items {
		resp.Items = append(resp.Items, PlaylistItem{
			Position:  i + 1,
			Title:     item.Title,
			URL:       item.URL,
			Thumbnail: item.Thumbnail,
			Current:   i == current,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, s.logger, resp)
}

func (s *Session) handleControl(w http.ResponseWriter, r *http.Request) {
	action := mux.Vars(r)["action"]

	var fn func()
	switch action {
	case ActionNext:
		fn = s.ctrl.Next
	case ActionPrev:
		fn = s.ctrl.Prev
	case ActionToggle:
		fn = s.ctrl.Toggle
	case ActionPause:
		fn = s.ctrl.Pause
	case ActionResume:
		fn = func() { s.ctrl.Play(s.ctrl.State().Index) }
	case ActionLoop:
		fn = s.ctrl.ToggleLoop
	case ActionRefresh:
		if s.ctrl.Location() == "" {
			writeJSONError(w, s.logger, "nothing to refresh", http.StatusConflict)
			return
		}
		s.Refresh()
		writeAccepted(w, s.logger)
		return
	default:
		writeJSONError(w, s.logger, "unknown action: "+action, http.StatusNotFound)
		return
	}

	if !s.Dispatch(fn) {
		writeJSONError(w, s.logger, "session stopped", http.StatusServiceUnavailable)
		return
	}
	writeAccepted(w, s.logger)
}

func (s *Session) handlePlay(w http.ResponseWriter, r *http.Request) {
	position, err := strconv.Atoi(mux.Vars(r)["position"])
	if err != nil {
		writeJSONError(w, s.logger, "invalid position", http.StatusBadRequest)
		return
	}

	// Out of range positions resume the current item
	index := position - 1
	if !s.Dispatch(func() { s.ctrl.Play(index) }) {
		writeJSONError(w, s.logger, "session stopped", http.StatusServiceUnavailable)
		return
	}
	writeAccepted(w, s.logger)
}

func (s *Session) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req LoadRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeJSONError(w, s.logger, "invalid request body", http.StatusBadRequest)
		return
	}

	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		writeJSONError(w, s.logger, "url is required", http.StatusBadRequest)
		return
	}

	s.LoadRemote(req.URL)
	writeAccepted(w, s.logger)
}
