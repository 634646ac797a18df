// Package server provides the HTTP server for the gesture presenter.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ayusman/presenter/internal/capture"
	"github.com/ayusman/presenter/internal/gesture"
	"github.com/ayusman/presenter/internal/presentation"
	"github.com/ayusman/presenter/internal/server/api"
	"github.com/ayusman/presenter/internal/store"
)

// Config holds the server configuration. Session and Settings are created
// when nil; routes backed by Store, UploadDir or Frames are only registered
// when those are set.
type Config struct {
	StaticDir string
	UploadDir string
	Store     *store.Store
	Session   *presentation.Session
	Settings  *gesture.Settings
	// Defaults is what the settings reset endpoint restores.
	Defaults *gesture.Config
	Frames   *capture.Latest
}

// Server represents the HTTP server for the presenter.
type Server struct {
	config Config
	router *mux.Router
	events *EventsHub
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.Session == nil {
		config.Session = presentation.NewSession()
	}
	if config.Settings == nil {
		config.Settings = gesture.NewSettings(gesture.DefaultConfig())
	}
	if config.Defaults == nil {
		d := config.Settings.Load()
		config.Defaults = &d
	}

	s := &Server{
		config: config,
		router: mux.NewRouter(),
		events: NewEventsHub(config.Session),
		start:  time.Now(),
	}
	config.Session.Subscribe(s.events.Broadcast)
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	r := s.router

	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)

	if s.config.Store != nil {
		api.NewSlidesHandler(s.config.Store, s.config.Session, s.config.UploadDir).Register(r)
	}
	api.NewPresentationHandler(s.config.Session).Register(r)
	api.NewSettingsHandler(s.config.Settings, *s.config.Defaults).Register(r)

	r.Handle("/api/gesture/frames", NewFramesHandler(s.config.Session, s.config.Settings)).Methods(http.MethodGet)
	r.Handle("/api/events", s.events).Methods(http.MethodGet)

	if s.config.Frames != nil {
		r.Handle("/api/stream", NewStreamHandler(s.config.Frames)).Methods(http.MethodGet)
	}

	if s.config.UploadDir != "" {
		r.PathPrefix(api.PresentationsURL).Handler(
			http.StripPrefix(api.PresentationsURL, http.FileServer(http.Dir(s.config.UploadDir))),
		).Methods(http.MethodGet, http.MethodHead)
	}

	if s.config.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Session returns the presentation session the server drives.
func (s *Server) Session() *presentation.Session {
	return s.config.Session
}

// Events returns the change broadcaster behind /api/events.
func (s *Server) Events() *EventsHub {
	return s.events
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status":  "ok",
		"uptime":  uptime.String(),
		"clients": s.events.Clients(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
