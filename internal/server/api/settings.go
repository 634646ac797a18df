package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ayusman/presenter/internal/gesture"
)

// SettingsHandler reads and replaces the live gesture tunables.
type SettingsHandler struct {
	settings *gesture.Settings
	defaults gesture.Config
}

// NewSettingsHandler creates a SettingsHandler. Reset restores defaults.
func NewSettingsHandler(settings *gesture.Settings, defaults gesture.Config) *SettingsHandler {
	return &SettingsHandler{settings: settings, defaults: defaults}
}

// Register adds the settings routes to r.
func (h *SettingsHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/gesture/settings", h.get).Methods(http.MethodGet)
	r.HandleFunc("/api/gesture/settings", h.put).Methods(http.MethodPut)
	r.HandleFunc("/api/gesture/settings/reset", h.reset).Methods(http.MethodPost)
}

func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.settings.Load())
}

// put applies a partial update: fields missing from the body keep their
// current values.
func (h *SettingsHandler) put(w http.ResponseWriter, r *http.Request) {
	cfg := h.settings.Load()
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := cfg.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.settings.Store(cfg)
	writeJSON(w, http.StatusOK, cfg)
}

func (h *SettingsHandler) reset(w http.ResponseWriter, r *http.Request) {
	h.settings.Store(h.defaults)
	writeJSON(w, http.StatusOK, h.defaults)
}
