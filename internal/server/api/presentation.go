package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ayusman/presenter/internal/presentation"
)

// PresentationHandler exposes slideshow control.
type PresentationHandler struct {
	session *presentation.Session
}

// NewPresentationHandler creates a PresentationHandler for session.
func NewPresentationHandler(session *presentation.Session) *PresentationHandler {
	return &PresentationHandler{session: session}
}

// Register adds the presentation routes to r.
func (h *PresentationHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/presentation", h.get).Methods(http.MethodGet)
	r.HandleFunc("/api/presentation/goto", h.goTo).Methods(http.MethodPost)
	r.HandleFunc("/api/presentation/{action}", h.action).Methods(http.MethodPost)
}

type actionResponse struct {
	Success bool               `json:"success"`
	Moved   bool               `json:"moved"`
	State   presentation.State `json:"state"`
}

type goToRequest struct {
	Index *int `json:"index"`
}

// get handles GET /api/presentation.
func (h *PresentationHandler) get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Snapshot())
}

// action handles POST /api/presentation/{start|end|next|prev}.
func (h *PresentationHandler) action(w http.ResponseWriter, r *http.Request) {
	moved := true

	switch mux.Vars(r)["action"] {
	case "start":
		if err := h.session.Start(); err != nil {
			if errors.Is(err, presentation.ErrNoSlides) {
				writeError(w, http.StatusConflict, "no slides to present")
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	case "end":
		h.session.End()
	case "next":
		moved = h.session.Next(presentation.SourceAPI)
	case "prev", "previous":
		moved = h.session.Previous(presentation.SourceAPI)
	default:
		writeError(w, http.StatusNotFound, "unknown action")
		return
	}

	writeJSON(w, http.StatusOK, actionResponse{Success: true, Moved: moved, State: h.session.Snapshot()})
}

// goTo handles POST /api/presentation/goto with {"index": n}.
func (h *PresentationHandler) goTo(w http.ResponseWriter, r *http.Request) {
	var req goToRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Index == nil {
		writeError(w, http.StatusBadRequest, "index is required")
		return
	}

	if !h.session.GoTo(*req.Index) {
		writeError(w, http.StatusBadRequest, "index out of range")
		return
	}

	writeJSON(w, http.StatusOK, actionResponse{Success: true, Moved: true, State: h.session.Snapshot()})
}
