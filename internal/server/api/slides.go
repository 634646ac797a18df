package api

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/ayusman/presenter/internal/presentation"
	"github.com/ayusman/presenter/internal/store"
)

// MaxUploadSize is the largest accepted slide file.
const MaxUploadSize = 50 << 20

var allowedTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
}

// SlidesHandler manages the slide deck.
type SlidesHandler struct {
	store     *store.Store
	session   *presentation.Session
	uploadDir string
	now       func() time.Time
}

// NewSlidesHandler creates a SlidesHandler that stores images in uploadDir.
func NewSlidesHandler(s *store.Store, session *presentation.Session, uploadDir string) *SlidesHandler {
	return &SlidesHandler{
		store:     s,
		session:   session,
		uploadDir: uploadDir,
		now:       time.Now,
	}
}

// Register adds the slide routes to r.
func (h *SlidesHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/slides", h.list).Methods(http.MethodGet)
	r.HandleFunc("/api/slides", h.deleteAll).Methods(http.MethodDelete)
	r.HandleFunc("/api/slides/{id}", h.delete).Methods(http.MethodDelete)
	r.HandleFunc("/api/upload", h.upload).Methods(http.MethodPost)
}

type listSlidesResponse struct {
	Title  string               `json:"title"`
	Slides []presentation.Slide `json:"slides"`
}

type uploadResponse struct {
	Success bool               `json:"success"`
	Slide   presentation.Slide `json:"slide"`
}

type deleteAllResponse struct {
	Success bool  `json:"success"`
	Deleted int64 `json:"deleted"`
}

// list handles GET /api/slides.
func (h *SlidesHandler) list(w http.ResponseWriter, r *http.Request) {
	title, err := h.store.Title()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load deck")
		return
	}
	stored, err := h.store.Slides().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list slides")
		return
	}

	resp := listSlidesResponse{Title: title, Slides: make([]presentation.Slide, 0, len(stored))}
	for _, sl := range stored {
		resp.Slides = append(resp.Slides, toSlide(sl))
	}
	writeJSON(w, http.StatusOK, resp)
}

// upload handles POST /api/upload with a multipart "file" and optional "title".
func (h *SlidesHandler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	if header.Size > MaxUploadSize {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}
	if !allowedUpload(header.Header.Get("Content-Type"), header.Filename) {
		writeError(w, http.StatusBadRequest, "unsupported file type")
		return
	}

	ext := filepath.Ext(header.Filename)
	name := fmt.Sprintf("slide-%d-%d%s", h.now().UnixMilli(), rand.IntN(1e9), ext)

	if err := h.save(file, name); err != nil {
		log.Printf("Upload error: %v", err)
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	title := r.FormValue("title")
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(header.Filename), ext)
	}

	sl := &store.Slide{Title: title, Image: name}
	if err := h.store.Slides().Create(sl); err != nil {
		log.Printf("Upload error: %v", err)
		os.Remove(filepath.Join(h.uploadDir, name))
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	h.reload()
	writeJSON(w, http.StatusOK, uploadResponse{Success: true, Slide: toSlide(sl)})
}

func (h *SlidesHandler) save(src io.Reader, name string) error {
	if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
		return err
	}
	dst, err := os.Create(filepath.Join(h.uploadDir, name))
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// delete handles DELETE /api/slides/{id}.
func (h *SlidesHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	sl, err := h.store.Slides().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "slide not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "delete failed")
		return
	}

	h.removeImage(sl.Image)

	if err := h.store.Slides().Delete(id); err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Printf("Delete error: %v", err)
		writeError(w, http.StatusInternalServerError, "delete failed")
		return
	}

	h.reload()
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// deleteAll handles DELETE /api/slides.
func (h *SlidesHandler) deleteAll(w http.ResponseWriter, r *http.Request) {
	stored, err := h.store.Slides().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	for _, sl := range stored {
		h.removeImage(sl.Image)
	}

	n, err := h.store.Slides().DeleteAll()
	if err != nil {
		log.Printf("Delete error: %v", err)
		writeError(w, http.StatusInternalServerError, "delete failed")
		return
	}

	h.reload()
	writeJSON(w, http.StatusOK, deleteAllResponse{Success: true, Deleted: n})
}

// removeImage deletes an uploaded image. Failures are logged only.
func (h *SlidesHandler) removeImage(name string) {
	if name == "" || h.uploadDir == "" {
		return
	}
	if err := os.Remove(filepath.Join(h.uploadDir, filepath.Base(name))); err != nil {
		log.Printf("Image removal error: %v", err)
	}
}

func (h *SlidesHandler) reload() {
	if err := LoadDeck(h.store, h.session, h.uploadDir); err != nil {
		log.Printf("Failed to reload deck: %v", err)
	}
}

func allowedUpload(contentType, filename string) bool {
	return allowedTypes[contentType] || strings.HasSuffix(strings.ToLower(filename), ".pptx")
}
