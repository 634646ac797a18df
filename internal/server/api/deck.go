package api

import (
	"path"
	"path/filepath"

	"github.com/ayusman/presenter/internal/presentation"
	"github.com/ayusman/presenter/internal/store"
)

// PresentationsURL is the URL prefix uploaded slide images are served under.
const PresentationsURL = "/presentations/"

// IndexFile is the name of the deck index written into the upload directory.
const IndexFile = "config.json"

// toSlide converts a stored slide to the shape the presentation page uses.
func toSlide(sl *store.Slide) presentation.Slide {
	return presentation.Slide{
		ID:         sl.ID,
		Name:       sl.Title,
		ImagePath:  path.Join(PresentationsURL, sl.Image),
		UploadedAt: sl.CreatedAt,
	}
}

// LoadDeck loads the stored deck into the session and, when uploadDir is
// set, rewrites the deck index there.
func LoadDeck(s *store.Store, session *presentation.Session, uploadDir string) error {
	title, err := s.Title()
	if err != nil {
		return err
	}
	stored, err := s.Slides().List()
	if err != nil {
		return err
	}

	slides := make([]presentation.Slide, 0, len(stored))
	for _, sl := range stored {
		slides = append(slides, toSlide(sl))
	}
	session.Load(title, slides)

	if uploadDir == "" {
		return nil
	}
	return s.ExportIndex(filepath.Join(uploadDir, IndexFile))
}
