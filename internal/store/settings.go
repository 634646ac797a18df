package store

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// DefaultTitle is the deck title used until one is set.
const DefaultTitle = "Presentation"

const titleKey = "presentation.title"

// Title returns the deck title, or DefaultTitle if none is stored.
func (s *Store) Title() (string, error) {
	var title string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, titleKey).Scan(&title)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DefaultTitle, nil
		}
		return "", errors.Wrap(err, "get title")
	}
	return title, nil
}

// SetTitle stores the deck title.
func (s *Store) SetTitle(title string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		titleKey, title,
	)
	return errors.Wrap(err, "set title")
}

// Index is the on-disk deck index consumed by the presentation page.
type Index struct {
	Title  string       `json:"title"`
	Slides []IndexEntry `json:"slides"`
}

// IndexEntry is one slide of an Index.
type IndexEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Image string `json:"image"`
}

// BuildIndex reads the current deck.
func (s *Store) BuildIndex() (*Index, error) {
	title, err := s.Title()
	if err != nil {
		return nil, err
	}
	slides, err := s.Slides().List()
	if err != nil {
		return nil, err
	}

	idx := &Index{Title: title, Slides: make([]IndexEntry, 0, len(slides))}
	for _, sl := range slides {
		idx.Slides = append(idx.Slides, IndexEntry{ID: sl.ID, Title: sl.Title, Image: sl.Image})
	}
	return idx, nil
}

// ExportIndex writes the deck index as indented JSON to path. The file is
// written to a temporary sibling and renamed so readers never see a
// partial index.
func (s *Store) ExportIndex(path string) error {
	idx, err := s.BuildIndex()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode index")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create index directory")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".index-*.json")
	if err != nil {
		return errors.Wrap(err, "create temp index")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write index")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close index")
	}

	return errors.Wrapf(os.Rename(tmpName, path), "rename index to %s", path)
}
