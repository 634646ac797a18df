package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Slide is one image in the deck.
type Slide struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Image     string    `json:"image"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
}

// SlideRepository provides CRUD operations for slides.
type SlideRepository struct {
	db *sql.DB
}

// Slides returns the slide repository for this store.
func (s *Store) Slides() *SlideRepository {
	return &SlideRepository{db: s.db}
}

// Create appends a slide at the end of the deck. An empty ID is filled
// with a new UUID.
func (r *SlideRepository) Create(sl *Slide) error {
	if sl.ID == "" {
		sl.ID = uuid.New().String()
	}
	sl.CreatedAt = time.Now()

	tx, err := r.db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin slide insert")
	}
	defer tx.Rollback()

	var next int
	if err := tx.QueryRow(`SELECT COALESCE(MAX(position) + 1, 0) FROM slides`).Scan(&next); err != nil {
		return errors.Wrap(err, "next slide position")
	}
	sl.Position = next

	_, err = tx.Exec(
		`INSERT INTO slides (id, title, image, position, created_at) VALUES (?, ?, ?, ?, ?)`,
		sl.ID, sl.Title, sl.Image, sl.Position, sl.CreatedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "insert slide %s", sl.ID)
	}

	return errors.Wrap(tx.Commit(), "commit slide insert")
}

// GetByID retrieves a slide by its ID.
func (r *SlideRepository) GetByID(id string) (*Slide, error) {
	sl := &Slide{}
	err := r.db.QueryRow(
		`SELECT id, title, image, position, created_at FROM slides WHERE id = ?`,
		id,
	).Scan(&sl.ID, &sl.Title, &sl.Image, &sl.Position, &sl.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "get slide %s", id)
	}
	return sl, nil
}

// List retrieves all slides in deck order.
func (r *SlideRepository) List() ([]*Slide, error) {
	rows, err := r.db.Query(
		`SELECT id, title, image, position, created_at FROM slides ORDER BY position`,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list slides")
	}
	defer rows.Close()

	var slides []*Slide
	for rows.Next() {
		sl := &Slide{}
		if err := rows.Scan(&sl.ID, &sl.Title, &sl.Image, &sl.Position, &sl.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan slide")
		}
		slides = append(slides, sl)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list slides")
	}

	return slides, nil
}

// Delete removes a slide by its ID. Positions of later slides are left as
// they are; ordering only depends on their relative values.
func (r *SlideRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM slides WHERE id = ?`, id)
	if err != nil {
		return errors.Wrapf(err, "delete slide %s", id)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteAll removes every slide and returns how many were deleted.
func (r *SlideRepository) DeleteAll() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM slides`)
	if err != nil {
		return 0, errors.Wrap(err, "delete slides")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "rows affected")
	}
	return n, nil
}
