package store

import (
	"errors"
	"testing"
)

func TestSlideRepository_Create(t *testing.T) {
	s := newTestStore(t)
	repo := s.Slides()

	t.Run("assigns id and increasing positions", func(t *testing.T) {
		first := &Slide{Title: "Intro", Image: "slide-1.png"}
		second := &Slide{Title: "Agenda", Image: "slide-2.png"}

		if err := repo.Create(first); err != nil {
			t.Fatalf("failed to create slide: %v", err)
		}
		if err := repo.Create(second); err != nil {
			t.Fatalf("failed to create slide: %v", err)
		}

		if first.ID == "" || second.ID == "" || first.ID == second.ID {
			t.Errorf("expected distinct generated ids, got %q and %q", first.ID, second.ID)
		}
		if second.Position <= first.Position {
			t.Errorf("expected second position > first, got %d and %d", second.Position, first.Position)
		}
		if first.CreatedAt.IsZero() {
			t.Error("CreatedAt should be set")
		}
	})

	t.Run("keeps a caller supplied id", func(t *testing.T) {
		sl := &Slide{ID: "custom-id", Title: "Custom", Image: "slide-3.png"}
		if err := repo.Create(sl); err != nil {
			t.Fatalf("failed to create slide: %v", err)
		}
		if sl.ID != "custom-id" {
			t.Errorf("expected id custom-id, got %s", sl.ID)
		}
	})

	t.Run("duplicate id fails", func(t *testing.T) {
		if err := repo.Create(&Slide{ID: "custom-id", Title: "Again", Image: "x.png"}); err == nil {
			t.Error("expected error for duplicate id")
		}
	})
}

func TestSlideRepository_GetByID(t *testing.T) {
	s := newTestStore(t)
	repo := s.Slides()

	sl := &Slide{Title: "Intro", Image: "slide-1.png"}
	if err := repo.Create(sl); err != nil {
		t.Fatalf("failed to create slide: %v", err)
	}

	got, err := repo.GetByID(sl.ID)
	if err != nil {
		t.Fatalf("failed to get slide: %v", err)
	}
	if got.Title != "Intro" || got.Image != "slide-1.png" {
		t.Errorf("unexpected slide: %+v", got)
	}

	if _, err := repo.GetByID("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSlideRepository_ListOrder(t *testing.T) {
	s := newTestStore(t)
	repo := s.Slides()

	titles := []string{"one", "two", "three", "four"}
	for _, title := range titles {
		if err := repo.Create(&Slide{Title: title, Image: title + ".png"}); err != nil {
			t.Fatalf("failed to create slide: %v", err)
		}
	}

	slides, err := repo.List()
	if err != nil {
		t.Fatalf("failed to list slides: %v", err)
	}
	if len(slides) != len(titles) {
		t.Fatalf("expected %d slides, got %d", len(titles), len(slides))
	}
	for i, sl := range slides {
		if sl.Title != titles[i] {
			t.Errorf("position %d: expected %s, got %s", i, titles[i], sl.Title)
		}
	}
}

func TestSlideRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	repo := s.Slides()

	a := &Slide{Title: "a", Image: "a.png"}
	b := &Slide{Title: "b", Image: "b.png"}
	c := &Slide{Title: "c", Image: "c.png"}
	for _, sl := range []*Slide{a, b, c} {
		if err := repo.Create(sl); err != nil {
			t.Fatalf("failed to create slide: %v", err)
		}
	}

	if err := repo.Delete(b.ID); err != nil {
		t.Fatalf("failed to delete slide: %v", err)
	}
	if err := repo.Delete(b.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}

	// New slides still go to the end.
	d := &Slide{Title: "d", Image: "d.png"}
	if err := repo.Create(d); err != nil {
		t.Fatalf("failed to create slide: %v", err)
	}

	slides, err := repo.List()
	if err != nil {
		t.Fatalf("failed to list slides: %v", err)
	}
	var got []string
	for _, sl := range slides {
		got = append(got, sl.Title)
	}
	if len(got) != 3 || got[0] != "a" || got[1] != "c" || got[2] != "d" {
		t.Errorf("expected [a c d], got %v", got)
	}
}

func TestSlideRepository_DeleteAll(t *testing.T) {
	s := newTestStore(t)
	repo := s.Slides()

	for i := 0; i < 3; i++ {
		if err := repo.Create(&Slide{Title: "s", Image: "s.png"}); err != nil {
			t.Fatalf("failed to create slide: %v", err)
		}
	}

	n, err := repo.DeleteAll()
	if err != nil {
		t.Fatalf("failed to delete slides: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 deleted, got %d", n)
	}

	slides, err := repo.List()
	if err != nil {
		t.Fatalf("failed to list slides: %v", err)
	}
	if len(slides) != 0 {
		t.Errorf("expected empty deck, got %d slides", len(slides))
	}
}
