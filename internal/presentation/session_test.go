package presentation

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ayusman/presenter/internal/gesture"
)

// fakeClock is a settable clock for Session.now.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestSession(t *testing.T, n int) (*Session, *fakeClock) {
	t.Helper()

	clock := &fakeClock{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
	s := NewSession()
	s.now = clock.Now

	var slides []Slide
	for i := 0; i < n; i++ {
		slides = append(slides, Slide{ID: string(rune('a' + i)), Name: "slide"})
	}
	s.Load("Deck", slides)
	return s, clock
}

func TestSession_StartRequiresSlides(t *testing.T) {
	s, _ := newTestSession(t, 0)

	if err := s.Start(); !errors.Is(err, ErrNoSlides) {
		t.Errorf("expected ErrNoSlides, got %v", err)
	}
	if s.Snapshot().Playing {
		t.Error("empty deck should not be playing")
	}
}

func TestSession_Navigation(t *testing.T) {
	s, _ := newTestSession(t, 3)

	t.Run("not playing ignores next", func(t *testing.T) {
		if s.Next(SourceAPI) {
			t.Error("next should not move before start")
		}
	})

	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("bounded next", func(t *testing.T) {
		if !s.Next(SourceAPI) || !s.Next(SourceAPI) {
			t.Fatal("expected two successful moves")
		}
		if s.Next(SourceAPI) {
			t.Error("next past the last slide should not move")
		}
		if got := s.Snapshot().Index; got != 2 {
			t.Errorf("expected index 2, got %d", got)
		}
	})

	t.Run("bounded previous", func(t *testing.T) {
		s.Previous(SourceAPI)
		s.Previous(SourceAPI)
		if s.Previous(SourceAPI) {
			t.Error("previous before the first slide should not move")
		}
		if got := s.Snapshot().Index; got != 0 {
			t.Errorf("expected index 0, got %d", got)
		}
	})

	t.Run("goto", func(t *testing.T) {
		if !s.GoTo(2) {
			t.Error("goto 2 should succeed")
		}
		for _, i := range []int{-1, 3, 100} {
			if s.GoTo(i) {
				t.Errorf("goto %d should be ignored", i)
			}
		}
		cur, ok := s.Current()
		if !ok || cur.ID != "c" {
			t.Errorf("expected current slide c, got %+v", cur)
		}
	})

	t.Run("end rewinds", func(t *testing.T) {
		s.End()
		st := s.Snapshot()
		if st.Playing || st.Index != 0 {
			t.Errorf("expected stopped at 0, got playing=%v index=%d", st.Playing, st.Index)
		}
	})
}

func TestSession_LoadClampsIndex(t *testing.T) {
	s, _ := newTestSession(t, 4)
	s.Start()
	s.GoTo(3)

	s.Load("Deck", []Slide{{ID: "a"}, {ID: "b"}})
	if got := s.Snapshot().Index; got != 1 {
		t.Errorf("expected index clamped to 1, got %d", got)
	}
	if !s.Snapshot().Playing {
		t.Error("reload with slides should keep playing")
	}

	s.Load("Deck", nil)
	st := s.Snapshot()
	if st.Playing || st.Index != 0 {
		t.Errorf("empty reload should stop, got playing=%v index=%d", st.Playing, st.Index)
	}
	if _, ok := s.Current(); ok {
		t.Error("expected no current slide")
	}
}

func TestSession_Navigate(t *testing.T) {
	s, _ := newTestSession(t, 3)
	s.Start()

	if !s.Navigate(gesture.EventNext, gesture.SourceSwipe) {
		t.Error("swipe next should move")
	}
	if !s.Navigate(gesture.EventPrevious, gesture.SourceThumb) {
		t.Error("thumb previous should move")
	}
	if s.Navigate(gesture.EventPointer, "") {
		t.Error("pointer is not navigation")
	}
}

func TestSession_Mode(t *testing.T) {
	s, clock := newTestSession(t, 3)
	s.Start()

	if got := s.Snapshot().Mode; got != ModeIdle {
		t.Errorf("expected idle, got %s", got)
	}

	s.Navigate(gesture.EventNext, gesture.SourceSwipe)
	if got := s.Snapshot().Mode; got != ModeGesture {
		t.Errorf("expected gesture after navigation, got %s", got)
	}

	s.MovePointer(gesture.Pointer{X: 0.4, Y: 0.6})
	st := s.Snapshot()
	if st.Mode != ModePointer {
		t.Errorf("pointer should take priority, got %s", st.Mode)
	}
	if st.Pointer == nil || st.Pointer.X != 0.4 {
		t.Errorf("expected pointer at 0.4, got %v", st.Pointer)
	}

	clock.Advance(PointerTimeout)
	st = s.Snapshot()
	if st.Mode != ModeIdle {
		t.Errorf("expected idle after timeout, got %s", st.Mode)
	}
	if st.Pointer != nil {
		t.Error("pointer should be dropped after timeout")
	}
}

func TestSession_APINavigationIsNotGestureMode(t *testing.T) {
	s, _ := newTestSession(t, 3)
	s.Start()

	s.Next(SourceAPI)
	s.Next(SourceKeyboard)
	if got := s.Snapshot().Mode; got != ModeIdle {
		t.Errorf("expected idle, got %s", got)
	}
}

func TestSession_Listeners(t *testing.T) {
	s, _ := newTestSession(t, 2)

	var changes []Change
	s.Subscribe(func(c Change) {
		// Reading state from a listener must not deadlock.
		_ = s.Snapshot()
		changes = append(changes, c)
	})

	s.Start()
	s.Navigate(gesture.EventNext, gesture.SourceSwipe)
	s.Navigate(gesture.EventNext, gesture.SourceSwipe)
	s.End()

	want := []struct {
		kind  ChangeKind
		moved bool
	}{
		{ChangeStart, true},
		{ChangeNext, true},
		{ChangeNext, false},
		{ChangeEnd, true},
	}
	if len(changes) != len(want) {
		t.Fatalf("expected %d changes, got %d", len(want), len(changes))
	}
	for i, w := range want {
		if changes[i].Kind != w.kind || changes[i].Moved != w.moved {
			t.Errorf("change %d: expected %s moved=%v, got %s moved=%v",
				i, w.kind, w.moved, changes[i].Kind, changes[i].Moved)
		}
	}
	if changes[1].Source != string(gesture.SourceSwipe) {
		t.Errorf("expected swipe source, got %q", changes[1].Source)
	}
	if changes[1].State.Index != 1 {
		t.Errorf("expected state index 1 in change, got %d", changes[1].State.Index)
	}
}

func TestSession_SnapshotIsCopy(t *testing.T) {
	s, _ := newTestSession(t, 2)

	st := s.Snapshot()
	st.Slides[0].Name = "changed"

	if s.Snapshot().Slides[0].Name == "changed" {
		t.Error("snapshot shares slide storage with the session")
	}
}

func TestSession_Concurrent(t *testing.T) {
	s, _ := newTestSession(t, 10)
	s.Start()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(3)
		go func() { defer wg.Done(); s.Next(SourceAPI) }()
		go func() { defer wg.Done(); s.MovePointer(gesture.Pointer{X: 0.5, Y: 0.5}) }()
		go func() { defer wg.Done(); _ = s.Snapshot() }()
	}
	wg.Wait()

	if got := s.Snapshot().Index; got != 9 {
		t.Errorf("expected index 9 after 20 nexts on 10 slides, got %d", got)
	}
}

func TestSession_GoToWhileStopped(t *testing.T) {
	s, _ := newTestSession(t, 3)

	if s.Next("swipe") {
		t.Error("next should not move a stopped session")
	}
	if !s.GoTo(2) {
		t.Fatal("goto should select a slide while stopped")
	}
	st := s.Snapshot()
	if st.Playing || st.Index != 2 {
		t.Errorf("expected stopped at 2, got playing=%v index=%d", st.Playing, st.Index)
	}

	if err := s.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if got := s.Snapshot().Index; got != 0 {
		t.Errorf("start should begin at the first slide, got %d", got)
	}
}
