// Package presentation holds the live slideshow state that gesture, HTTP and
// keyboard input drive.
package presentation

import (
	"errors"
	"sync"
	"time"

	"github.com/ayusman/presenter/internal/gesture"
)

// ErrNoSlides is returned by Start when the deck is empty.
var ErrNoSlides = errors.New("no slides loaded")

const (
	// PointerTimeout is how long a pointer stays visible without updates.
	PointerTimeout = 500 * time.Millisecond
	// GestureTimeout is how long the mode reads "gesture" after navigation.
	GestureTimeout = 500 * time.Millisecond
)

// Input sources that are not gestures.
const (
	SourceAPI      = "api"
	SourceKeyboard = "keyboard"
)

// Slide is a slide as the presentation page sees it.
type Slide struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ImagePath  string    `json:"imagePath"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Mode is the input mode shown to the presenter.
type Mode string

const (
	ModeIdle    Mode = "idle"
	ModePointer Mode = "pointer"
	ModeGesture Mode = "gesture"
)

// ChangeKind identifies what changed in a Session.
type ChangeKind string

const (
	ChangeLoaded   ChangeKind = "loaded"
	ChangeStart    ChangeKind = "start"
	ChangeEnd      ChangeKind = "end"
	ChangeNext     ChangeKind = "next"
	ChangePrevious ChangeKind = "previous"
	ChangeGoTo     ChangeKind = "goto"
	ChangePointer  ChangeKind = "pointer"
)

// State is a point-in-time copy of a Session.
type State struct {
	Title      string           `json:"title"`
	Slides     []Slide          `json:"slides"`
	Index      int              `json:"currentSlideIndex"`
	Playing    bool             `json:"isPlaying"`
	Pointer    *gesture.Pointer `json:"pointer,omitempty"`
	Mode       Mode             `json:"mode"`
	LastAction string           `json:"lastAction,omitempty"`
}

// Change is delivered to listeners after every state transition. Moved is
// false for a navigation request that hit either end of the deck or arrived
// while not playing.
type Change struct {
	Kind   ChangeKind `json:"kind"`
	Source string     `json:"source,omitempty"`
	Moved  bool       `json:"moved"`
	Time   time.Time  `json:"timestamp"`
	State  State      `json:"state"`
}

// Listener receives Session changes. Listeners run synchronously on the
// goroutine that caused the change and must not block for long.
type Listener func(Change)

// Session is the slideshow state. It is safe for concurrent use.
type Session struct {
	mu         sync.RWMutex
	title      string
	slides     []Slide
	index      int
	playing    bool
	pointer    *gesture.Pointer
	lastPtr    time.Time
	lastNav    time.Time
	lastAction string
	listeners  []Listener

	now func() time.Time
}

// NewSession creates an empty, stopped Session.
func NewSession() *Session {
	return &Session{now: time.Now}
}

// Subscribe registers a listener for all future changes.
func (s *Session) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Load replaces the deck. The current index is kept when it is still in
// range; an empty deck stops the presentation.
func (s *Session) Load(title string, slides []Slide) {
	s.mu.Lock()
	s.title = title
	s.slides = append([]Slide(nil), slides...)
	if s.index >= len(s.slides) {
		s.index = max(len(s.slides)-1, 0)
	}
	if len(s.slides) == 0 {
		s.playing = false
		s.index = 0
	}
	s.mu.Unlock()

	s.emit(ChangeLoaded, SourceAPI, true)
}

// Start begins the presentation at the first slide.
func (s *Session) Start() error {
	s.mu.Lock()
	if len(s.slides) == 0 {
		s.mu.Unlock()
		return ErrNoSlides
	}
	s.playing = true
	s.index = 0
	s.lastAction = "Start"
	s.mu.Unlock()

	s.emit(ChangeStart, SourceAPI, true)
	return nil
}

// End stops the presentation and rewinds to the first slide.
func (s *Session) End() {
	s.mu.Lock()
	s.playing = false
	s.index = 0
	s.pointer = nil
	s.lastAction = "End"
	s.mu.Unlock()

	s.emit(ChangeEnd, SourceAPI, true)
}

// Next advances one slide. It reports whether the index moved.
func (s *Session) Next(source string) bool {
	return s.step(1, source)
}

// Previous goes back one slide. It reports whether the index moved.
func (s *Session) Previous(source string) bool {
	return s.step(-1, source)
}

func (s *Session) step(delta int, source string) bool {
	kind, action := ChangeNext, "Next slide"
	if delta < 0 {
		kind, action = ChangePrevious, "Prev slide"
	}

	s.mu.Lock()
	target := s.index + delta
	moved := s.playing && target >= 0 && target < len(s.slides)
	if moved {
		s.index = target
	}
	s.lastAction = action
	if source != SourceAPI && source != SourceKeyboard {
		s.lastNav = s.now()
	}
	s.mu.Unlock()

	s.emit(kind, source, moved)
	return moved
}

// GoTo jumps to slide i. Out-of-range indices are ignored. Unlike Next and
// Previous it works while stopped, so a slide can be picked before Start;
// Start still begins at the first slide.
func (s *Session) GoTo(i int) bool {
	s.mu.Lock()
	if i < 0 || i >= len(s.slides) {
		s.mu.Unlock()
		return false
	}
	s.index = i
	s.lastAction = "Go to slide"
	s.mu.Unlock()

	s.emit(ChangeGoTo, SourceAPI, true)
	return true
}

// Navigate applies a classifier navigation event.
func (s *Session) Navigate(kind gesture.EventKind, source gesture.Source) bool {
	switch kind {
	case gesture.EventNext:
		return s.Next(string(source))
	case gesture.EventPrevious:
		return s.Previous(string(source))
	}
	return false
}

// MovePointer records a new pointer position.
func (s *Session) MovePointer(p gesture.Pointer) {
	s.mu.Lock()
	s.pointer = &p
	s.lastPtr = s.now()
	s.lastAction = "Pointer"
	s.mu.Unlock()

	s.emit(ChangePointer, string(gesture.EventPointer), true)
}

// Current returns the slide at the current index.
func (s *Session) Current() (Slide, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index < 0 || s.index >= len(s.slides) {
		return Slide{}, false
	}
	return s.slides[s.index], true
}

// Snapshot returns a copy of the current state. The pointer is dropped once
// it has not moved for PointerTimeout.
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() State {
	now := s.now()
	st := State{
		Title:      s.title,
		Slides:     append([]Slide{}, s.slides...),
		Index:      s.index,
		Playing:    s.playing,
		Mode:       ModeIdle,
		LastAction: s.lastAction,
	}

	pointerActive := s.pointer != nil && now.Sub(s.lastPtr) < PointerTimeout
	switch {
	case pointerActive:
		p := *s.pointer
		st.Pointer = &p
		st.Mode = ModePointer
	case !s.lastNav.IsZero() && now.Sub(s.lastNav) < GestureTimeout:
		st.Mode = ModeGesture
	}
	return st
}

func (s *Session) emit(kind ChangeKind, source string, moved bool) {
	s.mu.RLock()
	change := Change{
		Kind:   kind,
		Source: source,
		Moved:  moved,
		Time:   s.now(),
		State:  s.snapshotLocked(),
	}
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.RUnlock()

	for _, l := range listeners {
		l(change)
	}
}
