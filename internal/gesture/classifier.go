// Package gesture turns per-frame hand landmarks into presenter input:
// next/previous navigation from swipes or thumb direction, and a smoothed
// pointer from the index fingertip.
package gesture

import (
	"time"

	"github.com/ayusman/presenter/internal/detector"
)

// FingerSlack is the margin, in normalized image units, a fingertip must
// rise above its PIP joint to count as extended.
const FingerSlack = 0.03

// EventKind identifies what a frame produced.
type EventKind string

const (
	EventNone     EventKind = "none"
	EventNext     EventKind = "next"
	EventPrevious EventKind = "previous"
	EventPointer  EventKind = "pointer"
)

// Source identifies which detector produced a navigation event.
type Source string

const (
	SourceSwipe Source = "swipe"
	SourceThumb Source = "thumb"
)

// Pointer is a normalized on-screen position.
type Pointer struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Event is the single outcome of a processed frame.
type Event struct {
	Kind    EventKind `json:"type"`
	Source  Source    `json:"source,omitempty"`
	Pointer *Pointer  `json:"pointer,omitempty"`
}

// Debug is reported on every processed frame. DX is nil until the history
// holds two full windows; Pointer is the current smoothed pointer, if any.
type Debug struct {
	CenterX float64  `json:"centerX"`
	DX      *float64 `json:"dx,omitempty"`
	Pointer *Pointer `json:"pointer,omitempty"`
}

// Callbacks receive classifier output synchronously from ProcessFrame.
// Any of them may be nil. Panics propagate to the caller.
type Callbacks struct {
	OnNext        func()
	OnPrevious    func()
	OnPointerMove func(Pointer)
	OnDebug       func(Debug)
}

// Classifier holds the temporal state of one tracked hand. It is not safe
// for concurrent use: feed it from a single frame loop.
type Classifier struct {
	history *centerHistory

	lastNav    time.Time
	hasNav     bool
	lastPtr    time.Time
	hasPtrTime bool
	pointer    *Pointer
}

// NewClassifier creates a Classifier with empty state.
func NewClassifier() *Classifier {
	return &Classifier{history: newCenterHistory()}
}

// Reset discards history, cooldown and pointer state.
func (c *Classifier) Reset() {
	c.history.reset()
	c.hasNav = false
	c.hasPtrTime = false
	c.pointer = nil
}

// HistoryLen returns the number of buffered center samples.
func (c *Classifier) HistoryLen() int {
	return c.history.len()
}

// Pointer returns the current smoothed pointer, or nil before the first emission.
func (c *Classifier) Pointer() *Pointer {
	if c.pointer == nil {
		return nil
	}
	p := *c.pointer
	return &p
}

// ProcessFrame classifies one observation using the monotonic clock.
func (c *Classifier) ProcessFrame(observation []detector.Point3D, cfg Config, cb Callbacks) Event {
	return c.ProcessFrameAt(time.Now(), observation, cfg, cb)
}

// ProcessFrameAt classifies one observation taken at now. An observation
// with fewer than detector.NumLandmarks points is ignored: no event, no
// callbacks, no state change.
func (c *Classifier) ProcessFrameAt(now time.Time, observation []detector.Point3D, cfg Config, cb Callbacks) Event {
	hand, err := detector.ParseObservation(observation)
	if err != nil {
		return Event{Kind: EventNone}
	}

	var sumX float64
	for _, lm := range observation {
		sumX += lm.X
	}
	centerX := sumX / float64(len(observation))
	c.history.push(centerSample{X: centerX, Time: now})

	event := Event{Kind: EventNone}

	// Swipe.
	dx, hasDX := c.history.displacement()
	if hasDX {
		d := dx
		if cfg.InvertHorizontal {
			d = -d
		}
		if c.cooledDown(now, cfg.SwipeCooldownMs) {
			switch {
			case d > cfg.SwipeThreshold:
				event = c.navigate(now, true, cfg, SourceSwipe, cb)
			case d < -cfg.SwipeThreshold:
				event = c.navigate(now, false, cfg, SourceSwipe, cb)
			}
		}
	}

	// Thumb direction shares the swipe's cooldown clock and never fires
	// inside the swipe window.
	if cfg.EnableThumbDirection && event.Kind == EventNone {
		d := hand.Points[detector.ThumbTip].X - hand.Points[detector.ThumbMCP].X
		if cfg.InvertHorizontal {
			d = -d
		}
		if c.cooledDown(now, max(cfg.ThumbCooldownMs, cfg.SwipeCooldownMs)) {
			switch {
			case d > cfg.ThumbDirectionThreshold:
				event = c.navigate(now, true, cfg, SourceThumb, cb)
			case d < -cfg.ThumbDirectionThreshold:
				event = c.navigate(now, false, cfg, SourceThumb, cb)
			}
		}
	}

	// Pointer.
	if event.Kind == EventNone && pointing(&hand, cfg.RequireIndexOnly) {
		moving := hasDX && abs(dx) > cfg.PointerMovementThreshold
		if !moving && c.throttled(now, cfg.PointerThrottleMs) {
			p := c.movePointer(now, hand.Points[detector.IndexTip], cfg.SmoothingAlpha)
			event = Event{Kind: EventPointer, Pointer: &p}
			if cb.OnPointerMove != nil {
				cb.OnPointerMove(p)
			}
		}
	}

	if cb.OnDebug != nil {
		info := Debug{CenterX: centerX, Pointer: c.Pointer()}
		if hasDX {
			v := dx
			info.DX = &v
		}
		cb.OnDebug(info)
	}

	return event
}

// cooledDown reports whether more than cooldownMs has passed since the last
// navigation event. Elapsed time is clamped at zero.
func (c *Classifier) cooledDown(now time.Time, cooldownMs int64) bool {
	if !c.hasNav {
		return true
	}
	return elapsed(c.lastNav, now) > time.Duration(cooldownMs)*time.Millisecond
}

// throttled reports whether at least throttleMs has passed since the last
// pointer emission.
func (c *Classifier) throttled(now time.Time, throttleMs int64) bool {
	if !c.hasPtrTime {
		return true
	}
	return elapsed(c.lastPtr, now) >= time.Duration(throttleMs)*time.Millisecond
}

// navigate records a navigation event. forward is the gesture direction
// before InvertActions is applied.
func (c *Classifier) navigate(now time.Time, forward bool, cfg Config, src Source, cb Callbacks) Event {
	c.lastNav = now
	c.hasNav = true

	if cfg.InvertActions {
		forward = !forward
	}
	if forward {
		if cb.OnNext != nil {
			cb.OnNext()
		}
		return Event{Kind: EventNext, Source: src}
	}
	if cb.OnPrevious != nil {
		cb.OnPrevious()
	}
	return Event{Kind: EventPrevious, Source: src}
}

// movePointer clamps the fingertip and low-pass filters it against the
// previous pointer.
func (c *Classifier) movePointer(now time.Time, tip detector.Point3D, alpha float64) Pointer {
	c.lastPtr = now
	c.hasPtrTime = true

	target := Pointer{X: clamp01(tip.X), Y: clamp01(tip.Y)}
	if c.pointer != nil {
		prev := *c.pointer
		target = Pointer{
			X: prev.X*(1-alpha) + target.X*alpha,
			Y: prev.Y*(1-alpha) + target.Y*alpha,
		}
	}
	c.pointer = &target
	return target
}

// pointing reports whether the hand is in the pointer pose.
func pointing(hand *detector.HandLandmarks, indexOnly bool) bool {
	if !fingerExtended(hand, detector.IndexPIP, detector.IndexTip) {
		return false
	}
	if !indexOnly {
		return true
	}
	return !fingerExtended(hand, detector.MiddlePIP, detector.MiddleTip) &&
		!fingerExtended(hand, detector.RingPIP, detector.RingTip) &&
		!fingerExtended(hand, detector.PinkyPIP, detector.PinkyTip)
}

// fingerExtended: smaller y is higher in the image.
func fingerExtended(hand *detector.HandLandmarks, pip, tip int) bool {
	return hand.Points[tip].Y < hand.Points[pip].Y-FingerSlack
}

func elapsed(from, to time.Time) time.Duration {
	d := to.Sub(from)
	if d < 0 {
		return 0
	}
	return d
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
