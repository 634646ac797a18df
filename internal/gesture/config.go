package gesture

import (
	"fmt"
	"sync"
)

// Config holds the classifier tunables. Thresholds are fractions of the
// frame width/height; durations are milliseconds.
//
// The classifier uses values as given. Validate is for input surfaces such
// as the settings API that want to reject nonsense before it reaches a frame.
type Config struct {
	// SwipeThreshold is the minimum change in averaged hand center between
	// the two five-sample windows for a swipe.
	SwipeThreshold float64 `json:"swipeThreshold"`
	// SwipeCooldownMs is the minimum time since the last navigation event
	// before a swipe may fire.
	SwipeCooldownMs int64 `json:"swipeCooldown"`
	// PointerThrottleMs is the minimum time between pointer emissions.
	PointerThrottleMs int64 `json:"pointerThrottle"`
	// SmoothingAlpha weights the new target in the pointer low-pass filter.
	SmoothingAlpha float64 `json:"smoothingAlpha"`
	// PointerMovementThreshold suppresses the pointer while the hand's
	// window displacement exceeds it.
	PointerMovementThreshold float64 `json:"pointerMovementThreshold"`
	// RequireIndexOnly requires middle, ring and pinky to be folded.
	RequireIndexOnly bool `json:"requireIndexOnly"`

	EnableThumbDirection    bool    `json:"enableThumbDirection"`
	ThumbDirectionThreshold float64 `json:"thumbDirectionThreshold"`
	// ThumbCooldownMs below SwipeCooldownMs has no effect: a thumb
	// gesture waits out the longer of the two.
	ThumbCooldownMs int64 `json:"thumbCooldown"`

	// InvertHorizontal mirrors the x axis (for non-mirrored cameras).
	InvertHorizontal bool `json:"invertHorizontal"`
	// InvertActions swaps next and previous.
	InvertActions bool `json:"invertActions"`
}

// DefaultConfig returns the baseline tunables.
func DefaultConfig() Config {
	return Config{
		SwipeThreshold:           0.12,
		SwipeCooldownMs:          800,
		PointerThrottleMs:        30,
		SmoothingAlpha:           0.6,
		PointerMovementThreshold: 0.12,
		ThumbDirectionThreshold:  0.08,
		ThumbCooldownMs:          600,
	}
}

// PresentationConfig returns the tunables used during a slideshow, where the
// thumb gesture is the primary navigation input.
func PresentationConfig() Config {
	cfg := DefaultConfig()
	cfg.EnableThumbDirection = true
	return cfg
}

// DebugConfig returns the tunables of the gesture debug page.
func DebugConfig() Config {
	return Config{
		SwipeThreshold:           0.12,
		SwipeCooldownMs:          800,
		PointerThrottleMs:        5,
		SmoothingAlpha:           0.85,
		PointerMovementThreshold: 0.12,
		RequireIndexOnly:         true,
		EnableThumbDirection:     true,
		ThumbDirectionThreshold:  0.06,
		ThumbCooldownMs:          800,
		InvertHorizontal:         true,
	}
}

// Preset returns a named config. Known names are "default",
// "presentation" and "debug".
func Preset(name string) (Config, error) {
	switch name {
	case "", "default":
		return DefaultConfig(), nil
	case "presentation":
		return PresentationConfig(), nil
	case "debug":
		return DebugConfig(), nil
	default:
		return Config{}, fmt.Errorf("unknown gesture preset %q", name)
	}
}

// Validate reports the first out-of-range tunable.
func (c Config) Validate() error {
	switch {
	case c.SwipeThreshold < 0:
		return fmt.Errorf("swipeThreshold must be >= 0, got %g", c.SwipeThreshold)
	case c.SwipeCooldownMs < 0:
		return fmt.Errorf("swipeCooldown must be >= 0, got %d", c.SwipeCooldownMs)
	case c.PointerThrottleMs < 0:
		return fmt.Errorf("pointerThrottle must be >= 0, got %d", c.PointerThrottleMs)
	case c.SmoothingAlpha < 0 || c.SmoothingAlpha > 1:
		return fmt.Errorf("smoothingAlpha must be in [0,1], got %g", c.SmoothingAlpha)
	case c.PointerMovementThreshold < 0:
		return fmt.Errorf("pointerMovementThreshold must be >= 0, got %g", c.PointerMovementThreshold)
	case c.ThumbDirectionThreshold < 0:
		return fmt.Errorf("thumbDirectionThreshold must be >= 0, got %g", c.ThumbDirectionThreshold)
	case c.ThumbCooldownMs < 0:
		return fmt.Errorf("thumbCooldown must be >= 0, got %d", c.ThumbCooldownMs)
	}
	return nil
}

// Settings is the live, swappable config shared between a settings surface
// and the frame loops. Each frame takes one snapshot with Load.
type Settings struct {
	mu  sync.RWMutex
	cfg Config
}

// NewSettings creates Settings holding cfg.
func NewSettings(cfg Config) *Settings {
	return &Settings{cfg: cfg}
}

// Load returns the current config.
func (s *Settings) Load() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Store replaces the current config.
func (s *Settings) Store(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}
