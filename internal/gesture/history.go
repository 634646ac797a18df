package gesture

import "time"

// History sizing for swipe detection.
const (
	// HistorySize bounds the number of buffered hand-center samples.
	HistorySize = 30
	// SwipeWindow is the length of each of the two compared windows.
	SwipeWindow = 5
)

// centerSample is one hand-center observation.
type centerSample struct {
	X    float64
	Time time.Time
}

// centerHistory is a bounded FIFO of hand-center samples.
type centerHistory struct {
	samples []centerSample
}

func newCenterHistory() *centerHistory {
	return &centerHistory{samples: make([]centerSample, 0, HistorySize)}
}

// push appends a sample, evicting the oldest when full.
func (h *centerHistory) push(s centerSample) {
	if len(h.samples) >= HistorySize {
		copy(h.samples, h.samples[1:])
		h.samples = h.samples[:HistorySize-1]
	}
	h.samples = append(h.samples, s)
}

func (h *centerHistory) len() int {
	return len(h.samples)
}

func (h *centerHistory) reset() {
	h.samples = h.samples[:0]
}

// displacement returns the mean X of the most recent SwipeWindow samples
// minus the mean X of the SwipeWindow samples before them. ok is false
// until 2*SwipeWindow samples are buffered.
func (h *centerHistory) displacement() (dx float64, ok bool) {
	n := len(h.samples)
	if n < 2*SwipeWindow {
		return 0, false
	}
	recent := h.samples[n-SwipeWindow:]
	earlier := h.samples[n-2*SwipeWindow : n-SwipeWindow]
	return meanX(recent) - meanX(earlier), true
}

func meanX(samples []centerSample) float64 {
	var sum float64
	for _, s := range samples {
		sum += s.X
	}
	return sum / float64(len(samples))
}
