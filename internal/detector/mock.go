package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// Hands queued with Enqueue are returned one call at a time; once the queue
// is drained the hands set with SetHands are returned on every call.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	queue [][]HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// Enqueue appends per-call results, consumed in order by Detect.
func (m *MockDetector) Enqueue(frames ...[]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, frames...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the next queued result, the pre-configured hands, or the error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		return next, nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// foldedFinger places a finger curled toward the palm: the tip sits below
// its PIP joint in image space.
func foldedFinger(points *[NumLandmarks]Point3D, mcp int, x float64) {
	points[mcp] = Point3D{X: x, Y: 0.62}
	points[mcp+1] = Point3D{X: x, Y: 0.58}
	points[mcp+2] = Point3D{X: x - 0.01, Y: 0.62}
	points[mcp+3] = Point3D{X: x - 0.01, Y: 0.66}
}

// extendedFinger places a finger pointing straight up.
func extendedFinger(points *[NumLandmarks]Point3D, mcp int, x float64) {
	points[mcp] = Point3D{X: x, Y: 0.62}
	points[mcp+1] = Point3D{X: x, Y: 0.50}
	points[mcp+2] = Point3D{X: x, Y: 0.40}
	points[mcp+3] = Point3D{X: x, Y: 0.30}
}

func baseHand() HandLandmarks {
	hand := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}
	hand.Points[Wrist] = Point3D{X: 0.50, Y: 0.80}
	hand.Points[ThumbCMC] = Point3D{X: 0.54, Y: 0.76}
	hand.Points[ThumbMCP] = Point3D{X: 0.56, Y: 0.70}
	hand.Points[ThumbIP] = Point3D{X: 0.56, Y: 0.66}
	hand.Points[ThumbTip] = Point3D{X: 0.55, Y: 0.63}
	return hand
}

// PointingLandmarks returns a hand with only the index finger extended.
// Index tip is at (0.55, 0.30), PIP at (0.55, 0.50).
func PointingLandmarks() HandLandmarks {
	hand := baseHand()
	extendedFinger(&hand.Points, IndexMCP, 0.55)
	foldedFinger(&hand.Points, MiddleMCP, 0.50)
	foldedFinger(&hand.Points, RingMCP, 0.46)
	foldedFinger(&hand.Points, PinkyMCP, 0.42)
	return hand
}

// FistLandmarks returns a closed fist: every finger folded.
func FistLandmarks() HandLandmarks {
	hand := baseHand()
	foldedFinger(&hand.Points, IndexMCP, 0.55)
	foldedFinger(&hand.Points, MiddleMCP, 0.50)
	foldedFinger(&hand.Points, RingMCP, 0.46)
	foldedFinger(&hand.Points, PinkyMCP, 0.42)
	return hand
}

// OpenPalmLandmarks returns a hand with all four fingers extended.
func OpenPalmLandmarks() HandLandmarks {
	hand := baseHand()
	hand.Points[ThumbIP] = Point3D{X: 0.62, Y: 0.66}
	hand.Points[ThumbTip] = Point3D{X: 0.66, Y: 0.62}
	extendedFinger(&hand.Points, IndexMCP, 0.55)
	extendedFinger(&hand.Points, MiddleMCP, 0.50)
	extendedFinger(&hand.Points, RingMCP, 0.46)
	extendedFinger(&hand.Points, PinkyMCP, 0.42)
	return hand
}

// ThumbSideLandmarks returns a fist with the thumb pointed sideways.
// The thumb tip sits offset horizontally from the thumb MCP by dx
// (positive is toward larger x).
func ThumbSideLandmarks(dx float64) HandLandmarks {
	hand := FistLandmarks()
	base := hand.Points[ThumbMCP]
	hand.Points[ThumbIP] = Point3D{X: base.X + dx/2, Y: base.Y}
	hand.Points[ThumbTip] = Point3D{X: base.X + dx, Y: base.Y}
	return hand
}
