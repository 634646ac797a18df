// Package detector provides hand landmark types and the detectors that produce them.
package detector

import "fmt"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D is a single hand landmark. X and Y are normalized to the frame
// (0..1, origin top-left). Z and Visibility are optional and zero when the
// detector does not report them.
type Point3D struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z,omitempty"`
	Visibility float64 `json:"visibility,omitempty"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Observation returns the landmarks as a slice in index order.
func (h HandLandmarks) Observation() []Point3D {
	points := make([]Point3D, NumLandmarks)
	copy(points, h.Points[:])
	return points
}

// ShiftX returns a copy of the hand translated horizontally by dx.
// Used to synthesize swipes from a static pose.
func (h HandLandmarks) ShiftX(dx float64) HandLandmarks {
	for i := range h.Points {
		h.Points[i].X += dx
	}
	return h
}

// ParseObservation converts a variable-length landmark list into a hand.
// It returns an error when fewer than NumLandmarks points are present;
// extra points are ignored.
func ParseObservation(points []Point3D) (HandLandmarks, error) {
	var hand HandLandmarks
	if len(points) < NumLandmarks {
		return hand, fmt.Errorf("observation has %d landmarks, need %d", len(points), NumLandmarks)
	}
	copy(hand.Points[:], points[:NumLandmarks])
	return hand, nil
}
