package detector

import (
	"errors"
	"testing"
)

// extended mirrors the classifier's pointing rule so the fixtures can be
// checked without importing the gesture package.
func extended(h HandLandmarks, pip, tip int) bool {
	return h.Points[tip].Y < h.Points[pip].Y-0.03
}

func TestParseObservation(t *testing.T) {
	t.Run("accepts exactly 21 landmarks", func(t *testing.T) {
		points := make([]Point3D, NumLandmarks)
		for i := range points {
			points[i] = Point3D{X: float64(i) / 100, Y: 0.5}
		}

		hand, err := ParseObservation(points)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if hand.Points[IndexTip].X != 0.08 {
			t.Errorf("expected index tip X 0.08, got %f", hand.Points[IndexTip].X)
		}
	})

	t.Run("rejects short observations", func(t *testing.T) {
		for _, n := range []int{0, 1, 20} {
			if _, err := ParseObservation(make([]Point3D, n)); err == nil {
				t.Errorf("expected error for %d landmarks", n)
			}
		}
	})

	t.Run("ignores extra landmarks", func(t *testing.T) {
		points := make([]Point3D, NumLandmarks+3)
		points[NumLandmarks] = Point3D{X: 9}

		hand, err := ParseObservation(points)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i, p := range hand.Points {
			if p.X == 9 {
				t.Errorf("landmark %d picked up an extra point", i)
			}
		}
	})
}

func TestHandLandmarks_Observation(t *testing.T) {
	t.Run("callable on a preset pose", func(t *testing.T) {
		obs := FistLandmarks().Observation()
		if len(obs) != NumLandmarks {
			t.Fatalf("expected %d landmarks, got %d", NumLandmarks, len(obs))
		}
		if obs[Wrist] != FistLandmarks().Points[Wrist] {
			t.Errorf("wrist mismatch: %v", obs[Wrist])
		}
	})

	t.Run("returns an independent copy", func(t *testing.T) {
		hand := PointingLandmarks()
		obs := hand.Observation()
		if len(obs) != NumLandmarks {
			t.Fatalf("expected %d landmarks, got %d", NumLandmarks, len(obs))
		}

		obs[IndexTip].X = 42
		if hand.Points[IndexTip].X == 42 {
			t.Error("mutating the observation changed the hand")
		}
	})
}

func TestHandLandmarks_ShiftX(t *testing.T) {
	hand := OpenPalmLandmarks()
	shifted := hand.ShiftX(0.1)

	for i := range hand.Points {
		want := hand.Points[i].X + 0.1
		if shifted.Points[i].X != want {
			t.Errorf("landmark %d: expected X %f, got %f", i, want, shifted.Points[i].X)
		}
		if shifted.Points[i].Y != hand.Points[i].Y {
			t.Errorf("landmark %d: Y should not change", i)
		}
	}
}

func TestDecodeResponse(t *testing.T) {
	t.Run("keeps the first complete hand", func(t *testing.T) {
		line := []byte(`{"hands":[{"points":[{"x":0.1,"y":0.2}],"handedness":"Left","score":0.4},` +
			`{"points":[` + repeatPoint(`{"x":0.5,"y":0.5,"z":-0.01}`, NumLandmarks) + `],"handedness":"Right","score":0.9}]}` + "\n")

		hands, err := decodeResponse(line)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(hands) != 1 {
			t.Fatalf("expected 1 hand, got %d", len(hands))
		}
		if hands[0].Handedness != "Right" {
			t.Errorf("expected Right hand, got %s", hands[0].Handedness)
		}
		if hands[0].Points[Wrist].Z != -0.01 {
			t.Errorf("expected z to be decoded, got %f", hands[0].Points[Wrist].Z)
		}
	})

	t.Run("no hands", func(t *testing.T) {
		hands, err := decodeResponse([]byte(`{"hands":[]}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if hands != nil {
			t.Errorf("expected nil hands, got %v", hands)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		if _, err := decodeResponse([]byte(`not json`)); err == nil {
			t.Error("expected parse error")
		}
	})
}

func repeatPoint(p string, n int) string {
	s := p
	for i := 1; i < n; i++ {
		s += "," + p
	}
	return s
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if hands != nil {
			t.Errorf("expected nil hands, got %v", hands)
		}
	})

	t.Run("queued results are consumed before the default", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{OpenPalmLandmarks()})
		mock.Enqueue(nil, []HandLandmarks{PointingLandmarks()})

		first, _ := mock.Detect(nil)
		second, _ := mock.Detect(nil)
		third, _ := mock.Detect(nil)

		if len(first) != 0 {
			t.Errorf("expected no hands first, got %d", len(first))
		}
		if len(second) != 1 || second[0].Points[IndexTip] != PointingLandmarks().Points[IndexTip] {
			t.Error("expected the pointing hand second")
		}
		if len(third) != 1 || third[0].Points[MiddleTip] != OpenPalmLandmarks().Points[MiddleTip] {
			t.Error("expected the default open palm third")
		}
		if mock.Calls() != 3 {
			t.Errorf("expected 3 calls, got %d", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)
		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if hands != nil {
			t.Errorf("expected nil hands when error is set, got %v", hands)
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func TestPresetPoses(t *testing.T) {
	t.Run("pointing extends only the index finger", func(t *testing.T) {
		hand := PointingLandmarks()
		if !extended(hand, IndexPIP, IndexTip) {
			t.Error("index finger should be extended")
		}
		for _, f := range [][2]int{{MiddlePIP, MiddleTip}, {RingPIP, RingTip}, {PinkyPIP, PinkyTip}} {
			if extended(hand, f[0], f[1]) {
				t.Errorf("finger with tip %d should be folded", f[1])
			}
		}
		if hand.Points[IndexTip].Y != 0.30 || hand.Points[IndexPIP].Y != 0.50 {
			t.Errorf("unexpected index geometry: tip %v pip %v", hand.Points[IndexTip], hand.Points[IndexPIP])
		}
	})

	t.Run("fist folds every finger", func(t *testing.T) {
		hand := FistLandmarks()
		for _, f := range [][2]int{{IndexPIP, IndexTip}, {MiddlePIP, MiddleTip}, {RingPIP, RingTip}, {PinkyPIP, PinkyTip}} {
			if extended(hand, f[0], f[1]) {
				t.Errorf("finger with tip %d should be folded", f[1])
			}
		}
	})

	t.Run("open palm extends every finger", func(t *testing.T) {
		hand := OpenPalmLandmarks()
		for _, f := range [][2]int{{IndexPIP, IndexTip}, {MiddlePIP, MiddleTip}, {RingPIP, RingTip}, {PinkyPIP, PinkyTip}} {
			if !extended(hand, f[0], f[1]) {
				t.Errorf("finger with tip %d should be extended", f[1])
			}
		}
	})

	t.Run("thumb side offsets the thumb tip", func(t *testing.T) {
		hand := ThumbSideLandmarks(-0.1)
		got := hand.Points[ThumbTip].X - hand.Points[ThumbMCP].X
		if got > -0.099 || got < -0.101 {
			t.Errorf("expected thumb offset -0.1, got %f", got)
		}
	})
}
