// Package app runs the server-side capture pipeline: camera frames go
// through hand detection and the gesture classifier into the slideshow.
package app

import (
	"log"
	"sync"
	"time"

	"github.com/ayusman/presenter/internal/capture"
	"github.com/ayusman/presenter/internal/detector"
	"github.com/ayusman/presenter/internal/gesture"
	"github.com/ayusman/presenter/internal/presentation"
)

// DefaultFrameInterval is the time between processed frames.
const DefaultFrameInterval = 50 * time.Millisecond

// Config holds configuration options for the pipeline.
type Config struct {
	CameraID      int
	FrameInterval time.Duration

	Session  *presentation.Session
	Settings *gesture.Settings
	// Frames, when set, receives every captured frame for the MJPEG stream.
	Frames *capture.Latest

	// Camera and Detector override the devices built from CameraID.
	Camera   capture.Camera
	Detector detector.Detector
}

// App owns the camera, the detector and the classifier of the one hand it
// tracks.
type App struct {
	config     Config
	camera     capture.Camera
	detector   detector.Detector
	classifier *gesture.Classifier

	enabled   bool
	lastEvent gesture.Event
	lastAt    time.Time
	mu        sync.RWMutex
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// New creates an App. Recognition starts enabled.
func New(config Config) *App {
	if config.FrameInterval <= 0 {
		config.FrameInterval = DefaultFrameInterval
	}
	if config.Session == nil {
		config.Session = presentation.NewSession()
	}
	if config.Settings == nil {
		config.Settings = gesture.NewSettings(gesture.PresentationConfig())
	}

	a := &App{
		config:     config,
		camera:     config.Camera,
		detector:   config.Detector,
		classifier: gesture.NewClassifier(),
		enabled:    true,
	}

	if a.camera == nil {
		camCfg := capture.DefaultConfig()
		camCfg.DeviceID = config.CameraID
		a.camera = capture.NewCamera(camCfg)
	}

	// Try MediaPipe first, fall back to mock detector
	if a.detector == nil {
		if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
			a.detector = mp
			log.Println("Using MediaPipe hand detection")
		} else {
			log.Printf("MediaPipe not available (%v), using mock detector", err)
			a.detector = detector.NewMockDetector()
		}
	}

	return a
}

// SetEnabled enables or disables gesture recognition. Re-enabling starts
// from a fresh classifier so stale history cannot fire a swipe.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if enabled && !a.enabled {
		a.classifier.Reset()
	}
	a.enabled = enabled
}

// IsEnabled returns whether gesture recognition is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Session returns the slideshow the pipeline drives.
func (a *App) Session() *presentation.Session {
	return a.config.Session
}

// LastEvent returns the most recent navigation or pointer event and when it
// happened. ok is false before the first one.
func (a *App) LastEvent() (gesture.Event, time.Time, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastEvent, a.lastAt, !a.lastAt.IsZero()
}

// Start opens the camera and begins the detection loop.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(int(time.Second / a.config.FrameInterval))

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(a.stopCh, a.doneCh)

	log.Printf("Detection pipeline started (every %v)", a.config.FrameInterval)
	return nil
}

// Stop halts the detection loop and releases the camera and detector.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-doneCh
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	if d := a.Detector(); d != nil {
		if err := d.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Detection pipeline stopped")
}
