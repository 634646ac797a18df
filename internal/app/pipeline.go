package app

import (
	"log"
	"time"

	"github.com/ayusman/presenter/internal/gesture"
)

// runPipeline ticks at the frame interval until stopCh closes.
func (a *App) runPipeline(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(a.config.FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			if _, err := a.step(now); err != nil {
				log.Printf("Pipeline: %v", err)
			}
		}
	}
}

// step processes one frame taken at now:
//  1. read a frame and publish it to the stream
//  2. detect hands, keeping only the first
//  3. classify and apply the event to the session
//
// Nothing is read while recognition is disabled.
func (a *App) step(now time.Time) (gesture.Event, error) {
	none := gesture.Event{Kind: gesture.EventNone}
	if !a.IsEnabled() {
		return none, nil
	}

	frame, err := a.camera.ReadFrame()
	if err != nil {
		return none, err
	}
	defer frame.Close()

	if a.config.Frames != nil {
		if err := a.config.Frames.Publish(frame); err != nil {
			log.Printf("Pipeline: publish frame: %v", err)
		}
	}

	d := a.Detector()
	if d == nil {
		return none, nil
	}
	hands, err := d.Detect(frame)
	if err != nil {
		return none, err
	}
	if len(hands) == 0 {
		return none, nil
	}

	a.mu.Lock()
	event := a.classifier.ProcessFrameAt(now, hands[0].Observation(), a.config.Settings.Load(), gesture.Callbacks{})
	if event.Kind != gesture.EventNone {
		a.lastEvent = event
		a.lastAt = now
	}
	a.mu.Unlock()

	session := a.config.Session
	switch event.Kind {
	case gesture.EventNext, gesture.EventPrevious:
		log.Printf("Gesture %s (%s)", event.Kind, event.Source)
		session.Navigate(event.Kind, event.Source)
	case gesture.EventPointer:
		session.MovePointer(*event.Pointer)
	}

	return event, nil
}
