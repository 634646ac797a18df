package plugin

import (
	"context"
	"log"
	"sync"

	"github.com/ayusman/presenter/internal/presentation"
)

// queueSize bounds pending plugin runs; further changes are dropped.
const queueSize = 16

// Dispatcher runs subscribed plugins for each slideshow change. Plugins run
// one at a time on a background goroutine in the order changes arrive.
type Dispatcher struct {
	manager  *Manager
	executor *Executor

	queue  chan *Request
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex

	// onResult is called after each run; used by tests.
	onResult func(p *Plugin, resp *Response, err error)
}

// NewDispatcher creates a Dispatcher. Call Start before changes arrive.
func NewDispatcher(manager *Manager, executor *Executor) *Dispatcher {
	return &Dispatcher{
		manager:  manager,
		executor: executor,
	}
}

// Start launches the worker. It is a no-op when already running.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.queue = make(chan *Request, queueSize)

	d.wg.Add(1)
	go d.run(ctx, d.queue)
}

// Stop cancels in-flight runs and waits for the worker to exit.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	cancel := d.cancel
	d.cancel = nil
	d.queue = nil
	d.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	d.wg.Wait()
}

// HandleChange is a presentation.Listener. Navigation that did not move the
// slide is still dispatched so plugins can drive a deck the session does
// not hold.
func (d *Dispatcher) HandleChange(c presentation.Change) {
	event, ok := eventFor(c.Kind)
	if !ok {
		return
	}

	req := &Request{
		Event:  event,
		Source: c.Source,
		Index:  c.State.Index,
		Total:  len(c.State.Slides),
	}
	if c.State.Index >= 0 && c.State.Index < len(c.State.Slides) {
		req.Slide = c.State.Slides[c.State.Index].ID
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.queue == nil {
		return
	}
	select {
	case d.queue <- req:
	default:
		log.Printf("Plugin queue full, dropping %s", event)
	}
}

func (d *Dispatcher) run(ctx context.Context, queue <-chan *Request) {
	defer d.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-queue:
			for _, p := range d.manager.ForEvent(req.Event) {
				resp, err := d.executor.ExecuteContext(ctx, p, req)
				switch {
				case err != nil:
					log.Printf("Plugin %s (%s): %v", p.Manifest.Name, req.Event, err)
				case !resp.Success:
					log.Printf("Plugin %s (%s) reported: %s", p.Manifest.Name, req.Event, resp.Error)
				}
				if d.onResult != nil {
					d.onResult(p, resp, err)
				}
			}
		}
	}
}

func eventFor(kind presentation.ChangeKind) (string, bool) {
	switch kind {
	case presentation.ChangeNext:
		return EventNext, true
	case presentation.ChangePrevious:
		return EventPrevious, true
	case presentation.ChangeStart:
		return EventStart, true
	case presentation.ChangeEnd:
		return EventEnd, true
	}
	return "", false
}
