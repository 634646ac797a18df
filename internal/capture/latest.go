package capture

import (
	"context"
	"sync"

	"gocv.io/x/gocv"
)

// Latest holds the most recent frame as JPEG so that any number of preview
// clients can follow the capture loop without reading the camera themselves.
type Latest struct {
	mu      sync.Mutex
	jpeg    []byte
	seq     uint64
	updated chan struct{}
}

// NewLatest creates an empty Latest.
func NewLatest() *Latest {
	return &Latest{updated: make(chan struct{})}
}

// Publish encodes mat as JPEG and wakes waiting readers. The caller keeps
// ownership of mat.
func (l *Latest) Publish(mat *gocv.Mat) error {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *mat)
	if err != nil {
		return err
	}
	defer buf.Close()

	l.PublishJPEG(append([]byte(nil), buf.GetBytes()...))
	return nil
}

// PublishJPEG stores an already encoded frame.
func (l *Latest) PublishJPEG(data []byte) {
	l.mu.Lock()
	l.jpeg = data
	l.seq++
	close(l.updated)
	l.updated = make(chan struct{})
	l.mu.Unlock()
}

// Next blocks until a frame newer than after is available and returns it
// with its sequence number.
func (l *Latest) Next(ctx context.Context, after uint64) ([]byte, uint64, error) {
	for {
		l.mu.Lock()
		if l.seq > after && l.jpeg != nil {
			data, seq := l.jpeg, l.seq
			l.mu.Unlock()
			return data, seq, nil
		}
		wait := l.updated
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, after, ctx.Err()
		case <-wait:
		}
	}
}
