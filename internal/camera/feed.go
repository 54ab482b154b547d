// Package camera provides the frame source for the capture loop. A
// browser publishes JPEG frames over a WebSocket; the loop pulls the
// latest frame on demand.
package camera

import (
	"context"
	"errors"
	"sync"
	"time"

	"facemark/internal/metrics"
)

var (
	// ErrNoPublisher is reported when capture starts with no camera
	// feed connected; the operator sees this as "camera unavailable".
	ErrNoPublisher = errors.New("no camera feed connected")
	// ErrNotAcquired is returned when frames are pulled without an
	// active acquisition.
	ErrNotAcquired = errors.New("camera feed not acquired")
	// ErrNoFrame is returned when no fresh frame is buffered.
	ErrNoFrame = errors.New("no recent frame available")
)

// Source is the acquire/pull/release lifecycle the capture loop drives.
// Acquire must be paired with Release on every exit path.
type Source interface {
	Acquire(ctx context.Context) error
	Frame(ctx context.Context) ([]byte, error)
	Release()
}

// Feed buffers the most recent frame published by a connected browser.
type Feed struct {
	mu         sync.Mutex
	publishers int
	acquired   bool
	frame      []byte
	frameAt    time.Time
	maxAge     time.Duration
	now        func() time.Time
}

// NewFeed creates a feed that refuses frames older than maxAge.
func NewFeed(maxAge time.Duration) *Feed {
	if maxAge <= 0 {
		maxAge = 3 * time.Second
	}
	return &Feed{maxAge: maxAge, now: time.Now}
}

// AddPublisher registers a connected frame publisher.
func (f *Feed) AddPublisher() {
	f.mu.Lock()
	f.publishers++
	f.mu.Unlock()
}

// RemovePublisher unregisters a publisher and drops the buffered frame
// when the last one disconnects.
func (f *Feed) RemovePublisher() {
	f.mu.Lock()
	if f.publishers > 0 {
		f.publishers--
	}
	if f.publishers == 0 {
		f.frame = nil
	}
	f.mu.Unlock()
}

// Publish stores the latest frame. Older frames are simply replaced;
// the loop only ever wants the most recent one.
func (f *Feed) Publish(frame []byte) {
	metrics.FramesReceived.Inc()
	f.mu.Lock()
	f.frame = frame
	f.frameAt = f.now()
	f.mu.Unlock()
}

// Acquire subscribes the capture loop to the feed. It fails when no
// publisher is connected so a start without a camera is visible to the
// operator immediately.
func (f *Feed) Acquire(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishers == 0 {
		return ErrNoPublisher
	}
	f.acquired = true
	return nil
}

// Frame returns the most recent published frame. It refuses to serve
// when released or when the buffered frame has gone stale.
func (f *Feed) Frame(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.acquired {
		return nil, ErrNotAcquired
	}
	if f.frame == nil || f.now().Sub(f.frameAt) > f.maxAge {
		return nil, ErrNoFrame
	}
	out := make([]byte, len(f.frame))
	copy(out, f.frame)
	return out, nil
}

// Release drops the subscription. Safe to call repeatedly.
func (f *Feed) Release() {
	f.mu.Lock()
	f.acquired = false
	f.mu.Unlock()
}
