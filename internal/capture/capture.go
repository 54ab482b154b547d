// Package capture owns the recognition polling cycle: it pulls frames
// from the camera feed on a timer, asks the oracle to identify them, and
// emits one attendance event per successful, non-duplicate recognition.
package capture

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"facemark/internal/camera"
	"facemark/internal/recognize"
)

// State is the explicit capture state. Recognizing doubles as the
// mutual-exclusion flag: at most one oracle call is ever in flight.
type State int

const (
	StateOff State = iota
	StateIdle
	StateRecognizing
	StateMatched
)

func (s State) String() string {
	switch s {
	case StateOff:
		return "off"
	case StateIdle:
		return "idle"
	case StateRecognizing:
		return "recognizing"
	case StateMatched:
		return "matched"
	}
	return "unknown"
}

// ErrRunning is returned when Start is called on a loop that is not off.
var ErrRunning = fmt.Errorf("capture already running")

// Candidates supplies the current roster snapshot for one attempt.
type Candidates func() []recognize.Candidate

// Config carries the loop timings.
type Config struct {
	// Tick is the polling timer period.
	Tick time.Duration
	// Cooldown is the minimum interval between attempts, measured from
	// the end of the previous attempt. It bounds the oracle request
	// rate regardless of tick frequency.
	Cooldown time.Duration
	// Window is the display window entered after a new match.
	Window time.Duration
}

// Loop is the capture state machine. All timers and the duplicate
// suppression memory live here as explicit fields; transitions happen on
// a single goroutine owned by Start.
type Loop struct {
	cam        camera.Source
	rec        recognize.Identifier
	candidates Candidates
	onMatch    func(studentID string)

	tick     time.Duration
	cooldown time.Duration
	window   time.Duration

	mu          sync.Mutex
	state       State
	lastMatched string
	lastAttempt time.Time
	windowUntil time.Time
	stop        chan struct{}
	done        chan struct{}
	cancel      context.CancelFunc
	now         func() time.Time
}

// New builds a stopped loop. onMatch is invoked exactly once per
// successful, non-duplicate recognition, from the loop goroutine.
func New(cam camera.Source, rec recognize.Identifier, candidates Candidates, onMatch func(studentID string), cfg Config) *Loop {
	if cfg.Tick <= 0 {
		cfg.Tick = time.Second
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 5 * time.Second
	}
	if cfg.Window <= 0 {
		cfg.Window = 4 * time.Second
	}
	return &Loop{
		cam:        cam,
		rec:        rec,
		candidates: candidates,
		onMatch:    onMatch,
		tick:       cfg.Tick,
		cooldown:   cfg.Cooldown,
		window:     cfg.Window,
		now:        time.Now,
	}
}

// Start acquires the camera and begins polling. A failed acquisition
// leaves the loop off and is reported to the caller. ctx scopes only
// the acquisition: the loop runs on its own context until Stop, so a
// caller's request context expiring does not tear it down.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != StateOff {
		return ErrRunning
	}
	if err := l.cam.Acquire(ctx); err != nil {
		return fmt.Errorf("acquire camera: %w", err)
	}
	l.state = StateIdle
	l.lastMatched = ""
	l.lastAttempt = time.Time{}
	runCtx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.stop = make(chan struct{})
	l.done = make(chan struct{})
	go l.run(runCtx, l.stop, l.done)
	return nil
}

// Stop tears the loop down: releases the camera, stops the timer, and
// waits for any in-flight attempt to finish. Safe to call repeatedly and
// when already off.
func (l *Loop) Stop() {
	l.mu.Lock()
	stop, done, cancel := l.stop, l.done, l.cancel
	l.stop, l.done, l.cancel = nil, nil, nil
	l.mu.Unlock()
	if stop == nil {
		return
	}
	cancel() // aborts an in-flight oracle call
	close(stop)
	<-done
}

// Status reports the current state and duplicate-suppression memory.
func (l *Loop) Status() (State, string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state, l.lastMatched
}

func (l *Loop) run(ctx context.Context, stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(l.tick)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			l.teardown()
			return
		case <-ctx.Done():
			l.teardown()
			return
		case <-ticker.C:
			if !l.onTick(ctx) {
				return
			}
		}
	}
}

func (l *Loop) teardown() {
	l.mu.Lock()
	l.cam.Release()
	l.state = StateOff
	l.lastMatched = ""
	l.mu.Unlock()
}

// onTick runs one timer cycle. It returns false when the loop cannot
// continue (camera lost for good).
func (l *Loop) onTick(ctx context.Context) bool {
	l.mu.Lock()
	now := l.now()

	// Close an elapsed success window: forget the last match so the
	// same student can be recognized in a later session, and re-arm
	// the camera.
	if l.state == StateMatched && !now.Before(l.windowUntil) {
		l.lastMatched = ""
		if err := l.cam.Acquire(ctx); err != nil {
			log.Printf("capture: camera lost after success window: %v", err)
			l.state = StateOff
			l.mu.Unlock()
			return false
		}
		l.state = StateIdle
	}

	if l.state != StateIdle && l.state != StateMatched {
		l.mu.Unlock()
		return true
	}
	if !l.lastAttempt.IsZero() && now.Sub(l.lastAttempt) < l.cooldown {
		l.mu.Unlock()
		return true
	}
	prev := l.state
	l.state = StateRecognizing
	l.mu.Unlock()

	l.attempt(ctx, prev)
	return true
}

// attempt performs one recognition attempt. It runs on the loop
// goroutine; a slow oracle response is awaited to completion before the
// machine re-arms.
func (l *Loop) attempt(ctx context.Context, prev State) {
	frame, err := l.cam.Frame(ctx)
	if err != nil {
		// No fresh frame (feed idle, or released during the success
		// window). No oracle call happened, so the cooldown is not
		// consumed.
		l.mu.Lock()
		l.state = prev
		l.mu.Unlock()
		return
	}

	res := l.rec.Identify(ctx, frame, l.candidates())

	l.mu.Lock()
	l.lastAttempt = l.now()
	if !res.Matched || res.StudentID == l.lastMatched {
		// Nobody matched, or the person from the immediately
		// preceding match is still in frame.
		l.state = prev
		l.mu.Unlock()
		return
	}

	l.lastMatched = res.StudentID
	l.windowUntil = l.now().Add(l.window)
	l.state = StateMatched
	l.cam.Release()
	l.mu.Unlock()

	l.onMatch(res.StudentID)
}
