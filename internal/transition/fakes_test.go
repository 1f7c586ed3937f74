package transition

import (
	"context"
	"sync"
	"time"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps int
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	c.sleeps++
	return nil
}

type task struct {
	delay   time.Duration
	fn      func()
	fired   bool
	stopped bool
}

type fakeScheduler struct {
	mu    sync.Mutex
	tasks []*task
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &task{delay: d, fn: f}
	s.tasks = append(s.tasks, t)
	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if t.fired || t.stopped {
			return false
		}
		t.stopped = true
		return true
	}
}

// fire runs every pending task on the calling goroutine.
func (s *fakeScheduler) fire() int {
	s.mu.Lock()
	var due []*task
	for _, t := range s.tasks {
		if !t.fired && !t.stopped {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()
	for _, t := range due {
		t.fn()
	}
	return len(due)
}

func (s *fakeScheduler) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.fired && !t.stopped {
			n++
		}
	}
	return n
}

type frameRecorder struct {
	mu     sync.Mutex
	frames [][]Block
}

func (r *frameRecorder) Render(blocks []Block) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, blocks)
}
