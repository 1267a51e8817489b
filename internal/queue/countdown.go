package queue

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Remaining is the time left until until, never negative.
func Remaining(until, now time.Time) time.Duration {
	if d := until.Sub(now); d > 0 {
		return d
	}
	return 0
}

// FormatCountdown renders the time left as HH:MM:SS.
func FormatCountdown(until, now time.Time) string {
	secs := int64(Remaining(until, now) / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
}

// Ticker calls fn once immediately and then every Interval until ctx ends.
type Ticker struct {
	Interval time.Duration
}

func (t Ticker) Run(ctx context.Context, fn func(now time.Time)) {
	interval := t.Interval
	if interval <= 0 {
		interval = time.Second
	}
	fn(time.Now())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			fn(now)
		}
	}
}

// Countdown is a one-shot timer with a visible deadline, used for the
// refresh gate. After Stop the callback never runs.
type Countdown struct {
	mu       sync.Mutex
	deadline time.Time
	timer    *time.Timer
	stopped  bool
}

func NewCountdown(d time.Duration, onDone func()) *Countdown {
	c := &Countdown{deadline: time.Now().Add(d)}
	c.timer = time.AfterFunc(d, func() {
		c.mu.Lock()
		fire := !c.stopped
		c.stopped = true
		c.mu.Unlock()
		if fire && onDone != nil {
			onDone()
		}
	})
	return c
}

func (c *Countdown) Deadline() time.Time {
	return c.deadline
}

func (c *Countdown) Remaining(now time.Time) time.Duration {
	return Remaining(c.deadline, now)
}

// Stop cancels the countdown. It reports whether the callback was still
// pending.
func (c *Countdown) Stop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	pending := !c.stopped
	c.stopped = true
	c.timer.Stop()
	return pending
}
