// Package timer provides the answer-window countdown service.
package timer

import (
	"sync"
	"time"
)

// Countdown is a cancellable one-second-granularity countdown. One countdown
// may run at a time; Start implicitly cancels any prior run. Expiry fires
// exactly once, after which the run is terminal.
type Countdown struct {
	interval time.Duration

	mu     sync.Mutex
	stopCh chan struct{}
}

// New returns a countdown ticking at one-second granularity.
func New() *Countdown {
	return newCountdown(time.Second)
}

// newCountdown allows tests to compress the tick interval.
func newCountdown(interval time.Duration) *Countdown {
	return &Countdown{interval: interval}
}

// Start begins counting down from seconds. onTick receives the remaining
// seconds after each elapsed interval; onExpire fires once when remaining
// reaches zero. A running countdown is cancelled first.
func (c *Countdown) Start(seconds int, onTick func(remaining int), onExpire func()) {
	c.Cancel()

	c.mu.Lock()
	stop := make(chan struct{})
	c.stopCh = stop
	c.mu.Unlock()

	go c.run(seconds, stop, onTick, onExpire)
}

// Cancel stops ticking and suppresses a pending expiry. Safe to call multiple
// times and after expiry.
func (c *Countdown) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopCh != nil {
		close(c.stopCh)
		c.stopCh = nil
	}
}

func (c *Countdown) run(seconds int, stop chan struct{}, onTick func(int), onExpire func()) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	remaining := seconds
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			remaining--
			if onTick != nil {
				onTick(remaining)
			}
			if remaining > 0 {
				continue
			}
			// Detach before expiring so a late Cancel stays a no-op.
			c.mu.Lock()
			if c.stopCh == stop {
				c.stopCh = nil
			}
			c.mu.Unlock()

			select {
			case <-stop:
				return
			default:
			}
			if onExpire != nil {
				onExpire()
			}
			return
		}
	}
}
