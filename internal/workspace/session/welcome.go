package session

import (
	"context"
	"time"
)

// startWelcomeLocked types the welcome text into the surface one rune per
// interval. Once the budget elapses the full text is written at once.
func (c *Controller) startWelcomeLocked(gen uint64) {
	w := c.cfg.Welcome
	if w.Text == "" {
		return
	}
	if w.Interval <= 0 {
		c.surface.SetContent(w.Text)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancelWelcome = cancel
	c.wg.Add(1)
	go c.typeWelcome(ctx, gen, []rune(w.Text), w.Interval, w.Budget)
}

func (c *Controller) typeWelcome(ctx context.Context, gen uint64, text []rune, interval, budget time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var deadline <-chan time.Time
	if budget > 0 {
		timer := time.NewTimer(budget)
		defer timer.Stop()
		deadline = timer.C
	}

	for i := 1; ; i++ {
		select {
		case <-ctx.Done():
			return
		case <-deadline:
			i = len(text)
		case <-ticker.C:
		}

		if !c.writeWelcome(gen, string(text[:i])) || i >= len(text) {
			return
		}
	}
}

// writeWelcome reports false once the session has moved past gen.
func (c *Controller) writeWelcome(gen uint64, s string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.gen != gen {
		return false
	}
	c.surface.SetContent(s)
	return true
}
