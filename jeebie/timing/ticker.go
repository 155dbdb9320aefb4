package timing

import "time"

// TickerLimiter uses time.Ticker for simple, consistent frame timing.
type TickerLimiter struct {
	ticker *time.Ticker
	period time.Duration
}

func NewTickerLimiter(fps int) *TickerLimiter {
	period := FrameDuration(fps)
	return &TickerLimiter{
		ticker: time.NewTicker(period),
		period: period,
	}
}

func (t *TickerLimiter) WaitForNextFrame() {
	<-t.ticker.C
}

func (t *TickerLimiter) Reset() {
	t.ticker.Reset(t.period)
}

func (t *TickerLimiter) Stop() {
	t.ticker.Stop()
}
