package client

import (
	"context"
	"time"
)

// DefaultPollInterval matches the refresh rate of the notification badge.
const DefaultPollInterval = 30 * time.Second

type UnreadCounter interface {
	UnreadCount(ctx context.Context) (int64, error)
}

// UnreadPoller refreshes the unread notification count on an interval
// until its context is cancelled.
type UnreadPoller struct {
	source   UnreadCounter
	interval time.Duration
	onCount  func(int64)
	onError  func(error)
}

// NewUnreadPoller polls source every interval (DefaultPollInterval when
// interval is not positive) and reports each count to onCount.
func NewUnreadPoller(source UnreadCounter, interval time.Duration, onCount func(int64)) *UnreadPoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &UnreadPoller{
		source:   source,
		interval: interval,
		onCount:  onCount,
		onError:  func(error) {},
	}
}

// OnError sets a handler for failed polls. Failures never stop the poller.
func (p *UnreadPoller) OnError(fn func(error)) *UnreadPoller {
	if fn != nil {
		p.onError = fn
	}
	return p
}

// Run polls once immediately and then on every tick. It blocks until ctx
// is cancelled and returns ctx.Err().
func (p *UnreadPoller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.poll(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *UnreadPoller) poll(ctx context.Context) {
	n, err := p.source.UnreadCount(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.onError(err)
		}
		return
	}
	p.onCount(n)
}
