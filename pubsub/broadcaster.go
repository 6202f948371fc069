// Package pubsub relays committed notifications to live subscribers, backing
// the notification stream endpoint.
package pubsub

import (
	"context"
	"sync"

	"iris-api/models"
)

// Hub is both ends of the push channel.
type Hub interface {
	Publish(ctx context.Context, n models.Notification) error
	Subscribe(ctx context.Context, userID string) (<-chan models.Notification, error)
}

const subscriberBuffer = 16

// LocalBroadcaster is an in-process Hub used when Redis is not configured.
// Slow subscribers miss events rather than block publishers.
type LocalBroadcaster struct {
	mu   sync.RWMutex
	subs map[string]map[chan models.Notification]struct{}
}

func NewLocalBroadcaster() *LocalBroadcaster {
	return &LocalBroadcaster{subs: map[string]map[chan models.Notification]struct{}{}}
}

func (b *LocalBroadcaster) Publish(_ context.Context, n models.Notification) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs[n.RecipientID] {
		select {
		case ch <- n:
		default:
		}
	}
	return nil
}

// Subscribe registers a listener for userID until ctx is cancelled, at
// which point the returned channel is closed.
func (b *LocalBroadcaster) Subscribe(ctx context.Context, userID string) (<-chan models.Notification, error) {
	ch := make(chan models.Notification, subscriberBuffer)
	b.mu.Lock()
	if b.subs[userID] == nil {
		b.subs[userID] = map[chan models.Notification]struct{}{}
	}
	b.subs[userID][ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs[userID], ch)
		if len(b.subs[userID]) == 0 {
			delete(b.subs, userID)
		}
		b.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}

// Subscribers reports how many listeners userID has.
func (b *LocalBroadcaster) Subscribers(userID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[userID])
}
