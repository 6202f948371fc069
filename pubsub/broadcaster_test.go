package pubsub

import (
	"context"
	"testing"
	"time"

	"iris-api/models"
)

func TestLocalBroadcasterDeliversPerRecipient(t *testing.T) {
	b := NewLocalBroadcaster()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	alice, _ := b.Subscribe(ctx, "alice")
	bob, _ := b.Subscribe(ctx, "bob")

	if err := b.Publish(ctx, models.Notification{NotificationID: "n1", RecipientID: "alice"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	select {
	case n := <-alice:
		if n.NotificationID != "n1" {
			t.Fatalf("unexpected notification %+v", n)
		}
	case <-time.After(time.Second):
		t.Fatal("alice did not receive the notification")
	}
	select {
	case n := <-bob:
		t.Fatalf("bob received someone else's notification %+v", n)
	default:
	}
}

func TestLocalBroadcasterUnsubscribesOnCancel(t *testing.T) {
	b := NewLocalBroadcaster()
	ctx, cancel := context.WithCancel(context.Background())
	ch, _ := b.Subscribe(ctx, "alice")
	if b.Subscribers("alice") != 1 {
		t.Fatalf("expected 1 subscriber")
	}

	cancel()
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected the channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("channel was not closed after cancel")
	}
	if n := b.Subscribers("alice"); n != 0 {
		t.Fatalf("expected no subscribers, got %d", n)
	}
	// Publishing to nobody is fine.
	if err := b.Publish(context.Background(), models.Notification{RecipientID: "alice"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
}

func TestLocalBroadcasterDropsForSlowSubscribers(t *testing.T) {
	b := NewLocalBroadcaster()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, _ := b.Subscribe(ctx, "alice")

	for i := 0; i < subscriberBuffer+5; i++ {
		if err := b.Publish(ctx, models.Notification{RecipientID: "alice"}); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}
	if len(ch) != subscriberBuffer {
		t.Fatalf("expected a full buffer of %d, got %d", subscriberBuffer, len(ch))
	}
}

func TestChannelFor(t *testing.T) {
	if got := channelFor("u-1"); got != "iris:notifications:u-1" {
		t.Fatalf("unexpected channel %s", got)
	}
}
