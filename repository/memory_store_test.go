package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"iris-api/models"
)

func TestMemoryTxIsolatesAndKeepsOutsideWrites(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.CreateNotification(ctx, &models.Notification{NotificationID: "n1", RecipientID: "u1"}); err != nil {
		t.Fatalf("create n1: %v", err)
	}

	inside := make(chan struct{})
	release := make(chan struct{})
	failed := errors.New("abort")
	txDone := make(chan error, 1)
	go func() {
		txDone <- store.Tx(ctx, func(tx Store) error {
			if err := tx.CreateNotification(ctx, &models.Notification{NotificationID: "tx-only", RecipientID: "u1"}); err != nil {
				return err
			}
			close(inside)
			<-release
			return failed
		})
	}()
	<-inside

	if _, err := store.GetNotification(ctx, "tx-only"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("uncommitted row visible outside the transaction: %v", err)
	}
	if n, _ := store.CountUnread(ctx, "u1"); n != 1 {
		t.Fatalf("expected 1 committed unread, got %d", n)
	}

	markDone := make(chan error, 1)
	go func() { markDone <- store.MarkNotificationRead(ctx, "n1") }()
	select {
	case err := <-markDone:
		t.Fatalf("outside write finished while a transaction was open: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	if err := <-txDone; !errors.Is(err, failed) {
		t.Fatalf("expected the body error, got %v", err)
	}
	if err := <-markDone; err != nil {
		t.Fatalf("mark read: %v", err)
	}

	if _, err := store.GetNotification(ctx, "tx-only"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("rolled back row survived: %v", err)
	}
	n1, err := store.GetNotification(ctx, "n1")
	if err != nil || !n1.IsRead {
		t.Fatalf("write made during the transaction was lost: %+v (%v)", n1, err)
	}
	if n, _ := store.CountUnread(ctx, "u1"); n != 0 {
		t.Fatalf("expected no unread after rollback, got %d", n)
	}
}

func TestMemoryTxCommit(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	err := store.Tx(ctx, func(tx Store) error {
		if err := tx.CreateChallenge(ctx, &models.Challenge{ChallengeID: "c1", Status: models.ChallengeDraft}); err != nil {
			return err
		}
		// nested calls join the outer transaction
		return tx.Tx(ctx, func(inner Store) error {
			return inner.UpdateChallengeStatus(ctx, "c1", models.ChallengeDraft, models.ChallengeLive, time.Now())
		})
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
	ch, err := store.GetChallenge(ctx, "c1")
	if err != nil || ch.Status != models.ChallengeLive {
		t.Fatalf("expected committed LIVE challenge, got %+v (%v)", ch, err)
	}
	if err := store.UpdateChallengeStatus(ctx, "c1", models.ChallengeDraft, models.ChallengeLive, time.Now()); !errors.Is(err, ErrStaleStatus) {
		t.Fatalf("expected stale status, got %v", err)
	}
}

func TestMemoryTxCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := NewMemoryStore().Tx(ctx, func(Store) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) || called {
		t.Fatalf("expected cancellation before the body ran, got %v (called=%v)", err, called)
	}
}

func TestMemoryFindUsersByEmailIgnoresCase(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for _, u := range []models.User{
		{UserID: "u1", Email: "Milo@Example.com"},
		{UserID: "u2", Email: "other@example.com"},
	} {
		if err := store.CreateUser(ctx, &u); err != nil {
			t.Fatalf("create user: %v", err)
		}
	}
	users, err := store.FindUsersByEmail(ctx, " milo@EXAMPLE.com ")
	if err != nil || len(users) != 1 || users[0].UserID != "u1" {
		t.Fatalf("expected u1, got %+v (%v)", users, err)
	}
	if users, _ := store.FindUsersByEmail(ctx, "milo@example.co"); len(users) != 0 {
		t.Fatalf("expected no partial matches, got %+v", users)
	}
}
