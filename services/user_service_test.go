package services

import (
	"context"
	"testing"

	"iris-api/models"
)

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := models.User{UserID: "u-login", FullName: "Lena Login", Email: "lena@example.com", PasswordHash: hash}
	if err := f.store.CreateUser(ctx, &u); err != nil {
		t.Fatalf("create user: %v", err)
	}

	got, err := f.registry.Users.Authenticate(ctx, " LENA@example.com ", "correct horse", LoginMeta{IPAddress: "10.0.0.1"})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.UserID != "u-login" {
		t.Fatalf("unexpected user %s", got.UserID)
	}

	_, wrongPassword := f.registry.Users.Authenticate(ctx, "lena@example.com", "wrong", LoginMeta{})
	_, unknownEmail := f.registry.Users.Authenticate(ctx, "nobody@example.com", "correct horse", LoginMeta{})
	assertErrorIs(t, wrongPassword, ErrUnauthorized)
	assertErrorIs(t, unknownEmail, ErrUnauthorized)
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Fatalf("expected identical errors, got %q and %q", wrongPassword, unknownEmail)
	}

	_, err = f.registry.Users.Authenticate(ctx, "", "x", LoginMeta{})
	assertErrorIs(t, err, ErrValidation)
}

func TestProfileFlags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		id                 Identity
		manager, ibu, owns bool
	}{
		{f.rm, true, false, false},
		{f.ibu, false, true, false},
		{f.owner, false, false, true},
		{f.ideator, false, false, false},
	}
	for _, tc := range tests {
		p, err := f.registry.Users.Profile(ctx, tc.id.UserID)
		if err != nil {
			t.Fatalf("profile %s: %v", tc.id.UserID, err)
		}
		if p.IsReportingManager != tc.manager || p.IsIBUHead != tc.ibu || p.IsChallengeOwner != tc.owns {
			t.Fatalf("unexpected flags for %s: %+v", tc.id.UserID, p)
		}
	}

	_, err := f.registry.Users.Profile(ctx, "missing")
	assertErrorIs(t, err, ErrNotFound)
}

func TestFindByEmail(t *testing.T) {
	f := newFixture(t)
	users, err := f.registry.Users.FindByEmail(context.Background(), "milo@example.com")
	if err != nil || len(users) != 1 || users[0].UserID != f.mentor.UserID {
		t.Fatalf("unexpected lookup: %+v (%v)", users, err)
	}
	_, err = f.registry.Users.FindByEmail(context.Background(), " ")
	assertErrorIs(t, err, ErrValidation)
}
