package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"iris-api/models"
	"iris-api/repository"
)

type recordingPush struct {
	mu   sync.Mutex
	sent []models.Notification
	err  error
}

func (p *recordingPush) Publish(_ context.Context, n models.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, n)
	return p.err
}

func (p *recordingPush) recipients() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.sent))
	for _, n := range p.sent {
		out = append(out, n.RecipientID)
	}
	return out
}

type sentMail struct {
	to      []string
	subject string
	body    string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *recordingMailer) Send(to []string, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type recordingEvents struct {
	mu   sync.Mutex
	keys []string
}

func (e *recordingEvents) Publish(routingKey string, _ any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.keys = append(e.keys, routingKey)
	return nil
}

func (e *recordingEvents) has(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, k := range e.keys {
		if k == key {
			return true
		}
	}
	return false
}

type rejectingRunner struct{}

func (rejectingRunner) Submit(func()) error { return errors.New("pool overloaded") }

type fixture struct {
	store    *repository.MemoryStore
	registry *Registry
	push     *recordingPush
	mailer   *recordingMailer
	events   *recordingEvents
	now      time.Time

	ideator Identity
	rm      Identity
	ibu     Identity
	owner   Identity
	mentor  Identity
	other   Identity

	categoryID    uint
	subCategoryID uint
	parameters    []models.ReviewParameter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		store:  repository.NewMemoryStore(),
		push:   &recordingPush{},
		mailer: &recordingMailer{},
		events: &recordingEvents{},
		now:    time.Date(2025, 3, 1, 10, 0, 0, 0, time.Local),
	}
	if err := repository.SeedDefaults(ctx, f.store); err != nil {
		t.Fatalf("seed defaults: %v", err)
	}

	f.ideator = f.addUser(t, "u-ideator", "Ida Ideator", "ida@example.com")
	f.rm = f.addUser(t, "u-rm", "Ravi Manager", "ravi@example.com")
	f.ibu = f.addUser(t, "u-ibu", "Iris Head", "iris.head@example.com")
	f.owner = f.addUser(t, "u-owner", "Olga Owner", "olga@example.com")
	f.mentor = f.addUser(t, "u-mentor", "Milo Mentor", "milo@example.com")
	f.other = f.addUser(t, "u-other", "Otto Other", "otto@example.com")

	rmID := f.rm.UserID
	if err := f.store.SetEmployeeDetail(ctx, &models.EmployeeDetail{UserID: f.ideator.UserID, ReportingManagerID: &rmID}); err != nil {
		t.Fatalf("set employee detail: %v", err)
	}
	if err := f.store.AssignRole(ctx, f.ibu.UserID, models.RoleIBUHead); err != nil {
		t.Fatalf("assign role: %v", err)
	}
	if err := f.store.AssignRole(ctx, f.owner.UserID, models.RoleChallengeOwner); err != nil {
		t.Fatalf("assign role: %v", err)
	}

	cats, err := f.store.ListCategories(ctx)
	if err != nil || len(cats) == 0 {
		t.Fatalf("list categories: %v (%d)", err, len(cats))
	}
	f.categoryID = cats[0].ID
	subs, err := f.store.ListSubCategories(ctx, f.categoryID)
	if err != nil || len(subs) == 0 {
		t.Fatalf("list subcategories: %v (%d)", err, len(subs))
	}
	f.subCategoryID = subs[0].ID
	if f.parameters, err = f.store.ListReviewParameters(ctx, true); err != nil {
		t.Fatalf("list review parameters: %v", err)
	}

	f.registry = NewRegistry(f.store,
		NotificationDeps{Push: f.push, Mailer: f.mailer, LinkBase: "https://iris.example.com"},
		Options{Events: f.events, Clock: func() time.Time { return f.now }})
	return f
}

func (f *fixture) addUser(t *testing.T, id, name, email string) Identity {
	t.Helper()
	u := models.User{UserID: id, FullName: name, Email: email, UserType: models.UserTypeInternal, CreatedAt: f.now}
	if err := f.store.CreateUser(context.Background(), &u); err != nil {
		t.Fatalf("create user %s: %v", id, err)
	}
	return Identity{UserID: id, FullName: name, Email: email}
}

func (f *fixture) ideaInput() SubmitIdeaInput {
	return SubmitIdeaInput{
		CategoryID:       f.categoryID,
		SubCategoryID:    f.subCategoryID,
		ProposedIdea:     "Automate the monthly timesheet reconciliation",
		BusinessValue:    "Frees two days of finance effort each month",
		MonetaryValue:    "About 20k per year",
		NonMonetaryValue: "Fewer late corrections",
		Assumptions:      "Timesheet export stays stable",
		KeyRisks:         "Edge cases in overtime rules",
	}
}

func (f *fixture) submitIdea(t *testing.T) *models.GrassrootIdea {
	t.Helper()
	idea, err := f.registry.Ideas.Submit(context.Background(), f.ideator, f.ideaInput())
	if err != nil {
		t.Fatalf("submit idea: %v", err)
	}
	return idea
}

func (f *fixture) draftInput() ChallengeDraftInput {
	return ChallengeDraftInput{
		Title:           "Reduce onboarding time",
		Description:     "Ideas to get new joiners productive in their first week",
		StartDate:       f.now.AddDate(0, 0, -1),
		EndDate:         f.now.AddDate(0, 0, 30),
		Round1EvalStart: f.now.AddDate(0, 0, 31),
		Round1EvalEnd:   f.now.AddDate(0, 0, 40),
		Keywords:        "onboarding, productivity",
		Visibility:      models.VisibilityPublic,
		TargetAudience:  models.AudienceInternal,
	}
}

func (f *fixture) createDraft(t *testing.T) *models.Challenge {
	t.Helper()
	ch, err := f.registry.Challenges.CreateDraft(context.Background(), f.owner, f.draftInput())
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	return ch
}

func (f *fixture) addPanel(t *testing.T, challengeID string, round int, name string) *models.ChallengePanel {
	t.Helper()
	p, err := f.registry.Challenges.AddPanel(context.Background(), f.owner, PanelInput{
		ChallengeID: challengeID, Round: round, Name: name,
	})
	if err != nil {
		t.Fatalf("add panel %q: %v", name, err)
	}
	return p
}

func (f *fixture) unread(t *testing.T, userID string) int64 {
	t.Helper()
	n, err := f.registry.Notifications.UnreadCount(context.Background(), userID)
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	return n
}

func assertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected error matching %v, got %v", target, err)
	}
}
