package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"iris-api/models"
	"iris-api/repository"
)

func TestSubmitIdeaNotifiesReportingManager(t *testing.T) {
	f := newFixture(t)
	idea := f.submitIdea(t)

	if idea.Status != models.IdeaSubmittedRM {
		t.Fatalf("expected %s, got %s", models.IdeaSubmittedRM, idea.Status)
	}
	if idea.IdeatorID != f.ideator.UserID {
		t.Fatalf("expected ideator %s, got %s", f.ideator.UserID, idea.IdeatorID)
	}
	if got := f.unread(t, f.rm.UserID); got != 1 {
		t.Fatalf("expected 1 unread notification for the RM, got %d", got)
	}
	notes, err := f.registry.Notifications.List(context.Background(), f.rm.UserID, true)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if !strings.Contains(notes[0].Message, "Ida Ideator") || notes[0].Link == nil || *notes[0].Link != linkRMDashboard {
		t.Fatalf("unexpected RM notification: %+v", notes[0])
	}
	if got := f.push.recipients(); len(got) != 1 || got[0] != f.rm.UserID {
		t.Fatalf("expected one push to the RM, got %v", got)
	}
	if !f.events.has(EventIdeaSubmitted) {
		t.Fatalf("expected %s event", EventIdeaSubmitted)
	}

	history, err := f.registry.Ideas.History(context.Background(), idea.IdeaID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].PreviousStatus != nil || history[0].NewStatus != string(models.IdeaSubmittedRM) {
		t.Fatalf("unexpected history: %+v", history)
	}
}

func TestSubmitIdeaWithoutReportingManagerSkipsNotification(t *testing.T) {
	f := newFixture(t)
	idea, err := f.registry.Ideas.Submit(context.Background(), f.other, f.ideaInput())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if idea.Status != models.IdeaSubmittedRM {
		t.Fatalf("expected %s, got %s", models.IdeaSubmittedRM, idea.Status)
	}
	if got := f.push.recipients(); len(got) != 0 {
		t.Fatalf("expected no notifications, got %v", got)
	}
}

func TestSubmitIdeaValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*SubmitIdeaInput)
	}{
		{"blank proposed idea", func(in *SubmitIdeaInput) { in.ProposedIdea = "   " }},
		{"null bytes only", func(in *SubmitIdeaInput) { in.BusinessValue = "\x00\x00" }},
		{"null bytes around spaces", func(in *SubmitIdeaInput) { in.Assumptions = "\x00 \x00" }},
		{"missing key risks", func(in *SubmitIdeaInput) { in.KeyRisks = "" }},
		{"missing category", func(in *SubmitIdeaInput) { in.CategoryID = 0 }},
		{"unknown category", func(in *SubmitIdeaInput) { in.CategoryID = 9999 }},
		{"unknown subcategory", func(in *SubmitIdeaInput) { in.SubCategoryID = 9999 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := f.ideaInput()
			tc.mutate(&in)
			_, err := f.registry.Ideas.Submit(ctx, f.ideator, in)
			assertErrorIs(t, err, ErrValidation)
		})
	}

	if n, _ := f.store.CountIdeas(ctx); n != 0 {
		t.Fatalf("expected no ideas stored, got %d", n)
	}
}

func TestSubmitIdeaRejectsSubcategoryFromOtherCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cats, _ := f.store.ListCategories(ctx)
	var foreign uint
	for _, c := range cats {
		if c.ID == f.categoryID {
			continue
		}
		subs, _ := f.store.ListSubCategories(ctx, c.ID)
		foreign = subs[0].ID
		break
	}

	in := f.ideaInput()
	in.SubCategoryID = foreign
	_, err := f.registry.Ideas.Submit(ctx, f.ideator, in)
	assertErrorIs(t, err, ErrValidation)
}

func TestSubmitIdeaRequiresIdentity(t *testing.T) {
	f := newFixture(t)
	_, err := f.registry.Ideas.Submit(context.Background(), Identity{}, f.ideaInput())
	assertErrorIs(t, err, ErrUnauthorized)
}

func TestIdeaFullApprovalPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	idea := f.submitIdea(t)

	approved, err := f.registry.Ideas.Evaluate(ctx, f.rm, idea.IdeaID, EvaluationInput{
		Role: ReviewerRM, Action: ActionApprove, IsDesirable: true, IsFeasible: true, Remarks: "Worth a pilot",
	})
	if err != nil {
		t.Fatalf("RM approve: %v", err)
	}
	if approved.Status != models.IdeaApprovedRM {
		t.Fatalf("expected %s, got %s", models.IdeaApprovedRM, approved.Status)
	}
	if got := f.unread(t, f.ideator.UserID); got != 1 {
		t.Fatalf("expected ideator to be notified once, got %d", got)
	}
	if got := f.unread(t, f.ibu.UserID); got != 1 {
		t.Fatalf("expected IBU head to be notified once, got %d", got)
	}

	pending, err := f.registry.Ideas.Pending(ctx, ReviewerIBU)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 || pending[0].IdeaID != idea.IdeaID {
		t.Fatalf("expected idea in IBU queue, got %+v", pending)
	}

	final, err := f.registry.Ideas.Evaluate(ctx, f.ibu, idea.IdeaID, EvaluationInput{
		Role: ReviewerIBU, Action: ActionApprove, IsViable: true,
	})
	if err != nil {
		t.Fatalf("IBU approve: %v", err)
	}
	if final.Status != models.IdeaApprovedIBU {
		t.Fatalf("expected %s, got %s", models.IdeaApprovedIBU, final.Status)
	}
	if got := f.unread(t, f.ideator.UserID); got != 2 {
		t.Fatalf("expected ideator to have 2 unread, got %d", got)
	}

	evals, err := f.registry.Ideas.Evaluations(ctx, idea.IdeaID)
	if err != nil {
		t.Fatalf("evaluations: %v", err)
	}
	if len(evals) != 2 || evals[0].EvaluatorRole != "RM" || evals[1].EvaluatorRole != "IBU" {
		t.Fatalf("unexpected evaluations: %+v", evals)
	}
	if evals[0].Remarks == nil || *evals[0].Remarks != "Worth a pilot" || !evals[0].IsDesirable || evals[0].IsViable {
		t.Fatalf("unexpected RM evaluation: %+v", evals[0])
	}

	history, err := f.registry.Ideas.History(ctx, idea.IdeaID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	want := []string{"SUBMITTED_RM", "APPROVED_RM", "APPROVED_IBU"}
	if len(history) != len(want) {
		t.Fatalf("expected %d history entries, got %d", len(want), len(history))
	}
	for i, h := range history {
		if h.NewStatus != want[i] {
			t.Fatalf("history[%d]: expected %s, got %s", i, want[i], h.NewStatus)
		}
	}
	if history[2].PreviousStatus == nil || *history[2].PreviousStatus != "APPROVED_RM" {
		t.Fatalf("expected previous status APPROVED_RM, got %v", history[2].PreviousStatus)
	}
}

func TestRMReworkAndRejectNotifyOnlyIdeator(t *testing.T) {
	for _, action := range []ReviewAction{ActionRework, ActionReject} {
		t.Run(string(action), func(t *testing.T) {
			f := newFixture(t)
			idea := f.submitIdea(t)
			got, err := f.registry.Ideas.Evaluate(context.Background(), f.rm, idea.IdeaID, EvaluationInput{Role: ReviewerRM, Action: action})
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if !IsTerminal(got.Status) {
				t.Fatalf("expected terminal status, got %s", got.Status)
			}
			if n := f.unread(t, f.ibu.UserID); n != 0 {
				t.Fatalf("IBU head should not be notified, got %d", n)
			}
			if n := f.unread(t, f.ideator.UserID); n != 1 {
				t.Fatalf("expected ideator notification, got %d", n)
			}
		})
	}
}

func TestEvaluateRejectsWrongReviewer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	idea := f.submitIdea(t)

	_, err := f.registry.Ideas.Evaluate(ctx, f.other, idea.IdeaID, EvaluationInput{Role: ReviewerRM, Action: ActionApprove})
	assertErrorIs(t, err, ErrForbidden)

	_, err = f.registry.Ideas.Evaluate(ctx, f.rm, idea.IdeaID, EvaluationInput{Role: ReviewerIBU, Action: ActionApprove})
	assertErrorIs(t, err, ErrForbidden)

	stored, _ := f.registry.Ideas.Get(ctx, idea.IdeaID)
	if stored.Status != models.IdeaSubmittedRM {
		t.Fatalf("status should be unchanged, got %s", stored.Status)
	}
}

func TestEvaluateRejectsOutOfOrderTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	idea := f.submitIdea(t)

	_, err := f.registry.Ideas.Evaluate(ctx, f.ibu, idea.IdeaID, EvaluationInput{Role: ReviewerIBU, Action: ActionApprove})
	assertErrorIs(t, err, ErrInvalidTransition)

	if _, err := f.registry.Ideas.Evaluate(ctx, f.rm, idea.IdeaID, EvaluationInput{Role: ReviewerRM, Action: ActionReject}); err != nil {
		t.Fatalf("reject: %v", err)
	}
	_, err = f.registry.Ideas.Evaluate(ctx, f.rm, idea.IdeaID, EvaluationInput{Role: ReviewerRM, Action: ActionApprove})
	assertErrorIs(t, err, ErrInvalidTransition)

	evals, _ := f.registry.Ideas.Evaluations(ctx, idea.IdeaID)
	if len(evals) != 1 {
		t.Fatalf("expected only the successful evaluation to be stored, got %d", len(evals))
	}
}

func TestEvaluateRejectsUnknownRoleAndAction(t *testing.T) {
	f := newFixture(t)
	idea := f.submitIdea(t)

	_, err := f.registry.Ideas.Evaluate(context.Background(), f.rm, idea.IdeaID, EvaluationInput{Role: "CEO", Action: ActionApprove})
	assertErrorIs(t, err, ErrValidation)
	_, err = f.registry.Ideas.Evaluate(context.Background(), f.rm, idea.IdeaID, EvaluationInput{Role: ReviewerRM, Action: "MAYBE"})
	assertErrorIs(t, err, ErrValidation)
}

func TestEvaluateUnknownIdea(t *testing.T) {
	f := newFixture(t)
	_, err := f.registry.Ideas.Evaluate(context.Background(), f.rm, "missing", EvaluationInput{Role: ReviewerRM, Action: ActionApprove})
	assertErrorIs(t, err, ErrNotFound)
}

// staleIdeaStore simulates a concurrent reviewer winning the race between
// the read and the compare-and-set.
type staleIdeaStore struct {
	repository.Store
}

func (s staleIdeaStore) Tx(ctx context.Context, fn func(repository.Store) error) error {
	return s.Store.Tx(ctx, func(tx repository.Store) error {
		return fn(staleIdeaStore{tx})
	})
}

func (staleIdeaStore) UpdateIdeaStatus(context.Context, string, models.IdeaStatus, models.IdeaStatus, time.Time) error {
	return repository.ErrStaleStatus
}

func TestEvaluateStaleStatusRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	idea := f.submitIdea(t)

	ideas := NewIdeaService(staleIdeaStore{f.store}, f.registry.Notifications, Options{})
	_, err := ideas.Evaluate(ctx, f.rm, idea.IdeaID, EvaluationInput{Role: ReviewerRM, Action: ActionApprove})
	assertErrorIs(t, err, ErrInvalidTransition)

	evals, _ := f.store.ListEvaluations(ctx, idea.IdeaID)
	if len(evals) != 0 {
		t.Fatalf("expected no evaluation after a lost race, got %d", len(evals))
	}
	if n := f.unread(t, f.ideator.UserID); n != 0 {
		t.Fatalf("expected no ideator notification after a lost race, got %d", n)
	}
}

func TestEvaluateToStatusResolvesRoleAndAction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	idea := f.submitIdea(t)

	got, err := f.registry.Ideas.EvaluateToStatus(ctx, f.rm, idea.IdeaID, models.IdeaReworkRM, "Add numbers")
	if err != nil {
		t.Fatalf("evaluate to status: %v", err)
	}
	if got.Status != models.IdeaReworkRM {
		t.Fatalf("expected %s, got %s", models.IdeaReworkRM, got.Status)
	}

	_, err = f.registry.Ideas.EvaluateToStatus(ctx, f.rm, idea.IdeaID, models.IdeaSubmittedRM, "")
	assertErrorIs(t, err, ErrValidation)
}

func TestListIdeasFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.submitIdea(t)
	f.now = f.now.Add(time.Minute)
	if _, err := f.registry.Ideas.Submit(ctx, f.other, f.ideaInput()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := f.registry.Ideas.Evaluate(ctx, f.rm, first.IdeaID, EvaluationInput{Role: ReviewerRM, Action: ActionApprove}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	mine, err := f.registry.Ideas.List(ctx, repository.IdeaFilter{IdeatorID: f.ideator.UserID})
	if err != nil || len(mine) != 1 {
		t.Fatalf("expected 1 idea for ideator, got %d (%v)", len(mine), err)
	}
	rmQueue, err := f.registry.Ideas.Pending(ctx, ReviewerRM)
	if err != nil || len(rmQueue) != 1 || rmQueue[0].IdeatorID != f.other.UserID {
		t.Fatalf("unexpected RM queue: %+v (%v)", rmQueue, err)
	}
	both, err := f.registry.Ideas.List(ctx, repository.IdeaFilter{Statuses: []models.IdeaStatus{models.IdeaSubmittedRM, models.IdeaApprovedRM}})
	if err != nil || len(both) != 2 {
		t.Fatalf("expected 2 ideas, got %d (%v)", len(both), err)
	}
	if !both[0].CreatedAt.After(both[1].CreatedAt) {
		t.Fatalf("expected newest first")
	}
}
