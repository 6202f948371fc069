package services

import (
	"context"
	"testing"

	"iris-api/models"
	"iris-api/repository"
)

func (f *fixture) liveChallenge(t *testing.T) *models.Challenge {
	t.Helper()
	ctx := context.Background()
	ch := f.createDraft(t)
	panel := f.addPanel(t, ch.ChallengeID, 1, "Tech panel")
	if _, err := f.registry.Challenges.AssignMentor(ctx, f.owner, panel.PanelID, f.mentor.Email); err != nil {
		t.Fatalf("assign mentor: %v", err)
	}
	live, err := f.registry.Challenges.Finalize(ctx, f.owner, ch.ChallengeID)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	return live
}

func challengeIdeaInput() ChallengeIdeaInput {
	return ChallengeIdeaInput{
		Title:            "Buddy system for new joiners",
		ProblemStatement: "New joiners wait days for answers",
		ProposedSolution: "Pair every joiner with a buddy for two weeks",
		Risks:            "Buddy fatigue",
		InnovationType:   "incremental",
	}
}

func TestSubmitChallengeIdea(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ch := f.liveChallenge(t)
	ownerBefore := f.unread(t, f.owner.UserID)
	mentorBefore := f.unread(t, f.mentor.UserID)

	in := challengeIdeaInput()
	in.CoIdeators = []string{"OTTO@example.com", "otto@example.com", "ida@example.com", "nobody@example.com", " "}
	out, err := f.registry.Submissions.Submit(ctx, f.ideator, ch.ChallengeID, in)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if out.Status != models.ChallengeIdeaSubmitted || out.SharingScope != models.SharingNone || out.SubmitterID != f.ideator.UserID {
		t.Fatalf("unexpected idea %+v", out.ChallengeIdea)
	}
	if out.Detail == nil || out.Detail.InnovationType != models.InnovationIncremental {
		t.Fatalf("unexpected detail %+v", out.Detail)
	}
	if len(out.CoIdeators) != 1 || out.CoIdeators[0].UserID != f.other.UserID {
		t.Fatalf("expected otto as the only co-ideator, got %+v", out.CoIdeators)
	}
	if len(out.Skipped) != 1 || out.Skipped[0] != "nobody@example.com" {
		t.Fatalf("unexpected skipped emails %v", out.Skipped)
	}
	if out.PointsAwarded != SubmissionPoints {
		t.Fatalf("expected %d points, got %d", SubmissionPoints, out.PointsAwarded)
	}

	if n := f.unread(t, f.owner.UserID); n != ownerBefore+1 {
		t.Fatalf("expected the owner to be notified once, got %d new", n-ownerBefore)
	}
	if n := f.unread(t, f.mentor.UserID); n != mentorBefore+1 {
		t.Fatalf("expected the mentor to be notified once, got %d new", n-mentorBefore)
	}
	if !f.events.has(EventChallengeIdea) {
		t.Fatalf("expected %s event", EventChallengeIdea)
	}

	got, err := f.registry.Submissions.Get(ctx, out.IdeaID)
	if err != nil || got.Detail == nil || len(got.CoIdeators) != 1 {
		t.Fatalf("get: %+v (%v)", got, err)
	}
	listed, err := f.registry.Submissions.ListForChallenge(ctx, ch.ChallengeID)
	if err != nil || len(listed) != 1 {
		t.Fatalf("expected 1 idea for the challenge, got %d (%v)", len(listed), err)
	}
}

func TestSubmitChallengeIdeaAccumulatesPoints(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ch := f.liveChallenge(t)

	for i := 0; i < 2; i++ {
		if _, err := f.registry.Submissions.Submit(ctx, f.ideator, ch.ChallengeID, challengeIdeaInput()); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	mine, err := f.registry.Submissions.Mine(ctx, f.ideator)
	if err != nil {
		t.Fatalf("mine: %v", err)
	}
	if len(mine.Ideas) != 2 || mine.TotalPoints != 2*SubmissionPoints {
		t.Fatalf("expected 2 ideas and %d points, got %d and %d", 2*SubmissionPoints, len(mine.Ideas), mine.TotalPoints)
	}
	profile, err := f.registry.Users.Profile(ctx, f.ideator.UserID)
	if err != nil || profile.TotalPoints != 2*SubmissionPoints {
		t.Fatalf("profile points: %+v (%v)", profile, err)
	}

	other, err := f.registry.Submissions.Mine(ctx, f.other)
	if err != nil || len(other.Ideas) != 0 || other.TotalPoints != 0 {
		t.Fatalf("expected nothing for another user, got %+v (%v)", other, err)
	}
}

func TestSubmitChallengeIdeaRequiresLiveChallenge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	draft := f.createDraft(t)

	_, err := f.registry.Submissions.Submit(ctx, f.ideator, draft.ChallengeID, challengeIdeaInput())
	assertErrorIs(t, err, ErrInvalidTransition)

	_, err = f.registry.Submissions.Submit(ctx, f.ideator, "missing", challengeIdeaInput())
	assertErrorIs(t, err, ErrNotFound)

	live := f.liveChallenge(t)
	if _, err := f.registry.Challenges.Complete(ctx, live.ChallengeID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	_, err = f.registry.Submissions.Submit(ctx, f.ideator, live.ChallengeID, challengeIdeaInput())
	assertErrorIs(t, err, ErrInvalidTransition)

	if n, _ := f.store.SumRewardPoints(ctx, f.ideator.UserID); n != 0 {
		t.Fatalf("expected no points for rejected submissions, got %d", n)
	}
	ideas, _ := f.store.ListChallengeIdeas(ctx, repository.ChallengeIdeaFilter{ChallengeID: live.ChallengeID})
	if len(ideas) != 0 {
		t.Fatalf("expected no stored ideas, got %d", len(ideas))
	}
}

func TestSubmitChallengeIdeaValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ch := f.liveChallenge(t)

	tests := []struct {
		name   string
		mutate func(*ChallengeIdeaInput)
	}{
		{"blank title", func(in *ChallengeIdeaInput) { in.Title = " \x00 " }},
		{"missing problem statement", func(in *ChallengeIdeaInput) { in.ProblemStatement = "" }},
		{"missing proposed solution", func(in *ChallengeIdeaInput) { in.ProposedSolution = "\x00" }},
		{"unknown sharing scope", func(in *ChallengeIdeaInput) { in.SharingScope = "WORLD" }},
		{"unknown innovation type", func(in *ChallengeIdeaInput) { in.InnovationType = "RADICAL" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := challengeIdeaInput()
			tc.mutate(&in)
			_, err := f.registry.Submissions.Submit(ctx, f.ideator, ch.ChallengeID, in)
			assertErrorIs(t, err, ErrValidation)
		})
	}

	_, err := f.registry.Submissions.Submit(ctx, Identity{}, ch.ChallengeID, challengeIdeaInput())
	assertErrorIs(t, err, ErrUnauthorized)
}
