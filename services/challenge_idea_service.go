package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"iris-api/models"
	"iris-api/monitor"
	"iris-api/repository"
	"iris-api/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	linkMyIdeas = "/my-ideas/"

	// SubmissionPoints is awarded to the submitter for every challenge idea.
	SubmissionPoints = 5
)

type ChallengeIdeaInput struct {
	Title                    string                `json:"title" validate:"notblank,max=255"`
	IsConfidential           bool                  `json:"is_confidential"`
	SharingScope             models.SharingScope   `json:"sharing_scope" validate:"oneof=CUSTOMER ECOSYSTEM PUBLIC NONE"`
	ProblemStatement         string                `json:"problem_statement" validate:"notblank"`
	ProposedSolution         string                `json:"proposed_solution" validate:"notblank"`
	BusinessValueMonetary    string                `json:"business_value_monetary"`
	BusinessValueNonMonetary string                `json:"business_value_non_monetary"`
	Assumptions              string                `json:"assumptions"`
	Risks                    string                `json:"risks"`
	InnovationType           models.InnovationType `json:"innovation_type" validate:"omitempty,oneof=INCREMENTAL ADJACENT DISRUPTIVE"`
	CoIdeators               []string              `json:"co_ideators" validate:"max=20"`
}

func (in *ChallengeIdeaInput) normalize() {
	for _, f := range []*string{&in.Title, &in.ProblemStatement, &in.ProposedSolution, &in.BusinessValueMonetary, &in.BusinessValueNonMonetary, &in.Assumptions, &in.Risks} {
		*f = utils.SanitizeInput(*f)
	}
	in.SharingScope = models.SharingScope(strings.ToUpper(strings.TrimSpace(string(in.SharingScope))))
	if in.SharingScope == "" {
		in.SharingScope = models.SharingNone
	}
	in.InnovationType = models.InnovationType(strings.ToUpper(strings.TrimSpace(string(in.InnovationType))))
}

// ChallengeIdeaDetail is a challenge idea with its body and co-ideators.
type ChallengeIdeaDetail struct {
	models.ChallengeIdea
	Detail     *models.IdeaDetail `json:"detail,omitempty"`
	CoIdeators []models.CoIdeator `json:"co_ideators"`
}

type ChallengeIdeaSubmission struct {
	ChallengeIdeaDetail
	PointsAwarded int `json:"points_awarded"`
	// Skipped lists co-ideator emails that matched no single user.
	Skipped []string `json:"skipped_co_ideators,omitempty"`
}

// MyIdeas is the submitter's own challenge ideas and reward total.
type MyIdeas struct {
	Ideas       []models.ChallengeIdea `json:"ideas"`
	TotalPoints int64                  `json:"total_points"`
}

type ChallengeIdeaService struct {
	base
	notifier *NotificationService
}

func NewChallengeIdeaService(store repository.Store, notifier *NotificationService, opts Options) *ChallengeIdeaService {
	return &ChallengeIdeaService{base: newBase(store, opts), notifier: notifier}
}

// Submit records an idea against a LIVE challenge, links the co-ideators,
// awards the submitter SubmissionPoints and notifies the challenge owner
// and every mentor on the challenge's panels.
func (s *ChallengeIdeaService) Submit(ctx context.Context, id Identity, challengeID string, in ChallengeIdeaInput) (*ChallengeIdeaSubmission, error) {
	if err := id.require(); err != nil {
		return nil, err
	}
	in.normalize()
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var (
		out   ChallengeIdeaSubmission
		notes []models.Notification
	)
	err := s.store.Tx(ctx, func(tx repository.Store) error {
		// Completion takes the same lock, so no idea lands after the close.
		ch, err := tx.LockChallenge(ctx, challengeID)
		if err != nil {
			return notFoundAs(err, "challenge", challengeID)
		}
		if ch.Status != models.ChallengeLive {
			return &InvalidTransitionError{Entity: "challenge", ID: ch.ChallengeID, From: string(ch.Status)}
		}

		now := s.now()
		out.ChallengeIdea = models.ChallengeIdea{
			IdeaID:         uuid.NewString(),
			Title:          in.Title,
			SubmitterID:    id.UserID,
			ChallengeID:    ch.ChallengeID,
			Status:         models.ChallengeIdeaSubmitted,
			IsConfidential: in.IsConfidential,
			SharingScope:   in.SharingScope,
			SubmittedAt:    now,
			UpdatedAt:      now,
		}
		if err := tx.CreateChallengeIdea(ctx, &out.ChallengeIdea); err != nil {
			return fmt.Errorf("create challenge idea: %w", err)
		}
		out.Detail = &models.IdeaDetail{
			IdeaID:                   out.IdeaID,
			ProblemStatement:         in.ProblemStatement,
			ProposedSolution:         in.ProposedSolution,
			BusinessValueMonetary:    in.BusinessValueMonetary,
			BusinessValueNonMonetary: in.BusinessValueNonMonetary,
			Assumptions:              in.Assumptions,
			Risks:                    in.Risks,
			InnovationType:           in.InnovationType,
		}
		if err := tx.CreateIdeaDetail(ctx, out.Detail); err != nil {
			return fmt.Errorf("create idea detail: %w", err)
		}

		if out.CoIdeators, out.Skipped, err = s.linkCoIdeators(ctx, tx, out.IdeaID, id.UserID, in.CoIdeators); err != nil {
			return err
		}

		reward := models.Reward{
			RewardID:   uuid.NewString(),
			UserID:     id.UserID,
			Points:     SubmissionPoints,
			Reason:     utils.Truncate("Idea submission for "+ch.Title, 255),
			DateEarned: now,
		}
		if err := tx.CreateReward(ctx, &reward); err != nil {
			return fmt.Errorf("award points: %w", err)
		}
		out.PointsAwarded = reward.Points

		entry := models.WorkflowLog{
			LogID:       uuid.NewString(),
			EntityType:  models.EntityChallengeIdea,
			EntityID:    out.IdeaID,
			NewStatus:   string(out.Status),
			ChangedByID: id.ref(),
			ChangedAt:   now,
		}
		if err := tx.CreateWorkflowLog(ctx, &entry); err != nil {
			return fmt.Errorf("write workflow log: %w", err)
		}

		notes, err = s.notifyReviewers(ctx, tx, id, ch, out.Title)
		return err
	})
	if err != nil {
		return nil, err
	}

	monitor.RecordTransition(models.EntityChallengeIdea, string(out.Status))
	s.notifier.Dispatch(ctx, notes...)
	s.publish(EventChallengeIdea, out.ChallengeIdea)
	s.logger.Info("challenge idea submitted",
		zap.String("idea_id", out.IdeaID), zap.String("challenge_id", challengeID),
		zap.Int("co_ideators", len(out.CoIdeators)), zap.Int("skipped", len(out.Skipped)))
	return &out, nil
}

// linkCoIdeators resolves each email to one user. Unknown or ambiguous
// addresses, repeats and the submitter are skipped rather than failing the
// submission.
func (s *ChallengeIdeaService) linkCoIdeators(ctx context.Context, tx repository.Store, ideaID, submitterID string, emails []string) ([]models.CoIdeator, []string, error) {
	linked := []models.CoIdeator{}
	var skipped []string
	seen := map[string]bool{submitterID: true}
	for _, raw := range emails {
		email := strings.TrimSpace(raw)
		if email == "" {
			continue
		}
		users, err := tx.FindUsersByEmail(ctx, email)
		if err != nil {
			return nil, nil, err
		}
		if len(users) != 1 {
			skipped = append(skipped, email)
			continue
		}
		if seen[users[0].UserID] {
			continue
		}
		seen[users[0].UserID] = true
		c := models.CoIdeator{IdeaID: ideaID, UserID: users[0].UserID, AddedAt: s.now()}
		if err := tx.CreateCoIdeator(ctx, &c); err != nil {
			return nil, nil, fmt.Errorf("add co-ideator: %w", err)
		}
		linked = append(linked, c)
	}
	return linked, skipped, nil
}

func (s *ChallengeIdeaService) notifyReviewers(ctx context.Context, tx repository.Store, id Identity, ch *models.Challenge, title string) ([]models.Notification, error) {
	var notes []models.Notification
	notified := map[string]bool{id.UserID: true}
	send := func(recipient, msg string) error {
		if recipient == "" || notified[recipient] {
			return nil
		}
		notified[recipient] = true
		n, err := s.notifier.create(ctx, tx, recipient, id.ref(), msg, linkMyIdeas)
		if err != nil {
			return err
		}
		notes = append(notes, n)
		return nil
	}

	if err := send(ch.CreatedByID, fmt.Sprintf("New idea '%s' submitted for your challenge: %s.", title, ch.Title)); err != nil {
		return nil, err
	}
	panels, err := tx.ListPanels(ctx, ch.ChallengeID)
	if err != nil {
		return nil, err
	}
	for _, p := range panels {
		mentors, err := tx.ListMentors(ctx, p.PanelID)
		if err != nil {
			return nil, err
		}
		for _, m := range mentors {
			msg := fmt.Sprintf("A new idea '%s' has been submitted to challenge '%s' you are mentoring.", title, ch.Title)
			if err := send(m.MentorID, msg); err != nil {
				return nil, err
			}
		}
	}
	return notes, nil
}

func (s *ChallengeIdeaService) Get(ctx context.Context, ideaID string) (*ChallengeIdeaDetail, error) {
	idea, err := s.store.GetChallengeIdea(ctx, ideaID)
	if err != nil {
		return nil, notFoundAs(err, "challenge idea", ideaID)
	}
	out := &ChallengeIdeaDetail{ChallengeIdea: *idea}
	detail, err := s.store.GetIdeaDetail(ctx, ideaID)
	switch {
	case err == nil:
		out.Detail = detail
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}
	if out.CoIdeators, err = s.store.ListCoIdeators(ctx, ideaID); err != nil {
		return nil, err
	}
	return out, nil
}

// ListForChallenge returns a challenge's ideas, newest first.
func (s *ChallengeIdeaService) ListForChallenge(ctx context.Context, challengeID string) ([]models.ChallengeIdea, error) {
	if _, err := s.store.GetChallenge(ctx, challengeID); err != nil {
		return nil, notFoundAs(err, "challenge", challengeID)
	}
	return s.store.ListChallengeIdeas(ctx, repository.ChallengeIdeaFilter{ChallengeID: challengeID})
}

func (s *ChallengeIdeaService) Mine(ctx context.Context, id Identity) (*MyIdeas, error) {
	if err := id.require(); err != nil {
		return nil, err
	}
	ideas, err := s.store.ListChallengeIdeas(ctx, repository.ChallengeIdeaFilter{SubmitterID: id.UserID})
	if err != nil {
		return nil, err
	}
	total, err := s.store.SumRewardPoints(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	if ideas == nil {
		ideas = []models.ChallengeIdea{}
	}
	return &MyIdeas{Ideas: ideas, TotalPoints: total}, nil
}
