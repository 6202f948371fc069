package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"iris-api/models"
	"iris-api/monitor"
	"iris-api/repository"
	"iris-api/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const linkChallenges = "/challenges/"

type ChallengeDraftInput struct {
	Title           string                `json:"title" validate:"notblank,max=255"`
	Description     string                `json:"description" validate:"notblank"`
	StartDate       time.Time             `json:"start_date" validate:"required"`
	EndDate         time.Time             `json:"end_date" validate:"required"`
	Round1EvalStart time.Time             `json:"round1_eval_start" validate:"required"`
	Round1EvalEnd   time.Time             `json:"round1_eval_end" validate:"required"`
	Round2EvalStart *time.Time            `json:"round2_eval_start"`
	Round2EvalEnd   *time.Time            `json:"round2_eval_end"`
	Keywords        string                `json:"keywords" validate:"max=255"`
	KeyInsights     string                `json:"key_insights"`
	ExpectedOutcome string                `json:"expected_outcome"`
	Visibility      models.Visibility     `json:"visibility" validate:"oneof=PUBLIC PRIVATE"`
	TargetAudience  models.TargetAudience `json:"target_audience" validate:"oneof=INTERNAL EXTERNAL BOTH"`
	IsFeatured      bool                  `json:"is_featured"`
}

type PanelInput struct {
	ChallengeID string `json:"challenge" validate:"notblank"`
	Round       int    `json:"round_number"`
	Name        string `json:"panel_name" validate:"notblank,max=100"`
	Description string `json:"description"`
}

type ParameterWeight struct {
	ParameterID uint `json:"parameter"`
	Weightage   int  `json:"weightage"`
}

// PanelDetail is a panel together with its mentors.
type PanelDetail struct {
	models.ChallengePanel
	Mentors []models.ChallengeMentor `json:"mentors"`
}

type ChallengeDetail struct {
	models.Challenge
	Panels           []PanelDetail                     `json:"panels"`
	ReviewParameters []models.ChallengeReviewParameter `json:"review_parameters"`
}

// MentorAssignment is the result of AssignMentor. Created is false when
// the mentor was already on the panel.
type MentorAssignment struct {
	models.ChallengeMentor
	Mentor  models.User `json:"mentor_user"`
	Created bool        `json:"created"`
}

type ChallengeService struct {
	base
	notifier *NotificationService
}

func NewChallengeService(store repository.Store, notifier *NotificationService, opts Options) *ChallengeService {
	return &ChallengeService{base: newBase(store, opts), notifier: notifier}
}

// CreateDraft is phase 1 of the creation wizard.
func (s *ChallengeService) CreateDraft(ctx context.Context, id Identity, in ChallengeDraftInput) (*models.Challenge, error) {
	if err := id.require(); err != nil {
		return nil, err
	}
	in.Visibility = models.Visibility(strings.ToUpper(strings.TrimSpace(string(in.Visibility))))
	in.TargetAudience = models.TargetAudience(strings.ToUpper(strings.TrimSpace(string(in.TargetAudience))))
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := validateSchedule(in); err != nil {
		return nil, err
	}

	var ch models.Challenge
	err := s.store.Tx(ctx, func(tx repository.Store) error {
		ok, err := tx.UserHasRole(ctx, id.UserID, models.RoleChallengeOwner)
		if err != nil {
			return err
		}
		if !ok {
			return &ForbiddenError{Reason: "only a Challenge Owner can create challenges"}
		}
		now := s.now()
		ch = models.Challenge{
			ChallengeID:     uuid.NewString(),
			Title:           strings.TrimSpace(in.Title),
			Description:     strings.TrimSpace(in.Description),
			StartDate:       in.StartDate,
			EndDate:         in.EndDate,
			Round1EvalStart: in.Round1EvalStart,
			Round1EvalEnd:   in.Round1EvalEnd,
			Round2EvalStart: in.Round2EvalStart,
			Round2EvalEnd:   in.Round2EvalEnd,
			Keywords:        strings.TrimSpace(in.Keywords),
			KeyInsights:     strings.TrimSpace(in.KeyInsights),
			ExpectedOutcome: strings.TrimSpace(in.ExpectedOutcome),
			Visibility:      in.Visibility,
			TargetAudience:  in.TargetAudience,
			Status:          models.ChallengeDraft,
			IsFeatured:      in.IsFeatured,
			CreatedByID:     id.UserID,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := tx.CreateChallenge(ctx, &ch); err != nil {
			return fmt.Errorf("create challenge: %w", err)
		}
		return s.logTransition(ctx, tx, ch.ChallengeID, "", ch.Status, id.ref(), "")
	})
	if err != nil {
		return nil, err
	}
	monitor.RecordTransition(models.EntityChallenge, string(ch.Status))
	s.publish(EventChallengeCreated, ch)
	s.logger.Info("challenge draft created", zap.String("challenge_id", ch.ChallengeID), zap.String("created_by", id.UserID))
	return &ch, nil
}

func validateSchedule(in ChallengeDraftInput) error {
	if in.EndDate.Before(in.StartDate) {
		return invalid("end_date", "must not be before start_date")
	}
	if in.Round1EvalEnd.Before(in.Round1EvalStart) {
		return invalid("round1_eval_end", "must not be before round1_eval_start")
	}
	switch {
	case in.Round2EvalStart == nil && in.Round2EvalEnd == nil:
		return nil
	case in.Round2EvalStart == nil:
		return invalid("round2_eval_start", "is required when round2_eval_end is set")
	case in.Round2EvalEnd == nil:
		return invalid("round2_eval_end", "is required when round2_eval_start is set")
	}
	if in.Round2EvalEnd.Before(*in.Round2EvalStart) {
		return invalid("round2_eval_end", "must not be before round2_eval_start")
	}
	if in.Round2EvalStart.Before(in.Round1EvalEnd) {
		return invalid("round2_eval_start", "must not be before round1_eval_end")
	}
	return nil
}

// lockOwned loads the challenge under a row lock and checks the caller
// created it.
func lockOwned(ctx context.Context, tx repository.Store, id Identity, challengeID string) (*models.Challenge, error) {
	ch, err := tx.LockChallenge(ctx, challengeID)
	if err != nil {
		return nil, notFoundAs(err, "challenge", challengeID)
	}
	if ch.CreatedByID != id.UserID {
		return nil, &ForbiddenError{Reason: "only the challenge creator can modify it"}
	}
	return ch, nil
}

// AddPanel is phase 2. The per-round cap is checked while the challenge row
// is locked, so concurrent calls cannot exceed it.
func (s *ChallengeService) AddPanel(ctx context.Context, id Identity, in PanelInput) (*models.ChallengePanel, error) {
	if err := id.require(); err != nil {
		return nil, err
	}
	limit, ok := PanelLimit(in.Round)
	if !ok {
		return nil, invalid("round_number", "must be 1 or 2")
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var panel models.ChallengePanel
	err := s.store.Tx(ctx, func(tx repository.Store) error {
		ch, err := lockOwned(ctx, tx, id, in.ChallengeID)
		if err != nil {
			return err
		}
		if ch.Status != models.ChallengeDraft {
			return &InvalidTransitionError{Entity: "challenge", ID: ch.ChallengeID, From: string(ch.Status)}
		}
		count, err := tx.CountPanels(ctx, ch.ChallengeID, in.Round)
		if err != nil {
			return err
		}
		if count >= int64(limit) {
			return &CapacityError{ChallengeID: ch.ChallengeID, Round: in.Round, Limit: limit}
		}
		panel = models.ChallengePanel{
			PanelID:     uuid.NewString(),
			ChallengeID: ch.ChallengeID,
			PanelName:   strings.TrimSpace(in.Name),
			Description: strings.TrimSpace(in.Description),
			RoundNumber: in.Round,
			CreatedAt:   s.now(),
		}
		if err := tx.CreatePanel(ctx, &panel); err != nil {
			return fmt.Errorf("create panel: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("challenge panel added",
		zap.String("challenge_id", panel.ChallengeID),
		zap.String("panel_id", panel.PanelID),
		zap.Int("round", panel.RoundNumber))
	return &panel, nil
}

// SetReviewParameters replaces the weighted review criteria of a draft.
// Weightages must be positive and sum to 100.
func (s *ChallengeService) SetReviewParameters(ctx context.Context, id Identity, challengeID string, weights []ParameterWeight) ([]models.ChallengeReviewParameter, error) {
	if err := id.require(); err != nil {
		return nil, err
	}
	if len(weights) == 0 {
		return nil, invalid("parameters", "at least one review parameter is required")
	}
	seen := map[uint]bool{}
	total := 0
	for _, w := range weights {
		if w.Weightage <= 0 {
			return nil, invalid("weightage", "must be positive for parameter %d", w.ParameterID)
		}
		if seen[w.ParameterID] {
			return nil, invalid("parameter", "parameter %d listed twice", w.ParameterID)
		}
		seen[w.ParameterID] = true
		total += w.Weightage
	}
	if total != 100 {
		return nil, invalid("weightage", "weightages must sum to 100, got %d", total)
	}

	params := make([]models.ChallengeReviewParameter, 0, len(weights))
	err := s.store.Tx(ctx, func(tx repository.Store) error {
		ch, err := lockOwned(ctx, tx, id, challengeID)
		if err != nil {
			return err
		}
		if ch.Status != models.ChallengeDraft {
			return &InvalidTransitionError{Entity: "challenge", ID: ch.ChallengeID, From: string(ch.Status)}
		}
		for _, w := range weights {
			p, err := tx.GetReviewParameter(ctx, w.ParameterID)
			if errors.Is(err, repository.ErrNotFound) || (err == nil && !p.IsActive) {
				return invalid("parameter", "review parameter %d is not available", w.ParameterID)
			}
			if err != nil {
				return err
			}
			params = append(params, models.ChallengeReviewParameter{
				ChallengeID: ch.ChallengeID,
				ParameterID: w.ParameterID,
				Weightage:   w.Weightage,
			})
		}
		return tx.ReplaceReviewParameters(ctx, ch.ChallengeID, params)
	})
	if err != nil {
		return nil, err
	}
	return params, nil
}

// AssignMentor is phase 3. The mentor is resolved by exact e-mail match;
// assigning the same mentor to a panel twice returns the existing record.
func (s *ChallengeService) AssignMentor(ctx context.Context, id Identity, panelID, email string) (*MentorAssignment, error) {
	if err := id.require(); err != nil {
		return nil, err
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, invalid("email", "is required")
	}
	if !utils.ValidateEmail(email) {
		return nil, invalid("email", "%q is not a valid email address", email)
	}

	var (
		result MentorAssignment
		notes  []models.Notification
	)
	err := s.store.Tx(ctx, func(tx repository.Store) error {
		panel, err := tx.GetPanel(ctx, panelID)
		if err != nil {
			return notFoundAs(err, "panel", panelID)
		}
		ch, err := lockOwned(ctx, tx, id, panel.ChallengeID)
		if err != nil {
			return err
		}
		if ch.Status != models.ChallengeDraft && ch.Status != models.ChallengeLive {
			return &InvalidTransitionError{Entity: "challenge", ID: ch.ChallengeID, From: string(ch.Status)}
		}

		users, err := tx.FindUsersByEmail(ctx, email)
		if err != nil {
			return err
		}
		switch len(users) {
		case 0:
			return &NotFoundError{Entity: "user", Key: email}
		case 1:
		default:
			return &AmbiguousLookupError{Email: email, Matches: len(users)}
		}
		mentor := users[0]
		result.Mentor = mentor

		existing, err := tx.FindMentor(ctx, panel.PanelID, mentor.UserID)
		if err == nil {
			result.ChallengeMentor = *existing
			return nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		result.ChallengeMentor = models.ChallengeMentor{
			PanelID:    panel.PanelID,
			MentorID:   mentor.UserID,
			AssignedAt: s.now(),
		}
		if err := tx.CreateMentor(ctx, &result.ChallengeMentor); err != nil {
			return fmt.Errorf("assign mentor: %w", err)
		}
		result.Created = true

		msg := fmt.Sprintf("You have been assigned as a mentor for the challenge: %s in panel: %s.", ch.Title, panel.PanelName)
		n, err := s.notifier.create(ctx, tx, mentor.UserID, id.ref(), msg, linkChallenges)
		if err != nil {
			return err
		}
		notes = append(notes, n)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result.Created {
		s.notifier.Dispatch(ctx, notes...)
		s.publish(EventMentorAssigned, result.ChallengeMentor)
		s.logger.Info("mentor assigned",
			zap.String("panel_id", panelID), zap.String("mentor_id", result.MentorID))
	}
	return &result, nil
}

// Finalize publishes a draft (DRAFT -> LIVE). At least one panel is required.
func (s *ChallengeService) Finalize(ctx context.Context, id Identity, challengeID string) (*models.Challenge, error) {
	if err := id.require(); err != nil {
		return nil, err
	}
	var ch *models.Challenge
	err := s.store.Tx(ctx, func(tx repository.Store) error {
		var err error
		ch, err = lockOwned(ctx, tx, id, challengeID)
		if err != nil {
			return err
		}
		if !CanTransitionChallenge(ch.Status, models.ChallengeLive) {
			return &InvalidTransitionError{Entity: "challenge", ID: ch.ChallengeID, From: string(ch.Status), To: string(models.ChallengeLive)}
		}
		panels, err := tx.ListPanels(ctx, ch.ChallengeID)
		if err != nil {
			return err
		}
		if len(panels) == 0 {
			return invalid("panels", "a challenge needs at least one panel before it can go live")
		}
		return s.moveChallenge(ctx, tx, ch, models.ChallengeLive, id.ref(), "")
	})
	if err != nil {
		return nil, err
	}
	monitor.RecordTransition(models.EntityChallenge, string(ch.Status))
	s.publish(EventChallengeLive, ch)
	return ch, nil
}

// Archive retires a completed challenge (COMPLETED -> ARCHIVED).
func (s *ChallengeService) Archive(ctx context.Context, id Identity, challengeID string) (*models.Challenge, error) {
	if err := id.require(); err != nil {
		return nil, err
	}
	var ch *models.Challenge
	err := s.store.Tx(ctx, func(tx repository.Store) error {
		var err error
		ch, err = lockOwned(ctx, tx, id, challengeID)
		if err != nil {
			return err
		}
		if !CanTransitionChallenge(ch.Status, models.ChallengeArchived) {
			return &InvalidTransitionError{Entity: "challenge", ID: ch.ChallengeID, From: string(ch.Status), To: string(models.ChallengeArchived)}
		}
		return s.moveChallenge(ctx, tx, ch, models.ChallengeArchived, id.ref(), "")
	})
	if err != nil {
		return nil, err
	}
	monitor.RecordTransition(models.EntityChallenge, string(ch.Status))
	s.publish(EventChallengeArchived, ch)
	return ch, nil
}

// UpdateStatus is the PATCH form: LIVE finalizes a draft, ARCHIVED retires
// a completed challenge. COMPLETED is reserved for the scheduler.
func (s *ChallengeService) UpdateStatus(ctx context.Context, id Identity, challengeID string, target models.ChallengeStatus) (*models.Challenge, error) {
	switch target {
	case models.ChallengeLive:
		return s.Finalize(ctx, id, challengeID)
	case models.ChallengeArchived:
		return s.Archive(ctx, id, challengeID)
	}
	return nil, invalid("status", "status can only be set to LIVE or ARCHIVED")
}

// Complete closes a LIVE challenge. It is driven by the scheduler, not by a
// user, so no identity is required.
func (s *ChallengeService) Complete(ctx context.Context, challengeID string) (*models.Challenge, error) {
	var ch *models.Challenge
	err := s.store.Tx(ctx, func(tx repository.Store) error {
		var err error
		ch, err = tx.LockChallenge(ctx, challengeID)
		if err != nil {
			return notFoundAs(err, "challenge", challengeID)
		}
		if !CanTransitionChallenge(ch.Status, models.ChallengeCompleted) {
			return &InvalidTransitionError{Entity: "challenge", ID: ch.ChallengeID, From: string(ch.Status), To: string(models.ChallengeCompleted)}
		}
		return s.moveChallenge(ctx, tx, ch, models.ChallengeCompleted, nil, "end date reached")
	})
	if err != nil {
		return nil, err
	}
	monitor.RecordTransition(models.EntityChallenge, string(ch.Status))
	s.publish(EventChallengeCompleted, ch)
	return ch, nil
}

// CompleteExpired completes every LIVE challenge whose end date is before
// now and returns how many were closed. Challenges that changed status
// concurrently are skipped.
func (s *ChallengeService) CompleteExpired(ctx context.Context) (int, error) {
	now := s.now()
	expired, err := s.store.ListChallenges(ctx, repository.ChallengeFilter{
		Statuses:    []models.ChallengeStatus{models.ChallengeLive},
		EndedBefore: &now,
	})
	if err != nil {
		return 0, err
	}
	closed := 0
	for _, ch := range expired {
		if err := ctx.Err(); err != nil {
			return closed, err
		}
		if _, err := s.Complete(ctx, ch.ChallengeID); err != nil {
			if errors.Is(err, ErrInvalidTransition) {
				continue
			}
			return closed, err
		}
		closed++
	}
	return closed, nil
}

func (s *ChallengeService) moveChallenge(ctx context.Context, tx repository.Store, ch *models.Challenge, to models.ChallengeStatus, by *string, remarks string) error {
	from := ch.Status
	now := s.now()
	if err := tx.UpdateChallengeStatus(ctx, ch.ChallengeID, from, to, now); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return &InvalidTransitionError{Entity: "challenge", ID: ch.ChallengeID, From: string(from), To: string(to)}
		}
		return notFoundAs(err, "challenge", ch.ChallengeID)
	}
	ch.Status = to
	ch.UpdatedAt = now
	if err := s.logTransition(ctx, tx, ch.ChallengeID, from, to, by, remarks); err != nil {
		return err
	}
	s.logger.Info("challenge status changed",
		zap.String("challenge_id", ch.ChallengeID),
		zap.String("from", string(from)),
		zap.String("to", string(to)))
	return nil
}

func (s *ChallengeService) logTransition(ctx context.Context, tx repository.Store, challengeID string, from, to models.ChallengeStatus, by *string, remarks string) error {
	entry := models.WorkflowLog{
		LogID:          uuid.NewString(),
		EntityType:     models.EntityChallenge,
		EntityID:       challengeID,
		PreviousStatus: strPtr(string(from)),
		NewStatus:      string(to),
		ChangedByID:    by,
		Remarks:        strPtr(remarks),
		ChangedAt:      s.now(),
	}
	if err := tx.CreateWorkflowLog(ctx, &entry); err != nil {
		return fmt.Errorf("write workflow log: %w", err)
	}
	return nil
}

// ---------- queries ----------

func (s *ChallengeService) Get(ctx context.Context, challengeID string) (*ChallengeDetail, error) {
	ch, err := s.store.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, notFoundAs(err, "challenge", challengeID)
	}
	panels, err := s.store.ListPanels(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	detail := &ChallengeDetail{Challenge: *ch, Panels: make([]PanelDetail, 0, len(panels))}
	for _, p := range panels {
		mentors, err := s.store.ListMentors(ctx, p.PanelID)
		if err != nil {
			return nil, err
		}
		detail.Panels = append(detail.Panels, PanelDetail{ChallengePanel: p, Mentors: mentors})
	}
	if detail.ReviewParameters, err = s.store.ListChallengeReviewParameters(ctx, challengeID); err != nil {
		return nil, err
	}
	return detail, nil
}

// List supports the challenge board filters: active (LIVE and running now),
// draft (the caller's own drafts), past (COMPLETED or ARCHIVED) and all.
func (s *ChallengeService) List(ctx context.Context, id Identity, filter, query string) ([]models.Challenge, error) {
	f := repository.ChallengeFilter{Query: query}
	switch strings.ToLower(strings.TrimSpace(filter)) {
	case "", "all":
	case "active":
		now := s.now()
		f.Statuses = []models.ChallengeStatus{models.ChallengeLive}
		f.ActiveAt = &now
	case "draft":
		f.Statuses = []models.ChallengeStatus{models.ChallengeDraft}
		f.CreatedBy = id.UserID
	case "past":
		f.Statuses = []models.ChallengeStatus{models.ChallengeCompleted, models.ChallengeArchived}
	default:
		return nil, invalid("filter", "must be one of active, draft, past, all")
	}
	return s.store.ListChallenges(ctx, f)
}

func (s *ChallengeService) Featured(ctx context.Context) (*models.Challenge, error) {
	ch, err := s.store.FeaturedChallenge(ctx)
	if err != nil {
		return nil, notFoundAs(err, "featured challenge", string(models.ChallengeLive))
	}
	return ch, nil
}

func (s *ChallengeService) ListPanels(ctx context.Context, challengeID string) ([]models.ChallengePanel, error) {
	if _, err := s.store.GetChallenge(ctx, challengeID); err != nil {
		return nil, notFoundAs(err, "challenge", challengeID)
	}
	return s.store.ListPanels(ctx, challengeID)
}

func (s *ChallengeService) ListMentors(ctx context.Context, panelID string) ([]models.ChallengeMentor, error) {
	if _, err := s.store.GetPanel(ctx, panelID); err != nil {
		return nil, notFoundAs(err, "panel", panelID)
	}
	return s.store.ListMentors(ctx, panelID)
}

func (s *ChallengeService) History(ctx context.Context, challengeID string) ([]models.WorkflowLog, error) {
	if _, err := s.store.GetChallenge(ctx, challengeID); err != nil {
		return nil, notFoundAs(err, "challenge", challengeID)
	}
	return s.store.ListWorkflowLogs(ctx, models.EntityChallenge, challengeID)
}
