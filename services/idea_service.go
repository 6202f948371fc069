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
	linkRMDashboard        = "/rm-dashboard/"
	linkIBUDashboard       = "/ibu-dashboard/"
	linkGrassrootDashboard = "/grassroot-dashboard/"
)

type SubmitIdeaInput struct {
	CategoryID            uint   `json:"improvement_category" validate:"required"`
	SubCategoryID         uint   `json:"improvement_sub_category" validate:"required"`
	ProposedIdea          string `json:"proposed_idea" validate:"notblank"`
	BusinessValue         string `json:"business_value" validate:"notblank"`
	MonetaryValue         string `json:"monetary_value"`
	NonMonetaryValue      string `json:"non_monetary_value" validate:"notblank"`
	Assumptions           string `json:"assumptions" validate:"notblank"`
	KeyRisks              string `json:"key_risks" validate:"notblank"`
	AdditionalInformation string `json:"additional_information"`
}

func (in *SubmitIdeaInput) sanitize() {
	for _, f := range []*string{&in.ProposedIdea, &in.BusinessValue, &in.MonetaryValue, &in.NonMonetaryValue, &in.Assumptions, &in.KeyRisks, &in.AdditionalInformation} {
		*f = utils.SanitizeInput(*f)
	}
}

type EvaluationInput struct {
	Role        ReviewerRole
	Action      ReviewAction
	IsDesirable bool
	IsFeasible  bool
	IsViable    bool
	Remarks     string
}

type IdeaService struct {
	base
	notifier *NotificationService
}

func NewIdeaService(store repository.Store, notifier *NotificationService, opts Options) *IdeaService {
	return &IdeaService{base: newBase(store, opts), notifier: notifier}
}

// Submit records a new grassroot idea in SUBMITTED_RM and notifies the
// ideator's reporting manager when one is on file.
func (s *IdeaService) Submit(ctx context.Context, id Identity, in SubmitIdeaInput) (*models.GrassrootIdea, error) {
	if err := id.require(); err != nil {
		return nil, err
	}
	in.sanitize()
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var (
		idea  models.GrassrootIdea
		notes []models.Notification
	)
	err := s.store.Tx(ctx, func(tx repository.Store) error {
		if _, err := tx.GetCategory(ctx, in.CategoryID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return invalid("improvement_category", "unknown category %d", in.CategoryID)
			}
			return err
		}
		sub, err := tx.GetSubCategory(ctx, in.SubCategoryID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return invalid("improvement_sub_category", "unknown subcategory %d", in.SubCategoryID)
			}
			return err
		}
		if sub.CategoryID != in.CategoryID {
			return invalid("improvement_sub_category", "does not belong to category %d", in.CategoryID)
		}

		now := s.now()
		idea = models.GrassrootIdea{
			IdeaID:                uuid.NewString(),
			IdeatorID:             id.UserID,
			CategoryID:            in.CategoryID,
			SubCategoryID:         in.SubCategoryID,
			ProposedIdea:          in.ProposedIdea,
			BusinessValue:         in.BusinessValue,
			MonetaryValue:         in.MonetaryValue,
			NonMonetaryValue:      in.NonMonetaryValue,
			Assumptions:           in.Assumptions,
			KeyRisks:              in.KeyRisks,
			AdditionalInformation: strPtr(in.AdditionalInformation),
			Status:                models.IdeaSubmittedRM,
			CreatedAt:             now,
			UpdatedAt:             now,
		}
		if err := tx.CreateIdea(ctx, &idea); err != nil {
			return fmt.Errorf("create idea: %w", err)
		}
		if err := s.logTransition(ctx, tx, idea.IdeaID, "", idea.Status, id.ref(), ""); err != nil {
			return err
		}

		detail, err := tx.GetEmployeeDetail(ctx, id.UserID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if detail == nil || detail.ReportingManagerID == nil {
			s.logger.Warn("no reporting manager on file, idea submitted without RM notification",
				zap.String("idea_id", idea.IdeaID), zap.String("ideator_id", id.UserID))
			return nil
		}
		msg := fmt.Sprintf("New grassroot idea submitted by %s: %s", displayName(id), utils.Truncate(idea.ProposedIdea, 50))
		n, err := s.notifier.create(ctx, tx, *detail.ReportingManagerID, id.ref(), msg, linkRMDashboard)
		if err != nil {
			return err
		}
		notes = append(notes, n)
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitor.RecordTransition(models.EntityGrassrootIdea, string(idea.Status))
	s.notifier.Dispatch(ctx, notes...)
	s.publish(EventIdeaSubmitted, idea)
	s.logger.Info("grassroot idea submitted", zap.String("idea_id", idea.IdeaID), zap.String("ideator_id", id.UserID))
	return &idea, nil
}

// Evaluate applies a reviewer decision. The status write is a
// compare-and-set, so a decision made against a stale status fails with
// InvalidTransitionError and leaves the idea untouched.
func (s *IdeaService) Evaluate(ctx context.Context, id Identity, ideaID string, in EvaluationInput) (*models.GrassrootIdea, error) {
	if err := id.require(); err != nil {
		return nil, err
	}
	var err error
	if in.Role, err = ParseReviewerRole(string(in.Role)); err != nil {
		return nil, err
	}
	if in.Action, err = ParseReviewAction(string(in.Action)); err != nil {
		return nil, err
	}

	var (
		idea  *models.GrassrootIdea
		from  models.IdeaStatus
		notes []models.Notification
	)
	err = s.store.Tx(ctx, func(tx repository.Store) error {
		var err error
		idea, err = tx.GetIdea(ctx, ideaID)
		if err != nil {
			return notFoundAs(err, "idea", ideaID)
		}
		if err := s.authorizeReviewer(ctx, tx, id, idea, in.Role); err != nil {
			return err
		}
		from = idea.Status
		target, err := NextIdeaStatus(idea.IdeaID, from, in.Role, in.Action)
		if err != nil {
			return err
		}

		now := s.now()
		if err := tx.UpdateIdeaStatus(ctx, idea.IdeaID, from, target, now); err != nil {
			if errors.Is(err, repository.ErrStaleStatus) {
				return &InvalidTransitionError{Entity: "idea", ID: idea.IdeaID, From: string(from), To: string(target)}
			}
			return notFoundAs(err, "idea", ideaID)
		}
		idea.Status = target
		idea.UpdatedAt = now

		eval := models.GrassrootEvaluation{
			IdeaID:        idea.IdeaID,
			EvaluatorID:   id.UserID,
			EvaluatorRole: string(in.Role),
			Decision:      string(in.Action),
			IsDesirable:   in.IsDesirable,
			IsFeasible:    in.IsFeasible,
			IsViable:      in.IsViable,
			Remarks:       strPtr(strings.TrimSpace(in.Remarks)),
			EvaluatedAt:   now,
		}
		if err := tx.CreateEvaluation(ctx, &eval); err != nil {
			return fmt.Errorf("create evaluation: %w", err)
		}
		if err := s.logTransition(ctx, tx, idea.IdeaID, from, target, id.ref(), in.Remarks); err != nil {
			return err
		}

		n, err := s.notifier.create(ctx, tx, idea.IdeatorID, id.ref(), outcomeMessage(idea, in.Role, in.Action), linkGrassrootDashboard)
		if err != nil {
			return err
		}
		notes = append(notes, n)

		if in.Role == ReviewerRM && in.Action == ActionApprove {
			heads, err := tx.UsersWithRole(ctx, models.RoleIBUHead)
			if err != nil {
				return err
			}
			msg := "New grassroot idea approved by RM and pending IBU review: " + utils.Truncate(idea.ProposedIdea, 50)
			for _, head := range heads {
				n, err := s.notifier.create(ctx, tx, head.UserID, id.ref(), msg, linkIBUDashboard)
				if err != nil {
					return err
				}
				notes = append(notes, n)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitor.RecordTransition(models.EntityGrassrootIdea, string(idea.Status))
	s.notifier.Dispatch(ctx, notes...)
	s.publish(EventIdeaEvaluated, map[string]any{
		"idea_id":         idea.IdeaID,
		"previous_status": from,
		"status":          idea.Status,
		"evaluator_id":    id.UserID,
		"role":            in.Role,
		"action":          in.Action,
	})
	s.logger.Info("grassroot idea evaluated",
		zap.String("idea_id", idea.IdeaID),
		zap.String("from", string(from)),
		zap.String("to", string(idea.Status)),
		zap.String("evaluator_id", id.UserID))
	return idea, nil
}

// EvaluateToStatus accepts the target-status form of an evaluation and
// resolves it through the transition table.
func (s *IdeaService) EvaluateToStatus(ctx context.Context, id Identity, ideaID string, target models.IdeaStatus, remarks string) (*models.GrassrootIdea, error) {
	role, action, err := ResolveTargetStatus(target)
	if err != nil {
		return nil, err
	}
	return s.Evaluate(ctx, id, ideaID, EvaluationInput{Role: role, Action: action, Remarks: remarks})
}

func (s *IdeaService) authorizeReviewer(ctx context.Context, store repository.Store, id Identity, idea *models.GrassrootIdea, role ReviewerRole) error {
	switch role {
	case ReviewerRM:
		detail, err := store.GetEmployeeDetail(ctx, idea.IdeatorID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if detail == nil || detail.ReportingManagerID == nil || *detail.ReportingManagerID != id.UserID {
			return &ForbiddenError{Reason: "only the ideator's reporting manager can perform the RM review"}
		}
	case ReviewerIBU:
		ok, err := store.UserHasRole(ctx, id.UserID, models.RoleIBUHead)
		if err != nil {
			return err
		}
		if !ok {
			return &ForbiddenError{Reason: "only an IBU Head can perform the IBU review"}
		}
	}
	return nil
}

func outcomeMessage(idea *models.GrassrootIdea, role ReviewerRole, action ReviewAction) string {
	switch {
	case action == ActionApprove && role == ReviewerRM:
		return "Your grassroot idea has been approved by your RM."
	case action == ActionApprove:
		return "Your grassroot idea has been approved by the IBU Head!"
	case action == ActionRework:
		return "Rework required for your grassroot idea: " + utils.Truncate(idea.ProposedIdea, 50)
	}
	return "Your grassroot idea has been rejected."
}

func (s *IdeaService) logTransition(ctx context.Context, store repository.Store, ideaID string, from, to models.IdeaStatus, by *string, remarks string) error {
	entry := models.WorkflowLog{
		LogID:          uuid.NewString(),
		EntityType:     models.EntityGrassrootIdea,
		EntityID:       ideaID,
		PreviousStatus: strPtr(string(from)),
		NewStatus:      string(to),
		ChangedByID:    by,
		Remarks:        strPtr(strings.TrimSpace(remarks)),
		ChangedAt:      s.now(),
	}
	if err := store.CreateWorkflowLog(ctx, &entry); err != nil {
		return fmt.Errorf("write workflow log: %w", err)
	}
	return nil
}

// Pending lists ideas awaiting review by role.
func (s *IdeaService) Pending(ctx context.Context, role ReviewerRole) ([]models.GrassrootIdea, error) {
	if _, err := ParseReviewerRole(string(role)); err != nil {
		return nil, err
	}
	return s.store.ListIdeas(ctx, repository.IdeaFilter{Statuses: []models.IdeaStatus{PendingStatus(role)}})
}

func (s *IdeaService) List(ctx context.Context, filter repository.IdeaFilter) ([]models.GrassrootIdea, error) {
	return s.store.ListIdeas(ctx, filter)
}

func (s *IdeaService) Get(ctx context.Context, ideaID string) (*models.GrassrootIdea, error) {
	idea, err := s.store.GetIdea(ctx, ideaID)
	if err != nil {
		return nil, notFoundAs(err, "idea", ideaID)
	}
	return idea, nil
}

func (s *IdeaService) Evaluations(ctx context.Context, ideaID string) ([]models.GrassrootEvaluation, error) {
	if _, err := s.Get(ctx, ideaID); err != nil {
		return nil, err
	}
	return s.store.ListEvaluations(ctx, ideaID)
}

// History returns the workflow log of an idea, oldest first.
func (s *IdeaService) History(ctx context.Context, ideaID string) ([]models.WorkflowLog, error) {
	if _, err := s.Get(ctx, ideaID); err != nil {
		return nil, err
	}
	return s.store.ListWorkflowLogs(ctx, models.EntityGrassrootIdea, ideaID)
}

func displayName(id Identity) string {
	if id.FullName != "" {
		return id.FullName
	}
	if id.Email != "" {
		return id.Email
	}
	return id.UserID
}
