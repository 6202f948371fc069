package services

import (
	"errors"
	"time"

	"iris-api/repository"
	"iris-api/utils"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Routing keys for domain events.
const (
	EventIdeaSubmitted      = "idea.submitted"
	EventIdeaEvaluated      = "idea.evaluated"
	EventChallengeCreated   = "challenge.created"
	EventChallengeLive      = "challenge.live"
	EventChallengeCompleted = "challenge.completed"
	EventChallengeArchived  = "challenge.archived"
	EventMentorAssigned     = "mentor.assigned"
	EventChallengeIdea      = "challenge.idea_submitted"
)

// EventPublisher receives domain events after a lifecycle transaction
// commits. mq.Publisher satisfies it.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, any) error { return nil }

// Options carries the collaborators shared by every service.
type Options struct {
	Logger *zap.Logger
	Events EventPublisher
	Clock  func() time.Time
}

type base struct {
	store  repository.Store
	logger *zap.Logger
	events EventPublisher
	now    func() time.Time
}

func newBase(store repository.Store, opts Options) base {
	b := base{store: store, logger: opts.Logger, events: opts.Events, now: opts.Clock}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	if b.events == nil {
		b.events = nopPublisher{}
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

func (b base) publish(routingKey string, payload any) {
	if err := b.events.Publish(routingKey, payload); err != nil {
		b.logger.Warn("event publish failed", zap.String("routing_key", routingKey), zap.Error(err))
	}
}

// validateInput runs struct-tag validation and reports the first failure.
func validateInput(v any) error {
	err := utils.ValidateStruct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return invalid(verrs[0].Field(), "%s", utils.DescribeFieldError(verrs[0]))
	}
	return invalid("", "%v", err)
}

func notFoundAs(err error, entity, key string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Entity: entity, Key: key}
	}
	return err
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
