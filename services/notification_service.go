package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"iris-api/models"
	"iris-api/monitor"
	"iris-api/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Broadcaster pushes a committed notification to live subscribers of its
// recipient.
type Broadcaster interface {
	Publish(ctx context.Context, n models.Notification) error
}

// MailSender delivers an HTML e-mail.
type MailSender interface {
	Send(to []string, subject, htmlBody string) error
}

// TaskRunner schedules post-commit work; *ants.Pool satisfies it. A nil
// runner executes tasks inline.
type TaskRunner interface {
	Submit(task func()) error
}

type NotificationDeps struct {
	Push   Broadcaster
	Mailer MailSender
	Runner TaskRunner
	// Timeout bounds each delivery; zero means 10s.
	Timeout time.Duration
	// LinkBase is the front-end origin used for links in e-mails.
	LinkBase string
}

type NotificationService struct {
	base
	push     Broadcaster
	mailer   MailSender
	runner   TaskRunner
	timeout  time.Duration
	linkBase string
}

func NewNotificationService(store repository.Store, deps NotificationDeps, opts Options) *NotificationService {
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NotificationService{
		base:     newBase(store, opts),
		push:     deps.Push,
		mailer:   deps.Mailer,
		runner:   deps.Runner,
		timeout:  timeout,
		linkBase: deps.LinkBase,
	}
}

// create inserts an unread notification through store, which may be a
// transaction. Delivery happens later through Dispatch.
func (s *NotificationService) create(ctx context.Context, store repository.Store, recipientID string, sender *string, message, link string) (models.Notification, error) {
	n := models.Notification{
		NotificationID: uuid.NewString(),
		RecipientID:    recipientID,
		SenderID:       sender,
		Message:        message,
		Link:           strPtr(link),
		CreatedAt:      s.now(),
	}
	if err := store.CreateNotification(ctx, &n); err != nil {
		return models.Notification{}, fmt.Errorf("create notification: %w", err)
	}
	return n, nil
}

// Notify creates an unread notification for recipientID and dispatches it.
func (s *NotificationService) Notify(ctx context.Context, recipientID, message, link string, senderID *string) (*models.Notification, error) {
	if strings.TrimSpace(recipientID) == "" {
		return nil, invalid("recipient", "is required")
	}
	if strings.TrimSpace(message) == "" {
		return nil, invalid("message", "is required")
	}
	if _, err := s.store.GetUser(ctx, recipientID); err != nil {
		return nil, notFoundAs(err, "user", recipientID)
	}
	n, err := s.create(ctx, s.store, recipientID, senderID, message, link)
	if err != nil {
		return nil, err
	}
	s.Dispatch(ctx, n)
	return &n, nil
}

// Dispatch fans committed notifications out to the push channel and the
// mailer. Failures are logged and counted, never returned.
func (s *NotificationService) Dispatch(ctx context.Context, notes ...models.Notification) {
	for _, n := range notes {
		task := func() {
			taskCtx, cancel := persistentContext(ctx, s.timeout)
			defer cancel()
			s.deliver(taskCtx, n)
		}
		if s.runner == nil {
			task()
			continue
		}
		if err := s.runner.Submit(task); err != nil {
			s.logger.Warn("notification dispatch dropped",
				zap.String("notification_id", n.NotificationID), zap.Error(err))
			monitor.RecordDispatch("pool", err)
		}
	}
}

func (s *NotificationService) deliver(ctx context.Context, n models.Notification) {
	if s.push != nil {
		err := s.push.Publish(ctx, n)
		monitor.RecordDispatch("push", err)
		if err != nil {
			s.logger.Warn("notification push failed",
				zap.String("notification_id", n.NotificationID), zap.Error(err))
		}
	}
	if s.mailer == nil {
		return
	}
	user, err := s.store.GetUser(ctx, n.RecipientID)
	if err != nil {
		s.logger.Warn("notification recipient lookup failed",
			zap.String("recipient_id", n.RecipientID), zap.Error(err))
		return
	}
	if user.Email == "" {
		return
	}
	body, err := renderNotificationMail(user.FullName, s.linkBase, n)
	if err != nil {
		s.logger.Error("notification mail render failed", zap.Error(err))
		return
	}
	err = s.mailer.Send([]string{user.Email}, notificationMailSubject, body)
	monitor.RecordDispatch("mail", err)
	if err != nil {
		s.logger.Warn("notification mail failed",
			zap.String("notification_id", n.NotificationID), zap.Error(err))
	}
}

// MarkRead flags a notification as read. Repeating the call is a no-op;
// only the recipient may mark it.
func (s *NotificationService) MarkRead(ctx context.Context, id Identity, notificationID string) (*models.Notification, error) {
	if err := id.require(); err != nil {
		return nil, err
	}
	n, err := s.store.GetNotification(ctx, notificationID)
	if err != nil {
		return nil, notFoundAs(err, "notification", notificationID)
	}
	if n.RecipientID != id.UserID {
		return nil, &ForbiddenError{Reason: "notification belongs to another user"}
	}
	if n.IsRead {
		return n, nil
	}
	if err := s.store.MarkNotificationRead(ctx, notificationID); err != nil {
		return nil, notFoundAs(err, "notification", notificationID)
	}
	n.IsRead = true
	return n, nil
}

// UnreadCount is recomputed from the store on every call.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.store.CountUnread(ctx, userID)
}

func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	return s.store.ListNotifications(ctx, userID, unreadOnly)
}
