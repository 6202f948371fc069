// Package repository persists IRIS records. GormStore backs production
// deployments on MySQL or PostgreSQL; MemoryStore serves demos and tests.
package repository

import (
	"context"
	"errors"
	"time"

	"iris-api/models"
)

var (
	// ErrNotFound is returned when a lookup by key matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrStaleStatus is returned by compare-and-set status updates when the
	// row exists but no longer holds the expected status.
	ErrStaleStatus = errors.New("status changed concurrently")
)

type IdeaFilter struct {
	Statuses    []models.IdeaStatus
	IdeatorID   string
	CreatedFrom *time.Time
	CreatedTo   *time.Time // exclusive
}

type ChallengeFilter struct {
	Statuses    []models.ChallengeStatus
	CreatedBy   string
	Query       string
	ActiveAt    *time.Time // start_date <= t <= end_date, ordered by end date
	EndedBefore *time.Time
	CreatedFrom *time.Time
	CreatedTo   *time.Time // exclusive
}

type ChallengeIdeaFilter struct {
	ChallengeID string
	SubmitterID string
}

// Store is the persistence boundary used by the services. Tx runs fn
// against a Store bound to one transaction; a non-nil error rolls it back.
type Store interface {
	Tx(ctx context.Context, fn func(Store) error) error

	GetUser(ctx context.Context, id string) (*models.User, error)
	FindUsersByEmail(ctx context.Context, email string) ([]models.User, error)
	CountUsers(ctx context.Context) (int64, error)
	UserHasRole(ctx context.Context, userID, roleName string) (bool, error)
	UsersWithRole(ctx context.Context, roleName string) ([]models.User, error)
	GetEmployeeDetail(ctx context.Context, userID string) (*models.EmployeeDetail, error)
	IsReportingManager(ctx context.Context, userID string) (bool, error)
	CreateLoginLog(ctx context.Context, entry *models.UserLoginLog) error

	ListCategories(ctx context.Context) ([]models.ImprovementCategory, error)
	GetCategory(ctx context.Context, id uint) (*models.ImprovementCategory, error)
	ListSubCategories(ctx context.Context, categoryID uint) ([]models.ImprovementSubCategory, error)
	GetSubCategory(ctx context.Context, id uint) (*models.ImprovementSubCategory, error)
	ListReviewParameters(ctx context.Context, activeOnly bool) ([]models.ReviewParameter, error)
	GetReviewParameter(ctx context.Context, id uint) (*models.ReviewParameter, error)

	CreateIdea(ctx context.Context, idea *models.GrassrootIdea) error
	GetIdea(ctx context.Context, id string) (*models.GrassrootIdea, error)
	ListIdeas(ctx context.Context, filter IdeaFilter) ([]models.GrassrootIdea, error)
	CountIdeas(ctx context.Context) (int64, error)
	UpdateIdeaStatus(ctx context.Context, id string, from, to models.IdeaStatus, at time.Time) error
	CreateEvaluation(ctx context.Context, eval *models.GrassrootEvaluation) error
	ListEvaluations(ctx context.Context, ideaID string) ([]models.GrassrootEvaluation, error)

	CreateChallenge(ctx context.Context, ch *models.Challenge) error
	GetChallenge(ctx context.Context, id string) (*models.Challenge, error)
	LockChallenge(ctx context.Context, id string) (*models.Challenge, error)
	ListChallenges(ctx context.Context, filter ChallengeFilter) ([]models.Challenge, error)
	CountChallenges(ctx context.Context, status models.ChallengeStatus) (int64, error)
	FeaturedChallenge(ctx context.Context) (*models.Challenge, error)
	UpdateChallengeStatus(ctx context.Context, id string, from, to models.ChallengeStatus, at time.Time) error
	ReplaceReviewParameters(ctx context.Context, challengeID string, params []models.ChallengeReviewParameter) error
	ListChallengeReviewParameters(ctx context.Context, challengeID string) ([]models.ChallengeReviewParameter, error)

	CreateChallengeIdea(ctx context.Context, idea *models.ChallengeIdea) error
	GetChallengeIdea(ctx context.Context, id string) (*models.ChallengeIdea, error)
	ListChallengeIdeas(ctx context.Context, filter ChallengeIdeaFilter) ([]models.ChallengeIdea, error)
	CreateIdeaDetail(ctx context.Context, d *models.IdeaDetail) error
	GetIdeaDetail(ctx context.Context, ideaID string) (*models.IdeaDetail, error)
	CreateCoIdeator(ctx context.Context, c *models.CoIdeator) error
	ListCoIdeators(ctx context.Context, ideaID string) ([]models.CoIdeator, error)

	CreatePanel(ctx context.Context, panel *models.ChallengePanel) error
	GetPanel(ctx context.Context, id string) (*models.ChallengePanel, error)
	ListPanels(ctx context.Context, challengeID string) ([]models.ChallengePanel, error)
	CountPanels(ctx context.Context, challengeID string, round int) (int64, error)
	CreateMentor(ctx context.Context, m *models.ChallengeMentor) error
	FindMentor(ctx context.Context, panelID, mentorID string) (*models.ChallengeMentor, error)
	ListMentors(ctx context.Context, panelID string) ([]models.ChallengeMentor, error)

	CreateNotification(ctx context.Context, n *models.Notification) error
	GetNotification(ctx context.Context, id string) (*models.Notification, error)
	ListNotifications(ctx context.Context, recipientID string, unreadOnly bool) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	CountUnread(ctx context.Context, recipientID string) (int64, error)

	CreateReward(ctx context.Context, r *models.Reward) error
	SumRewardPoints(ctx context.Context, userID string) (int64, error)

	CreateWorkflowLog(ctx context.Context, entry *models.WorkflowLog) error
	ListWorkflowLogs(ctx context.Context, entityType, entityID string) ([]models.WorkflowLog, error)
}

// Seeder loads users and reference data. It is used by cmd/migrate and by tests.
type Seeder interface {
	CreateUser(ctx context.Context, u *models.User) error
	EnsureRole(ctx context.Context, roleName string) error
	AssignRole(ctx context.Context, userID, roleName string) error
	SetEmployeeDetail(ctx context.Context, d *models.EmployeeDetail) error
	CreateCategory(ctx context.Context, c *models.ImprovementCategory) error
	CreateSubCategory(ctx context.Context, s *models.ImprovementSubCategory) error
	CreateReviewParameter(ctx context.Context, p *models.ReviewParameter) error
}
