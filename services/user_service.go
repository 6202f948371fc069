package services

import (
	"context"
	"fmt"
	"strings"

	"iris-api/models"
	"iris-api/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// LoginMeta is recorded in the login log for each successful sign-in.
type LoginMeta struct {
	IPAddress string
	UserAgent string
}

// UserProfile tells the client which review queues and wizards to offer.
type UserProfile struct {
	models.User
	IsReportingManager bool  `json:"is_reporting_manager"`
	IsIBUHead          bool  `json:"is_ibu_head"`
	IsChallengeOwner   bool  `json:"is_challenge_owner"`
	TotalPoints        int64 `json:"total_points"`
}

type UserService struct {
	base
}

func NewUserService(store repository.Store, opts Options) *UserService {
	return &UserService{base: newBase(store, opts)}
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares password with hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Authenticate verifies credentials. Unknown e-mail and wrong password both
// yield ErrUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, email, password string, meta LoginMeta) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, invalid("", "email and password are required")
	}
	users, err := s.store.FindUsersByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if len(users) != 1 || !CheckPasswordHash(password, users[0].PasswordHash) {
		s.logger.Info("login rejected", zap.String("email", email), zap.Int("matches", len(users)))
		return nil, ErrUnauthorized
	}
	user := users[0]

	entry := models.UserLoginLog{
		UserID:    user.UserID,
		LoginAt:   s.now(),
		IPAddress: strPtr(meta.IPAddress),
		UserAgent: strPtr(meta.UserAgent),
	}
	if err := s.store.CreateLoginLog(ctx, &entry); err != nil {
		s.logger.Warn("login log write failed", zap.String("user_id", user.UserID), zap.Error(err))
	}
	return &user, nil
}

func (s *UserService) FindByEmail(ctx context.Context, email string) ([]models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, invalid("email", "is required")
	}
	return s.store.FindUsersByEmail(ctx, email)
}

func (s *UserService) Profile(ctx context.Context, userID string) (*UserProfile, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, "user", userID)
	}
	p := &UserProfile{User: *user}
	if p.IsReportingManager, err = s.store.IsReportingManager(ctx, userID); err != nil {
		return nil, err
	}
	if p.IsIBUHead, err = s.store.UserHasRole(ctx, userID, models.RoleIBUHead); err != nil {
		return nil, err
	}
	if p.IsChallengeOwner, err = s.store.UserHasRole(ctx, userID, models.RoleChallengeOwner); err != nil {
		return nil, err
	}
	if p.TotalPoints, err = s.store.SumRewardPoints(ctx, userID); err != nil {
		return nil, err
	}
	return p, nil
}
