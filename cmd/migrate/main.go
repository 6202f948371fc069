// Schema migration and seeding
// cmd/migrate/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"strings"
	"time"

	"iris-api/config"
	"iris-api/models"
	"iris-api/repository"
	"iris-api/services"
	"iris-api/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	var (
		seed          = flag.Bool("seed", true, "install roles, categories and review parameters")
		ownerEmail    = flag.String("owner-email", "", "create a Challenge Owner account with this e-mail")
		ownerName     = flag.String("owner-name", "Challenge Owner", "full name for -owner-email")
		ownerPassword = flag.String("owner-password", "", "password for -owner-email")
		ibuHeadEmail  = flag.String("ibu-head", "", "grant the IBU Head role to an existing user")
	)
	flag.Parse()

	cfg := config.Load()
	logger, closeLogs := config.InitLogging(cfg)
	defer closeLogs()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := config.InitDB(cfg, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	store := repository.NewGormStore(db)

	if err := store.Migrate(ctx); err != nil {
		logger.Fatal("auto migrate", zap.Error(err))
	}
	logger.Info("schema migrated", zap.Int("tables", len(repository.AllModels())))

	if *seed {
		if err := repository.SeedDefaults(ctx, store); err != nil {
			logger.Fatal("seed", zap.Error(err))
		}
		logger.Info("reference data seeded")
	}

	if *ownerEmail != "" {
		if err := createOwner(ctx, store, *ownerEmail, *ownerName, *ownerPassword); err != nil {
			logger.Fatal("create challenge owner", zap.Error(err))
		}
		logger.Info("challenge owner ready", zap.String("email", *ownerEmail))
	}

	if *ibuHeadEmail != "" {
		users, err := store.FindUsersByEmail(ctx, *ibuHeadEmail)
		if err != nil || len(users) != 1 {
			logger.Fatal("ibu head lookup", zap.String("email", *ibuHeadEmail), zap.Int("matches", len(users)), zap.Error(err))
		}
		if err := store.AssignRole(ctx, users[0].UserID, models.RoleIBUHead); err != nil {
			logger.Fatal("assign ibu head", zap.Error(err))
		}
		logger.Info("IBU Head role granted", zap.String("email", *ibuHeadEmail))
	}

	logger.Info("Migration completed!")
}

func createOwner(ctx context.Context, store *repository.GormStore, email, name, password string) error {
	email = strings.TrimSpace(email)
	if !utils.ValidateEmail(email) {
		return errors.New("invalid owner e-mail")
	}
	if ok, msg := utils.ValidatePassword(password); !ok {
		return errors.New(msg)
	}

	users, err := store.FindUsersByEmail(ctx, email)
	if err != nil {
		return err
	}
	var userID string
	switch len(users) {
	case 0:
		hash, err := services.HashPassword(password)
		if err != nil {
			return err
		}
		u := models.User{
			UserID:       uuid.NewString(),
			Email:        email,
			PasswordHash: hash,
			FullName:     name,
			UserType:     models.UserTypeInternal,
		}
		if err := store.CreateUser(ctx, &u); err != nil {
			return err
		}
		userID = u.UserID
	case 1:
		// Skip if the account already exists
		userID = users[0].UserID
	default:
		return errors.New("e-mail matches more than one account")
	}
	return store.AssignRole(ctx, userID, models.RoleChallengeOwner)
}
