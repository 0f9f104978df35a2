package database

import (
	"fmt"

	"quizzq-backend/internal/domain/billing"
	"quizzq-backend/internal/domain/classes"
	"quizzq-backend/internal/domain/plans"
	"quizzq-backend/internal/domain/quizzes"
	"quizzq-backend/internal/domain/users"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to Postgres and migrates all domain models. The returned
// handle is the single shared client for the process; callers receive it
// through constructor injection.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		// Needed so a duplicate webhook ledger insert surfaces as
		// gorm.ErrDuplicatedKey instead of a driver-specific error.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		// core
		&users.User{},
		&users.VerificationToken{},
		&plans.Plan{},
		&billing.WebhookEvent{},

		// platform
		&classes.Class{},
		&classes.Membership{},
		&quizzes.Quiz{},
		&quizzes.Question{},
	); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	return db, nil
}
