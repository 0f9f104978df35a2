package store

import (
	"errors"

	"quizzq-backend/internal/domain/billing"
	"quizzq-backend/internal/domain/entitlement"
	"quizzq-backend/internal/domain/users"

	"gorm.io/gorm"
)

// Gorm implements entitlement.Store on the shared database handle.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (s *Gorm) FindByEmail(email string) (*users.User, error) {
	var user users.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entitlement.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Gorm) UpdateByEmail(email string, fields map[string]interface{}) error {
	res := s.db.Model(&users.User{}).Where("email = ?", email).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return entitlement.ErrNotFound
	}
	return nil
}

// GrantWithEvent inserts the ledger row and applies the entitlement overwrite
// in one transaction. Rolling back on a failed update keeps the session id
// replayable: Stripe's redelivery retries the whole grant instead of hitting
// a ledger row for a grant that never landed.
func (s *Gorm) GrantWithEvent(ev *billing.WebhookEvent, email string, fields map[string]interface{}) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ev).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return entitlement.ErrDuplicateEvent
			}
			return err
		}
		res := tx.Model(&users.User{}).Where("email = ?", email).Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return entitlement.ErrNotFound
		}
		return nil
	})
}
