package entitlement

import (
	"errors"

	"quizzq-backend/internal/domain/billing"
	"quizzq-backend/internal/domain/users"
)

var (
	// ErrNotFound means no user record exists for the given email.
	ErrNotFound = errors.New("entitlement: user not found")
	// ErrDuplicateEvent means the ledger already holds the session id.
	ErrDuplicateEvent = errors.New("entitlement: webhook event already recorded")
)

// Store is the persistence contract the entitlement transitions and the PRO
// gate require. UpdateByEmail overwrites exactly the named fields, explicit
// nils included. GrantWithEvent records the ledger row and applies the field
// overwrite as one unit: a replayed session id returns ErrDuplicateEvent with
// no write, and a failed write leaves no ledger row behind, so the processor's
// redelivery can drive the grant again.
type Store interface {
	FindByEmail(email string) (*users.User, error)
	UpdateByEmail(email string, fields map[string]interface{}) error
	GrantWithEvent(ev *billing.WebhookEvent, email string, fields map[string]interface{}) error
}
