package billing

import "time"

// WebhookEvent is the idempotency ledger for Stripe checkout deliveries.
// The primary key is the processor's checkout session id, so a redelivered
// "checkout completed" event cannot grant the same session twice.
type WebhookEvent struct {
	SessionID     string `gorm:"primaryKey;column:session_id"`
	UserID        uint   `gorm:"index"`
	Status        string
	CustomerEmail string
	CreatedAt     time.Time
}
