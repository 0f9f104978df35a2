package entitlement

import (
	"time"

	"quizzq-backend/internal/domain/billing"
	"quizzq-backend/internal/domain/users"
)

// Subscription statuses written to the record. The processor's own status
// strings (active, trialing, past_due, ...) are stored verbatim on grant and
// update; these are the two the subsystem writes itself.
const (
	StatusCancelled = "cancelled"
	StatusExpired   = "expired"
)

// Snapshot is the slice of a processor subscription the transitions need.
type Snapshot struct {
	SubscriptionID string
	Status         string
	PeriodEnd      time.Time
	TrialEnd       *time.Time
}

// PlanInfo is the descriptive plan metadata mirrored onto the user record.
// It does not drive gating decisions.
type PlanInfo struct {
	PriceID    string
	Name       string
	PriceCents int64
	Currency   string
	Interval   string
	TrialDays  int64
}

// Grant applies the "subscription granted" transition: the user becomes PRO
// with the full plan mirror and an expiry taken from the reported period end.
// The ledger row and the entitlement write commit together through the store,
// so a replayed session id is a no-op and a failed write stays retryable.
func Grant(s Store, email string, ev *billing.WebhookEvent, snap Snapshot, plan PlanInfo, now time.Time) error {
	fields := map[string]interface{}{
		"is_pro":          true,
		"role":            users.RoleProUser,
		"subscription_id": snap.SubscriptionID,

		"plan_id":         plan.PriceID,
		"plan_name":       plan.Name,
		"plan_price":      plan.PriceCents,
		"plan_currency":   plan.Currency,
		"plan_interval":   plan.Interval,
		"plan_trial_days": plan.TrialDays,

		"plan_is_active": snap.Status == "active",
		"plan_is_trial":  snap.TrialEnd != nil,

		"expires_at":      snap.PeriodEnd,
		"plan_started_at": now,
		"plan_ended_at":   nil,

		"subscription_status": snap.Status,
	}
	return s.GrantWithEvent(ev, email, fields)
}

// ApplyUpdate applies the "subscription updated" transition. It records the
// new snapshot but deliberately leaves is_pro and role alone: a move to
// past_due does not itself revoke access, revocation happens via explicit
// cancellation or the gate's lazy expiry check.
func ApplyUpdate(s Store, email string, snap Snapshot) error {
	fields := map[string]interface{}{
		"expires_at":          snap.PeriodEnd,
		"subscription_status": snap.Status,
		"plan_is_active":      snap.Status == "active",
		"plan_is_trial":       snap.TrialEnd != nil,
	}
	return s.UpdateByEmail(email, fields)
}

// Cancel resets the record to its unsubscribed baseline.
func Cancel(s Store, email string, now time.Time) error {
	return s.UpdateByEmail(email, baselineFields(StatusCancelled, now))
}

// baselineFields is the unsubscribed shape shared by cancellation and the
// gate's expiry correction. Every field is written, nils included, so the
// update is a full overwrite with no merge ambiguity.
func baselineFields(status string, now time.Time) map[string]interface{} {
	return map[string]interface{}{
		"is_pro":          false,
		"role":            users.RoleUser,
		"subscription_id": nil,

		"plan_id":         nil,
		"plan_name":       nil,
		"plan_price":      nil,
		"plan_currency":   nil,
		"plan_interval":   nil,
		"plan_trial_days": nil,

		"plan_is_active": false,
		"plan_is_trial":  false,

		"expires_at":    nil,
		"plan_ended_at": now,

		"subscription_status": status,
	}
}
