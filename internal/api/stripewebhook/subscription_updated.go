package stripewebhook

import (
	"errors"

	"quizzq-backend/internal/domain/entitlement"

	"github.com/stripe/stripe-go/v75"
)

// handleSubscriptionUpdated records the processor's new snapshot. It never
// touches is_pro or role: a past_due status is recorded but access survives
// until cancellation or the PRO gate's lazy expiry check.
func (h *Handler) handleSubscriptionUpdated(sub *stripe.Subscription) error {
	email, err := h.customerEmailFor(sub)
	if err != nil {
		return err
	}

	if err := entitlement.ApplyUpdate(h.Store, email, snapshotOf(sub)); err != nil {
		if errors.Is(err, entitlement.ErrNotFound) {
			// User deleted locally; acknowledge so Stripe stops retrying.
			h.Log.Warnw("webhook_update_no_user", "email", email, "subscription_id", sub.ID)
			return nil
		}
		return err
	}

	h.Log.Infow("entitlement_updated",
		"email", email,
		"subscription_id", sub.ID,
		"status", string(sub.Status),
	)
	return nil
}
