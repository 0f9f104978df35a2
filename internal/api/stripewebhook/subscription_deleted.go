package stripewebhook

import (
	"errors"

	"quizzq-backend/internal/domain/entitlement"

	"github.com/stripe/stripe-go/v75"
)

// handleSubscriptionDeleted resets the user to the unsubscribed baseline.
func (h *Handler) handleSubscriptionDeleted(sub *stripe.Subscription) error {
	email, err := h.customerEmailFor(sub)
	if err != nil {
		return err
	}

	if err := entitlement.Cancel(h.Store, email, h.now()); err != nil {
		if errors.Is(err, entitlement.ErrNotFound) {
			h.Log.Warnw("webhook_cancel_no_user", "email", email, "subscription_id", sub.ID)
			return nil
		}
		return err
	}

	h.Log.Infow("entitlement_cancelled", "email", email, "subscription_id", sub.ID)
	return nil
}
