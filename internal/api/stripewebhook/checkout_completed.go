package stripewebhook

import (
	"errors"
	"fmt"

	"quizzq-backend/internal/domain/billing"
	"quizzq-backend/internal/domain/entitlement"

	"github.com/stripe/stripe-go/v75"
)

// handleCheckoutCompleted applies the grant transition. The ledger row and
// the entitlement write commit together in the store, so a redelivered
// session id surfaces as ErrDuplicateEvent, and a delivery that failed
// mid-write leaves no ledger row and stays retryable.
func (h *Handler) handleCheckoutCompleted(session *stripe.CheckoutSession) error {
	if session.ID == "" {
		return errors.New("checkout session missing id")
	}
	if session.Subscription == nil || session.Subscription.ID == "" {
		return errors.New("checkout session missing subscription")
	}

	email := checkoutEmail(session)
	if email == "" {
		return errors.New("checkout session missing customer email")
	}

	user, err := h.Store.FindByEmail(email)
	if err != nil {
		return fmt.Errorf("user not found for %s: %w", email, err)
	}

	// Second processor call: the event carries only the subscription id.
	sub, err := h.Stripe.Subscription(session.Subscription.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch subscription: %w", err)
	}
	if sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].Price == nil {
		return fmt.Errorf("subscription %s has no priced items", sub.ID)
	}
	snap := snapshotOf(sub)
	plan := h.planInfoFor(sub.Items.Data[0].Price)

	ev := &billing.WebhookEvent{
		SessionID:     session.ID,
		UserID:        user.ID,
		Status:        snap.Status,
		CustomerEmail: email,
	}
	if err := entitlement.Grant(h.Store, email, ev, snap, plan, h.now()); err != nil {
		if errors.Is(err, entitlement.ErrDuplicateEvent) {
			return err
		}
		return fmt.Errorf("failed to grant entitlement: %w", err)
	}

	h.Log.Infow("entitlement_granted",
		"email", email,
		"subscription_id", snap.SubscriptionID,
		"plan", plan.Name,
		"expires_at", snap.PeriodEnd,
	)
	return nil
}

// planInfoFor prefers the locally synced plan row for display metadata and
// falls back to the price object when the catalog has not seen the price yet.
func (h *Handler) planInfoFor(price *stripe.Price) entitlement.PlanInfo {
	if plan, ok := h.Plans.ByPriceID(price.ID); ok {
		return entitlement.PlanInfo{
			PriceID:    plan.StripePriceID,
			Name:       plan.Name,
			PriceCents: plan.PriceCents,
			Currency:   plan.Currency,
			Interval:   plan.Interval,
			TrialDays:  plan.TrialDays,
		}
	}

	info := entitlement.PlanInfo{
		PriceID:    price.ID,
		Name:       price.Nickname,
		PriceCents: price.UnitAmount,
		Currency:   string(price.Currency),
	}
	if price.Recurring != nil {
		info.Interval = string(price.Recurring.Interval)
		info.TrialDays = price.Recurring.TrialPeriodDays
	}
	return info
}

func checkoutEmail(session *stripe.CheckoutSession) string {
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		return session.CustomerDetails.Email
	}
	return session.CustomerEmail
}
