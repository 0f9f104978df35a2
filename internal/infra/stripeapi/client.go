package stripeapi

import (
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/customer"
	"github.com/stripe/stripe-go/v75/subscription"
)

// Client is the slice of the Stripe API the webhook ingestor needs. The live
// implementation is below; tests substitute a stub.
type Client interface {
	Subscription(id string) (*stripe.Subscription, error)
	CustomerEmail(id string) (string, error)
}

type Live struct{}

func (Live) Subscription(id string) (*stripe.Subscription, error) {
	sub, err := subscription.Get(id, nil)
	if err != nil {
		return nil, err
	}
	if sub == nil || sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].Price == nil {
		return nil, errors.New("subscription missing items/price")
	}
	return sub, nil
}

func (Live) CustomerEmail(id string) (string, error) {
	cus, err := customer.Get(id, nil)
	if err != nil {
		return "", err
	}
	if cus.Email == "" {
		return "", errors.New("stripe customer has no email")
	}
	return cus.Email, nil
}

// NormalizeStatus collapses Stripe's subscription statuses into the buckets
// the rest of the app reports.
func NormalizeStatus(s string) string {
	switch strings.TrimSpace(s) {
	case "":
		return "none"
	case "active":
		return "active"
	case "trialing":
		return "trialing"
	case "past_due", "unpaid":
		return "past_due"
	case "canceled", "incomplete_expired":
		return "canceled"
	default:
		return strings.TrimSpace(s)
	}
}
