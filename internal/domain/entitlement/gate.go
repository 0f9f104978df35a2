package entitlement

import (
	"errors"
	"time"

	"quizzq-backend/internal/domain/users"
)

// Decision is the outcome of a PRO-entitlement check.
type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyNotPro
	DenyExpired
)

// Message returns the caller-facing denial reason, distinguished so the
// frontend can route toward re-login vs. upgrade vs. renewal.
func (d Decision) Message() string {
	switch d {
	case DenyUnauthenticated:
		return "Authentication required"
	case DenyExpired:
		return "PRO subscription has expired"
	case DenyNotPro:
		return "PRO subscription required"
	default:
		return ""
	}
}

// Check decides whether the identity currently holds a valid PRO entitlement.
// A record that still claims PRO but is past its expiry (or reported inactive
// by the processor) is corrected in place: Check writes the unsubscribed
// baseline with status "expired" and then denies the request. The next check
// on the corrected record denies as plain not-PRO.
func Check(s Store, email string, now time.Time) (Decision, error) {
	if email == "" {
		return DenyUnauthenticated, nil
	}

	user, err := s.FindByEmail(email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return DenyNotPro, nil
		}
		return DenyNotPro, err
	}

	if !user.IsPro || user.Role != users.RoleProUser || user.SubscriptionID == nil {
		return DenyNotPro, nil
	}

	expired := !user.PlanIsActive ||
		(user.ExpiresAt != nil && !user.ExpiresAt.After(now))
	if expired {
		if err := s.UpdateByEmail(email, baselineFields(StatusExpired, now)); err != nil {
			return DenyExpired, err
		}
		return DenyExpired, nil
	}

	return Allow, nil
}
