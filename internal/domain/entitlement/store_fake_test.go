package entitlement

import (
	"time"

	"quizzq-backend/internal/domain/billing"
	"quizzq-backend/internal/domain/users"
)

// fakeStore is an in-memory Store that applies field maps the way the gorm
// implementation would.
type fakeStore struct {
	users   map[string]*users.User
	events  map[string]*billing.WebhookEvent
	updates int

	// grantErr makes the next GrantWithEvent fail before any state change,
	// mimicking a transient write error inside the store transaction.
	grantErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:  make(map[string]*users.User),
		events: make(map[string]*billing.WebhookEvent),
	}
}

func (f *fakeStore) FindByEmail(email string) (*users.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) UpdateByEmail(email string, fields map[string]interface{}) error {
	u, ok := f.users[email]
	if !ok {
		return ErrNotFound
	}
	applyFields(u, fields)
	f.updates++
	return nil
}

func (f *fakeStore) GrantWithEvent(ev *billing.WebhookEvent, email string, fields map[string]interface{}) error {
	if _, ok := f.events[ev.SessionID]; ok {
		return ErrDuplicateEvent
	}
	u, ok := f.users[email]
	if !ok {
		return ErrNotFound
	}
	if f.grantErr != nil {
		err := f.grantErr
		f.grantErr = nil
		return err
	}
	ev.CreatedAt = time.Now()
	f.events[ev.SessionID] = ev
	applyFields(u, fields)
	f.updates++
	return nil
}

func applyFields(u *users.User, fields map[string]interface{}) {
	for k, v := range fields {
		switch k {
		case "is_pro":
			u.IsPro = v.(bool)
		case "role":
			u.Role = v.(string)
		case "subscription_id":
			u.SubscriptionID = strPtr(v)
		case "plan_id":
			u.PlanID = strPtr(v)
		case "plan_name":
			u.PlanName = strPtr(v)
		case "plan_price":
			u.PlanPrice = int64Ptr(v)
		case "plan_currency":
			u.PlanCurrency = strPtr(v)
		case "plan_interval":
			u.PlanInterval = strPtr(v)
		case "plan_trial_days":
			u.PlanTrialDays = int64Ptr(v)
		case "plan_is_active":
			u.PlanIsActive = v.(bool)
		case "plan_is_trial":
			u.PlanIsTrial = v.(bool)
		case "expires_at":
			u.ExpiresAt = timePtr(v)
		case "plan_started_at":
			u.PlanStartedAt = timePtr(v)
		case "plan_ended_at":
			u.PlanEndedAt = timePtr(v)
		case "subscription_status":
			u.SubscriptionStatus = v.(string)
		}
	}
}

func strPtr(v interface{}) *string {
	if v == nil {
		return nil
	}
	s := v.(string)
	return &s
}

func int64Ptr(v interface{}) *int64 {
	if v == nil {
		return nil
	}
	n := v.(int64)
	return &n
}

func timePtr(v interface{}) *time.Time {
	if v == nil {
		return nil
	}
	t := v.(time.Time)
	return &t
}
