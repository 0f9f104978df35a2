package stripewebhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quizzq-backend/internal/domain/billing"
	"quizzq-backend/internal/domain/entitlement"
	"quizzq-backend/internal/domain/plans"
	"quizzq-backend/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v75"
	"go.uber.org/zap"
)

const testSecret = "whsec_test_secret"

/* ---------------- fakes ---------------- */

type fakeStore struct {
	users   map[string]*users.User
	events  map[string]*billing.WebhookEvent
	updates int

	// grantErr makes the next GrantWithEvent fail before any state change,
	// like a transient write error rolling back the store transaction.
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
		return nil, entitlement.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) UpdateByEmail(email string, fields map[string]interface{}) error {
	u, ok := f.users[email]
	if !ok {
		return entitlement.ErrNotFound
	}
	f.updates++
	f.applyFields(u, fields)
	return nil
}

func (f *fakeStore) GrantWithEvent(ev *billing.WebhookEvent, email string, fields map[string]interface{}) error {
	if _, ok := f.events[ev.SessionID]; ok {
		return entitlement.ErrDuplicateEvent
	}
	u, ok := f.users[email]
	if !ok {
		return entitlement.ErrNotFound
	}
	if f.grantErr != nil {
		err := f.grantErr
		f.grantErr = nil
		return err
	}
	f.events[ev.SessionID] = ev
	f.updates++
	f.applyFields(u, fields)
	return nil
}

func (f *fakeStore) applyFields(u *users.User, fields map[string]interface{}) {
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

type fakeStripe struct {
	sub      *stripe.Subscription
	subErr   error
	emails   map[string]string
	subCalls int
}

func (f *fakeStripe) Subscription(id string) (*stripe.Subscription, error) {
	f.subCalls++
	if f.subErr != nil {
		return nil, f.subErr
	}
	return f.sub, nil
}

func (f *fakeStripe) CustomerEmail(id string) (string, error) {
	email, ok := f.emails[id]
	if !ok {
		return "", fmt.Errorf("no customer %s", id)
	}
	return email, nil
}

type fakeCatalog struct {
	byPrice map[string]*plans.Plan
}

func (f *fakeCatalog) ByPriceID(priceID string) (*plans.Plan, bool) {
	p, ok := f.byPrice[priceID]
	return p, ok
}

/* ---------------- helpers ---------------- */

func testSubscription(status stripe.SubscriptionStatus, periodEnd time.Time) *stripe.Subscription {
	return &stripe.Subscription{
		ID:               "sub_123",
		Status:           status,
		CurrentPeriodEnd: periodEnd.Unix(),
		Items: &stripe.SubscriptionItemList{
			Data: []*stripe.SubscriptionItem{
				{Price: &stripe.Price{
					ID:         "price_123",
					UnitAmount: 999,
					Currency:   stripe.CurrencyEUR,
					Nickname:   "PRO Monthly",
					Recurring:  &stripe.PriceRecurring{Interval: stripe.PriceRecurringIntervalMonth},
				}},
			},
		},
	}
}

func newTestSetup(t *testing.T) (*gin.Engine, *fakeStore, *fakeStripe, *fakeCatalog) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newFakeStore()
	client := &fakeStripe{
		sub:    testSubscription(stripe.SubscriptionStatusActive, time.Now().Add(30*24*time.Hour)),
		emails: map[string]string{"cus_1": "pro@school.edu"},
	}
	catalog := &fakeCatalog{byPrice: map[string]*plans.Plan{
		"price_123": {
			Name:          "QUIZZQ PRO Monthly",
			PriceCents:    999,
			Currency:      "eur",
			StripePriceID: "price_123",
			Interval:      "month",
			TrialDays:     7,
		},
	}}

	h := New(store, catalog, client, testSecret, zap.NewNop().Sugar())

	r := gin.New()
	r.POST("/webhook", h.HandleWebhook)
	return r, store, client, catalog
}

func signHeader(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func deliver(r *gin.Engine, payload, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload))
	if header != "" {
		req.Header.Set("Stripe-Signature", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func eventJSON(eventType, object string) string {
	return fmt.Sprintf(`{"id":"evt_1","object":"event","api_version":"2023-10-16","type":%q,"data":{"object":%s}}`, eventType, object)
}

func checkoutCompletedJSON() string {
	return eventJSON("checkout.session.completed",
		`{"id":"cs_test_1","object":"checkout.session","customer_details":{"email":"pro@school.edu"},"subscription":"sub_123"}`)
}

/* ---------------- tests ---------------- */

func TestWebhookGrantIsIdempotent(t *testing.T) {
	r, store, _, catalog := newTestSetup(t)
	store.users["pro@school.edu"] = &users.User{ID: 7, Email: "pro@school.edu", Role: users.RoleUser}

	payload := checkoutCompletedJSON()

	w := deliver(r, payload, signHeader([]byte(payload), testSecret, time.Now()))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true}`, w.Body.String())

	u := store.users["pro@school.edu"]
	assert.True(t, u.IsPro)
	assert.Equal(t, users.RoleProUser, u.Role)
	require.NotNil(t, u.SubscriptionID)
	assert.Equal(t, "sub_123", *u.SubscriptionID)
	require.NotNil(t, u.PlanName)
	assert.Equal(t, "QUIZZQ PRO Monthly", *u.PlanName)
	assert.True(t, u.PlanIsActive)
	require.Len(t, store.events, 1)
	assert.Equal(t, uint(7), store.events["cs_test_1"].UserID)

	// a redelivery must not mutate again, even if the catalog changed
	catalog.byPrice["price_123"].Name = "Renamed Plan"
	writes := store.updates

	w = deliver(r, payload, signHeader([]byte(payload), testSecret, time.Now()))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true}`, w.Body.String())

	assert.Len(t, store.events, 1)
	assert.Equal(t, writes, store.updates)
	assert.Equal(t, "QUIZZQ PRO Monthly", *store.users["pro@school.edu"].PlanName)
}

func TestWebhookTamperedBodyRejected(t *testing.T) {
	r, store, _, _ := newTestSetup(t)
	store.users["pro@school.edu"] = &users.User{ID: 7, Email: "pro@school.edu", Role: users.RoleUser}

	payload := checkoutCompletedJSON()
	header := signHeader([]byte(payload), testSecret, time.Now())
	tampered := strings.Replace(payload, "pro@school.edu", "evil@school.edu", 1)

	w := deliver(r, tampered, header)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, store.users["pro@school.edu"].IsPro)
	assert.Empty(t, store.events)
	assert.Zero(t, store.updates)
}

func TestWebhookMissingSignatureRejected(t *testing.T) {
	r, store, _, _ := newTestSetup(t)

	w := deliver(r, checkoutCompletedJSON(), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, store.updates)
}

func TestWebhookUnknownEventAcknowledged(t *testing.T) {
	r, store, _, _ := newTestSetup(t)
	store.users["pro@school.edu"] = &users.User{ID: 7, Email: "pro@school.edu", Role: users.RoleUser}

	payload := eventJSON("invoice.payment_succeeded", `{"id":"in_1","object":"invoice"}`)
	w := deliver(r, payload, signHeader([]byte(payload), testSecret, time.Now()))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true}`, w.Body.String())
	assert.Zero(t, store.updates)
	assert.Empty(t, store.events)
}

func TestWebhookGrantFailsWhenUserMissing(t *testing.T) {
	r, store, _, _ := newTestSetup(t)

	payload := checkoutCompletedJSON()
	w := deliver(r, payload, signHeader([]byte(payload), testSecret, time.Now()))

	// the processor retries server errors; by then the user may exist
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, store.events)
}

func TestWebhookGrantRetryAfterFailedWrite(t *testing.T) {
	r, store, _, _ := newTestSetup(t)
	store.users["pro@school.edu"] = &users.User{ID: 7, Email: "pro@school.edu", Role: users.RoleUser}
	store.grantErr = errors.New("connection reset")

	payload := checkoutCompletedJSON()

	// first delivery fails mid-write; no ledger row may survive it
	w := deliver(r, payload, signHeader([]byte(payload), testSecret, time.Now()))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, store.events)
	assert.False(t, store.users["pro@school.edu"].IsPro)

	// Stripe redelivers and the grant lands
	w = deliver(r, payload, signHeader([]byte(payload), testSecret, time.Now()))
	require.Equal(t, http.StatusOK, w.Code)

	u := store.users["pro@school.edu"]
	assert.True(t, u.IsPro)
	assert.Equal(t, users.RoleProUser, u.Role)
	require.Len(t, store.events, 1)
}

func TestWebhookGrantRejectsSubWithoutItems(t *testing.T) {
	r, store, client, _ := newTestSetup(t)
	store.users["pro@school.edu"] = &users.User{ID: 7, Email: "pro@school.edu", Role: users.RoleUser}
	client.sub = &stripe.Subscription{ID: "sub_123", Status: stripe.SubscriptionStatusActive}

	payload := checkoutCompletedJSON()
	w := deliver(r, payload, signHeader([]byte(payload), testSecret, time.Now()))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, store.events)
	assert.False(t, store.users["pro@school.edu"].IsPro)
}

func TestWebhookUpdateRecordsPastDueWithoutRevoking(t *testing.T) {
	r, store, _, _ := newTestSetup(t)
	subID := "sub_123"
	end := time.Now().Add(24 * time.Hour)
	store.users["pro@school.edu"] = &users.User{
		ID: 7, Email: "pro@school.edu", Role: users.RoleProUser,
		IsPro: true, SubscriptionID: &subID, PlanIsActive: true,
		ExpiresAt: &end, SubscriptionStatus: "active",
	}

	payload := eventJSON("customer.subscription.updated",
		fmt.Sprintf(`{"id":"sub_123","object":"subscription","status":"past_due","current_period_end":%d,"customer":"cus_1"}`, end.Unix()))
	w := deliver(r, payload, signHeader([]byte(payload), testSecret, time.Now()))

	require.Equal(t, http.StatusOK, w.Code)

	u := store.users["pro@school.edu"]
	assert.Equal(t, "past_due", u.SubscriptionStatus)
	assert.False(t, u.PlanIsActive)
	assert.True(t, u.IsPro, "update must not revoke by itself")
	assert.Equal(t, users.RoleProUser, u.Role)
}

func TestWebhookCancelResetsUser(t *testing.T) {
	r, store, _, _ := newTestSetup(t)
	subID := "sub_123"
	planName := "QUIZZQ PRO Monthly"
	end := time.Now().Add(24 * time.Hour)
	store.users["pro@school.edu"] = &users.User{
		ID: 7, Email: "pro@school.edu", Role: users.RoleProUser,
		IsPro: true, SubscriptionID: &subID, PlanName: &planName,
		PlanIsActive: true, ExpiresAt: &end, SubscriptionStatus: "active",
	}

	payload := eventJSON("customer.subscription.deleted",
		`{"id":"sub_123","object":"subscription","status":"canceled","customer":"cus_1"}`)
	w := deliver(r, payload, signHeader([]byte(payload), testSecret, time.Now()))

	require.Equal(t, http.StatusOK, w.Code)

	u := store.users["pro@school.edu"]
	assert.False(t, u.IsPro)
	assert.Equal(t, users.RoleUser, u.Role)
	assert.Nil(t, u.SubscriptionID)
	assert.Nil(t, u.PlanName)
	assert.Nil(t, u.ExpiresAt)
	assert.Equal(t, "cancelled", u.SubscriptionStatus)
	require.NotNil(t, u.PlanEndedAt)
}

func TestWebhookCancelUnknownUserAcked(t *testing.T) {
	r, store, client, _ := newTestSetup(t)
	client.emails["cus_1"] = "deleted@school.edu"

	payload := eventJSON("customer.subscription.deleted",
		`{"id":"sub_123","object":"subscription","status":"canceled","customer":"cus_1"}`)
	w := deliver(r, payload, signHeader([]byte(payload), testSecret, time.Now()))

	// nothing to do locally; ack so Stripe stops redelivering
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, store.updates)
}
