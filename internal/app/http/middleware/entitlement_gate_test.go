package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quizzq-backend/internal/domain/billing"
	"quizzq-backend/internal/domain/entitlement"
	"quizzq-backend/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type gateStore struct {
	users   map[string]*users.User
	updates int
}

func (g *gateStore) FindByEmail(email string) (*users.User, error) {
	u, ok := g.users[email]
	if !ok {
		return nil, entitlement.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (g *gateStore) UpdateByEmail(email string, fields map[string]interface{}) error {
	u, ok := g.users[email]
	if !ok {
		return entitlement.ErrNotFound
	}
	g.updates++
	if v, ok := fields["is_pro"]; ok {
		u.IsPro = v.(bool)
	}
	if v, ok := fields["role"]; ok {
		u.Role = v.(string)
	}
	if v, ok := fields["subscription_id"]; ok && v == nil {
		u.SubscriptionID = nil
	}
	if v, ok := fields["subscription_status"]; ok {
		u.SubscriptionStatus = v.(string)
	}
	return nil
}

func (g *gateStore) GrantWithEvent(*billing.WebhookEvent, string, map[string]interface{}) error {
	return nil
}

func gateRouter(store *gateStore, email string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if email != "" {
			c.Set("email", email)
		}
	})
	r.GET("/pro", RequirePro(store, zap.NewNop().Sugar()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return r
}

func getPro(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pro", nil))
	return w
}

func TestRequireProNoIdentity(t *testing.T) {
	store := &gateStore{users: map[string]*users.User{}}
	w := getPro(gateRouter(store, ""))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Authentication required"}`, w.Body.String())
}

func TestRequireProFreeUser(t *testing.T) {
	store := &gateStore{users: map[string]*users.User{
		"kid@school.edu": {Email: "kid@school.edu", Role: users.RoleUser},
	}}
	w := getPro(gateRouter(store, "kid@school.edu"))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"PRO subscription required"}`, w.Body.String())
	assert.Zero(t, store.updates)
}

func TestRequireProAllowsActive(t *testing.T) {
	subID := "sub_123"
	end := time.Now().Add(24 * time.Hour)
	store := &gateStore{users: map[string]*users.User{
		"pro@school.edu": {
			Email: "pro@school.edu", Role: users.RoleProUser,
			IsPro: true, SubscriptionID: &subID,
			PlanIsActive: true, ExpiresAt: &end,
		},
	}}
	w := getPro(gateRouter(store, "pro@school.edu"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	assert.Zero(t, store.updates)
}

func TestRequireProExpiredIsResetAndDenied(t *testing.T) {
	subID := "sub_123"
	end := time.Now().Add(-time.Hour)
	store := &gateStore{users: map[string]*users.User{
		"pro@school.edu": {
			Email: "pro@school.edu", Role: users.RoleProUser,
			IsPro: true, SubscriptionID: &subID,
			PlanIsActive: true, ExpiresAt: &end,
			SubscriptionStatus: "active",
		},
	}}
	r := gateRouter(store, "pro@school.edu")

	w := getPro(r)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"PRO subscription has expired"}`, w.Body.String())
	require.Equal(t, 1, store.updates)

	u := store.users["pro@school.edu"]
	assert.False(t, u.IsPro)
	assert.Equal(t, users.RoleUser, u.Role)
	assert.Equal(t, "expired", u.SubscriptionStatus)

	// the record is now baseline; a second request denies without writing
	w = getPro(r)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"PRO subscription required"}`, w.Body.String())
	assert.Equal(t, 1, store.updates)
}
