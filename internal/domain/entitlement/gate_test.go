package entitlement

import (
	"testing"
	"time"

	"quizzq-backend/internal/domain/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckUnauthenticated(t *testing.T) {
	f := newFakeStore()
	d, err := Check(f, "", time.Now())
	require.NoError(t, err)
	assert.Equal(t, DenyUnauthenticated, d)
	assert.Equal(t, "Authentication required", d.Message())
}

func TestCheckUnknownUser(t *testing.T) {
	f := newFakeStore()
	d, err := Check(f, "nobody@school.edu", time.Now())
	require.NoError(t, err)
	assert.Equal(t, DenyNotPro, d)
	assert.Equal(t, "PRO subscription required", d.Message())
}

func TestCheckNeverSubscribed(t *testing.T) {
	f := newFakeStore()
	seedUser(f, "free@school.edu")

	d, err := Check(f, "free@school.edu", time.Now())
	require.NoError(t, err)
	assert.Equal(t, DenyNotPro, d)
	assert.Zero(t, f.updates, "a not-pro denial must not write")
}

func TestCheckAllowsActivePro(t *testing.T) {
	f := newFakeStore()
	activePro(f, "pro@school.edu", time.Now().Add(time.Hour))

	d, err := Check(f, "pro@school.edu", time.Now())
	require.NoError(t, err)
	assert.Equal(t, Allow, d)
	assert.Zero(t, f.updates)
}

func TestCheckNilExpiryStaysPro(t *testing.T) {
	f := newFakeStore()
	u := activePro(f, "pro@school.edu", time.Now())
	u.ExpiresAt = nil

	d, err := Check(f, "pro@school.edu", time.Now())
	require.NoError(t, err)
	assert.Equal(t, Allow, d)
}

func TestCheckExpirySelfHeals(t *testing.T) {
	f := newFakeStore()
	activePro(f, "lapsed@school.edu", time.Now().Add(-time.Second))

	now := time.Now()

	// first check denies as expired and corrects the record
	d, err := Check(f, "lapsed@school.edu", now)
	require.NoError(t, err)
	assert.Equal(t, DenyExpired, d)
	assert.Equal(t, "PRO subscription has expired", d.Message())

	u := f.users["lapsed@school.edu"]
	assert.False(t, u.IsPro)
	assert.Equal(t, users.RoleUser, u.Role)
	assert.Nil(t, u.SubscriptionID)
	assert.Equal(t, StatusExpired, u.SubscriptionStatus)
	require.NotNil(t, u.PlanEndedAt)

	// second check sees the corrected record: plain not-pro, no more writes
	writes := f.updates
	d, err = Check(f, "lapsed@school.edu", now)
	require.NoError(t, err)
	assert.Equal(t, DenyNotPro, d)
	assert.Equal(t, writes, f.updates)
}

func TestCheckInactiveStatusTriggersReset(t *testing.T) {
	f := newFakeStore()
	// still within the period, but the processor reported past_due and the
	// update transition recorded plan_is_active=false
	u := activePro(f, "pastdue@school.edu", time.Now().Add(time.Hour))
	u.PlanIsActive = false
	u.SubscriptionStatus = "past_due"

	d, err := Check(f, "pastdue@school.edu", time.Now())
	require.NoError(t, err)
	assert.Equal(t, DenyExpired, d)

	assert.False(t, f.users["pastdue@school.edu"].IsPro)
	assert.Equal(t, StatusExpired, f.users["pastdue@school.edu"].SubscriptionStatus)
}
