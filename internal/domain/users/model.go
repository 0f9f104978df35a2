package users

import (
	"time"
)

// Roles. FREE appears on rows imported from the legacy platform but is never
// written by this codebase; the unsubscribed baseline is USER.
const (
	RoleFree    = "FREE"
	RoleUser    = "USER"
	RoleTeacher = "TEACHER"
	RoleProUser = "PROUSER"
	RoleAdmin   = "ADMIN"
)

type User struct {
	ID           uint `gorm:"primaryKey"`
	Name         string
	Email        string  `gorm:"not null;uniqueIndex:idx_users_email"`
	Password     *string `gorm:""`
	AuthProvider string  `gorm:"type:varchar(20);not null;default:'local'"`
	GoogleSub    *string `gorm:"uniqueIndex:idx_users_google_sub"`
	Role         string  `gorm:"not null;default:'USER'"`
	IsVerified   bool

	SchoolName *string `gorm:"column:school_name"`

	// Entitlement fields. Written only by the webhook ingestor and the
	// PRO gate's lazy expiry correction; everything else reads them.
	IsPro            bool    `gorm:"column:is_pro;not null;default:false"`
	SubscriptionID   *string `gorm:"column:subscription_id;uniqueIndex:idx_users_subscription_id"`
	StripeCustomerID *string `gorm:"column:stripe_customer_id;uniqueIndex:idx_users_stripe_customer_id"`

	PlanID        *string `gorm:"column:plan_id"`
	PlanName      *string `gorm:"column:plan_name"`
	PlanPrice     *int64  `gorm:"column:plan_price"`
	PlanCurrency  *string `gorm:"column:plan_currency"`
	PlanInterval  *string `gorm:"column:plan_interval"`
	PlanTrialDays *int64  `gorm:"column:plan_trial_days"`

	PlanIsActive bool `gorm:"column:plan_is_active;not null;default:false"`
	PlanIsTrial  bool `gorm:"column:plan_is_trial;not null;default:false"`

	ExpiresAt     *time.Time `gorm:"column:expires_at"`
	PlanStartedAt *time.Time `gorm:"column:plan_started_at"`
	PlanEndedAt   *time.Time `gorm:"column:plan_ended_at"`

	SubscriptionStatus string `gorm:"column:subscription_status;not null;default:'none'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
