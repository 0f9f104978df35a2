package users

import (
	"net/http"
	"time"

	"quizzq-backend/internal/domain/users"
	"quizzq-backend/internal/infra/stripeapi"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	DB *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db}
}

type SubscriptionDTO struct {
	IsPro         bool       `json:"is_pro"`
	Status        string     `json:"status"`
	PlanName      *string    `json:"plan_name,omitempty"`
	PlanPrice     *int64     `json:"plan_price,omitempty"`
	PlanCurrency  *string    `json:"plan_currency,omitempty"`
	PlanInterval  *string    `json:"plan_interval,omitempty"`
	PlanIsTrial   bool       `json:"plan_is_trial"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	PlanStartedAt *time.Time `json:"plan_started_at,omitempty"`
}

type MeResponse struct {
	ID           uint            `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Role         string          `json:"role"`
	IsVerified   bool            `json:"is_verified"`
	SchoolName   *string         `json:"school_name,omitempty"`
	Subscription SubscriptionDTO `json:"subscription"`
}

// GetCurrentUser exposes the profile and a read-only view of the entitlement
// fields. It never mutates them; that is the ingestor's and the gate's job.
func (h *Handler) GetCurrentUser(c *gin.Context) {
	email := c.GetString("email")
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user users.User
	if err := h.DB.Where("email = ?", email).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, MeResponse{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       user.Role,
		IsVerified: user.IsVerified,
		SchoolName: user.SchoolName,
		Subscription: SubscriptionDTO{
			IsPro:         user.IsPro,
			Status:        stripeapi.NormalizeStatus(user.SubscriptionStatus),
			PlanName:      user.PlanName,
			PlanPrice:     user.PlanPrice,
			PlanCurrency:  user.PlanCurrency,
			PlanInterval:  user.PlanInterval,
			PlanIsTrial:   user.PlanIsTrial,
			ExpiresAt:     user.ExpiresAt,
			PlanStartedAt: user.PlanStartedAt,
		},
	})
}

func (h *Handler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing token"})
		return
	}

	var t users.VerificationToken
	if err := h.DB.Where("token = ? AND type = ?", token, "email_verify").First(&t).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired token"})
		return
	}

	if err := h.DB.Model(&users.User{}).Where("id = ?", t.UserID).Update("is_verified", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify user"})
		return
	}

	h.DB.Delete(&t)

	c.JSON(http.StatusOK, gin.H{"message": "Email verified. You can sign in now."})
}
