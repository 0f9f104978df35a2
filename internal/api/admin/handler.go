package admin

import (
	"net/http"
	"time"

	"quizzq-backend/internal/domain/billing"
	"quizzq-backend/internal/domain/quizzes"
	"quizzq-backend/internal/domain/users"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	DB *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db}
}

type AdminUser struct {
	ID             uint       `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Role           string     `json:"role"`
	IsVerified     bool       `json:"is_verified"`
	IsPro          bool       `json:"is_pro"`
	PlanName       *string    `json:"plan_name,omitempty"`
	SubscriptionID *string    `json:"subscription_id,omitempty"`
	Status         string     `json:"status"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

type AdminStats struct {
	TotalUsers    int64 `json:"total_users"`
	ProUsers      int64 `json:"pro_users"`
	TotalQuizzes  int64 `json:"total_quizzes"`
	RecentSignups int64 `json:"recent_signups"`
}

func (h *Handler) ListAllUsers(c *gin.Context) {
	var all []users.User
	if err := h.DB.Order("created_at DESC").Find(&all).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}

	adminUsers := make([]AdminUser, 0, len(all))
	for _, u := range all {
		adminUsers = append(adminUsers, AdminUser{
			ID:             u.ID,
			Name:           u.Name,
			Email:          u.Email,
			Role:           u.Role,
			IsVerified:     u.IsVerified,
			IsPro:          u.IsPro,
			PlanName:       u.PlanName,
			SubscriptionID: u.SubscriptionID,
			Status:         u.SubscriptionStatus,
			ExpiresAt:      u.ExpiresAt,
		})
	}

	c.JSON(http.StatusOK, adminUsers)
}

// ListWebhookEvents exposes the idempotency ledger for support debugging.
func (h *Handler) ListWebhookEvents(c *gin.Context) {
	var events []billing.WebhookEvent
	if err := h.DB.Order("created_at DESC").Limit(200).Find(&events).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load webhook events"})
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *Handler) GetAdminStats(c *gin.Context) {
	var stats AdminStats

	h.DB.Model(&users.User{}).Count(&stats.TotalUsers)
	h.DB.Model(&users.User{}).Where("is_pro = ?", true).Count(&stats.ProUsers)
	h.DB.Model(&quizzes.Quiz{}).Count(&stats.TotalQuizzes)

	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	h.DB.Model(&users.User{}).Where("created_at >= ?", thirtyDaysAgo).Count(&stats.RecentSignups)

	c.JSON(http.StatusOK, stats)
}
