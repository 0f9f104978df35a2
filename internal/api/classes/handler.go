package classes

import (
	"errors"
	"net/http"
	"strings"

	"quizzq-backend/internal/domain/classes"
	"quizzq-backend/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Handler struct {
	DB *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db}
}

func canManageClasses(role string) bool {
	switch role {
	case users.RoleTeacher, users.RoleProUser, users.RoleAdmin:
		return true
	}
	return false
}

// newJoinCode derives a short, shareable code. Uniqueness is enforced by the
// DB index; collisions on 8 hex chars are rare enough to just retry the call.
func newJoinCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// joinFailure maps a membership insert error: the unique index on
// (class_id, user_id) means a duplicate key is "already joined", anything
// else is a real write failure.
func joinFailure(err error) (int, gin.H) {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return http.StatusConflict, gin.H{"error": "Already a member of this class"}
	}
	return http.StatusInternalServerError, gin.H{"error": "Failed to join class"}
}

func (h *Handler) CreateClass(c *gin.Context) {
	if !canManageClasses(c.GetString("role")) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only teachers can create classes"})
		return
	}

	var input struct {
		Name    string `json:"name" binding:"required"`
		Subject string `json:"subject"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	class := classes.Class{
		Name:      input.Name,
		Subject:   input.Subject,
		TeacherID: c.GetUint("user_id"),
		JoinCode:  newJoinCode(),
	}
	if err := h.DB.Create(&class).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create class"})
		return
	}

	c.JSON(http.StatusOK, class)
}

func (h *Handler) JoinClass(c *gin.Context) {
	var input struct {
		JoinCode string `json:"join_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var class classes.Class
	if err := h.DB.Where("join_code = ?", strings.ToUpper(input.JoinCode)).First(&class).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Class not found"})
		return
	}

	membership := classes.Membership{
		ClassID: class.ID,
		UserID:  c.GetUint("user_id"),
	}
	if err := h.DB.Create(&membership).Error; err != nil {
		status, body := joinFailure(err)
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Joined class", "class_id": class.ID})
}

// ListClasses returns classes the caller teaches plus classes they joined.
func (h *Handler) ListClasses(c *gin.Context) {
	userID := c.GetUint("user_id")

	var owned []classes.Class
	if err := h.DB.Where("teacher_id = ?", userID).Find(&owned).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load classes"})
		return
	}

	var joined []classes.Class
	if err := h.DB.
		Joins("JOIN memberships ON memberships.class_id = classes.id").
		Where("memberships.user_id = ?", userID).
		Find(&joined).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load classes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"owned": owned, "joined": joined})
}

func (h *Handler) ListMembers(c *gin.Context) {
	classID := c.Param("id")

	var class classes.Class
	if err := h.DB.Where("id = ?", classID).First(&class).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Class not found"})
		return
	}

	if class.TeacherID != c.GetUint("user_id") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the class teacher can list members"})
		return
	}

	var members []users.User
	if err := h.DB.
		Joins("JOIN memberships ON memberships.user_id = users.id").
		Where("memberships.class_id = ?", class.ID).
		Select("users.id", "users.name", "users.email", "users.role").
		Find(&members).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load members"})
		return
	}

	c.JSON(http.StatusOK, members)
}
