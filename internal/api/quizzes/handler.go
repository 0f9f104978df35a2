package quizzes

import (
	"encoding/json"
	"net/http"

	"quizzq-backend/internal/ai"
	"quizzq-backend/internal/domain/classes"
	"quizzq-backend/internal/domain/quizzes"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Handler struct {
	DB  *gorm.DB
	AI  *ai.QuizService
	Log *zap.SugaredLogger
}

func NewHandler(db *gorm.DB, quizGen *ai.QuizService, log *zap.SugaredLogger) *Handler {
	return &Handler{DB: db, AI: quizGen, Log: log}
}

type questionInput struct {
	Prompt  string   `json:"prompt" binding:"required"`
	Choices []string `json:"choices" binding:"required"`
	Answer  int      `json:"answer"`
}

func (h *Handler) ownedClass(c *gin.Context, classID uint) (*classes.Class, bool) {
	var class classes.Class
	if err := h.DB.Where("id = ?", classID).First(&class).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Class not found"})
		return nil, false
	}
	if class.TeacherID != c.GetUint("user_id") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your class"})
		return nil, false
	}
	return &class, true
}

func (h *Handler) CreateQuiz(c *gin.Context) {
	var input struct {
		ClassID    uint            `json:"class_id" binding:"required"`
		Title      string          `json:"title" binding:"required"`
		Topic      string          `json:"topic"`
		Difficulty string          `json:"difficulty"`
		Questions  []questionInput `json:"questions"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, ok := h.ownedClass(c, input.ClassID); !ok {
		return
	}

	difficulty := input.Difficulty
	if difficulty == "" {
		difficulty = "medium"
	}

	quiz := quizzes.Quiz{
		ClassID:    input.ClassID,
		OwnerID:    c.GetUint("user_id"),
		Title:      input.Title,
		Topic:      input.Topic,
		Difficulty: difficulty,
	}
	for i, q := range input.Questions {
		choices, err := json.Marshal(q.Choices)
		if err != nil || q.Answer < 0 || q.Answer >= len(q.Choices) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid question"})
			return
		}
		quiz.Questions = append(quiz.Questions, quizzes.Question{
			Position: i,
			Prompt:   q.Prompt,
			Choices:  datatypes.JSON(choices),
			Answer:   q.Answer,
		})
	}

	if err := h.DB.Create(&quiz).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create quiz"})
		return
	}

	c.JSON(http.StatusOK, quiz)
}

func (h *Handler) ListQuizzes(c *gin.Context) {
	userID := c.GetUint("user_id")

	var owned []quizzes.Quiz
	if err := h.DB.Where("owner_id = ?", userID).Order("created_at DESC").Find(&owned).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load quizzes"})
		return
	}

	// published quizzes in classes the caller joined
	var available []quizzes.Quiz
	if err := h.DB.
		Joins("JOIN memberships ON memberships.class_id = quizzes.class_id").
		Where("memberships.user_id = ? AND quizzes.published = ?", userID, true).
		Find(&available).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load quizzes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"owned": owned, "available": available})
}

func (h *Handler) GetQuiz(c *gin.Context) {
	var quiz quizzes.Quiz
	if err := h.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("questions.position ASC")
	}).Where("id = ?", c.Param("id")).First(&quiz).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Quiz not found"})
		return
	}

	userID := c.GetUint("user_id")
	if quiz.OwnerID != userID {
		var member classes.Membership
		if err := h.DB.Where("class_id = ? AND user_id = ?", quiz.ClassID, userID).First(&member).Error; err != nil || !quiz.Published {
			c.JSON(http.StatusForbidden, gin.H{"error": "No access to this quiz"})
			return
		}
	}

	c.JSON(http.StatusOK, quiz)
}

func (h *Handler) PublishQuiz(c *gin.Context) {
	h.setPublished(c, true)
}

func (h *Handler) UnpublishQuiz(c *gin.Context) {
	h.setPublished(c, false)
}

func (h *Handler) setPublished(c *gin.Context, published bool) {
	var quiz quizzes.Quiz
	if err := h.DB.Where("id = ?", c.Param("id")).First(&quiz).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Quiz not found"})
		return
	}
	if quiz.OwnerID != c.GetUint("user_id") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your quiz"})
		return
	}

	if err := h.DB.Model(&quiz).Update("published", published).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update quiz"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"published": published})
}

func (h *Handler) DeleteQuiz(c *gin.Context) {
	var quiz quizzes.Quiz
	if err := h.DB.Where("id = ?", c.Param("id")).First(&quiz).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Quiz not found"})
		return
	}
	if quiz.OwnerID != c.GetUint("user_id") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your quiz"})
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quiz_id = ?", quiz.ID).Delete(&quizzes.Question{}).Error; err != nil {
			return err
		}
		return tx.Delete(&quiz).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete quiz"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Quiz deleted"})
}

// GenerateQuiz builds a quiz with AI-generated questions. PRO-gated at the
// route level.
func (h *Handler) GenerateQuiz(c *gin.Context) {
	if h.AI == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI generation not configured"})
		return
	}

	var input struct {
		ClassID    uint   `json:"class_id" binding:"required"`
		Title      string `json:"title" binding:"required"`
		Topic      string `json:"topic" binding:"required"`
		Difficulty string `json:"difficulty"`
		Count      int    `json:"count"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, ok := h.ownedClass(c, input.ClassID); !ok {
		return
	}

	difficulty := input.Difficulty
	if difficulty == "" {
		difficulty = "medium"
	}
	count := input.Count
	if count == 0 {
		count = 10
	}

	generated, err := h.AI.GenerateQuiz(c.Request.Context(), input.Topic, difficulty, count)
	if err != nil {
		h.Log.Errorw("quiz_generation_failed", "topic", input.Topic, "error", err.Error())
		c.JSON(http.StatusBadGateway, gin.H{"error": "Quiz generation failed"})
		return
	}

	quiz := quizzes.Quiz{
		ClassID:    input.ClassID,
		OwnerID:    c.GetUint("user_id"),
		Title:      input.Title,
		Topic:      input.Topic,
		Difficulty: difficulty,
		Generated:  true,
	}
	for i, q := range generated {
		choices, err := json.Marshal(q.Choices)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode question"})
			return
		}
		quiz.Questions = append(quiz.Questions, quizzes.Question{
			Position: i,
			Prompt:   q.Prompt,
			Choices:  datatypes.JSON(choices),
			Answer:   q.Answer,
		})
	}

	if err := h.DB.Create(&quiz).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save quiz"})
		return
	}

	c.JSON(http.StatusOK, quiz)
}
