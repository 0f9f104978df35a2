package quizzes

import (
	"time"

	"quizzq-backend/internal/domain/classes"

	"gorm.io/datatypes"
)

type Quiz struct {
	ID         uint `gorm:"primaryKey"`
	ClassID    uint `gorm:"index"`
	Class      classes.Class
	OwnerID    uint `gorm:"index"`
	Title      string
	Topic      string
	Difficulty string `gorm:"type:varchar(20);not null;default:'medium'"`
	Published  bool
	Generated  bool // true when produced by the AI generator
	Questions  []Question
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Question struct {
	ID       uint `gorm:"primaryKey"`
	QuizID   uint `gorm:"index"`
	Position int
	Prompt   string
	// Choices is a JSON array of answer strings; Answer indexes into it.
	Choices datatypes.JSON
	Answer  int
}
