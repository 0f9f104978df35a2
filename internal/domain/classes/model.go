package classes

import (
	"time"

	"quizzq-backend/internal/domain/users"
)

type Class struct {
	ID        uint `gorm:"primaryKey"`
	Name      string
	Subject   string
	TeacherID uint       `gorm:"index"`
	Teacher   users.User `gorm:"foreignKey:TeacherID"`
	JoinCode  string     `gorm:"not null;uniqueIndex:idx_classes_join_code"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Membership struct {
	ID        uint       `gorm:"primaryKey"`
	ClassID   uint       `gorm:"not null;uniqueIndex:idx_memberships_class_user"`
	Class     Class      `gorm:"constraint:OnDelete:CASCADE"`
	UserID    uint       `gorm:"not null;uniqueIndex:idx_memberships_class_user"`
	User      users.User `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}
