package classes

import (
	"errors"
	"net/http"
	"testing"

	"quizzq-backend/internal/domain/users"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestJoinFailureDuplicateMembership(t *testing.T) {
	status, body := joinFailure(gorm.ErrDuplicatedKey)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Already a member of this class", body["error"])
}

func TestJoinFailureWriteError(t *testing.T) {
	status, body := joinFailure(errors.New("connection reset"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Failed to join class", body["error"])
}

func TestCanManageClasses(t *testing.T) {
	assert.True(t, canManageClasses(users.RoleTeacher))
	assert.True(t, canManageClasses(users.RoleProUser))
	assert.True(t, canManageClasses(users.RoleAdmin))
	assert.False(t, canManageClasses(users.RoleUser))
	assert.False(t, canManageClasses(users.RoleFree))
	assert.False(t, canManageClasses(""))
}
