package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"todo-app/models"
)

func TestUserContext(t *testing.T) {
	assert.Nil(t, UserFromContext(context.Background()))

	user := &models.User{ID: "u1", Username: "alice"}
	ctx := WithUser(context.Background(), user)
	assert.Same(t, user, UserFromContext(ctx))
}
