package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoockh/journai/internal/models"
	"github.com/yoockh/journai/internal/repositories/memory"
	"github.com/yoockh/journai/internal/utils"
)

func TestUserService_Touch(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	created, err := NewUserService(store, fixedClock(testNow)).Touch(ctx, models.UserProfile{UID: " u1 ", Email: "a@x"})
	require.NoError(t, err)
	assert.True(t, created)

	later := NewUserService(store, fixedClock(testNow.Add(time.Hour)))
	created, err = later.Touch(ctx, models.UserProfile{UID: "u1", DisplayName: "Ana"})
	require.NoError(t, err)
	assert.False(t, created)

	u, err := later.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", u.DisplayName)
	assert.Equal(t, testNow, u.CreatedAt)
	assert.Equal(t, testNow.Add(time.Hour), u.LastLoginAt)

	_, err = later.Touch(ctx, models.UserProfile{})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	_, err = later.Get(ctx, "nobody")
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))

	users, err := later.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
