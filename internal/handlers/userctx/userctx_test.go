package userctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/gym/internal/models"
)

func TestPrincipal(t *testing.T) {
	_, ok := Principal(context.Background())
	assert.False(t, ok, "anonymous context has no principal")

	ctx := WithPrincipal(context.Background(), models.User{Username: "John.Smith", Role: models.RoleTrainee})
	u, ok := Principal(ctx)

	require.True(t, ok)
	assert.Equal(t, "John.Smith", u.Username)
	assert.Equal(t, models.RoleTrainee, u.Role)
}
