package security_test

import (
	"context"
	"testing"
	"time"

	security "github.com/linemk/storefront/internal/jwt-new"
	"github.com/linemk/storefront/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToken_RoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "testsecret")

	token, err := security.NewToken(context.Background(), &models.User{ID: 42, Email: "buyer@example.com"}, time.Hour)
	require.NoError(t, err)

	userID, err := security.ParseUserID(token, []byte("testsecret"))
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)

	_, err = security.ParseUserID(token, []byte("othersecret"))
	assert.ErrorIs(t, err, security.ErrInvalidToken)
}

func TestNewToken_Expired(t *testing.T) {
	t.Setenv("JWT_SECRET", "testsecret")

	token, err := security.NewToken(context.Background(), &models.User{ID: 42}, -time.Minute)
	require.NoError(t, err)

	_, err = security.ParseUserID(token, []byte("testsecret"))
	assert.ErrorIs(t, err, security.ErrInvalidToken)
}

func TestNewToken_NoSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := security.NewToken(context.Background(), &models.User{ID: 1}, time.Hour)
	assert.ErrorIs(t, err, security.ErrNoSecret)
}
