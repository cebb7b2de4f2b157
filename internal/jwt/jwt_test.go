package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	j := NewJWT("secret")
	userID := uuid.New()

	token, err := j.GenerateAccessToken(userID, time.Hour)
	require.NoError(t, err)

	parsed, err := j.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestParseAccessTokenRejects(t *testing.T) {
	j := NewJWT("secret")
	token, err := j.GenerateAccessToken(uuid.New(), time.Hour)
	require.NoError(t, err)

	_, err = NewJWT("other").ParseAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = j.ParseAccessToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	j.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = j.ParseAccessToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}
