package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitroom/internal/models"
	"github.com/mmynk/splitroom/internal/storage"
)

type fakeParticipants map[string]*models.Participant

func (f fakeParticipants) GetParticipant(_ context.Context, id string) (*models.Participant, error) {
	p, ok := f[id]
	if !ok {
		return nil, fmt.Errorf("participant %s: %w", id, storage.ErrNotFound)
	}
	return p, nil
}

func TestTokenManager(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	assert.Equal(t, time.Hour, m.Duration())

	token, digest, err := m.Issue("p1", "r1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "p1", claims.ParticipantID)
	assert.Equal(t, "r1", claims.RoomID)
	assert.Equal(t, Digest(claims.ID), digest)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewTokenManager("other-secret", time.Hour).Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		expired, _, err := NewTokenManager("test-secret", -time.Minute).Issue("p1", "r1")
		require.NoError(t, err)
		_, err = m.Validate(expired)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Validate("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned algorithm rejected", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{ParticipantID: "p1", RoomID: "r1"})
		s, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.Validate(s)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestDigest(t *testing.T) {
	assert.Len(t, Digest("secret"), 64)
	assert.Equal(t, Digest("secret"), Digest("secret"))
	assert.NotEqual(t, Digest("secret"), Digest("secret2"))
}

func TestAuthenticator(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	token, digest, err := m.Issue("p1", "r1")
	require.NoError(t, err)

	participants := fakeParticipants{
		"p1": {ID: "p1", RoomID: "r1", Name: "Alice", Role: models.RoleAdmin, TokenDigest: digest},
	}
	a := NewAuthenticator(m, participants)
	ctx := context.Background()

	p, err := a.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.Name)

	_, err = a.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrMissingToken)

	t.Run("reissued token invalidates the old one", func(t *testing.T) {
		newToken, newDigest, err := m.Issue("p1", "r1")
		require.NoError(t, err)
		participants["p1"].TokenDigest = newDigest
		t.Cleanup(func() { participants["p1"].TokenDigest = digest })

		_, err = a.Authenticate(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
		_, err = a.Authenticate(ctx, newToken)
		assert.NoError(t, err)
	})

	t.Run("room mismatch", func(t *testing.T) {
		other, _, err := m.Issue("p1", "r2")
		require.NoError(t, err)
		_, err = a.Authenticate(ctx, other)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("deleted participant", func(t *testing.T) {
		ghost, _, err := m.Issue("p2", "r1")
		require.NoError(t, err)
		_, err = a.Authenticate(ctx, ghost)
		assert.ErrorIs(t, err, ErrUnknownParticipant)
	})
}
