package auth

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/mmynk/splitroom/internal/models"
	"github.com/mmynk/splitroom/internal/storage"
)

// ErrUnknownParticipant is returned when a well-formed token no longer
// matches a stored participant.
var ErrUnknownParticipant = errors.New("participant no longer exists")

// ParticipantStorage defines the participant lookups the authenticator needs.
type ParticipantStorage interface {
	GetParticipant(ctx context.Context, participantID string) (*models.Participant, error)
}

// Authenticator resolves session tokens to the participants they were issued for.
type Authenticator struct {
	tokens  *TokenManager
	storage ParticipantStorage
}

// NewAuthenticator creates an authenticator backed by the given storage.
func NewAuthenticator(tokens *TokenManager, storage ParticipantStorage) *Authenticator {
	return &Authenticator{
		tokens:  tokens,
		storage: storage,
	}
}

// Authenticate validates token and returns its participant. The token's jti
// digest must match the stored one, so deleted participants stop resolving.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*models.Participant, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	claims, err := a.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	participant, err := a.storage.GetParticipant(ctx, claims.ParticipantID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUnknownParticipant
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load participant: %w", err)
	}

	if participant.RoomID != claims.RoomID || participant.TokenDigest == "" {
		return nil, ErrInvalidToken
	}
	if subtle.ConstantTimeCompare([]byte(participant.TokenDigest), []byte(Digest(claims.ID))) != 1 {
		return nil, ErrInvalidToken
	}

	return participant, nil
}

// Digest returns the hex BLAKE2b-256 digest of a token secret.
func Digest(secret string) string {
	sum := blake2b.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
