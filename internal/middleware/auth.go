package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitroom/internal/auth"
	"github.com/mmynk/splitroom/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// ParticipantKey is the context key for storing the authenticated participant.
const ParticipantKey contextKey = "participant"

const (
	// TokenHeader carries the participant token for clients that cannot set Authorization.
	TokenHeader = "X-Participant-Token"
	// TokenCookie is the cookie name browsers send the participant token in.
	TokenCookie = "participant_token"
)

// Authenticator resolves a session token to a participant.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Participant, error)
}

// callInfoKey holds a *callInfo installed by LoggingInterceptor.
const callInfoKey contextKey = "call_info"

// callInfo lets interceptors further down report the resolved participant
// back to the logging interceptor.
type callInfo struct {
	participantID string
}

// WithParticipant returns a copy of ctx carrying p.
func WithParticipant(ctx context.Context, p *models.Participant) context.Context {
	if info, ok := ctx.Value(callInfoKey).(*callInfo); ok && p != nil {
		info.participantID = p.ID
	}
	return context.WithValue(ctx, ParticipantKey, p)
}

// GetParticipant extracts the authenticated participant from the context.
// Returns nil if not found.
func GetParticipant(ctx context.Context) *models.Participant {
	p, _ := ctx.Value(ParticipantKey).(*models.Participant)
	return p
}

// GetParticipantID extracts the participant ID from the context.
// Returns empty string if not found.
func GetParticipantID(ctx context.Context) string {
	if p := GetParticipant(ctx); p != nil {
		return p.ID
	}
	return ""
}

// TokenFromHeader finds the participant token in request headers. The
// Authorization bearer token wins over the custom header, which wins over the cookie.
func TokenFromHeader(h http.Header) string {
	if authHeader := h.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if token := h.Get(TokenHeader); token != "" {
		return token
	}
	cookie, err := (&http.Request{Header: h}).Cookie(TokenCookie)
	if err == nil {
		return cookie.Value
	}
	return ""
}

// RequireParticipant returns an interceptor that resolves the request's
// participant token and rejects the call if it does not resolve. Procedures
// listed in public skip the check.
func RequireParticipant(authenticator Authenticator, public ...string) connect.UnaryInterceptorFunc {
	open := make(map[string]bool, len(public))
	for _, procedure := range public {
		open[procedure] = true
	}

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if open[req.Spec().Procedure] {
				return next(ctx, req)
			}

			token := TokenFromHeader(req.Header())
			if token == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}

			participant, err := authenticator.Authenticate(ctx, token)
			if err != nil {
				if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrUnknownParticipant) || errors.Is(err, auth.ErrMissingToken) {
					return nil, connect.NewError(connect.CodeUnauthenticated, err)
				}
				return nil, connect.NewError(connect.CodeInternal, err)
			}

			// Call the next handler with enriched context
			return next(WithParticipant(ctx, participant), req)
		}
	}
}
