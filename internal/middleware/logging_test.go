package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/splitroom/internal/auth"
	"github.com/mmynk/splitroom/internal/models"
)

type authenticatorFunc func(ctx context.Context, token string) (*models.Participant, error)

func (f authenticatorFunc) Authenticate(ctx context.Context, token string) (*models.Participant, error) {
	return f(ctx, token)
}

// captureLogs redirects the default logger into a buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestLoggingInterceptorBeforeAuth(t *testing.T) {
	authenticator := authenticatorFunc(func(_ context.Context, token string) (*models.Participant, error) {
		if token == "good" {
			return &models.Participant{ID: "p1", RoomID: "r1"}, nil
		}
		return nil, auth.ErrInvalidToken
	})

	var handled string
	handler := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		handled = GetParticipantID(ctx)
		return connect.NewResponse(&struct{}{}), nil
	}
	call := LoggingInterceptor()(RequireParticipant(authenticator)(handler))

	tests := []struct {
		name      string
		token     string
		wantCode  connect.Code
		wantLog   []string
		wantCalls bool
	}{
		{
			name:     "missing token is logged",
			wantCode: connect.CodeUnauthenticated,
			wantLog:  []string{`"msg":"RPC error"`, auth.ErrMissingToken.Error(), `"participant_id":""`},
		},
		{
			name:     "invalid token is logged",
			token:    "bad",
			wantCode: connect.CodeUnauthenticated,
			wantLog:  []string{`"msg":"RPC error"`, `"participant_id":""`},
		},
		{
			name:      "resolved participant is logged",
			token:     "good",
			wantLog:   []string{`"msg":"RPC ok"`, `"participant_id":"p1"`},
			wantCalls: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t)
			handled = ""

			req := connect.NewRequest(&struct{}{})
			if tt.token != "" {
				req.Header().Set("Authorization", "Bearer "+tt.token)
			}
			_, err := call(context.Background(), req)

			if tt.wantCalls {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if handled != "p1" {
					t.Errorf("handler saw participant %q, want p1", handled)
				}
			} else if connect.CodeOf(err) != tt.wantCode {
				t.Errorf("expected code %v, got %v", tt.wantCode, connect.CodeOf(err))
			}

			out := buf.String()
			for _, want := range tt.wantLog {
				if !strings.Contains(out, want) {
					t.Errorf("log %q does not contain %q", out, want)
				}
			}
		})
	}
}
