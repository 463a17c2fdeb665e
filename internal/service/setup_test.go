package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitroom/internal/auth"
	"github.com/mmynk/splitroom/internal/metrics"
	"github.com/mmynk/splitroom/internal/middleware"
	"github.com/mmynk/splitroom/internal/notify"
	"github.com/mmynk/splitroom/internal/storage/sqlite"
	"github.com/mmynk/splitroom/pkg/api"
	"github.com/mmynk/splitroom/pkg/api/apiconnect"
)

// testClock is a settable clock shared by the services under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// eventLog records every emitted event.
type eventLog struct {
	mu     sync.Mutex
	events []notify.Event
}

func (l *eventLog) Notify(_ context.Context, e notify.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	return nil
}

func (l *eventLog) types() []notify.EventType {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]notify.EventType, len(l.events))
	for i, e := range l.events {
		out[i] = e.Type
	}
	return out
}

type testEnv struct {
	rooms       apiconnect.RoomServiceClient
	expenses    apiconnect.ExpenseServiceClient
	settlements apiconnect.SettlementServiceClient
	store       *sqlite.SQLiteStore
	metrics     *metrics.Metrics
	events      *eventLog
	clock       *testClock
	opts        Options
}

const testRoomTTL = 60 * 24 * time.Hour

// setupTestServer creates a test server with all three services behind the
// same interceptors as the real server.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	// Create temp database
	tmpFile, err := os.CreateTemp("", "splitroom-test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	env := &testEnv{
		store:   store,
		metrics: metrics.New(),
		events:  &eventLog{},
		clock:   &testClock{now: time.Now()},
	}
	env.opts = Options{
		Notifier: notify.NewCounting(env.events, env.metrics),
		Metrics:  env.metrics,
		RoomTTL:  testRoomTTL,
		Clock:    env.clock.Now,
	}

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	authenticator := auth.NewAuthenticator(tokens, store)
	locks := NewRoomLocks()

	interceptors := connect.WithInterceptors(
		middleware.MetricsInterceptor(env.metrics),
		middleware.LoggingInterceptor(),
		middleware.RequireParticipant(authenticator, PublicProcedures...),
	)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewRoomServiceHandler(NewRoomService(store, tokens, authenticator, locks, env.opts), interceptors))
	mux.Handle(apiconnect.NewExpenseServiceHandler(NewExpenseService(store, locks, env.opts), interceptors))
	mux.Handle(apiconnect.NewSettlementServiceHandler(NewSettlementService(store, locks, env.opts), interceptors))

	server := httptest.NewServer(mux)

	env.rooms = apiconnect.NewRoomServiceClient(http.DefaultClient, server.URL)
	env.expenses = apiconnect.NewExpenseServiceClient(http.DefaultClient, server.URL)
	env.settlements = apiconnect.NewSettlementServiceClient(http.DefaultClient, server.URL)

	t.Cleanup(func() {
		server.Close()
		store.Close()
		os.Remove(tmpFile.Name())
	})

	return env
}

// authed wraps msg in a request carrying the participant token.
func authed[T any](token string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+token)
	return req
}

// member is a participant as seen by a test: its ID and session token.
type member struct {
	ID    string
	Token string
}

func createRoom(t *testing.T, env *testEnv, name, adminName string) (*api.Room, member) {
	t.Helper()
	resp, err := env.rooms.CreateRoom(context.Background(), connect.NewRequest(&api.CreateRoomRequest{
		Name:      name,
		AdminName: adminName,
	}))
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	return &resp.Msg.Room, member{ID: resp.Msg.Participant.ID, Token: resp.Msg.Token}
}

func joinRoom(t *testing.T, env *testEnv, code, name string) member {
	t.Helper()
	resp, err := env.rooms.JoinRoom(context.Background(), connect.NewRequest(&api.JoinRoomRequest{
		Code: code,
		Name: name,
	}))
	if err != nil {
		t.Fatalf("JoinRoom(%s) failed: %v", name, err)
	}
	return member{ID: resp.Msg.Participant.ID, Token: resp.Msg.Token}
}

func addExpense(t *testing.T, env *testEnv, caller member, roomID, payerID, amount string, splits map[string]string) string {
	t.Helper()
	req := &api.CreateExpenseRequest{
		RoomID:      roomID,
		PayerID:     payerID,
		Amount:      decimal.RequireFromString(amount),
		Description: "expense",
	}
	for id, owed := range splits {
		req.Splits = append(req.Splits, api.SplitInput{ParticipantID: id, Amount: decimal.RequireFromString(owed)})
	}
	resp, err := env.expenses.CreateExpense(context.Background(), authed(caller.Token, req))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	return resp.Msg.Expense.ID
}

// assertCode fails the test unless err is a Connect error with the given code.
func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected connect error, got %T: %v", err, err)
	}
	if connectErr.Code() != want {
		t.Errorf("expected code %v, got %v (%s)", want, connectErr.Code(), connectErr.Message())
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
