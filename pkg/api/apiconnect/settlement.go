package apiconnect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitroom/pkg/api"
)

// SettlementServiceName is the fully-qualified name of the SettlementService service.
const SettlementServiceName = "splitroom.v1.SettlementService"

// These constants are the fully-qualified names of the RPCs defined in this package.
const (
	// SettlementServiceListSettlementsProcedure is the fully-qualified name of the SettlementService's ListSettlements RPC.
	SettlementServiceListSettlementsProcedure = "/splitroom.v1.SettlementService/ListSettlements"
	// SettlementServiceMySettlementsProcedure is the fully-qualified name of the SettlementService's MySettlements RPC.
	SettlementServiceMySettlementsProcedure = "/splitroom.v1.SettlementService/MySettlements"
	// SettlementServiceMarkSettlementPaidProcedure is the fully-qualified name of the SettlementService's MarkSettlementPaid RPC.
	SettlementServiceMarkSettlementPaidProcedure = "/splitroom.v1.SettlementService/MarkSettlementPaid"
)

// SettlementServiceClient is a client for the splitroom.v1.SettlementService service.
type SettlementServiceClient interface {
	ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error)
	MySettlements(context.Context, *connect.Request[api.MySettlementsRequest]) (*connect.Response[api.MySettlementsResponse], error)
	MarkSettlementPaid(context.Context, *connect.Request[api.MarkSettlementPaidRequest]) (*connect.Response[api.MarkSettlementPaidResponse], error)
}

// NewSettlementServiceClient constructs a client for the splitroom.v1.SettlementService service.
// baseURL is the server root, e.g. http://localhost:8080.
func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SettlementServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	option := clientOptions(opts)
	return &settlementServiceClient{
		listSettlements: connect.NewClient[api.ListSettlementsRequest, api.ListSettlementsResponse](
			httpClient,
			baseURL+SettlementServiceListSettlementsProcedure,
			option,
		),
		mySettlements: connect.NewClient[api.MySettlementsRequest, api.MySettlementsResponse](
			httpClient,
			baseURL+SettlementServiceMySettlementsProcedure,
			option,
		),
		markSettlementPaid: connect.NewClient[api.MarkSettlementPaidRequest, api.MarkSettlementPaidResponse](
			httpClient,
			baseURL+SettlementServiceMarkSettlementPaidProcedure,
			option,
		),
	}
}

// settlementServiceClient implements SettlementServiceClient.
type settlementServiceClient struct {
	listSettlements    *connect.Client[api.ListSettlementsRequest, api.ListSettlementsResponse]
	mySettlements      *connect.Client[api.MySettlementsRequest, api.MySettlementsResponse]
	markSettlementPaid *connect.Client[api.MarkSettlementPaidRequest, api.MarkSettlementPaidResponse]
}

// ListSettlements calls splitroom.v1.SettlementService.ListSettlements.
func (c *settlementServiceClient) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	return c.listSettlements.CallUnary(ctx, req)
}

// MySettlements calls splitroom.v1.SettlementService.MySettlements.
func (c *settlementServiceClient) MySettlements(ctx context.Context, req *connect.Request[api.MySettlementsRequest]) (*connect.Response[api.MySettlementsResponse], error) {
	return c.mySettlements.CallUnary(ctx, req)
}

// MarkSettlementPaid calls splitroom.v1.SettlementService.MarkSettlementPaid.
func (c *settlementServiceClient) MarkSettlementPaid(ctx context.Context, req *connect.Request[api.MarkSettlementPaidRequest]) (*connect.Response[api.MarkSettlementPaidResponse], error) {
	return c.markSettlementPaid.CallUnary(ctx, req)
}

// SettlementServiceHandler is an implementation of the splitroom.v1.SettlementService service.
type SettlementServiceHandler interface {
	ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error)
	MySettlements(context.Context, *connect.Request[api.MySettlementsRequest]) (*connect.Response[api.MySettlementsResponse], error)
	MarkSettlementPaid(context.Context, *connect.Request[api.MarkSettlementPaidRequest]) (*connect.Response[api.MarkSettlementPaidResponse], error)
}

// NewSettlementServiceHandler builds an HTTP handler from the service implementation. It
// returns the path on which to mount the handler and the handler itself.
func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	option := handlerOptions(opts)
	settlementServiceListSettlementsHandler := connect.NewUnaryHandler(
		SettlementServiceListSettlementsProcedure,
		svc.ListSettlements,
		option,
	)
	settlementServiceMySettlementsHandler := connect.NewUnaryHandler(
		SettlementServiceMySettlementsProcedure,
		svc.MySettlements,
		option,
	)
	settlementServiceMarkSettlementPaidHandler := connect.NewUnaryHandler(
		SettlementServiceMarkSettlementPaidProcedure,
		svc.MarkSettlementPaid,
		option,
	)
	return "/splitroom.v1.SettlementService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case SettlementServiceListSettlementsProcedure:
			settlementServiceListSettlementsHandler.ServeHTTP(w, r)
		case SettlementServiceMySettlementsProcedure:
			settlementServiceMySettlementsHandler.ServeHTTP(w, r)
		case SettlementServiceMarkSettlementPaidProcedure:
			settlementServiceMarkSettlementPaidHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedSettlementServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedSettlementServiceHandler struct{}

func (UnimplementedSettlementServiceHandler) ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitroom.v1.SettlementService.ListSettlements is not implemented"))
}

func (UnimplementedSettlementServiceHandler) MySettlements(context.Context, *connect.Request[api.MySettlementsRequest]) (*connect.Response[api.MySettlementsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitroom.v1.SettlementService.MySettlements is not implemented"))
}

func (UnimplementedSettlementServiceHandler) MarkSettlementPaid(context.Context, *connect.Request[api.MarkSettlementPaidRequest]) (*connect.Response[api.MarkSettlementPaidResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitroom.v1.SettlementService.MarkSettlementPaid is not implemented"))
}
