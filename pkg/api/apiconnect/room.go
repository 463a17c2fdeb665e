package apiconnect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitroom/pkg/api"
)

// RoomServiceName is the fully-qualified name of the RoomService service.
const RoomServiceName = "splitroom.v1.RoomService"

// These constants are the fully-qualified names of the RPCs defined in this package.
const (
	// RoomServiceCreateRoomProcedure is the fully-qualified name of the RoomService's CreateRoom RPC.
	RoomServiceCreateRoomProcedure = "/splitroom.v1.RoomService/CreateRoom"
	// RoomServiceGetRoomProcedure is the fully-qualified name of the RoomService's GetRoom RPC.
	RoomServiceGetRoomProcedure = "/splitroom.v1.RoomService/GetRoom"
	// RoomServiceJoinRoomProcedure is the fully-qualified name of the RoomService's JoinRoom RPC.
	RoomServiceJoinRoomProcedure = "/splitroom.v1.RoomService/JoinRoom"
	// RoomServiceListMyRoomsProcedure is the fully-qualified name of the RoomService's ListMyRooms RPC.
	RoomServiceListMyRoomsProcedure = "/splitroom.v1.RoomService/ListMyRooms"
	// RoomServiceAddVirtualParticipantProcedure is the fully-qualified name of the RoomService's AddVirtualParticipant RPC.
	RoomServiceAddVirtualParticipantProcedure = "/splitroom.v1.RoomService/AddVirtualParticipant"
	// RoomServiceRemoveParticipantProcedure is the fully-qualified name of the RoomService's RemoveParticipant RPC.
	RoomServiceRemoveParticipantProcedure = "/splitroom.v1.RoomService/RemoveParticipant"
	// RoomServiceUpdatePaymentAliasProcedure is the fully-qualified name of the RoomService's UpdatePaymentAlias RPC.
	RoomServiceUpdatePaymentAliasProcedure = "/splitroom.v1.RoomService/UpdatePaymentAlias"
	// RoomServiceLockRoomProcedure is the fully-qualified name of the RoomService's LockRoom RPC.
	RoomServiceLockRoomProcedure = "/splitroom.v1.RoomService/LockRoom"
	// RoomServiceUnlockRoomProcedure is the fully-qualified name of the RoomService's UnlockRoom RPC.
	RoomServiceUnlockRoomProcedure = "/splitroom.v1.RoomService/UnlockRoom"
)

// RoomServiceClient is a client for the splitroom.v1.RoomService service.
type RoomServiceClient interface {
	CreateRoom(context.Context, *connect.Request[api.CreateRoomRequest]) (*connect.Response[api.CreateRoomResponse], error)
	GetRoom(context.Context, *connect.Request[api.GetRoomRequest]) (*connect.Response[api.GetRoomResponse], error)
	JoinRoom(context.Context, *connect.Request[api.JoinRoomRequest]) (*connect.Response[api.JoinRoomResponse], error)
	ListMyRooms(context.Context, *connect.Request[api.ListMyRoomsRequest]) (*connect.Response[api.ListMyRoomsResponse], error)
	AddVirtualParticipant(context.Context, *connect.Request[api.AddVirtualParticipantRequest]) (*connect.Response[api.AddVirtualParticipantResponse], error)
	RemoveParticipant(context.Context, *connect.Request[api.RemoveParticipantRequest]) (*connect.Response[api.RemoveParticipantResponse], error)
	UpdatePaymentAlias(context.Context, *connect.Request[api.UpdatePaymentAliasRequest]) (*connect.Response[api.UpdatePaymentAliasResponse], error)
	LockRoom(context.Context, *connect.Request[api.LockRoomRequest]) (*connect.Response[api.LockRoomResponse], error)
	UnlockRoom(context.Context, *connect.Request[api.UnlockRoomRequest]) (*connect.Response[api.UnlockRoomResponse], error)
}

// NewRoomServiceClient constructs a client for the splitroom.v1.RoomService service.
// baseURL is the server root, e.g. http://localhost:8080.
func NewRoomServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) RoomServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	option := clientOptions(opts)
	return &roomServiceClient{
		createRoom: connect.NewClient[api.CreateRoomRequest, api.CreateRoomResponse](
			httpClient,
			baseURL+RoomServiceCreateRoomProcedure,
			option,
		),
		getRoom: connect.NewClient[api.GetRoomRequest, api.GetRoomResponse](
			httpClient,
			baseURL+RoomServiceGetRoomProcedure,
			option,
		),
		joinRoom: connect.NewClient[api.JoinRoomRequest, api.JoinRoomResponse](
			httpClient,
			baseURL+RoomServiceJoinRoomProcedure,
			option,
		),
		listMyRooms: connect.NewClient[api.ListMyRoomsRequest, api.ListMyRoomsResponse](
			httpClient,
			baseURL+RoomServiceListMyRoomsProcedure,
			option,
		),
		addVirtualParticipant: connect.NewClient[api.AddVirtualParticipantRequest, api.AddVirtualParticipantResponse](
			httpClient,
			baseURL+RoomServiceAddVirtualParticipantProcedure,
			option,
		),
		removeParticipant: connect.NewClient[api.RemoveParticipantRequest, api.RemoveParticipantResponse](
			httpClient,
			baseURL+RoomServiceRemoveParticipantProcedure,
			option,
		),
		updatePaymentAlias: connect.NewClient[api.UpdatePaymentAliasRequest, api.UpdatePaymentAliasResponse](
			httpClient,
			baseURL+RoomServiceUpdatePaymentAliasProcedure,
			option,
		),
		lockRoom: connect.NewClient[api.LockRoomRequest, api.LockRoomResponse](
			httpClient,
			baseURL+RoomServiceLockRoomProcedure,
			option,
		),
		unlockRoom: connect.NewClient[api.UnlockRoomRequest, api.UnlockRoomResponse](
			httpClient,
			baseURL+RoomServiceUnlockRoomProcedure,
			option,
		),
	}
}

// roomServiceClient implements RoomServiceClient.
type roomServiceClient struct {
	createRoom            *connect.Client[api.CreateRoomRequest, api.CreateRoomResponse]
	getRoom               *connect.Client[api.GetRoomRequest, api.GetRoomResponse]
	joinRoom              *connect.Client[api.JoinRoomRequest, api.JoinRoomResponse]
	listMyRooms           *connect.Client[api.ListMyRoomsRequest, api.ListMyRoomsResponse]
	addVirtualParticipant *connect.Client[api.AddVirtualParticipantRequest, api.AddVirtualParticipantResponse]
	removeParticipant     *connect.Client[api.RemoveParticipantRequest, api.RemoveParticipantResponse]
	updatePaymentAlias    *connect.Client[api.UpdatePaymentAliasRequest, api.UpdatePaymentAliasResponse]
	lockRoom              *connect.Client[api.LockRoomRequest, api.LockRoomResponse]
	unlockRoom            *connect.Client[api.UnlockRoomRequest, api.UnlockRoomResponse]
}

// CreateRoom calls splitroom.v1.RoomService.CreateRoom.
func (c *roomServiceClient) CreateRoom(ctx context.Context, req *connect.Request[api.CreateRoomRequest]) (*connect.Response[api.CreateRoomResponse], error) {
	return c.createRoom.CallUnary(ctx, req)
}

// GetRoom calls splitroom.v1.RoomService.GetRoom.
func (c *roomServiceClient) GetRoom(ctx context.Context, req *connect.Request[api.GetRoomRequest]) (*connect.Response[api.GetRoomResponse], error) {
	return c.getRoom.CallUnary(ctx, req)
}

// JoinRoom calls splitroom.v1.RoomService.JoinRoom.
func (c *roomServiceClient) JoinRoom(ctx context.Context, req *connect.Request[api.JoinRoomRequest]) (*connect.Response[api.JoinRoomResponse], error) {
	return c.joinRoom.CallUnary(ctx, req)
}

// ListMyRooms calls splitroom.v1.RoomService.ListMyRooms.
func (c *roomServiceClient) ListMyRooms(ctx context.Context, req *connect.Request[api.ListMyRoomsRequest]) (*connect.Response[api.ListMyRoomsResponse], error) {
	return c.listMyRooms.CallUnary(ctx, req)
}

// AddVirtualParticipant calls splitroom.v1.RoomService.AddVirtualParticipant.
func (c *roomServiceClient) AddVirtualParticipant(ctx context.Context, req *connect.Request[api.AddVirtualParticipantRequest]) (*connect.Response[api.AddVirtualParticipantResponse], error) {
	return c.addVirtualParticipant.CallUnary(ctx, req)
}

// RemoveParticipant calls splitroom.v1.RoomService.RemoveParticipant.
func (c *roomServiceClient) RemoveParticipant(ctx context.Context, req *connect.Request[api.RemoveParticipantRequest]) (*connect.Response[api.RemoveParticipantResponse], error) {
	return c.removeParticipant.CallUnary(ctx, req)
}

// UpdatePaymentAlias calls splitroom.v1.RoomService.UpdatePaymentAlias.
func (c *roomServiceClient) UpdatePaymentAlias(ctx context.Context, req *connect.Request[api.UpdatePaymentAliasRequest]) (*connect.Response[api.UpdatePaymentAliasResponse], error) {
	return c.updatePaymentAlias.CallUnary(ctx, req)
}

// LockRoom calls splitroom.v1.RoomService.LockRoom.
func (c *roomServiceClient) LockRoom(ctx context.Context, req *connect.Request[api.LockRoomRequest]) (*connect.Response[api.LockRoomResponse], error) {
	return c.lockRoom.CallUnary(ctx, req)
}

// UnlockRoom calls splitroom.v1.RoomService.UnlockRoom.
func (c *roomServiceClient) UnlockRoom(ctx context.Context, req *connect.Request[api.UnlockRoomRequest]) (*connect.Response[api.UnlockRoomResponse], error) {
	return c.unlockRoom.CallUnary(ctx, req)
}

// RoomServiceHandler is an implementation of the splitroom.v1.RoomService service.
type RoomServiceHandler interface {
	CreateRoom(context.Context, *connect.Request[api.CreateRoomRequest]) (*connect.Response[api.CreateRoomResponse], error)
	GetRoom(context.Context, *connect.Request[api.GetRoomRequest]) (*connect.Response[api.GetRoomResponse], error)
	JoinRoom(context.Context, *connect.Request[api.JoinRoomRequest]) (*connect.Response[api.JoinRoomResponse], error)
	ListMyRooms(context.Context, *connect.Request[api.ListMyRoomsRequest]) (*connect.Response[api.ListMyRoomsResponse], error)
	AddVirtualParticipant(context.Context, *connect.Request[api.AddVirtualParticipantRequest]) (*connect.Response[api.AddVirtualParticipantResponse], error)
	RemoveParticipant(context.Context, *connect.Request[api.RemoveParticipantRequest]) (*connect.Response[api.RemoveParticipantResponse], error)
	UpdatePaymentAlias(context.Context, *connect.Request[api.UpdatePaymentAliasRequest]) (*connect.Response[api.UpdatePaymentAliasResponse], error)
	LockRoom(context.Context, *connect.Request[api.LockRoomRequest]) (*connect.Response[api.LockRoomResponse], error)
	UnlockRoom(context.Context, *connect.Request[api.UnlockRoomRequest]) (*connect.Response[api.UnlockRoomResponse], error)
}

// NewRoomServiceHandler builds an HTTP handler from the service implementation. It
// returns the path on which to mount the handler and the handler itself.
func NewRoomServiceHandler(svc RoomServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	option := handlerOptions(opts)
	roomServiceCreateRoomHandler := connect.NewUnaryHandler(
		RoomServiceCreateRoomProcedure,
		svc.CreateRoom,
		option,
	)
	roomServiceGetRoomHandler := connect.NewUnaryHandler(
		RoomServiceGetRoomProcedure,
		svc.GetRoom,
		option,
	)
	roomServiceJoinRoomHandler := connect.NewUnaryHandler(
		RoomServiceJoinRoomProcedure,
		svc.JoinRoom,
		option,
	)
	roomServiceListMyRoomsHandler := connect.NewUnaryHandler(
		RoomServiceListMyRoomsProcedure,
		svc.ListMyRooms,
		option,
	)
	roomServiceAddVirtualParticipantHandler := connect.NewUnaryHandler(
		RoomServiceAddVirtualParticipantProcedure,
		svc.AddVirtualParticipant,
		option,
	)
	roomServiceRemoveParticipantHandler := connect.NewUnaryHandler(
		RoomServiceRemoveParticipantProcedure,
		svc.RemoveParticipant,
		option,
	)
	roomServiceUpdatePaymentAliasHandler := connect.NewUnaryHandler(
		RoomServiceUpdatePaymentAliasProcedure,
		svc.UpdatePaymentAlias,
		option,
	)
	roomServiceLockRoomHandler := connect.NewUnaryHandler(
		RoomServiceLockRoomProcedure,
		svc.LockRoom,
		option,
	)
	roomServiceUnlockRoomHandler := connect.NewUnaryHandler(
		RoomServiceUnlockRoomProcedure,
		svc.UnlockRoom,
		option,
	)
	return "/splitroom.v1.RoomService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case RoomServiceCreateRoomProcedure:
			roomServiceCreateRoomHandler.ServeHTTP(w, r)
		case RoomServiceGetRoomProcedure:
			roomServiceGetRoomHandler.ServeHTTP(w, r)
		case RoomServiceJoinRoomProcedure:
			roomServiceJoinRoomHandler.ServeHTTP(w, r)
		case RoomServiceListMyRoomsProcedure:
			roomServiceListMyRoomsHandler.ServeHTTP(w, r)
		case RoomServiceAddVirtualParticipantProcedure:
			roomServiceAddVirtualParticipantHandler.ServeHTTP(w, r)
		case RoomServiceRemoveParticipantProcedure:
			roomServiceRemoveParticipantHandler.ServeHTTP(w, r)
		case RoomServiceUpdatePaymentAliasProcedure:
			roomServiceUpdatePaymentAliasHandler.ServeHTTP(w, r)
		case RoomServiceLockRoomProcedure:
			roomServiceLockRoomHandler.ServeHTTP(w, r)
		case RoomServiceUnlockRoomProcedure:
			roomServiceUnlockRoomHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedRoomServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedRoomServiceHandler struct{}

func (UnimplementedRoomServiceHandler) CreateRoom(context.Context, *connect.Request[api.CreateRoomRequest]) (*connect.Response[api.CreateRoomResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitroom.v1.RoomService.CreateRoom is not implemented"))
}

func (UnimplementedRoomServiceHandler) GetRoom(context.Context, *connect.Request[api.GetRoomRequest]) (*connect.Response[api.GetRoomResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitroom.v1.RoomService.GetRoom is not implemented"))
}

func (UnimplementedRoomServiceHandler) JoinRoom(context.Context, *connect.Request[api.JoinRoomRequest]) (*connect.Response[api.JoinRoomResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitroom.v1.RoomService.JoinRoom is not implemented"))
}

func (UnimplementedRoomServiceHandler) ListMyRooms(context.Context, *connect.Request[api.ListMyRoomsRequest]) (*connect.Response[api.ListMyRoomsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitroom.v1.RoomService.ListMyRooms is not implemented"))
}

func (UnimplementedRoomServiceHandler) AddVirtualParticipant(context.Context, *connect.Request[api.AddVirtualParticipantRequest]) (*connect.Response[api.AddVirtualParticipantResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitroom.v1.RoomService.AddVirtualParticipant is not implemented"))
}

func (UnimplementedRoomServiceHandler) RemoveParticipant(context.Context, *connect.Request[api.RemoveParticipantRequest]) (*connect.Response[api.RemoveParticipantResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitroom.v1.RoomService.RemoveParticipant is not implemented"))
}

func (UnimplementedRoomServiceHandler) UpdatePaymentAlias(context.Context, *connect.Request[api.UpdatePaymentAliasRequest]) (*connect.Response[api.UpdatePaymentAliasResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitroom.v1.RoomService.UpdatePaymentAlias is not implemented"))
}

func (UnimplementedRoomServiceHandler) LockRoom(context.Context, *connect.Request[api.LockRoomRequest]) (*connect.Response[api.LockRoomResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitroom.v1.RoomService.LockRoom is not implemented"))
}

func (UnimplementedRoomServiceHandler) UnlockRoom(context.Context, *connect.Request[api.UnlockRoomRequest]) (*connect.Response[api.UnlockRoomResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitroom.v1.RoomService.UnlockRoom is not implemented"))
}
