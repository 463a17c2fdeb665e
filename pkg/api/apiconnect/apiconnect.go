// Package apiconnect wires the splitroom services to Connect: handler
// constructors for the server and typed clients, in the shape connect-go
// generates for protobuf services.
package apiconnect

import (
	"connectrpc.com/connect"

	"github.com/mmynk/splitroom/pkg/api"
)

// handlerOptions puts the JSON codec ahead of caller supplied options.
func handlerOptions(opts []connect.HandlerOption) connect.HandlerOption {
	return connect.WithHandlerOptions(append([]connect.HandlerOption{connect.WithCodec(api.Codec)}, opts...)...)
}

// clientOptions makes clients speak the JSON codec unless overridden.
func clientOptions(opts []connect.ClientOption) connect.ClientOption {
	return connect.WithClientOptions(append([]connect.ClientOption{connect.WithCodec(api.Codec)}, opts...)...)
}
