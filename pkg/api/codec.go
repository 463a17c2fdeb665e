// Package api defines the request and response messages of the splitroom
// Connect services. Messages are plain structs encoded as JSON; amounts are
// decimal strings.
package api

import (
	"encoding/json"
	"fmt"
)

// Codec is the Connect codec for every splitroom message. It registers under
// the "json" name, so it replaces Connect's protobuf JSON codec for
// application/json and application/connect+json requests.
//
// TODO: switch to buf-generated protobuf messages under proto/splitroom/v1
// and drop this codec once code generation is part of the build.
var Codec codec

type codec struct{}

// Name implements connect.Codec.
func (codec) Name() string { return "json" }

// Marshal implements connect.Codec.
func (codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

// Unmarshal implements connect.Codec. An empty body leaves msg at its zero value.
func (codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("invalid JSON message: %w", err)
	}
	return nil
}
