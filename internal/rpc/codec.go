// Package rpc defines the PetVend RPC surface: procedure names, request and
// response messages, and the JSON codec connect uses to carry them.
//
// Messages are plain Go structs rather than generated protobuf types, so the
// only wire format is JSON (Content-Type application/json), which is also what
// the browser forms post.
package rpc

import (
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

// Codec serializes messages with encoding/json. It registers under the name
// "json", replacing connect's protojson codec.
type Codec struct{}

var _ connect.Codec = Codec{}

func (Codec) Name() string { return "json" }

func (Codec) Marshal(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", msg, err)
	}
	return data, nil
}

func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("unmarshal %T: %w", msg, err)
	}
	return nil
}

// HandlerOptions returns the options every PetVend handler is built with.
func HandlerOptions(interceptors ...connect.Interceptor) []connect.HandlerOption {
	return []connect.HandlerOption{
		connect.WithCodec(Codec{}),
		connect.WithInterceptors(interceptors...),
	}
}

// ClientOptions returns the options a Go client needs to talk to PetVend handlers.
func ClientOptions(extra ...connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(Codec{})}, extra...)
}
