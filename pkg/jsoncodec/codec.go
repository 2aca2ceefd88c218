// Package jsoncodec lets connect handlers and clients exchange plain Go
// structs as JSON, for the Connect, gRPC and gRPC-Web protocols alike.
package jsoncodec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

// Name replaces connect's protojson codec, so "application/json" and
// "application/grpc+json" requests are decoded here.
const Name = "json"

type Codec struct {
	name string
}

var _ connect.Codec = Codec{}

func (c Codec) Name() string {
	if c.name == "" {
		return Name
	}
	return c.name
}

func (Codec) Marshal(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", msg, err)
	}
	return data, nil
}

// Unmarshal rejects unknown fields so a misspelled field is an
// InvalidArgument instead of a silently ignored value.
func (Codec) Unmarshal(data []byte, msg any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(msg); err != nil {
		return fmt.Errorf("failed to unmarshal %T: %w", msg, err)
	}
	return nil
}

// HandlerOptions registers the codec under both names connect's own JSON
// codec answers to.
func HandlerOptions() []connect.HandlerOption {
	return []connect.HandlerOption{
		connect.WithCodec(Codec{}),
		connect.WithCodec(Codec{name: Name + "; charset=utf-8"}),
	}
}

// ClientOption makes a client speak JSON.
func ClientOption() connect.ClientOption {
	return connect.WithCodec(Codec{})
}
