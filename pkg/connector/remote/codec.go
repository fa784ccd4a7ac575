package remote

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// jsonCodecName is registered with grpc's codec registry so calls made
// with grpc.CallContentSubtype(jsonCodecName) marshal their messages as
// JSON instead of protobuf wire format — this connector's wire messages
// are plain Go structs, not protoc-generated types, so no .proto
// compilation step is needed to add a new remote environment.
const jsonCodecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (jsonCodec) Name() string { return jsonCodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
