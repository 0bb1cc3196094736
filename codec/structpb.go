package codec

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Struct is a Codec[any] that carries value trees as a protobuf
// google.protobuf.Value. The zero value is ready to use.
//
// Only tree shapes structpb understands can be encoded: nil, bool, integers,
// floats, strings, []byte, map[string]any and []any. All numbers decode as
// float64, the same as with the JSON codec.
type Struct struct{}

var _ Codec[any] = Struct{}

var structMarshal = proto.MarshalOptions{Deterministic: true}

func (Struct) Encode(v any) ([]byte, error) {
	pv, err := structpb.NewValue(v)
	if err != nil {
		return nil, err
	}
	return structMarshal.Marshal(pv)
}

func (Struct) Decode(b []byte) (any, error) {
	var pv structpb.Value
	if err := proto.Unmarshal(b, &pv); err != nil {
		return nil, err
	}
	return pv.AsInterface(), nil
}

func (Struct) Name() string { return "protobuf" }
