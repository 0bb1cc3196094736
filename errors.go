package jsoner

import (
	"errors"
	"fmt"
)

var (
	// ErrJsoner is the root of jsoner's own errors. EncodingError and
	// DecodeError match it with errors.Is.
	ErrJsoner = errors.New("jsoner: error")

	// ErrUnserializable matches every *UnserializableError.
	ErrUnserializable = errors.New("jsoner: value is not serializable")

	// ErrMaxDepth is returned when a value or document nests deeper than Options.MaxDepth.
	ErrMaxDepth = errors.New("jsoner: maximum nesting depth exceeded")
)

// UnserializableError is returned by Encode for a value that no strategy
// covers and that the backend cannot represent natively.
type UnserializableError struct {
	Type string
}

func (e *UnserializableError) Error() string {
	return fmt.Sprintf("jsoner: object of type %s is not serializable", e.Type)
}

func (e *UnserializableError) Is(target error) bool { return target == ErrUnserializable }

// EncodingError reports an object whose own conversion produced unusable
// data: ToDict or ToStr failed, ToStr returned invalid UTF-8, or a registered
// encoder failed or has an unsupported signature.
type EncodingError struct {
	Type   string
	Reason string
	Err    error
}

func (e *EncodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("jsoner: encoding %s: %s: %v", e.Type, e.Reason, e.Err)
	}
	return fmt.Sprintf("jsoner: encoding %s: %s", e.Type, e.Reason)
}

func (e *EncodingError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrJsoner, e.Err}
	}
	return []error{ErrJsoner}
}

// DecodeError reports a resolved envelope whose reconstruction failed inside
// user code (FromDict, FromStr or a registered decoder).
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("jsoner: decoding %q: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() []error { return []error{ErrJsoner, e.Err} }
