package types

import (
	"errors"
	"fmt"
)

// ErrImport matches every *ImportError via errors.Is.
var ErrImport = errors.New("types: import failed")

// ImportError reports a dotted path that does not name a registered type.
type ImportError struct {
	Path   string
	Reason string
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("types: cannot import %q: %s", e.Path, e.Reason)
}

func (e *ImportError) Is(target error) bool { return target == ErrImport }
