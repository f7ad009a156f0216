package record

import (
	"errors"
	"fmt"
)

// Projection failure kinds. Both indicate a schema inconsistency and are
// never recovered inside the pipeline.
var (
	// ErrNoSnapshot marks an association value without the Record capability.
	ErrNoSnapshot = errors.New("association value has no snapshot capability")

	// ErrUnsupportedValue marks a field value with no plain representation.
	ErrUnsupportedValue = errors.New("value cannot be represented in a snapshot")
)

// ProjectionError reports where a projection failed.
type ProjectionError struct {
	Model string // model name of the instance being projected
	Phase string // pipeline phase
	Field string
	Err   error
}

func (e *ProjectionError) Error() string {
	model := e.Model
	if model == "" {
		model = "<anonymous>"
	}
	return fmt.Sprintf("project %s.%s (%s): %v", model, e.Field, e.Phase, e.Err)
}

func (e *ProjectionError) Unwrap() error {
	return e.Err
}
