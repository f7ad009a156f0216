package harness

import "github.com/roach88/recsnap/internal/ir"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	Pass bool `json:"pass"`

	// Snapshot is the projected record. Nil when projection failed.
	Snapshot ir.IRObject `json:"snapshot,omitempty"`

	// Hash is the content hash of Snapshot.
	Hash string `json:"hash,omitempty"`

	// ProjectionError holds the projection failure message, if any.
	ProjectionError string `json:"projection_error,omitempty"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
