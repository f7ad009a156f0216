package cli

import (
	"errors"
	"fmt"

	"github.com/roach88/recsnap/internal/compiler"
	"github.com/roach88/recsnap/internal/record"
)

// Error codes used only by the CLI. Load and validation codes live in the
// compiler package.
const (
	ErrCodeWriteFailed   = "E007" // File write error
	ErrCodeRecordInvalid = "E010" // Record document does not match the schemas
	ErrCodeProjectFailed = "E011" // Projection failed
)

// loadRegistry compiles the schemas directory in fail-fast mode and builds a
// registry from the result.
func loadRegistry(dir string) (*record.Registry, *compiler.LoadResult, error) {
	loaded, errs := compiler.LoadModels(dir, compiler.LoadModeFailFast)
	if len(errs) > 0 {
		return nil, loaded, errs[0]
	}
	reg, err := record.NewRegistry(loaded.Models)
	if err != nil {
		return nil, loaded, err
	}
	return reg, loaded, nil
}

// parseCompileError extracts error code and message from an error.
func parseCompileError(err error) (string, string) {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return compiler.MapFieldToErrorCode(compileErr.Field), compileErr.Message
	}
	var loadErr *compiler.LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	return compiler.ErrCodeGeneric, err.Error()
}

// errorPosition renders the source position of a load error, or "".
func errorPosition(err error) string {
	var loadErr *compiler.LoadError
	if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d", loadErr.Pos.Filename(), loadErr.Pos.Line(), loadErr.Pos.Column())
	}
	return ""
}
