package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/recsnap/internal/compiler"
	"github.com/roach88/recsnap/internal/record"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool                       `json:"valid"`
	Models  int                        `json:"models"`
	Records int                        `json:"records"`
	Errors  []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <schemas-dir> [record-file...]",
		Short: "Validate schemas and record documents without projecting",
		Long: `Validate CUE model schemas and, optionally, record documents against them.

Schemas are compiled and checked for unknown relation targets. Each record
document is built into an instance, which checks its model, its data values
and the shape of every declared association. Nothing is projected.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], args[1:], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, schemasDir string, recordFiles []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	loadResult, loadErrors := compiler.LoadModels(schemasDir, compiler.LoadModeCollectAll)

	// Handle load errors (directory not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		code, message := parseCompileError(loadErrors[0])
		return outputValidateError(formatter, code, message, nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, schemasDir)

	var validationErrors []compiler.ValidationError
	for _, err := range loadErrors {
		code, message := parseCompileError(err)
		validationErrors = append(validationErrors, compiler.ValidationError{
			Field:   "schemas",
			Message: message,
			Code:    code,
		})
	}

	// Records are only meaningful against schemas that loaded cleanly.
	if len(validationErrors) == 0 {
		validationErrors = append(validationErrors, validateRecords(loadResult, recordFiles, formatter)...)
	}

	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, validationErrors)
	}

	return outputValidateSuccess(formatter, ValidationResult{
		Valid:   true,
		Models:  len(loadResult.Models),
		Records: len(recordFiles),
	})
}

// validateRecords builds every record document against the loaded models.
func validateRecords(loaded *compiler.LoadResult, files []string, formatter *OutputFormatter) []compiler.ValidationError {
	if len(files) == 0 {
		return nil
	}

	reg, err := record.NewRegistry(loaded.Models)
	if err != nil {
		return []compiler.ValidationError{{Field: "schemas", Message: err.Error(), Code: compiler.ErrDuplicateModel}}
	}

	var errs []compiler.ValidationError
	for _, file := range files {
		formatter.VerboseLog("Validating record: %s", file)

		doc, err := record.LoadDocument(file)
		if err == nil {
			_, err = reg.Build(doc)
		}
		if err != nil {
			errs = append(errs, compiler.ValidationError{
				Field:   filepath.Base(file),
				Message: err.Error(),
				Code:    ErrCodeRecordInvalid,
			})
		}
	}
	return errs
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ All schemas valid (%d model(s))\n", result.Models)
	if result.Records > 0 {
		fmt.Fprintf(formatter.Writer, "✓ All records valid (%d record(s))\n", result.Records)
	}
	return nil
}

// outputValidateError outputs a single validation error.
func outputValidateError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	// Validation errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	if formatter.Format == "json" {
		result := ValidationResult{
			Valid:  false,
			Errors: errs,
		}

		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
