package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/recsnap/internal/compiler"
	"github.com/roach88/recsnap/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult holds the compiled models and cycle warnings.
type CompilationResult struct {
	Models   []ir.ModelSpec          `json:"models"`
	Warnings []compiler.CycleWarning `json:"warnings,omitempty"`
}

// CompilationStats holds summary statistics.
type CompilationStats struct {
	ModelCount    int
	ToOneCount    int
	ToManyCount   int
	PlainAttrs    int
	CycleWarnings int
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <schemas-dir>",
		Short: "Compile CUE model schemas",
		Long: `Compile CUE model declarations into attribute registries.

Each model is declared as model: <Name>: attributes: {...}. Plain attributes
carry a CUE type; relation attributes carry model (to-one) or collection
(to-many). The output lists every model with its attributes and any
association cycles.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, schemasDir string, cmd *cobra.Command) error {
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
		return outputCompileError(formatter, code, message, nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, schemasDir)
	for _, model := range loadResult.Models {
		formatter.VerboseLog("Compiling model: %s", model.Name)
	}

	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	result := &CompilationResult{
		Models:   loadResult.Models,
		Warnings: loadResult.Warnings,
	}
	stats := calculateStats(result)

	if opts.Output != "" {
		if err := writeModelsToFile(result, opts.Output); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	return outputCompileSuccess(formatter, result, stats, opts.Output)
}

// calculateStats computes summary statistics from compilation result.
func calculateStats(result *CompilationResult) CompilationStats {
	stats := CompilationStats{
		ModelCount:    len(result.Models),
		CycleWarnings: len(result.Warnings),
	}

	for _, model := range result.Models {
		for _, attr := range model.Attributes {
			switch {
			case attr.Collection != "":
				stats.ToManyCount++
			case attr.Model != "":
				stats.ToOneCount++
			default:
				stats.PlainAttrs++
			}
		}
	}

	return stats
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, stats CompilationStats, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %d model(s): %d attribute(s), %d to-one, %d to-many\n\n",
		stats.ModelCount, stats.PlainAttrs, stats.ToOneCount, stats.ToManyCount)

	for _, model := range result.Models {
		fmt.Fprintf(w, "%s:\n", model.Name)
		for _, attr := range model.Attributes {
			switch {
			case attr.Collection != "":
				fmt.Fprintf(w, "  %s: collection %s\n", attr.Name, attr.Collection)
			case attr.Model != "":
				fmt.Fprintf(w, "  %s: model %s\n", attr.Name, attr.Model)
			default:
				fmt.Fprintf(w, "  %s: %s\n", attr.Name, attr.Type)
			}
		}
		fmt.Fprintln(w)
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "  %s\n", warning.Message)
		}
		fmt.Fprintln(w)
	}

	if outputFile != "" {
		fmt.Fprintf(w, "Wrote compiled models to %s\n", outputFile)
	}

	return nil
}

// outputCompileError outputs a single compilation error.
func outputCompileError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	// Compilation errors are command-level errors (exit code 2)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}

// outputCompileErrors outputs multiple compilation errors.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	if formatter.Format == "json" {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := parseCompileError(err)
			cliErrors[i] = CLIError{
				Code:    code,
				Message: message,
			}
		}

		response := CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors, // Include all errors in data
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		code, message := parseCompileError(err)
		if pos := errorPosition(err); pos != "" {
			fmt.Fprintln(formatter.Writer, pos)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", code, message)
	}

	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// writeModelsToFile writes the compilation result as indented JSON.
func writeModelsToFile(result *CompilationResult, filename string) error {
	// Indented for readability; canonical JSON is only used for hashing
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling models: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}
