package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/recsnap/internal/ir"
	"github.com/roach88/recsnap/internal/record"
)

// ProjectOptions holds flags for the project command.
type ProjectOptions struct {
	*RootOptions
	Canonical bool // print canonical JSON instead of indented JSON
}

// ProjectResult is the output of the project command.
type ProjectResult struct {
	Model    string      `json:"model"`
	Snapshot ir.IRObject `json:"snapshot"`
	Hash     string      `json:"hash"`
}

// NewProjectCommand creates the project command.
func NewProjectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProjectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "project <schemas-dir> <record-file>",
		Short: "Project a record document into its snapshot",
		Long: `Build the record described by a YAML or JSON document and print its snapshot.

The record's display configuration decides which associations appear:
without one, to-many associations are hidden; with showJoins false every
relation is hidden; with a joins list only the named joins are kept.

Exit codes:
  0 - Snapshot printed
  1 - The record could not be projected
  2 - Command error (invalid paths, schemas do not compile, etc.)

Examples:
  recsnap project ./schemas ./records/user.yaml
  recsnap project ./schemas ./records/user.yaml --canonical
  recsnap project ./schemas ./records/user.yaml --format json -v`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProject(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Canonical, "canonical", false, "print canonical JSON (the hashed form)")

	return cmd
}

func runProject(opts *ProjectOptions, schemasDir, recordFile string, cmd *cobra.Command) error {
	traceID := NewTraceID()
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
		TraceID:   traceID,
	}
	logger := slog.With("trace_id", traceID)

	reg, loaded, err := loadRegistry(schemasDir)
	if err != nil {
		code, message := parseCompileError(err)
		_ = formatter.Error(code, message, nil)
		return WrapExitError(ExitCommandError, "failed to load schemas", err)
	}
	logger.Debug("schemas loaded", "dir", schemasDir, "models", len(loaded.Models))
	for _, w := range loaded.Warnings {
		logger.Warn("association cycle", "cycle", w.Message)
	}

	doc, err := record.LoadDocument(recordFile)
	if err != nil {
		_ = formatter.Error(ErrCodeRecordInvalid, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load record", err)
	}

	inst, err := reg.Build(doc)
	if err != nil {
		_ = formatter.Error(ErrCodeRecordInvalid, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid record", err)
	}
	formatter.VerboseDump("Instance", inst)

	snap, err := inst.Snapshot()
	if err != nil {
		logger.Error("projection failed", "model", doc.Model, "error", err)
		_ = formatter.Error(ErrCodeProjectFailed, err.Error(), nil)
		return WrapExitError(ExitFailure, "projection failed", err)
	}

	hash, err := ir.SnapshotHash(snap)
	if err != nil {
		_ = formatter.Error(ErrCodeProjectFailed, err.Error(), nil)
		return WrapExitError(ExitFailure, "hashing snapshot failed", err)
	}
	logger.Debug("record projected", "model", doc.Model, "keys", len(snap), "hash", hash)

	result := ProjectResult{
		Model:    inst.Schema().Name(),
		Snapshot: snap,
		Hash:     hash,
	}

	if err := formatter.Snapshot(result, opts.Canonical); err != nil {
		return WrapExitError(ExitFailure, "encoding snapshot failed", err)
	}
	return nil
}
