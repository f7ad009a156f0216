package harness

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/recsnap/internal/compiler"
	"github.com/roach88/recsnap/internal/ir"
	"github.com/roach88/recsnap/internal/record"
)

// Run executes a scenario against the models compiled from scenario.Schemas.
func Run(scenario *Scenario) (*Result, error) {
	if scenario.Schemas == "" {
		return nil, fmt.Errorf("scenario %s: no schemas directory", scenario.Name)
	}
	reg, err := LoadRegistry(scenario.Schemas)
	if err != nil {
		return nil, err
	}
	return RunWithRegistry(reg, scenario)
}

// LoadRegistry compiles the CUE models in dir into a registry. Cycle
// warnings are logged, not returned: cycles only matter when a record graph
// actually closes on itself.
func LoadRegistry(dir string) (*record.Registry, error) {
	loaded, errs := compiler.LoadModels(dir, compiler.LoadModeFailFast)
	if len(errs) > 0 {
		return nil, fmt.Errorf("load schemas %s: %w", dir, errors.Join(errs...))
	}
	for _, w := range loaded.Warnings {
		slog.Warn("association cycle", "dir", dir, "cycle", w.Message)
	}
	return record.NewRegistry(loaded.Models)
}

// RunWithRegistry executes a scenario against an already loaded registry.
//
// The returned error covers only setup failures (unknown model, bad record
// data). Projection errors are part of the result: they fail the scenario
// unless it expects them.
func RunWithRegistry(reg *record.Registry, scenario *Scenario) (*Result, error) {
	inst, err := reg.Build(&scenario.Record)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: build record: %w", scenario.Name, err)
	}

	result := NewResult()

	snap, projErr := inst.Snapshot()
	if projErr != nil {
		result.ProjectionError = projErr.Error()
	} else {
		hash, err := ir.SnapshotHash(snap)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: hash snapshot: %w", scenario.Name, err)
		}
		result.Snapshot = snap
		result.Hash = hash
	}

	for _, msg := range EvaluateAssertions(result, scenario) {
		result.AddError(msg)
	}

	slog.Debug("scenario complete",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"errors", len(result.Errors),
	)
	return result, nil
}
