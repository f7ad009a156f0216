package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/recsnap/internal/ir"
)

// GoldenDir is where golden snapshots live, relative to the test package.
const GoldenDir = "testdata/golden"

// GoldenSnapshot captures the observable outcome of a scenario.
// It is serialized with canonical JSON so fixtures are byte-stable.
type GoldenSnapshot struct {
	ScenarioName    string
	Snapshot        ir.IRObject
	Hash            string
	ProjectionError string
}

// toIR converts the golden snapshot into an IRObject for canonical encoding.
func (s *GoldenSnapshot) toIR() ir.IRObject {
	obj := ir.IRObject{
		"scenario_name": ir.IRString(s.ScenarioName),
	}
	if s.Snapshot != nil {
		obj["snapshot"] = s.Snapshot
		obj["hash"] = ir.IRString(s.Hash)
	}
	if s.ProjectionError != "" {
		obj["projection_error"] = ir.IRString(s.ProjectionError)
	}
	return obj
}

// Marshal returns the canonical JSON bytes of the golden snapshot.
func (s *GoldenSnapshot) Marshal() ([]byte, error) {
	return ir.MarshalCanonical(s.toIR())
}

// NewGoldenSnapshot builds the golden form of a result.
func NewGoldenSnapshot(name string, result *Result) *GoldenSnapshot {
	return &GoldenSnapshot{
		ScenarioName:    name,
		Snapshot:        result.Snapshot,
		Hash:            result.Hash,
		ProjectionError: result.ProjectionError,
	}
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := NewGoldenSnapshot(scenarioName, result).Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
