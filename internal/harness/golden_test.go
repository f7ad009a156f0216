package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recsnap/internal/ir"
)

func TestRunWithGolden(t *testing.T) {
	for _, name := range []string{
		"default_display",
		"show_joins",
		"joins_allow_list",
		"hidden_joins",
		"missing_to_one",
	} {
		t.Run(name, func(t *testing.T) {
			result, err := RunWithGolden(t, loadTestScenario(t, name))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestGoldenSnapshot_Marshal(t *testing.T) {
	snap := ir.Obj(ir.O("id", ir.IRInt(1)))
	data, err := NewGoldenSnapshot("one", &Result{Snapshot: snap, Hash: "h"}).Marshal()
	require.NoError(t, err)
	assert.Equal(t, `{"hash":"h","scenario_name":"one","snapshot":{"id":1}}`, string(data))

	data, err = NewGoldenSnapshot("bad", &Result{ProjectionError: "boom"}).Marshal()
	require.NoError(t, err)
	assert.Equal(t, `{"projection_error":"boom","scenario_name":"bad"}`, string(data))
}
