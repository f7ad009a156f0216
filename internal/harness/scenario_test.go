package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "schemas"), 0755))

	path := writeScenario(t, dir, `
name: valid
description: "loads"
schemas: schemas
record:
  model: User
  data: {id: 1}
  display: {showJoins: true, joins: []}
expect:
  id: 1
absent: [posts]
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "valid", scenario.Name)
	assert.Equal(t, filepath.Join(dir, "schemas"), scenario.Schemas)
	assert.Equal(t, "User", scenario.Record.Model)
	require.NotNil(t, scenario.Record.Display)
	assert.NotNil(t, scenario.Record.Display.Joins, "empty allow-list must survive decoding")
	assert.Equal(t, 1, scenario.Expect["id"])
	assert.Equal(t, []string{"posts"}, scenario.Absent)
}

func TestLoadScenario_BasePathOverride(t *testing.T) {
	dir := t.TempDir()
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "models"), 0755))

	path := writeScenario(t, dir, `
name: based
description: "resolves against base"
schemas: models
record: {model: User}
`)

	scenario, err := LoadScenarioWithBasePath(path, base)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "models"), scenario.Schemas)
}

func TestLoadScenario_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "unknown field",
			content: "name: x\ndescription: y\nrecord: {model: User}\nexpects: {}\n",
			want:    "failed to parse YAML",
		},
		{
			name:    "missing name",
			content: "description: y\nrecord: {model: User}\n",
			want:    "name is required",
		},
		{
			name:    "missing description",
			content: "name: x\nrecord: {model: User}\n",
			want:    "description is required",
		},
		{
			name:    "missing model",
			content: "name: x\ndescription: y\nrecord: {data: {id: 1}}\n",
			want:    "record.model is required",
		},
		{
			name:    "error with expectations",
			content: "name: x\ndescription: y\nrecord: {model: User}\nexpect: {id: 1}\nexpect_error: boom\n",
			want:    "expect_error cannot be combined",
		},
		{
			name:    "exact without expect",
			content: "name: x\ndescription: y\nrecord: {model: User}\nexact: true\n",
			want:    "exact requires expect",
		},
		{
			name:    "absent and expected",
			content: "name: x\ndescription: y\nrecord: {model: User}\nexpect: {id: 1}\nabsent: [id]\n",
			want:    `"id" is also expected`,
		},
		{
			name:    "missing schemas dir",
			content: "name: x\ndescription: y\nschemas: nowhere\nrecord: {model: User}\n",
			want:    "schemas directory not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScenario(t, t.TempDir(), tt.content)
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}
