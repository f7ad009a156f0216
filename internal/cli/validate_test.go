package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recsnap/internal/compiler"
)

func runValidateCmd(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestValidateValidSchemas(t *testing.T) {
	output, err := runValidateCmd(t, "text", testSchemasDir)
	require.NoError(t, err)
	assert.Contains(t, output, "✓ All schemas valid (4 model(s))")
	assert.NotContains(t, output, "records valid")
}

func TestValidateValidRecords(t *testing.T) {
	output, err := runValidateCmd(t, "text",
		testSchemasDir,
		filepath.Join(testRecordsDir, "user.yaml"),
		filepath.Join(testRecordsDir, "user_default.json"),
		filepath.Join(testRecordsDir, "broken_profile.yaml"),
	)
	require.NoError(t, err, "a missing to-one builds fine; only projecting it fails")
	assert.Contains(t, output, "✓ All records valid (3 record(s))")
}

func TestValidateValidJSON(t *testing.T) {
	output, err := runValidateCmd(t, "json", testSchemasDir, filepath.Join(testRecordsDir, "user.yaml"))
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 4, resp.Data.Models)
	assert.Equal(t, 1, resp.Data.Records)
}

func TestValidateRecordShapeMismatch(t *testing.T) {
	output, err := runValidateCmd(t, "text", testSchemasDir, filepath.Join(testRecordsDir, "wrong_shape.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, output, "✗ Validation failed")
	assert.Contains(t, output, ErrCodeRecordInvalid)
	assert.Contains(t, output, "wrong_shape.yaml")
	assert.Contains(t, output, "shape does not match")
}

func TestValidateMissingRecordFile(t *testing.T) {
	output, err := runValidateCmd(t, "text", testSchemasDir, filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, output, "read document")
}

func TestValidateInvalidSchemasJSON(t *testing.T) {
	output, err := runValidateCmd(t, "json", testInvalidDir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.NotNil(t, resp.Error)
	assert.Equal(t, compiler.ErrInvalidFieldType, resp.Error.Code)
}

func TestValidateNonExistentDirectory(t *testing.T) {
	output, err := runValidateCmd(t, "text", "/nonexistent/schemas")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, output, compiler.ErrCodeNotFound)
}

func TestValidateEmptyDirectory(t *testing.T) {
	output, err := runValidateCmd(t, "text", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, output, compiler.ErrCodeNoFiles)
}
