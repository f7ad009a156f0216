package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recsnap/internal/ir"
)

func runProjectCmd(t *testing.T, opts *RootOptions, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewProjectCommand(opts)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestProjectAllowList(t *testing.T) {
	out, _, err := runProjectCmd(t, &RootOptions{Format: "text"},
		testSchemasDir, filepath.Join(testRecordsDir, "user.yaml"), "--canonical")
	require.NoError(t, err)

	assert.Equal(t,
		`{"id":1,"name":"ada","posts":[{"id":101,"title":"first"},{"id":102,"title":"second"}]}`+"\n"+
			"hash: c2c14e90b91af08048b5faa2859d1010db3c58ba40c0dd0f5821d8f289101316\n",
		out)
}

func TestProjectDefaultDisplayJSON(t *testing.T) {
	out, _, err := runProjectCmd(t, &RootOptions{Format: "json"},
		testSchemasDir, filepath.Join(testRecordsDir, "user_default.json"))
	require.NoError(t, err)

	var resp struct {
		Status  string        `json:"status"`
		Data    ProjectResult `json:"data"`
		TraceID string        `json:"trace_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.TraceID)
	assert.Equal(t, "User", resp.Data.Model)
	assert.Equal(t, "2f8db9dc7d5c2b47bb794d2d21bd1b43bf66bc659baa4d9c78d7ce6854729563", resp.Data.Hash)

	want := ir.Obj(
		ir.O("id", ir.IRInt(2)),
		ir.O("name", ir.IRString("grace")),
		ir.O("profile", ir.Obj(ir.O("bio", ir.IRString("compilers")))),
	)
	assert.True(t, ir.Equal(want, resp.Data.Snapshot), "got %#v", resp.Data.Snapshot)
}

func TestProjectIndentedText(t *testing.T) {
	out, _, err := runProjectCmd(t, &RootOptions{Format: "text"},
		testSchemasDir, filepath.Join(testRecordsDir, "user_default.json"))
	require.NoError(t, err)

	assert.Contains(t, out, "{\n  \"id\": 2,\n")
	assert.Contains(t, out, "hash: 2f8db9dc")
}

func TestProjectVerboseDumpsInstance(t *testing.T) {
	out, errOut, err := runProjectCmd(t, &RootOptions{Format: "json", Verbose: true},
		testSchemasDir, filepath.Join(testRecordsDir, "user.yaml"))
	require.NoError(t, err)

	assert.Contains(t, errOut, "Instance:")
	assert.Contains(t, errOut, "ShowJoins: (bool) true")

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "dump must not leak into stdout")
}

func TestProjectMissingToOneFails(t *testing.T) {
	out, _, err := runProjectCmd(t, &RootOptions{Format: "json"},
		testSchemasDir, filepath.Join(testRecordsDir, "broken_profile.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeProjectFailed, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "User.profile")
}

func TestProjectInvalidRecord(t *testing.T) {
	out, _, err := runProjectCmd(t, &RootOptions{Format: "text"},
		testSchemasDir, filepath.Join(testRecordsDir, "wrong_shape.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeRecordInvalid)
}

func TestProjectBadSchemas(t *testing.T) {
	_, _, err := runProjectCmd(t, &RootOptions{Format: "text"},
		testInvalidDir, filepath.Join(testRecordsDir, "user.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load schemas")
}

func TestProjectMissingArgs(t *testing.T) {
	_, _, err := runProjectCmd(t, &RootOptions{Format: "text"}, testSchemasDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg")
}
