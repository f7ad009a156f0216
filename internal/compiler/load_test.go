package compiler

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCUE(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func loadErrCode(t *testing.T, err error) string {
	t.Helper()
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr), "expected *LoadError, got %T", err)
	return loadErr.Code
}

func TestLoadModels(t *testing.T) {
	dir := writeCUE(t, map[string]string{
		"user.cue": `package schemas

model: User: attributes: {
	id:    int
	posts: collection: "Post"
}
`,
		"post.cue": `package schemas

model: Post: attributes: {
	id:     int
	author: model: "User"
}
`,
	})

	result, errs := LoadModels(dir, LoadModeCollectAll)
	require.Empty(t, errs)
	require.NotNil(t, result)

	assert.Equal(t, 2, result.FileCount)
	require.Len(t, result.Models, 2)
	require.Len(t, result.Warnings, 1, "User and Post reference each other")
}

func TestLoadModelsDirectoryErrors(t *testing.T) {
	result, errs := LoadModels(filepath.Join(t.TempDir(), "missing"), LoadModeFailFast)
	assert.Nil(t, result)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrCodeNotFound, loadErrCode(t, errs[0]))

	result, errs = LoadModels(t.TempDir(), LoadModeFailFast)
	assert.Nil(t, result)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrCodeNoFiles, loadErrCode(t, errs[0]))
}

func TestLoadModelsNoModels(t *testing.T) {
	dir := writeCUE(t, map[string]string{"x.cue": "package schemas\n\nother: 1\n"})

	_, errs := LoadModels(dir, LoadModeCollectAll)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrCodeNoModels, loadErrCode(t, errs[0]))
}

func TestLoadModelsCollectsErrors(t *testing.T) {
	dir := writeCUE(t, map[string]string{
		"bad.cue": `package schemas

model: A: attributes: blob: bytes
model: B: attributes: owner: model: "Ghost"
`,
	})

	result, errs := LoadModels(dir, LoadModeCollectAll)
	require.NotNil(t, result)
	require.Len(t, errs, 2)
	assert.Equal(t, ErrInvalidFieldType, loadErrCode(t, errs[0]))
	assert.Equal(t, ErrUnknownTarget, loadErrCode(t, errs[1]))

	_, errs = LoadModels(dir, LoadModeFailFast)
	assert.Len(t, errs, 1)
}

func TestLoadErrorFormat(t *testing.T) {
	err := &LoadError{Code: ErrCodeNotFound, Message: "gone"}
	assert.Equal(t, "E005: gone", err.Error())
}
