package cli

import (
	"bytes"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, dir, name string, width, height int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, imaging.Save(imaging.New(width, height, color.White), path))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRatiocheck(t *testing.T) {
	dir := t.TempDir()
	wide := writePNG(t, dir, "wide.png", 1600, 900)
	square := writePNG(t, dir, "square.png", 100, 100)

	out, err := execute(t, "--ratios", "16:9", wide)
	require.NoError(t, err)
	assert.Equal(t, "ok    "+wide+"\n", out)

	out, err = execute(t, "--ratios", "16:9", wide, square)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, out, "ok    "+wide+"\n")
	assert.Contains(t, out, "FAIL  "+square+`: Image "`+square+`" has an incorrect aspect ratio 1.`)
}

func TestRatiocheck_rules(t *testing.T) {
	dir := t.TempDir()
	wide := writePNG(t, dir, "wide.png", 1600, 900)

	out, err := execute(t, "--rules", "jpeg", "--ratios", "16:9", wide)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, out, "is not a jpeg")

	_, err = execute(t, "--rules", "png+max-size=1mb", "--ratios", "1.5~2.0", wide)
	assert.NoError(t, err)
}

func TestRatiocheck_ratiosFile(t *testing.T) {
	dir := t.TempDir()
	tall := writePNG(t, dir, "tall.png", 100, 200)

	spec := filepath.Join(dir, "ratios.yaml")
	require.NoError(t, os.WriteFile(spec, []byte("- 2.0\n- 0.5\n"), 0o600))

	_, err := execute(t, "--ratios-file", spec, tall)
	assert.NoError(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"from": "abc", "to": 2.0}]`), 0o600))

	_, err = execute(t, "--ratios-file", bad, tall)
	var ue *usageError
	assert.True(t, errors.As(err, &ue))
}

func TestRatiocheck_usage(t *testing.T) {
	dir := t.TempDir()
	wide := writePNG(t, dir, "wide.png", 16, 9)

	_, err := execute(t, wide)
	var ue *usageError
	assert.True(t, errors.As(err, &ue))

	_, err = execute(t, "--ratios", "abc~2.0", wide)
	assert.True(t, errors.As(err, &ue))

	_, err = execute(t, "--ratios", "16:9")
	assert.Error(t, err)
}

func TestRatiocheck_missingFile(t *testing.T) {
	out, err := execute(t, "--ratios", "1:1", filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, out, "FAIL")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(ErrInvalid))
	assert.Equal(t, 2, exitCode(&usageError{err: errors.New("bad flag")}))

	dir := t.TempDir()
	_, err := execute(t, "--ratios", "abc~2.0", writePNG(t, dir, "a.png", 2, 1))
	assert.Equal(t, 2, exitCode(err))
}
