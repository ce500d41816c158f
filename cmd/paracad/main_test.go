package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Cleanup(loggo.ResetLogging)
	dir := t.TempDir()
	cfg := filepath.Join(dir, "paracad.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("mesh_cells: 16\nmesh_cache_size: 4\n"), 0o644))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfg}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestTypes(t *testing.T) {
	out, err := run(t, "types")
	require.NoError(t, err)
	assert.Contains(t, out, "PartDesign::Pad\n")
	assert.Contains(t, out, "  Profile      link\n")
	assert.Contains(t, out, "App::Part\n")
}

func TestDemo(t *testing.T) {
	out, err := run(t, "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "recomputed 5, skipped 0, errored 0, aborted 0")
	assert.Contains(t, out, "mesh Body: ")
	assert.Contains(t, out, ", bounding volume 2000\n")
	assert.NotContains(t, out, "mesh Pad")
	assert.Contains(t, out, "metrics: 1 passes, 5 objects created, ")
	assert.Contains(t, out, ", 0 failing\n")
}

func TestDemoFailure(t *testing.T) {
	out, err := run(t, "demo", "--fail")
	require.NoError(t, err)
	assert.Contains(t, out, "errored 1, aborted 2")
	assert.Contains(t, out, "Pad: error (empty profile)")
	assert.Contains(t, out, "no meshes")
	assert.Contains(t, out, ", 3 failing\n")
}

func TestBadLogLevel(t *testing.T) {
	_, err := run(t, "--log-level", "LOUD", "types")
	assert.True(t, errors.Is(err, errors.NotValid), "%v", err)
}

func TestMissingConfig(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml"), "types"})
	err := cmd.Execute()
	assert.True(t, errors.Is(err, errors.NotFound), "%v", err)
}
