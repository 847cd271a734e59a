package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/eospkg"
	"github.com/meigma/eospkg/internal/testutil"
)

const manifestJSON = `{"id": "com.example.clock", "name": "Clock", "version": "1.2.3"}`

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func sourceDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"manifest.json":      manifestJSON,
		"app.bin":            "binary",
		"res/":               "",
		"res/icon.png":       "png",
		"res/lang/":          "",
		"res/lang/en.json":   "{}",
		"res/lang/empty.txt": "",
	})
	return dir
}

func TestCLI_PackInspectUnpack(t *testing.T) {
	t.Parallel()

	src := sourceDir(t)
	out := filepath.Join(t.TempDir(), "clock.eapk")

	stdout, _, err := execute(t, "pack", src, out, "--no-progress")
	require.NoError(t, err)
	assert.Contains(t, stdout, "app fixed 7 entries")
	assert.Contains(t, stdout, "sha256:")

	stdout, _, err = execute(t, "inspect", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "EAPK")
	assert.Contains(t, stdout, "Clock")
	assert.Contains(t, stdout, "com.example.clock")
	assert.Contains(t, stdout, "1.2.3")
	assert.Contains(t, stdout, "res/lang/")
	assert.Contains(t, stdout, "res/icon.png")

	dest := filepath.Join(t.TempDir(), "out")
	stdout, _, err = execute(t, "unpack", out, dest, "--no-progress", "--type", "app")
	require.NoError(t, err)
	assert.Contains(t, stdout, "2 dirs, 5 files")

	got, err := os.ReadFile(filepath.Join(dest, "res", "lang", "en.json"))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(got))
	info, err := os.Stat(filepath.Join(dest, "res", "lang", "empty.txt"))
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestCLI_PackFlags(t *testing.T) {
	t.Parallel()

	src := sourceDir(t)
	out := filepath.Join(t.TempDir(), "face.ewpk")

	_, _, err := execute(t, "pack", src, out,
		"--type", "watchface",
		"--profile", "variable",
		"--order", "grouped",
		"--name", "Face",
		"--no-progress",
	)
	require.NoError(t, err)

	pf, err := eospkg.OpenFile(out, eospkg.OpenWithProfile(eospkg.ProfileVariable))
	require.NoError(t, err)
	defer pf.Close()

	h := pf.Header()
	assert.Equal(t, eospkg.KindWatchface, h.Kind)
	assert.Equal(t, "Face", h.Name)
	assert.Equal(t, "com.example.clock", h.ID)
	assert.Equal(t, pf.DataStart()-pf.TableOffset(), uint32(len("res")+16)+
		uint32(len("app.bin")+16)+uint32(len("manifest.json")+16)+
		uint32(len("res/lang")+16)+uint32(len("res/icon.png")+16)+
		uint32(len("res/lang/empty.txt")+16)+uint32(len("res/lang/en.json")+16))

	_, _, err = execute(t, "unpack", out, t.TempDir(), "--type", "app", "--profile", "variable")
	require.ErrorIs(t, err, eospkg.ErrKindMismatch)
}

func TestCLI_Errors(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	testutil.WriteTree(t, src, map[string]string{"a.txt": "a"})
	out := filepath.Join(t.TempDir(), "x.eapk")

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"missing metadata", []string{"pack", src, out, "--no-progress"}, eospkg.ErrConfig},
		{"empty dir", []string{"pack", t.TempDir(), out, "--name", "n", "--id", "i", "--version", "1", "--no-progress"}, eospkg.ErrEmpty},
		{"unknown order", []string{"pack", src, out, "--order", "random"}, eospkg.ErrConfig},
		{"unknown type", []string{"pack", src, out, "--type", "tarball"}, eospkg.ErrConfig},
		{"bad digest", []string{"unpack", out, t.TempDir(), "--digest", "sha256:zz"}, eospkg.ErrConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := os.Stat(out)
	require.ErrorIs(t, err, os.ErrNotExist)

	_, _, err = execute(t, "pack", src)
	require.Error(t, err)
}

func TestCLI_Verbose(t *testing.T) {
	t.Parallel()

	src := sourceDir(t)
	out := filepath.Join(t.TempDir(), "clock.eapk")

	_, stderr, err := execute(t, "-v", "pack", src, out, "--no-progress")
	require.NoError(t, err)
	assert.Contains(t, stderr, "level=DEBUG")
	assert.Contains(t, stderr, "building package")
}
