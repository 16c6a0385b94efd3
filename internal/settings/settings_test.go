package settings

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppliesOptionsOverDefaults(t *testing.T) {
	s := New(
		WithSSLFileName("x86.ssl"),
		WithWorkingDirectory("/work"),
		WithDataDirectory("/data"),
		WithDebugDecoder(true),
		WithAssumeABI(false),
	)
	assert.Equal(t, "x86.ssl", s.SSLFileName)
	assert.Equal(t, "/work", s.WorkingDirectory)
	assert.Equal(t, "/data", s.DataDirectory)
	assert.True(t, s.DebugDecoder)
	assert.False(t, s.AssumeABI)
}

func TestNewDefaultsAssumeABITrue(t *testing.T) {
	s := New()
	assert.True(t, s.AssumeABI)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	want := New(WithSSLFileName("x86.ssl"), WithDebugDecoder(true), WithAssumeABI(false))
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
