package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	s := Default()
	assert.Equal(t, DefaultProtocolVersion, s.ProtocolVersion)
	assert.Equal(t, DefaultPort, s.DefaultPort)
	assert.Equal(t, 2*time.Second, s.ReconnectInterval)
	assert.NotNil(t, s.Logger)
	assert.NotNil(t, s.Metrics)
}

func TestBuild_NilOverridesKeepsDefaults(t *testing.T) {
	s, err := Build(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultProtocolVersion, s.ProtocolVersion)
}

func TestBuild_OverridesLayerOntoDefaults(t *testing.T) {
	s, err := Build(&Overrides{
		ProtocolVersion:   7,
		ReconnectInterval: 10 * time.Second,
	})
	require.NoError(t, err)

	assert.Equal(t, 7, s.ProtocolVersion)
	assert.Equal(t, 10*time.Second, s.ReconnectInterval)
	// fields left zero in the overrides keep their default values.
	assert.Equal(t, DefaultPort, s.DefaultPort)
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
protocol_version: 5
default_port: 9142
reconnect_interval: 3s
`), 0o644))

	o, err := LoadYAML(path)
	require.NoError(t, err)
	assert.Equal(t, 5, o.ProtocolVersion)
	assert.Equal(t, 9142, o.DefaultPort)
	assert.Equal(t, 3*time.Second, o.ReconnectInterval)
}

func TestLoadYAML_MissingFile(t *testing.T) {
	_, err := LoadYAML("/no/such/file.yaml")
	assert.Error(t, err)
}
