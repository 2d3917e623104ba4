package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, args ...string) (Config, error) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))

	v, err := NewViper(fs)
	if err != nil {
		return Config{}, err
	}
	return Load(v)
}

func TestDefaults(t *testing.T) {
	cfg, err := load(t, "--cache", t.TempDir())
	require.NoError(t, err)

	d := Default()
	require.Equal(t, d.RadiusMiles, cfg.RadiusMiles)
	require.Equal(t, d.AspectRatio, cfg.AspectRatio)
	require.Equal(t, 40.0, cfg.Tolerance)
	require.Equal(t, 5*time.Second, cfg.IdentifyTimeout)
	require.False(t, cfg.Offline)
}

func TestFlagsOverrideDefaults(t *testing.T) {
	cfg, err := load(t, "-r", "50", "-a", "1.5", "--offline", "--identify-timeout", "2s", "--cache", t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 50.0, cfg.RadiusMiles)
	require.Equal(t, 1.5, cfg.AspectRatio)
	require.True(t, cfg.Offline)
	require.Equal(t, 2*time.Second, cfg.IdentifyTimeout)
}

func TestEnvironment(t *testing.T) {
	t.Setenv("MAPEDIT_RADIUS", "300")
	t.Setenv("MAPEDIT_CENTER_LAT", "51.5")

	cfg, err := load(t, "--cache", t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 300.0, cfg.RadiusMiles)
	require.Equal(t, 51.5, cfg.CenterLat)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapedit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("radius: 75\ntolerance: 12\n"), 0o644))

	cfg, err := load(t, "--config", path, "--cache", t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 75.0, cfg.RadiusMiles)
	require.Equal(t, 12.0, cfg.Tolerance)

	_, err = load(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"aspect low":   func(c *Config) { c.AspectRatio = 0.5 },
		"aspect high":  func(c *Config) { c.AspectRatio = 5 },
		"radius low":   func(c *Config) { c.RadiusMiles = 1 },
		"radius high":  func(c *Config) { c.RadiusMiles = 5000 },
		"latitude":     func(c *Config) { c.CenterLat = 91 },
		"longitude":    func(c *Config) { c.CenterLon = -181 },
		"tolerance":    func(c *Config) { c.Tolerance = 0 },
		"timeout":      func(c *Config) { c.IdentifyTimeout = 0 },
		"no layer dir": func(c *Config) { c.LayerDir = "" },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}

	require.NoError(t, Default().Validate())
}
