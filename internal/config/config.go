// Package config holds the validated runtime settings shared by the CLI and
// the terminal application.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"mapedit/internal/edit"
	"mapedit/internal/identify"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Keys shared by flags, environment variables and config files
const (
	KeyCacheDir        = "cache"
	KeyLayerDir        = "layers"
	KeyDebugLog        = "debug-log"
	KeyRadius          = "radius"
	KeyAspect          = "aspect"
	KeyCenterLat       = "center-lat"
	KeyCenterLon       = "center-lon"
	KeyTolerance       = "tolerance"
	KeyIdentifyTimeout = "identify-timeout"
	KeyOffline         = "offline"
	KeyConfigFile      = "config"
)

// EnvPrefix namespaces environment variables, e.g. MAPEDIT_RADIUS
const EnvPrefix = "MAPEDIT"

// Config is the validated application configuration
type Config struct {
	CacheDir        string
	LayerDir        string
	DebugLog        string
	RadiusMiles     float64
	AspectRatio     float64
	CenterLat       float64
	CenterLon       float64
	Tolerance       float64
	IdentifyTimeout time.Duration
	Offline         bool
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		LayerDir:        ".",
		RadiusMiles:     150,
		AspectRatio:     2.0,
		CenterLat:       39.8283,
		CenterLon:       -98.5795,
		Tolerance:       edit.DefaultTolerance,
		IdentifyTimeout: identify.DefaultTimeout,
	}
}

// RegisterFlags adds the configuration flags to fs with their defaults
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String(KeyConfigFile, "",
		"Configuration file. Overridden by environment variables and flags.")
	fs.String(KeyCacheDir, "", "Cache directory for basemap data (default: ~/.mapedit/data)")
	fs.String(KeyLayerDir, d.LayerDir, "Directory holding editable .shp and .sqlite layers")
	fs.StringP(KeyDebugLog, "d", "", "Debug log file (e.g., debug.log)")
	fs.Float64P(KeyRadius, "r", d.RadiusMiles, "Map radius in miles (10-1000)")
	fs.Float64P(KeyAspect, "a", d.AspectRatio, "Character aspect ratio, adjust for font width (1.0-4.0)")
	fs.Float64(KeyCenterLat, d.CenterLat, "Initial map center latitude")
	fs.Float64(KeyCenterLon, d.CenterLon, "Initial map center longitude")
	fs.Float64(KeyTolerance, d.Tolerance, "Tap hit radius in pixels")
	fs.Duration(KeyIdentifyTimeout, d.IdentifyTimeout, "Time allowed for looking up a saved feature")
	fs.Bool(KeyOffline, false, "Do not download basemap data")
}

// NewViper returns a viper instance bound to fs and the MAPEDIT_ environment
func NewViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return nil, errors.Wrap(err, "binding flags")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file := v.GetString(KeyConfigFile); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config %s", file)
		}
	}
	return v, nil
}

// Load reads and validates a Config from v
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		CacheDir:        v.GetString(KeyCacheDir),
		LayerDir:        v.GetString(KeyLayerDir),
		DebugLog:        v.GetString(KeyDebugLog),
		RadiusMiles:     v.GetFloat64(KeyRadius),
		AspectRatio:     v.GetFloat64(KeyAspect),
		CenterLat:       v.GetFloat64(KeyCenterLat),
		CenterLon:       v.GetFloat64(KeyCenterLon),
		Tolerance:       v.GetFloat64(KeyTolerance),
		IdentifyTimeout: v.GetDuration(KeyIdentifyTimeout),
		Offline:         v.GetBool(KeyOffline),
	}

	if cfg.CacheDir == "" {
		dir, err := DefaultCacheDir()
		if err != nil {
			return Config{}, err
		}
		cfg.CacheDir = dir
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges
func (c Config) Validate() error {
	if c.AspectRatio < 1.0 || c.AspectRatio > 4.0 {
		return errors.Errorf("aspect ratio must be between 1.0 and 4.0, got %.2f", c.AspectRatio)
	}
	if c.RadiusMiles < 10 || c.RadiusMiles > 1000 {
		return errors.Errorf("radius must be between 10 and 1000 miles, got %.0f", c.RadiusMiles)
	}
	if c.CenterLat < -90 || c.CenterLat > 90 {
		return errors.Errorf("center latitude out of range: %f", c.CenterLat)
	}
	if c.CenterLon < -180 || c.CenterLon > 180 {
		return errors.Errorf("center longitude out of range: %f", c.CenterLon)
	}
	if c.Tolerance <= 0 {
		return errors.Errorf("tolerance must be positive, got %f", c.Tolerance)
	}
	if c.IdentifyTimeout <= 0 {
		return errors.Errorf("identify timeout must be positive, got %s", c.IdentifyTimeout)
	}
	if c.LayerDir == "" {
		return errors.New("layer directory is required")
	}
	return nil
}

// DefaultCacheDir returns ~/.mapedit/data
func DefaultCacheDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, ".mapedit", "data"), nil
}
