// Package config loads settings for the markercanvas commands.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. MARKERCANVAS_VIEW_ZOOM.
const EnvPrefix = "MARKERCANVAS"

// Config holds every setting of the command-line tools.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	View    ViewConfig    `mapstructure:"view"`
	Markers MarkersConfig `mapstructure:"markers"`
	Icons   IconsConfig   `mapstructure:"icons"`
	Layer   LayerConfig   `mapstructure:"layer"`
	Render  RenderConfig  `mapstructure:"render"`
}

// LogConfig selects log verbosity and destination.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"` // empty logs to stderr
}

// ViewConfig is the initial map view.
type ViewConfig struct {
	Lat    float64 `mapstructure:"lat"`
	Lng    float64 `mapstructure:"lng"`
	Zoom   float64 `mapstructure:"zoom"`
	Width  int     `mapstructure:"width"`
	Height int     `mapstructure:"height"`

	// Fit centers and zooms the view on the loaded markers.
	Fit bool `mapstructure:"fit"`
}

// MarkersConfig locates the marker file.
type MarkersConfig struct {
	File   string `mapstructure:"file"`
	Format string `mapstructure:"format"` // geojson or csv; empty guesses from the extension

	// Default icon for markers that do not name one.
	Icon       string  `mapstructure:"icon"`
	IconWidth  float64 `mapstructure:"iconWidth"`
	IconHeight float64 `mapstructure:"iconHeight"`
}

// IconsConfig controls icon fetching.
type IconsConfig struct {
	BaseDir string        `mapstructure:"baseDir"`
	Timeout time.Duration `mapstructure:"timeout"`
	Workers int           `mapstructure:"workers"`
}

// LayerConfig mirrors the layer options.
type LayerConfig struct {
	Interactive bool   `mapstructure:"interactive"`
	Cursor      string `mapstructure:"cursor"`
}

// RenderConfig controls batch output.
type RenderConfig struct {
	Output     string `mapstructure:"output"`
	Background string `mapstructure:"background"` // hex color, empty for transparent

	// Visible writes the markers inside the view to this GeoJSON or CSV
	// file.
	Visible string `mapstructure:"visible"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")

	v.SetDefault("view.lat", 0.0)
	v.SetDefault("view.lng", 0.0)
	v.SetDefault("view.zoom", 2.0)
	v.SetDefault("view.width", 1024)
	v.SetDefault("view.height", 768)
	v.SetDefault("view.fit", true)

	v.SetDefault("markers.file", "")
	v.SetDefault("markers.format", "")
	v.SetDefault("markers.icon", "")
	v.SetDefault("markers.iconWidth", 24.0)
	v.SetDefault("markers.iconHeight", 24.0)

	v.SetDefault("icons.baseDir", ".")
	v.SetDefault("icons.timeout", "10s")
	v.SetDefault("icons.workers", 4)

	v.SetDefault("layer.interactive", true)
	v.SetDefault("layer.cursor", "pointer")

	v.SetDefault("render.output", "markers.png")
	v.SetDefault("render.background", "")
	v.SetDefault("render.visible", "")
}

// Flags returns the command-line flags shared by the commands. Each flag is
// named after its config key, plus "config" for the config file path.
func Flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringP("config", "c", "", "config file (yaml, json or toml)")
	fs.String("log.level", "info", "log level: debug, info, warn or error")
	fs.String("log.file", "", "log file, in addition to stderr")
	fs.StringP("markers.file", "m", "", "marker file (GeoJSON or CSV)")
	fs.String("markers.format", "", "marker file format: geojson or csv")
	fs.String("markers.icon", "", "icon for markers that name none")
	fs.Float64("view.lat", 0, "initial center latitude")
	fs.Float64("view.lng", 0, "initial center longitude")
	fs.Float64P("view.zoom", "z", 2, "initial zoom")
	fs.Bool("view.fit", true, "fit the view to the markers")
	fs.String("icons.baseDir", ".", "directory relative icon paths resolve against")
	return fs
}

// Load reads configuration from path, if given, on top of the defaults.
// Environment variables prefixed with MARKERCANVAS_ override both.
func Load(path string) (*Config, error) {
	return load(path, nil)
}

// LoadFlags is Load with the file named by the "config" flag. Flags set on
// the command line override every other source.
func LoadFlags(fs *pflag.FlagSet) (*Config, error) {
	path, err := fs.GetString("config")
	if err != nil {
		return nil, err
	}
	return load(path, fs)
}

func load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("error binding flags: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later in odd ways.
func (c *Config) Validate() error {
	var errs []error
	if c.View.Width <= 0 || c.View.Height <= 0 {
		errs = append(errs, fmt.Errorf("view size must be positive, got %dx%d", c.View.Width, c.View.Height))
	}
	if c.View.Zoom < 0 || c.View.Zoom > 22 {
		errs = append(errs, fmt.Errorf("view zoom %v out of range 0-22", c.View.Zoom))
	}
	if c.Icons.Workers <= 0 {
		errs = append(errs, fmt.Errorf("icons.workers must be positive, got %d", c.Icons.Workers))
	}
	switch strings.ToLower(c.Markers.Format) {
	case "", "geojson", "csv":
	default:
		errs = append(errs, fmt.Errorf("unknown markers.format %q", c.Markers.Format))
	}
	return errors.Join(errs...)
}
