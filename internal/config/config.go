package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultSampleURL      = "https://raw.githubusercontent.com/ieee8023/covid-chestxray-dataset/master/images/000001-1.jpg"
	DefaultExportFilename = "xray-simulator-output.png"

	BackendGo     = "go"
	BackendOpenCV = "opencv"
)

// Config holds application settings read from config.toml and XRAY_* env vars.
type Config struct {
	LogLevel  string
	LogFormat string

	SampleURL     string
	SampleTimeout time.Duration

	ExportFilename string

	RenderWorkers int
	RenderBackend string

	WindowWidth  float32
	WindowHeight float32
}

// Load reads configuration. A missing config file is not an error.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "xray-simulator"))
	}

	v.SetEnvPrefix("XRAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("could not read config file: %w", err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("sample.url", DefaultSampleURL)
	v.SetDefault("sample.timeout", "30s")
	v.SetDefault("export.filename", DefaultExportFilename)
	v.SetDefault("render.workers", runtime.NumCPU())
	v.SetDefault("render.backend", BackendGo)
	v.SetDefault("window.width", 1200)
	v.SetDefault("window.height", 800)
}

func fromViper(v *viper.Viper) (*Config, error) {
	timeout, err := time.ParseDuration(v.GetString("sample.timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid sample.timeout: %w", err)
	}

	cfg := &Config{
		LogLevel:       v.GetString("log.level"),
		LogFormat:      strings.ToLower(v.GetString("log.format")),
		SampleURL:      v.GetString("sample.url"),
		SampleTimeout:  timeout,
		ExportFilename: v.GetString("export.filename"),
		RenderWorkers:  v.GetInt("render.workers"),
		RenderBackend:  strings.ToLower(v.GetString("render.backend")),
		WindowWidth:    float32(v.GetFloat64("window.width")),
		WindowHeight:   float32(v.GetFloat64("window.height")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	if c.SampleTimeout <= 0 {
		return fmt.Errorf("sample.timeout must be positive, got %s", c.SampleTimeout)
	}
	if c.RenderWorkers < 1 {
		return fmt.Errorf("render.workers must be at least 1, got %d", c.RenderWorkers)
	}
	switch c.RenderBackend {
	case BackendGo, BackendOpenCV:
	default:
		return fmt.Errorf("unknown render.backend %q", c.RenderBackend)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log.format %q", c.LogFormat)
	}
	if c.ExportFilename == "" {
		return errors.New("export.filename must not be empty")
	}
	if c.WindowWidth < 800 {
		c.WindowWidth = 800
	}
	if c.WindowHeight < 600 {
		c.WindowHeight = 600
	}
	return nil
}
