// Package config provides configuration management for the ultimatethumb service
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration data
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Sources   SourcesConfig   `yaml:"sources"`
	Registry  RegistryConfig  `yaml:"registry"`
	Thumbnail ThumbnailConfig `yaml:"thumbnail"`
	Render    RenderConfig    `yaml:"render"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// Prefix is the path thumbnails are served under.
	Prefix         string   `yaml:"prefix"`
	XAccelRedirect bool     `yaml:"x_accel_redirect"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	// RenderRate limits renders per second, 0 disables the limit.
	RenderRate      float64       `yaml:"render_rate"`
	RenderBurst     int           `yaml:"render_burst"`
	H2C             bool          `yaml:"h2c"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StorageConfig configures where generated thumbnails are kept.
type StorageConfig struct {
	Root   string `yaml:"root"`
	URL    string `yaml:"url"`
	Domain string `yaml:"domain"`
}

// SourcesConfig configures how source references are found on disk.
type SourcesConfig struct {
	MediaRoot  string `yaml:"media_root"`
	StaticRoot string `yaml:"static_root"`
}

// RegistryConfig configures the name registry.
type RegistryConfig struct {
	// Backend is "memory" or "redis".
	Backend  string        `yaml:"backend"`
	Prefix   string        `yaml:"prefix"`
	Size     int           `yaml:"size"`
	RedisURL string        `yaml:"redis_url"`
	TTL      time.Duration `yaml:"ttl"`
}

// ThumbnailConfig holds the default thumbnail options.
type ThumbnailConfig struct {
	Quality  int    `yaml:"quality"`
	Pngquant string `yaml:"pngquant"`
	Factor2x bool   `yaml:"factor2x"`
	Workers  int    `yaml:"workers"`
}

// RenderConfig selects and configures the renderer.
type RenderConfig struct {
	// Engine is "graphicsmagick" or "native".
	Engine         string `yaml:"engine"`
	GMBinary       string `yaml:"gm_binary"`
	PngquantBinary string `yaml:"pngquant_binary"`
	SmartCrop      bool   `yaml:"smart_crop"`
	ProbeCache     int    `yaml:"probe_cache"`
}

// LogConfig configures log output.
type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
	Debug      bool   `yaml:"debug"`
}

// Backends and renderers.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"

	EngineGraphicsMagick = "graphicsmagick"
	EngineNative         = "native"
)

// Default returns the configuration used for everything the file and the
// environment leave unset.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			Prefix:          "/",
			RenderBurst:     4,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			URL: "/",
		},
		Registry: RegistryConfig{
			Backend: BackendMemory,
			Prefix:  "ultimatethumb",
			Size:    100000,
		},
		Thumbnail: ThumbnailConfig{
			Quality:  90,
			Factor2x: true,
		},
		Render: RenderConfig{
			Engine:         EngineGraphicsMagick,
			GMBinary:       "gm",
			PngquantBinary: "pngquant",
			ProbeCache:     4096,
		},
		Log: LogConfig{
			MaxSizeMB:  10,
			MaxBackups: 2,
			MaxAgeDays: 28,
			Compress:   true,
		},
	}
}

// Load reads the configuration file at path on top of the defaults, applies
// ULTIMATETHUMB_* environment overrides and validates the result. An empty
// path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"ULTIMATETHUMB_ADDR":                  &c.Server.Addr,
		"ULTIMATETHUMB_ROOT":                  &c.Storage.Root,
		"ULTIMATETHUMB_URL":                   &c.Storage.URL,
		"ULTIMATETHUMB_DOMAIN":                &c.Storage.Domain,
		"ULTIMATETHUMB_MEDIA_ROOT":            &c.Sources.MediaRoot,
		"ULTIMATETHUMB_STATIC_ROOT":           &c.Sources.StaticRoot,
		"ULTIMATETHUMB_REGISTRY":              &c.Registry.Backend,
		"ULTIMATETHUMB_REDIS_URL":             &c.Registry.RedisURL,
		"ULTIMATETHUMB_PNGQUANT_QUALITY":      &c.Thumbnail.Pngquant,
		"ULTIMATETHUMB_RENDERER":              &c.Render.Engine,
		"ULTIMATETHUMB_GRAPHICSMAGICK_BINARY": &c.Render.GMBinary,
		"ULTIMATETHUMB_PNGQUANT_BINARY":       &c.Render.PngquantBinary,
		"ULTIMATETHUMB_LOG_FILE":              &c.Log.File,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"ULTIMATETHUMB_USE_X_ACCEL_REDIRECT": &c.Server.XAccelRedirect,
		"ULTIMATETHUMB_DEBUG":                &c.Log.Debug,
	}
	for key, dst := range bools {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = b
		}
	}

	if v, ok := lookup("ULTIMATETHUMB_GRAPHICSMAGICK_QUALITY"); ok {
		q, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ULTIMATETHUMB_GRAPHICSMAGICK_QUALITY: %w", err)
		}
		c.Thumbnail.Quality = q
	}
	return nil
}

var pngquantRE = regexp.MustCompile(`^\d+(-\d+)?$`)

// Validate checks if required configuration fields are set
func (c *Config) Validate() error {
	if c.Storage.Root == "" {
		return fmt.Errorf("storage.root is required")
	}
	if c.Storage.URL == "" {
		return fmt.Errorf("storage.url is required")
	}
	if c.Thumbnail.Quality < 1 || c.Thumbnail.Quality > 100 {
		return fmt.Errorf("thumbnail.quality must be within 1..100, got %d", c.Thumbnail.Quality)
	}
	if c.Thumbnail.Pngquant != "" && !pngquantRE.MatchString(c.Thumbnail.Pngquant) {
		return fmt.Errorf("thumbnail.pngquant must look like \"60-80\", got %q", c.Thumbnail.Pngquant)
	}

	switch c.Registry.Backend {
	case BackendMemory:
		if c.Registry.Size <= 0 {
			return fmt.Errorf("registry.size must be positive")
		}
	case BackendRedis:
		if c.Registry.RedisURL == "" {
			return fmt.Errorf("registry.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown registry.backend %q", c.Registry.Backend)
	}

	switch c.Render.Engine {
	case EngineGraphicsMagick, EngineNative:
	default:
		return fmt.Errorf("unknown render.engine %q", c.Render.Engine)
	}
	if c.Render.ProbeCache <= 0 {
		return fmt.Errorf("render.probe_cache must be positive")
	}
	if c.Server.RenderRate < 0 {
		return fmt.Errorf("server.render_rate must not be negative")
	}
	return nil
}
