// Package config loads the key=value property file that drives startup.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/toyz/dispatch/internal/errors"
	"github.com/toyz/dispatch/internal/logging"
)

// Property keys understood by Load.
const (
	KeyScanPackage     = "scanPackage"
	KeySourceRoot      = "sourceRoot"
	KeyContextPath     = "contextPath"
	KeyNotFoundBody    = "notFoundBody"
	KeyServerEngine    = "server.engine"
	KeyServerAddr      = "server.addr"
	KeyShutdownTimeout = "server.shutdownTimeout"
	KeyLogLevel        = "log.level"
	KeyLogFormat       = "log.format"
)

// DefaultFile is the property file read when none is given.
const DefaultFile = "application.properties"

// Config is the typed startup configuration
type Config struct {
	ScanPackage  string // root namespace to scan
	SourceRoot   string // directory holding the namespace tree, empty for embedded sources
	ContextPath  string // deployment prefix stripped from request paths
	NotFoundBody string // body written on a lookup miss, empty for the default
	Server       ServerConfig
	Log          logging.Config
	Source       string // file the values were read from
}

// ServerConfig configures the hosting web server
type ServerConfig struct {
	Engine          string
	Addr            string
	ShutdownTimeout time.Duration
}

// Default returns the configuration used when no property file is available
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Engine:          "chi",
			Addr:            ":8080",
			ShutdownTimeout: 30 * time.Second,
		},
		Log: *logging.DefaultConfig(),
	}
}

// Load reads a property file. When the file is missing or unreadable the
// defaults are returned together with a *errors.ConfigurationError so the
// caller can log it and carry on.
func Load(file string) (*Config, error) {
	if file == "" {
		file = DefaultFile
	}

	values, err := godotenv.Read(file)
	if err != nil {
		cfg := Default()
		applyEnv(cfg)
		cfgErr := errors.NewConfigurationError("", "cannot read property file "+file, err)
		cfgErr.WithContext("file", file)
		return cfg, cfgErr
	}

	cfg, err := FromMap(values)
	cfg.Source = file
	return cfg, err
}

// Parse reads properties from a string, using the same syntax as Load
func Parse(content string) (*Config, error) {
	values, err := godotenv.Unmarshal(content)
	if err != nil {
		return Default(), errors.NewConfigurationError("", "invalid property syntax", err)
	}
	return FromMap(values)
}

// FromMap builds a Config from raw property values layered over the defaults
func FromMap(values map[string]string) (*Config, error) {
	cfg := Default()
	get := func(key string) string { return strings.TrimSpace(values[key]) }

	cfg.ScanPackage = get(KeyScanPackage)
	cfg.SourceRoot = get(KeySourceRoot)
	cfg.ContextPath = get(KeyContextPath)
	cfg.NotFoundBody = values[KeyNotFoundBody]

	if v := get(KeyServerEngine); v != "" {
		cfg.Server.Engine = strings.ToLower(v)
	}
	if v := get(KeyServerAddr); v != "" {
		cfg.Server.Addr = v
	}
	if v := get(KeyLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := get(KeyLogFormat); v != "" {
		cfg.Log.Format = v
	}

	var errs error
	if v := get(KeyShutdownTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			errs = errors.NewConfigurationError(KeyShutdownTimeout, "invalid duration "+v, err)
		} else {
			cfg.Server.ShutdownTimeout = d
		}
	}

	applyEnv(cfg)
	return cfg, errs
}

// applyEnv lets the PORT environment variable override the listen address
func applyEnv(cfg *Config) {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Server.Addr = ":" + strings.TrimPrefix(port, ":")
	}
}
