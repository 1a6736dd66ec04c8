package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".museumstyle"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the YAML configuration file. Every field is optional; unset
// fields leave the corresponding Config value untouched.
type File struct {
	Store       StoreSection     `yaml:"store"`
	Stylizer    StylizerSection  `yaml:"stylizer"`
	HTTP        HTTPSection      `yaml:"http"`
	Directories DirectorySection `yaml:"directories"`
	Output      OutputSection    `yaml:"output"`
}

// StoreSection configures the upstream store.
type StoreSection struct {
	Driver      string `yaml:"driver"`
	DSN         string `yaml:"dsn"`
	MuseumLimit int    `yaml:"museumLimit"`
}

// StylizerSection configures the neural style script.
type StylizerSection struct {
	Script      string `yaml:"script"`
	Interpreter string `yaml:"interpreter"`
	Width       int    `yaml:"width"`
}

// HTTPSection configures image fetching.
type HTTPSection struct {
	UserAgent string `yaml:"userAgent"`

	// RateLimit is a pointer so that an explicit 0 disables limiting.
	RateLimit *float64 `yaml:"rateLimit"`

	Proxy string `yaml:"proxy"`

	// Timeout is a Go duration string such as "30s".
	Timeout string `yaml:"timeout"`

	RejectedExtensions []string `yaml:"rejectedExtensions"`
}

// DirectorySection overrides the default XDG locations.
type DirectorySection struct {
	Parsed   string `yaml:"parsed"`
	Images   string `yaml:"images"`
	Results  string `yaml:"results"`
	Database string `yaml:"database"`
}

// OutputSection configures the emitted files.
type OutputSection struct {
	Variable    string `yaml:"variable"`
	CacheFormat string `yaml:"cacheFormat"`
	NoIndex     *bool  `yaml:"noIndex"`
}

// LoadConfigFile loads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}
	return ParseConfig(data)
}

// ParseConfig decodes the YAML content of a configuration file.
func ParseConfig(data []byte) (*File, error) {
	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// Apply copies every set field of f into c.
func (f *File) Apply(c *Config) error {
	setString(&c.StoreDriver, f.Store.Driver)
	setString(&c.StoreDSN, f.Store.DSN)
	if f.Store.MuseumLimit != 0 {
		c.MuseumLimit = f.Store.MuseumLimit
	}

	setString(&c.StylizerScript, f.Stylizer.Script)
	setString(&c.Interpreter, f.Stylizer.Interpreter)
	if f.Stylizer.Width != 0 {
		c.TargetWidth = f.Stylizer.Width
	}

	setString(&c.UserAgent, f.HTTP.UserAgent)
	if f.HTTP.RateLimit != nil {
		c.RateLimit = *f.HTTP.RateLimit
	}
	setString(&c.ProxyAddress, f.HTTP.Proxy)
	if f.HTTP.Timeout != "" {
		d, err := time.ParseDuration(f.HTTP.Timeout)
		if err != nil {
			return fmt.Errorf("invalid http.timeout %q: %w", f.HTTP.Timeout, err)
		}
		c.Timeout = d
	}
	if len(f.HTTP.RejectedExtensions) > 0 {
		c.RejectedExtensions = f.HTTP.RejectedExtensions
	}

	setString(&c.ParsedCacheDir, f.Directories.Parsed)
	setString(&c.ImageCacheDir, f.Directories.Images)
	setString(&c.ResultsDir, f.Directories.Results)
	setString(&c.DBDir, f.Directories.Database)

	setString(&c.OutputVariable, f.Output.Variable)
	setString(&c.CacheFormat, f.Output.CacheFormat)
	if f.Output.NoIndex != nil {
		c.NoIndex = *f.Output.NoIndex
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .museumstyle in the current directory
// 3. Look for .museumstyle in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
