package config

import (
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "museumstyle"

	// DefaultDriver is the store driver. The upstream store is a
	// PostgreSQL database of Wikipedia pages.
	DefaultDriver = "postgres"

	// DefaultMuseumLimit caps the number of museums read from the store.
	DefaultMuseumLimit = 1000

	// DefaultInterpreter runs the stylizer script.
	DefaultInterpreter = "python"

	// DefaultTargetWidth is the longer side of the museum preview in pixels.
	DefaultTargetWidth = 400

	// DefaultOutputVariable is the JavaScript variable the dataset is
	// assigned to.
	DefaultOutputVariable = "museums"

	// DefaultRateLimit is the maximum number of requests per second sent to
	// Wikimedia servers.
	DefaultRateLimit = 5.0

	// DefaultTimeout of zero means requests never time out.
	DefaultTimeout = 0 * time.Second

	// DefaultCacheFormat is the encoding of the parsed entity cache.
	DefaultCacheFormat = "json"
)

// Drivers lists the supported store drivers.
var Drivers = []string{"postgres", "mysql", "sqlite"}

// DefaultRejectedExtensions are image extensions that are never fetched.
var DefaultRejectedExtensions = []string{".tiff", ".png"}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Config holds all configuration options for museumstyle.
// This struct is populated from defaults, the environment, the config file
// and CLI flags, in increasing order of precedence, and passed through the
// application rather than kept in global state.
type Config struct {
	// StoreDriver selects the SQL dialect of the upstream store.
	StoreDriver string

	// StoreDSN is the connection string of the upstream store.
	StoreDSN string

	// MuseumLimit caps the number of museums read, most viewed first.
	MuseumLimit int

	// StylizerScript is the path of the neural style script.
	StylizerScript string

	// Interpreter runs StylizerScript.
	Interpreter string

	// TargetWidth is the longer side of the museum preview in pixels.
	TargetWidth int

	// OutputVariable is the JavaScript variable the dataset is assigned to.
	OutputVariable string

	// ParsedCacheDir holds the parsed entity cache.
	ParsedCacheDir string

	// ImageCacheDir holds downloaded images.
	ImageCacheDir string

	// ResultsDir receives previews, styled images and the dataset.
	ResultsDir string

	// DBDir holds the asset index database.
	DBDir string

	// NoIndex disables the asset index.
	NoIndex bool

	// UserAgent overrides the User-Agent sent to Wikimedia servers.
	// Empty means the built-in identification string.
	UserAgent string

	// RateLimit is the maximum number of requests per second. Zero
	// disables rate limiting.
	RateLimit float64

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	ProxyAddress string

	// Timeout bounds each HTTP request. Zero means no timeout.
	Timeout time.Duration

	// CacheFormat is the encoding of the parsed entity cache.
	CacheFormat string

	// RejectedExtensions are image extensions that are never fetched.
	RejectedExtensions []string

	// Verbose enables detailed log output using slog.LevelDebug.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .museumstyle in the current directory
	// and then in the user's home directory.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
// Directories default to XDG locations.
func NewConfig() *Config {
	return &Config{
		StoreDriver:        DefaultDriver,
		MuseumLimit:        DefaultMuseumLimit,
		Interpreter:        DefaultInterpreter,
		TargetWidth:        DefaultTargetWidth,
		OutputVariable:     DefaultOutputVariable,
		ParsedCacheDir:     filepath.Join(XDGCacheDir(), "parsed"),
		ImageCacheDir:      filepath.Join(XDGCacheDir(), "images"),
		ResultsDir:         filepath.Join(XDGDataDir(), "results"),
		DBDir:              XDGDataDir(),
		RateLimit:          DefaultRateLimit,
		Timeout:            DefaultTimeout,
		CacheFormat:        DefaultCacheFormat,
		RejectedExtensions: slices.Clone(DefaultRejectedExtensions),
	}
}

// XDGDataDir returns the XDG data directory for museumstyle.
// On Linux: ~/.local/share/museumstyle
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for museumstyle.
// On Linux: ~/.config/museumstyle
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for museumstyle.
// On Linux: ~/.cache/museumstyle
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// ValidateNetwork checks the options used to fetch images.
func (c *Config) ValidateNetwork() error {
	if c.RateLimit < 0 {
		return ErrInvalidRateLimit
	}
	if c.Timeout < 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// Validate checks if the configuration is complete for a build.
// It returns the first problem found.
func (c *Config) Validate() error {
	if !slices.Contains(Drivers, c.StoreDriver) {
		return ErrInvalidDriver
	}
	if c.StoreDSN == "" {
		return ErrNoStoreDSN
	}
	if c.MuseumLimit < 0 {
		return ErrInvalidMuseumLimit
	}
	if c.StylizerScript == "" {
		return ErrNoStylizer
	}
	if c.TargetWidth <= 0 {
		return ErrInvalidTargetWidth
	}
	if !identifierPattern.MatchString(c.OutputVariable) {
		return ErrInvalidVariable
	}
	switch strings.ToLower(c.CacheFormat) {
	case "json", "yaml", "yml":
	default:
		return ErrInvalidCacheFormat
	}
	return c.ValidateNetwork()
}
