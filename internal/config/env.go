package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables read by ApplyEnv.
const (
	EnvDSN      = "MUSEUMSTYLE_DSN"
	EnvDriver   = "MUSEUMSTYLE_DRIVER"
	EnvStylizer = "MUSEUMSTYLE_NEURAL_STYLE_PY"
)

// DefaultEnvFiles are loaded by LoadDotEnv, most specific first.
var DefaultEnvFiles = []string{".env.local", ".env"}

// LoadDotEnv loads variables from the existing files among paths into the
// process environment. Variables already set are never overridden, so the
// first file that defines a variable wins. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = DefaultEnvFiles
	}

	var existing []string
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// ApplyEnv copies the museumstyle environment variables that are set into c.
func ApplyEnv(c *Config) {
	setString(&c.StoreDSN, os.Getenv(EnvDSN))
	setString(&c.StoreDriver, os.Getenv(EnvDriver))
	setString(&c.StylizerScript, os.Getenv(EnvStylizer))
}
