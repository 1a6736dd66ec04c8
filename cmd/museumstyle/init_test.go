package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/nao1215/museumstyle/internal/config"
)

// TestNewInitCmd tests the init command creation.
func TestNewInitCmd(t *testing.T) {
	t.Parallel()

	cmd := NewInitCmd()

	t.Run("has output flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("output")
		if flag == nil {
			t.Fatal("expected output flag")
		}
		if flag.Shorthand != "o" {
			t.Errorf("expected shorthand 'o', got %q", flag.Shorthand)
		}
		if flag.DefValue != ".museumstyle" {
			t.Errorf("expected default %q, got %q", ".museumstyle", flag.DefValue)
		}
	})

	t.Run("has force flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("force")
		if flag == nil {
			t.Fatal("expected force flag")
		}
		if flag.Shorthand != "f" {
			t.Errorf("expected shorthand 'f', got %q", flag.Shorthand)
		}
	})
}

// executeInit runs the init command with args and returns its output.
func executeInit(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	cmd := NewInitCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// TestRunInitCmd tests the init command execution.
func TestRunInitCmd(t *testing.T) {
	t.Parallel()

	t.Run("creates config file", func(t *testing.T) {
		t.Parallel()

		outputPath := filepath.Join(t.TempDir(), ".museumstyle")
		output, err := executeInit(t, "-o", outputPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output, outputPath) {
			t.Errorf("expected output to name the file, got %q", output)
		}

		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		for _, section := range []string{"store:", "stylizer:", "http:", "directories:", "output:"} {
			if !strings.Contains(string(content), section) {
				t.Errorf("expected config to contain %q", section)
			}
		}
	})

	t.Run("fails if file exists without force", func(t *testing.T) {
		t.Parallel()

		outputPath := filepath.Join(t.TempDir(), ".museumstyle")
		if err := os.WriteFile(outputPath, []byte("existing"), 0600); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		_, err := executeInit(t, "-o", outputPath)
		if err == nil {
			t.Fatal("expected error when file exists")
		}
		if !strings.Contains(err.Error(), "already exists") {
			t.Errorf("expected 'already exists' error, got %v", err)
		}
	})

	t.Run("overwrites file with force flag", func(t *testing.T) {
		t.Parallel()

		outputPath := filepath.Join(t.TempDir(), ".museumstyle")
		if err := os.WriteFile(outputPath, []byte("existing"), 0600); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		if _, err := executeInit(t, "-o", outputPath, "-f"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		if string(content) == "existing" {
			t.Error("expected file to be overwritten")
		}
	})

	t.Run("creates parent directories with private permissions", func(t *testing.T) {
		t.Parallel()

		outputPath := filepath.Join(t.TempDir(), "subdir", "nested", ".museumstyle")
		if _, err := executeInit(t, "-o", outputPath); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		info, err := os.Stat(outputPath)
		if err != nil {
			t.Fatalf("expected config file in nested directory: %v", err)
		}
		if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
			t.Errorf("expected permissions 0600, got %o", info.Mode().Perm())
		}
	})

	t.Run("fills in driver and stylizer", func(t *testing.T) {
		t.Parallel()

		outputPath := filepath.Join(t.TempDir(), ".museumstyle")
		script := filepath.Join(t.TempDir(), "neural style", "neural_style.py")
		output, err := executeInit(t, "-o", outputPath, "--driver", "sqlite", "--neural-style-py", script, "--python", "python3")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(output, "stylizer.script") {
			t.Errorf("expected no stylizer hint when a script is given, got %q", output)
		}

		file, err := config.LoadConfigFile(outputPath)
		if err != nil {
			t.Fatalf("expected a loadable config: %v", err)
		}
		cfg := config.NewConfig()
		if err := file.Apply(cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.StoreDriver != "sqlite" {
			t.Errorf("expected driver sqlite, got %q", cfg.StoreDriver)
		}
		if cfg.StylizerScript != script {
			t.Errorf("expected script %q, got %q", script, cfg.StylizerScript)
		}
		if cfg.Interpreter != "python3" {
			t.Errorf("expected interpreter python3, got %q", cfg.Interpreter)
		}
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		t.Parallel()

		outputPath := filepath.Join(t.TempDir(), ".museumstyle")
		_, err := executeInit(t, "-o", outputPath, "--driver", "oracle")
		if !errors.Is(err, config.ErrInvalidDriver) {
			t.Errorf("expected ErrInvalidDriver, got %v", err)
		}
		if _, err := os.Stat(outputPath); err == nil {
			t.Error("expected no file to be written")
		}
	})

	t.Run("refuses a directory even with force", func(t *testing.T) {
		t.Parallel()

		_, err := executeInit(t, "-o", t.TempDir(), "-f")
		if err == nil || !strings.Contains(err.Error(), "is a directory") {
			t.Errorf("expected directory error, got %v", err)
		}
	})
}

// TestConfigTemplate checks that the rendered default template loads and
// matches the built-in defaults.
func TestConfigTemplate(t *testing.T) {
	t.Parallel()

	content, err := renderConfig(templateValues{
		Driver:      config.DefaultDriver,
		Interpreter: config.DefaultInterpreter,
		MuseumLimit: config.DefaultMuseumLimit,
		Width:       config.DefaultTargetWidth,
		RateLimit:   config.DefaultRateLimit,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(content), "{{") {
		t.Errorf("expected every template action to be rendered, got %s", content)
	}

	file, err := config.ParseConfig(content)
	if err != nil {
		t.Fatalf("expected template to be valid YAML: %v", err)
	}

	cfg := config.NewConfig()
	if err := file.Apply(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	defaults := config.NewConfig()
	if cfg.StoreDriver != defaults.StoreDriver {
		t.Errorf("expected driver %q, got %q", defaults.StoreDriver, cfg.StoreDriver)
	}
	if cfg.MuseumLimit != defaults.MuseumLimit {
		t.Errorf("expected museum limit %d, got %d", defaults.MuseumLimit, cfg.MuseumLimit)
	}
	if cfg.Interpreter != defaults.Interpreter {
		t.Errorf("expected interpreter %q, got %q", defaults.Interpreter, cfg.Interpreter)
	}
	if cfg.TargetWidth != defaults.TargetWidth {
		t.Errorf("expected width %d, got %d", defaults.TargetWidth, cfg.TargetWidth)
	}
	if cfg.RateLimit != defaults.RateLimit {
		t.Errorf("expected rate %v, got %v", defaults.RateLimit, cfg.RateLimit)
	}
	if cfg.OutputVariable != defaults.OutputVariable {
		t.Errorf("expected variable %q, got %q", defaults.OutputVariable, cfg.OutputVariable)
	}
	if cfg.StoreDSN != "" || cfg.StylizerScript != "" {
		t.Error("expected DSN and stylizer to stay unset")
	}
}
