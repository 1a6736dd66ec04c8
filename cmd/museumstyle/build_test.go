package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/museumstyle/internal/config"
	"github.com/nao1215/museumstyle/internal/database"
)

// parseBuildFlags returns a build command with args parsed and the
// remaining positional arguments.
func parseBuildFlags(t *testing.T, args ...string) (*cobra.Command, []string) {
	t.Helper()

	cmd := NewBuildCmd()
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	return cmd, cmd.Flags().Args()
}

// writeConfigFile writes content to a config file in a temp dir.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".museumstyle")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// TestNewBuildCmd tests the build command flags.
func TestNewBuildCmd(t *testing.T) {
	t.Parallel()

	cmd := NewBuildCmd()

	flags := []struct {
		name     string
		defValue string
	}{
		{"dsn", ""},
		{"driver", "postgres"},
		{"neural-style-py", ""},
		{"python", "python"},
		{"width", "400"},
		{"config", ""},
		{"rate", "5"},
		{"proxy", ""},
		{"timeout", "0s"},
		{"cache-format", "json"},
		{"no-index", "false"},
		{"variable", "museums"},
	}
	for _, f := range flags {
		t.Run(f.name, func(t *testing.T) {
			t.Parallel()
			flag := cmd.Flags().Lookup(f.name)
			if flag == nil {
				t.Fatalf("expected %s flag", f.name)
			}
			if flag.DefValue != f.defValue {
				t.Errorf("expected default %q, got %q", f.defValue, flag.DefValue)
			}
		})
	}

	t.Run("rejects more than three directories", func(t *testing.T) {
		t.Parallel()
		if err := cmd.Args(cmd, []string{"a", "b", "c", "d"}); err == nil {
			t.Error("expected error for four positional arguments")
		}
	})
}

// TestBuildConfig tests how flags, positional directories and the config
// file are combined.
func TestBuildConfig(t *testing.T) {
	t.Parallel()

	configPath := writeConfigFile(t, `store:
  driver: mysql
  dsn: "wiki:pw@tcp(db)/wiki"
stylizer:
  script: /from/config.py
  width: 300
directories:
  parsed: /config/parsed
  results: /config/results
http:
  rateLimit: 2
`)

	t.Run("config file values apply", func(t *testing.T) {
		t.Parallel()

		cmd, args := parseBuildFlags(t, "--config", configPath)
		cfg, err := buildConfig(cmd, args)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.StoreDriver != "mysql" || cfg.StoreDSN != "wiki:pw@tcp(db)/wiki" {
			t.Errorf("unexpected store settings %q %q", cfg.StoreDriver, cfg.StoreDSN)
		}
		if cfg.TargetWidth != 300 || cfg.RateLimit != 2 {
			t.Errorf("unexpected width %d or rate %v", cfg.TargetWidth, cfg.RateLimit)
		}
		if cfg.ConfigFilePath != configPath {
			t.Errorf("expected ConfigFilePath %q, got %q", configPath, cfg.ConfigFilePath)
		}
	})

	t.Run("flags override config file", func(t *testing.T) {
		t.Parallel()

		cmd, args := parseBuildFlags(t,
			"--config", configPath,
			"--driver", "postgres",
			"--dsn", "postgres://flag@db/wiki",
			"--neural-style-py", "/from/flag.py",
			"--width", "640",
			"--rate", "0",
			"--timeout", "30s",
			"--no-index",
			"--variable", "collection",
		)
		cfg, err := buildConfig(cmd, args)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.StoreDriver != "postgres" || cfg.StoreDSN != "postgres://flag@db/wiki" {
			t.Errorf("unexpected store settings %q %q", cfg.StoreDriver, cfg.StoreDSN)
		}
		if cfg.StylizerScript != "/from/flag.py" || cfg.TargetWidth != 640 {
			t.Errorf("unexpected stylizer settings %q %d", cfg.StylizerScript, cfg.TargetWidth)
		}
		if cfg.RateLimit != 0 || cfg.Timeout != 30*time.Second || !cfg.NoIndex {
			t.Errorf("unexpected network settings %v %v %v", cfg.RateLimit, cfg.Timeout, cfg.NoIndex)
		}
		if cfg.OutputVariable != "collection" {
			t.Errorf("expected variable 'collection', got %q", cfg.OutputVariable)
		}
	})

	t.Run("positional directories override config file", func(t *testing.T) {
		t.Parallel()

		cmd, args := parseBuildFlags(t, "--config", configPath, "/arg/parsed", "/arg/images")
		cfg, err := buildConfig(cmd, args)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.ParsedCacheDir != "/arg/parsed" || cfg.ImageCacheDir != "/arg/images" {
			t.Errorf("unexpected cache dirs %q %q", cfg.ParsedCacheDir, cfg.ImageCacheDir)
		}
		if cfg.ResultsDir != "/config/results" {
			t.Errorf("expected results dir from config, got %q", cfg.ResultsDir)
		}
	})

	t.Run("explicit missing config file is an error", func(t *testing.T) {
		t.Parallel()

		cmd, args := parseBuildFlags(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
		if _, err := buildConfig(cmd, args); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("invalid config file is an error", func(t *testing.T) {
		t.Parallel()

		path := writeConfigFile(t, "http:\n  timeout: soon\n")
		cmd, args := parseBuildFlags(t, "--config", path)
		if _, err := buildConfig(cmd, args); err == nil {
			t.Error("expected error for invalid timeout")
		}
	})
}

// TestBuildConfigEnv checks that the environment supplies the DSN below the
// config file. It modifies the environment and does not run in parallel.
func TestBuildConfigEnv(t *testing.T) {
	t.Setenv(config.EnvDSN, "postgres://env@db/wiki")
	t.Setenv(config.EnvStylizer, "/from/env.py")

	configPath := writeConfigFile(t, "stylizer:\n  script: /from/config.py\n")
	cmd, args := parseBuildFlags(t, "--config", configPath)

	cfg, err := buildConfig(cmd, args)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.StoreDSN != "postgres://env@db/wiki" {
		t.Errorf("expected DSN from environment, got %q", cfg.StoreDSN)
	}
	if cfg.StylizerScript != "/from/config.py" {
		t.Errorf("expected config file to override environment, got %q", cfg.StylizerScript)
	}
}

// TestRunBuildCmdValidation tests that invalid configuration is rejected
// before anything is opened.
func TestRunBuildCmdValidation(t *testing.T) {
	t.Parallel()

	configPath := writeConfigFile(t, "store:\n  dsn: postgres://wiki@db/wiki\n")

	var buf bytes.Buffer
	cmd := NewBuildCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"--config", configPath, "--driver", "oracle", "--neural-style-py", "x.py"})

	err := cmd.Execute()
	if !errors.Is(err, config.ErrInvalidDriver) {
		t.Errorf("expected ErrInvalidDriver, got %v", err)
	}
}

const buildFixture = `
CREATE TABLE wikipedia (title TEXT PRIMARY KEY, wikitext TEXT, infobox TEXT, general TEXT);
CREATE TABLE wikistats (title TEXT PRIMARY KEY, viewcount INTEGER NOT NULL);
CREATE TABLE wikidata (wikipedia_id TEXT PRIMARY KEY, properties TEXT);
INSERT INTO wikipedia VALUES
	('Louvre', '{{Infobox museum|image=Louvre Pyramid.jpg}}', 'museum', '["museums"]'),
	('Mona Lisa', '{{Infobox artwork|image_file=Mona Lisa.jpg|artist=Leonardo|museum=[[Louvre]]}}', 'artwork', '["paintings"]'),
	('Lesser Work', '{{Infobox artwork|image_file=Lesser.jpg|museum=[[Louvre]]}}', 'artwork', '["paintings"]');
INSERT INTO wikistats VALUES ('Louvre', 500), ('Mona Lisa', 1000), ('Lesser Work', 10);
INSERT INTO wikidata VALUES ('Louvre', '{"coordinate location": {"lat": 48.86, "lng": 2.33}}');
`

// stylizerScript copies nothing; it only creates the requested output.
const stylizerScript = `while [ $# -gt 0 ]; do
	case "$1" in
		--output) out="$2"; shift ;;
	esac
	shift
done
echo "styling $out"
: > "$out"
`

// writeTestJPEG writes a solid JPEG of the given size.
func writeTestJPEG(t *testing.T, path string, w, h int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, nil); err != nil {
		t.Fatal(err)
	}
}

// TestRunBuild runs the whole build against a SQLite store with a warm
// image cache, so no network access happens.
func TestRunBuild(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dbPath := filepath.Join(root, "wiki.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(buildFixture); err != nil {
		t.Fatalf("failed to load fixture: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	imageDir := filepath.Join(root, "images")
	if err := os.MkdirAll(imageDir, 0750); err != nil {
		t.Fatal(err)
	}
	writeTestJPEG(t, filepath.Join(imageDir, "Louvre_Pyramid.jpg"), 100, 50)
	writeTestJPEG(t, filepath.Join(imageDir, "Mona_Lisa.jpg"), 30, 40)

	script := filepath.Join(root, "neural_style.sh")
	if err := os.WriteFile(script, []byte(stylizerScript), 0600); err != nil {
		t.Fatal(err)
	}

	cfg := config.NewConfig()
	cfg.StoreDriver = "sqlite"
	cfg.StoreDSN = dbPath
	cfg.StylizerScript = script
	cfg.Interpreter = "sh"
	cfg.TargetWidth = 40
	cfg.ParsedCacheDir = filepath.Join(root, "parsed")
	cfg.ImageCacheDir = imageDir
	cfg.ResultsDir = filepath.Join(root, "results")
	cfg.DBDir = filepath.Join(root, "data")
	cfg.RateLimit = 0
	cfg.Verbose = true

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var out bytes.Buffer
	if err := runBuild(context.Background(), cfg, logger, &out); err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out.String())
	}

	output := out.String()
	if !strings.Contains(output, "styling ") {
		t.Errorf("expected stylizer output to be forwarded, got %q", output)
	}
	if !strings.Contains(output, "Louvre") {
		t.Errorf("expected verbose summary to list Louvre, got %q", output)
	}

	dataset, err := os.ReadFile(filepath.Join(cfg.ResultsDir, "museums.js"))
	if err != nil {
		t.Fatalf("expected dataset file: %v", err)
	}
	if !strings.HasPrefix(string(dataset), "museums = ") {
		t.Errorf("unexpected dataset prefix %q", string(dataset))
	}
	if !strings.Contains(string(dataset), "Mona Lisa") || strings.Contains(string(dataset), "Lesser Work") {
		t.Errorf("expected only the most viewed painting, got %s", dataset)
	}

	for _, name := range []string{"Louvre-orig.jpg", "Louvre-painting.jpg", "Louvre-styled.jpg", "summary.md"} {
		if _, err := os.Stat(filepath.Join(cfg.ResultsDir, name)); err != nil {
			t.Errorf("expected %s in results: %v", name, err)
		}
	}

	index, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer index.Close()

	runs, err := index.ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Retained != 1 || runs[0].Stylized != 1 {
		t.Errorf("expected one recorded run with one stylized entry, got %+v", runs)
	}

	t.Run("second run does not stylize again", func(t *testing.T) {
		var again bytes.Buffer
		if err := runBuild(context.Background(), cfg, logger, &again); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(again.String(), "styling ") {
			t.Errorf("expected existing styled output to be kept, got %q", again.String())
		}
	})
}
