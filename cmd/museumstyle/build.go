package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/museumstyle/internal/config"
	"github.com/nao1215/museumstyle/internal/memo"
	"github.com/nao1215/museumstyle/internal/pipeline"
	"github.com/nao1215/museumstyle/internal/report"
	"github.com/nao1215/museumstyle/internal/repository"
	"github.com/nao1215/museumstyle/internal/store"
	"github.com/nao1215/museumstyle/internal/stylize"
)

// NewBuildCmd creates the build command.
func NewBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [parsed-cache-dir [image-cache-dir [results-dir]]]",
		Short: "Build the styled museum dataset",
		Long: `Build runs the whole pipeline:

  1. load museums and paintings from the store (cached in the parsed-cache dir)
  2. pair every museum with its most viewed painting
  3. download both images from Wikimedia (cached in the image-cache dir)
  4. write museum and painting previews to the results dir
  5. render the museum photo in the painting's style with the stylizer script
  6. write museums.js and summary.md to the results dir

Images that already have a styled output are not rendered again.

Examples:
  # Build with a PostgreSQL store and default directories
  museumstyle build --dsn postgres://wiki@localhost/wiki --neural-style-py ~/neural-style/neural_style.py

  # Use explicit directories
  museumstyle build ./parsed ./images ./results

  # Read the DSN from MUSEUMSTYLE_DSN (or a .env file)
  MUSEUMSTYLE_DSN=postgres://wiki@localhost/wiki museumstyle build

Configuration file (.museumstyle) example:
  store:
    driver: postgres
    dsn: postgres://wiki@localhost/wiki
  stylizer:
    script: /opt/neural-style/neural_style.py
    width: 400`,
		Args: cobra.MaximumNArgs(3),
		RunE: runBuildCmd,
	}

	// Store flags
	cmd.Flags().String("dsn", "",
		"Store connection string (default: $"+config.EnvDSN+")")
	cmd.Flags().String("driver", config.DefaultDriver,
		"Store driver: postgres, mysql or sqlite")
	cmd.Flags().Int("museum-limit", config.DefaultMuseumLimit,
		"Maximum number of museums read from the store")

	// Stylizer flags
	cmd.Flags().String("neural-style-py", "",
		"Path of the style transfer script (default: $"+config.EnvStylizer+")")
	cmd.Flags().String("python", config.DefaultInterpreter,
		"Interpreter that runs the style transfer script")
	cmd.Flags().IntP("width", "w", config.DefaultTargetWidth,
		"Longer side of the museum preview in pixels")

	// Output flags
	cmd.Flags().String("cache-format", config.DefaultCacheFormat,
		"Encoding of the parsed-record cache: json or yaml")
	cmd.Flags().String("variable", config.DefaultOutputVariable,
		"JavaScript variable the dataset is assigned to")

	addNetworkFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

// runBuildCmd executes the build command.
func runBuildCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(cmd.Context(), logger)
	defer cancel()

	return runBuild(ctx, cfg, logger, cmd.OutOrStdout())
}

// buildConfig creates a Config for the build command. Positional
// directories override the config file and flags override both.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	dirs := []*string{&cfg.ParsedCacheDir, &cfg.ImageCacheDir, &cfg.ResultsDir}
	for i, arg := range args {
		*dirs[i] = arg
	}

	flags := cmd.Flags()
	stringFlags := map[string]*string{
		"dsn":             &cfg.StoreDSN,
		"driver":          &cfg.StoreDriver,
		"neural-style-py": &cfg.StylizerScript,
		"python":          &cfg.Interpreter,
		"cache-format":    &cfg.CacheFormat,
		"variable":        &cfg.OutputVariable,
	}
	for name, dst := range stringFlags {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetString(name); err != nil {
			return nil, err
		}
	}

	if flags.Changed("width") {
		if cfg.TargetWidth, err = flags.GetInt("width"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("museum-limit") {
		if cfg.MuseumLimit, err = flags.GetInt("museum-limit"); err != nil {
			return nil, err
		}
	}

	if err := applyNetworkFlags(cmd, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// runBuild wires the components described by cfg and executes the pipeline.
// Progress of the stylizer and the final summary are written to out.
func runBuild(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	logger.Info("starting build",
		"driver", cfg.StoreDriver,
		"dsn", cfg.StoreDSN,
		"parsedCache", cfg.ParsedCacheDir,
		"imageCache", cfg.ImageCacheDir,
		"results", cfg.ResultsDir,
	)

	codec, err := memo.CodecByName(cfg.CacheFormat)
	if err != nil {
		return err
	}

	st, err := store.Open(ctx, cfg.StoreDriver, cfg.StoreDSN,
		store.WithLogger(logger),
		store.WithMuseumLimit(cfg.MuseumLimit),
	)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	loader := repository.NewLoader(st, cfg.ParsedCacheDir,
		repository.WithCodec(codec),
		repository.WithLogger(logger),
	)

	client, err := newHTTPClient(cfg)
	if err != nil {
		return err
	}

	db, err := openIndex(cfg, logger)
	if err != nil {
		return err
	}

	configOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineTargetWidth(cfg.TargetWidth),
		pipeline.WithPipelineVariable(cfg.OutputVariable),
		pipeline.WithPipelineLogger(logger),
	}
	if db != nil {
		defer db.Close()
		configOpts = append(configOpts, pipeline.WithPipelineIndex(db))
	}

	images := newResolver(cfg, client, db, logger)
	stylizer := stylize.New(cfg.StylizerScript,
		stylize.WithInterpreter(cfg.Interpreter),
		stylize.WithOutput(out),
		stylize.WithLogger(logger),
	)

	p := pipeline.DefaultPipeline(loader, images, stylizer, cfg.ResultsDir,
		[]pipeline.Option{pipeline.WithLogger(logger)},
		configOpts...,
	)

	run := pipeline.NewRun()
	fmt.Fprintf(out, "Building dataset in %s...\n", cfg.ResultsDir)

	if err := p.Execute(ctx, run); err != nil {
		return fmt.Errorf("build failed after %d of %d steps: %w",
			len(run.PerformedSteps), p.Len(), err)
	}

	fmt.Fprintf(out, "Build completed in %s\n\n", run.Summary.Duration().Round(time.Millisecond))

	writer := report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose))
	if _, err := writer.Write(&run.Summary); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}
