package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// errUnresolved is returned when at least one reference could not be resolved.
var errUnresolved = errors.New("image references could not be resolved")

// NewResolveCmd creates the resolve command.
func NewResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <image-ref>...",
		Short: "Download images into the image cache and print their paths",
		Long: `Resolve looks up each image reference (a file name as it appears in a
Wikipedia infobox, e.g. "Mona Lisa.jpg") in the image cache and downloads it
from Wikimedia on a miss. The absolute path of every resolved image is
printed, one per line. References that cannot be resolved are reported on
stderr.

Examples:
  museumstyle resolve "Mona Lisa.jpg"
  museumstyle resolve -d ./images "The Starry Night.jpg" "Louvre Museum.jpg"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runResolveCmd,
	}

	cmd.Flags().StringP("image-cache", "d", "",
		"Image cache directory (default: XDG cache directory)")
	addNetworkFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

// runResolveCmd executes the resolve command.
func runResolveCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyNetworkFlags(cmd, cfg); err != nil {
		return err
	}
	dir, err := cmd.Flags().GetString("image-cache")
	if err != nil {
		return err
	}
	if dir != "" {
		cfg.ImageCacheDir = dir
	}
	if err := cfg.ValidateNetwork(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(cmd.Context(), logger)
	defer cancel()

	client, err := newHTTPClient(cfg)
	if err != nil {
		return err
	}

	db, err := openIndex(cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	res := newResolver(cfg, client, db, logger)

	missing := 0
	for _, ref := range args {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		path, ok := res.Resolve(ctx, ref)
		if !ok {
			missing++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: not found\n", ref)
			continue
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}

	if missing > 0 {
		return fmt.Errorf("%d of %d: %w", missing, len(args), errUnresolved)
	}
	return nil
}
