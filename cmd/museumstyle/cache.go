package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/nao1215/museumstyle/internal/config"
	"github.com/nao1215/museumstyle/internal/memo"
	"github.com/nao1215/museumstyle/internal/repository"
)

// NewCacheCmd creates the cache command group.
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the on-disk caches",
		Long: `The build keeps two caches: parsed museum and painting records, and
downloaded images. Neither expires on its own; use "cache clear" after the
store or Wikimedia content changed.`,
	}
	cmd.AddCommand(NewCacheClearCmd())
	return cmd
}

// NewCacheClearCmd creates the cache clear command.
func NewCacheClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached records and images",
		Long: `Clear removes cache files. Without flags both caches are cleared.

Clearing the image cache also drops the image records of the asset index, so
credits are fetched again with the images.

Examples:
  # Re-read museums and paintings from the store on the next build
  museumstyle cache clear --parsed

  # Clear everything
  museumstyle cache clear`,
		Args: cobra.NoArgs,
		RunE: runCacheClearCmd,
	}

	cmd.Flags().Bool("parsed", false, "Clear the parsed-record cache")
	cmd.Flags().Bool("images", false, "Clear the image cache")
	addConfigFlag(cmd)

	return cmd
}

// runCacheClearCmd executes the cache clear command.
func runCacheClearCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	parsed, err := cmd.Flags().GetBool("parsed")
	if err != nil {
		return err
	}
	images, err := cmd.Flags().GetBool("images")
	if err != nil {
		return err
	}
	if !parsed && !images {
		parsed, images = true, true
	}

	logger := setupLogger(cmd, cfg.Verbose)
	out := cmd.OutOrStdout()

	if parsed {
		n, err := clearParsedCache(cfg, logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Removed %d parsed-record cache file(s) from %s\n", n, cfg.ParsedCacheDir)
	}

	if images {
		n, err := newResolver(cfg, http.DefaultClient, nil, logger).Clear()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Removed %d image(s) from %s\n", n, cfg.ImageCacheDir)

		db, err := openIndex(cfg, logger)
		if err != nil {
			return err
		}
		if db != nil {
			defer db.Close()
			records, err := db.ClearAssets(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Removed %d asset record(s) from the index\n", records)
		}
	}

	return nil
}

// clearParsedCache removes the parsed-record cache files of every format.
func clearParsedCache(cfg *config.Config, logger *slog.Logger) (int, error) {
	total := 0
	for _, name := range []string{"json", "yaml"} {
		codec, err := memo.CodecByName(name)
		if err != nil {
			return total, err
		}
		loader := repository.NewLoader(nil, cfg.ParsedCacheDir,
			repository.WithCodec(codec),
			repository.WithLogger(logger),
		)
		n, err := loader.ClearCache()
		total += n
		if err != nil {
			return total, fmt.Errorf("failed to clear parsed cache: %w", err)
		}
	}
	return total, nil
}
