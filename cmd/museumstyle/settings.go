package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/museumstyle/internal/config"
	"github.com/nao1215/museumstyle/internal/database"
	"github.com/nao1215/museumstyle/internal/httpclient"
	"github.com/nao1215/museumstyle/internal/resolver"
)

// addConfigFlag registers --config on cmd.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: "+config.DefaultConfigFile+" in current or home directory)")
}

// addNetworkFlags registers the flags shared by commands that talk to
// Wikimedia.
func addNetworkFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("rate", config.DefaultRateLimit,
		"Maximum requests per second sent to Wikimedia (0 disables limiting)")
	cmd.Flags().String("proxy", "",
		"Route requests through a SOCKS5 proxy (host:port)")
	cmd.Flags().Duration("timeout", config.DefaultTimeout,
		"Per-request timeout (0 means no timeout)")
	cmd.Flags().Bool("no-index", false,
		"Do not record downloaded images and runs in the local index")
}

// loadConfig builds a Config from defaults, .env files, the environment and
// the configuration file. An explicit --config path must exist; otherwise a
// missing file is not an error.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	config.ApplyEnv(cfg)

	var explicit string
	if cmd.Flags().Lookup("config") != nil {
		var err error
		explicit, err = cmd.Flags().GetString("config")
		if err != nil {
			return nil, err
		}
	}

	path := config.FindConfigFile(explicit)
	switch {
	case path != "":
		file, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		if err := file.Apply(cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", path, err)
		}
		cfg.ConfigFilePath = path
	case explicit != "":
		return nil, fmt.Errorf("configuration file not found: %s", explicit)
	}

	cfg.Verbose = getVerboseFlag(cmd)
	return cfg, nil
}

// applyNetworkFlags copies the network flags the user set into cfg.
func applyNetworkFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error

	if flags.Changed("rate") {
		if cfg.RateLimit, err = flags.GetFloat64("rate"); err != nil {
			return err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if flags.Changed("no-index") {
		if cfg.NoIndex, err = flags.GetBool("no-index"); err != nil {
			return err
		}
	}
	return nil
}

// newHTTPClient creates the Wikimedia client described by cfg.
func newHTTPClient(cfg *config.Config) (*http.Client, error) {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = httpclient.BuildUserAgent(getVersion())
	}

	opts := []httpclient.Option{
		httpclient.WithUserAgent(userAgent),
		httpclient.WithRateLimit(cfg.RateLimit, 1),
		httpclient.WithTimeout(cfg.Timeout),
	}
	if cfg.ProxyAddress != "" {
		opts = append(opts, httpclient.WithProxy(cfg.ProxyAddress))
	}

	client, err := httpclient.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	return client, nil
}

// openIndex opens the asset index unless cfg disables it. A nil index with
// a nil error means indexing is off.
func openIndex(cfg *config.Config, logger *slog.Logger) (*database.AssetDB, error) {
	if cfg.NoIndex {
		return nil, nil
	}
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open asset index: %w", err)
	}
	logger.Debug("asset index opened", "path", db.Path())
	return db, nil
}

// newResolver creates the image resolver for cfg. db may be nil.
func newResolver(cfg *config.Config, client *http.Client, db *database.AssetDB, logger *slog.Logger) *resolver.Resolver {
	opts := []resolver.Option{
		resolver.WithHTTPClient(client),
		resolver.WithRejectedExtensions(cfg.RejectedExtensions...),
		resolver.WithLogger(logger),
	}
	if db != nil {
		opts = append(opts, resolver.WithRecorder(db))
	}
	return resolver.New(cfg.ImageCacheDir, opts...)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context, logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
