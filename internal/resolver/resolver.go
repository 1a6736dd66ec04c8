package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/nao1215/museumstyle/internal/model"
)

// Default response size limits.
const (
	DefaultMaxPageSize  = 8 * 1024 * 1024
	DefaultMaxImageSize = 256 * 1024 * 1024
)

// AssetRecorder receives metadata about every downloaded image.
type AssetRecorder interface {
	RecordAsset(ctx context.Context, asset model.Asset) error
}

// Resolver resolves image references into files in an asset cache directory.
// A Resolver is meant to be used by one goroutine at a time.
type Resolver struct {
	dir          string
	client       *http.Client
	prefixes     []string
	scraper      PageScraper
	rejected     []string
	recorder     AssetRecorder
	logger       *slog.Logger
	maxPageSize  int64
	maxImageSize int64

	// failures remembers references that could not be resolved during this
	// process, so a reference shared by several entries is probed once.
	failures *cache.Cache
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient sets the client used for all requests.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		r.client = client
	}
}

// WithPrefixes replaces DefaultPrefixes.
func WithPrefixes(prefixes ...string) Option {
	return func(r *Resolver) {
		r.prefixes = prefixes
	}
}

// WithScraper replaces the default MarkerScraper.
func WithScraper(scraper PageScraper) Option {
	return func(r *Resolver) {
		r.scraper = scraper
	}
}

// WithRejectedExtensions replaces DefaultRejectedExtensions.
func WithRejectedExtensions(exts ...string) Option {
	return func(r *Resolver) {
		r.rejected = exts
	}
}

// WithRecorder sets the recorder notified of downloaded images.
func WithRecorder(recorder AssetRecorder) Option {
	return func(r *Resolver) {
		r.recorder = recorder
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// New creates a Resolver storing images in dir.
func New(dir string, opts ...Option) *Resolver {
	r := &Resolver{
		dir:          dir,
		prefixes:     DefaultPrefixes,
		rejected:     DefaultRejectedExtensions,
		maxPageSize:  DefaultMaxPageSize,
		maxImageSize: DefaultMaxImageSize,
		failures:     cache.New(cache.NoExpiration, 0),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.client == nil {
		r.client = http.DefaultClient
	}
	if r.scraper == nil {
		r.scraper = NewMarkerScraper()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Dir returns the asset cache directory.
func (r *Resolver) Dir() string {
	return r.dir
}

// Resolve returns the absolute path of the cached image for ref, downloading
// it on a cache miss. ok is false when the reference is rejected or no source
// produced a decodable image.
func (r *Resolver) Resolve(ctx context.Context, ref string) (path string, ok bool) {
	if IsRejected(ref, r.rejected) {
		r.logger.Debug("image reference rejected", "ref", ref)
		return "", false
	}

	name := Normalize(ref)
	if name == "" {
		return "", false
	}

	path, err := filepath.Abs(filepath.Join(r.dir, CacheFileName(name)))
	if err != nil {
		r.logger.Error("failed to build cache path", "name", name, "error", err)
		return "", false
	}

	if isFile(path) {
		r.logger.Debug("image cache hit", "name", name, "path", path)
		return path, true
	}

	if _, failed := r.failures.Get(name); failed {
		return "", false
	}

	if err := r.download(ctx, name, path); err != nil {
		if ctx.Err() == nil {
			r.failures.SetDefault(name, err.Error())
		}
		r.logger.Warn("image not resolved", "name", name, "error", err)
		return "", false
	}

	return path, true
}

// errNoImage is returned by download when every prefix was exhausted.
var errNoImage = errors.New("no image found on any description page")

// download probes every prefix in order and stores the first image found.
func (r *Resolver) download(ctx context.Context, name, path string) error {
	for _, prefix := range r.prefixes {
		if err := ctx.Err(); err != nil {
			return err
		}

		pageURL := prefix + name
		page, status, err := r.get(ctx, pageURL, r.maxPageSize)
		if err != nil {
			r.logger.Debug("description page unavailable", "url", pageURL, "error", err)
			continue
		}
		if status == http.StatusNotFound {
			continue
		}

		for _, imageURL := range r.scraper.ImageURLs(string(page)) {
			data, status, err := r.get(ctx, imageURL, r.maxImageSize)
			if err != nil {
				r.logger.Debug("image download failed", "url", imageURL, "error", err)
				continue
			}
			if status == http.StatusNotFound {
				continue
			}

			// A body that is not a decodable image ends the search.
			asset, err := storeImage(data, path)
			if err != nil {
				return err
			}

			asset.Name = name
			asset.PageURL = pageURL
			asset.ImageURL = imageURL
			asset.FetchedAt = time.Now().UTC()
			r.record(ctx, asset)

			r.logger.Info("image downloaded", "name", name, "url", imageURL, "path", path)
			return nil
		}
	}
	return errNoImage
}

// get fetches url and returns at most limit bytes of the body.
func (r *Resolver) get(ctx context.Context, url string, limit int64) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, resp.StatusCode, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

func (r *Resolver) record(ctx context.Context, asset model.Asset) {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.RecordAsset(ctx, asset); err != nil {
		r.logger.Warn("failed to record asset", "name", asset.Name, "error", err)
	}
}

// Clear removes every cached image and forgets remembered failures. Files
// whose names the resolver never produces are left in place. It returns the
// number of files removed.
func (r *Resolver) Clear() (int, error) {
	r.failures.Flush()

	entries, err := os.ReadDir(r.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read image cache: %w", err)
	}

	removed := 0
	for _, e := range entries {
		if !e.Type().IsRegular() || !IsCacheFileName(e.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(r.dir, e.Name())); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", e.Name(), err)
		}
		removed++
	}
	return removed, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
