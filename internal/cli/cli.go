// Package cli implements the splice command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/splice/internal/config"
	"github.com/matzehuels/splice/pkg/cache"
	"github.com/matzehuels/splice/pkg/errors"
	"github.com/matzehuels/splice/pkg/graphdoc"
	"github.com/matzehuels/splice/pkg/httputil"
	"github.com/matzehuels/splice/pkg/nodes"
	"github.com/matzehuels/splice/pkg/pipeline"
	"github.com/matzehuels/splice/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "splice"

	// storePrefix marks a document argument as a stored document name.
	storePrefix = "store:"

	// stdinArg reads a document from standard input.
	stdinArg = "-"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogWarn  = log.WarnLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// In is read for the "-" document argument.
	In io.Reader

	configPath string
	verbose    bool
	quiet      bool
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), In: os.Stdin}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// loadConfig returns the loaded configuration, reading it on first use.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded config", "path", c.configPath, "backend", cfg.Store.Backend, "mode", cfg.Compile.Mode)
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Factories
// =============================================================================

// newRunner creates a pipeline runner for CLI use. Rendered artifacts are
// cached on disk unless noCache is set.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cc, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(nodes.Standard(), cc, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// openStore opens the configured document store.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	sc := cfg.Store

	var st store.Store
	switch sc.Backend {
	case config.BackendRedis:
		opts := []store.RedisOption{store.WithTTL(sc.RedisTTL)}
		if sc.RedisPrefix != "" {
			opts = append(opts, store.WithPrefix(sc.RedisPrefix))
		}
		rs := store.NewRedisStore(sc.RedisAddr, sc.RedisPassword, sc.RedisDB, opts...)
		if err := rs.Ping(ctx); err != nil {
			rs.Close()
			return nil, err
		}
		st = rs
	case config.BackendMongo:
		st, err = store.NewMongoStore(ctx, sc.MongoURI, sc.MongoDatabase, sc.MongoCollection)
	default:
		st, err = store.NewFileStore(sc.Dir)
	}
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("opened store", "backend", sc.Backend)
	return store.Observe(st, sc.Backend), nil
}

// compileDefaults returns compile options from the [compile] section.
func (c *CLI) compileDefaults() (pipeline.Options, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Mode:       cfg.Compile.Mode,
		Monopack:   cfg.Compile.Monopack,
		Persistent: cfg.Compile.Persistent,
		Arrange:    cfg.Compile.Arrange,
		Casts:      cfg.Compile.Casts,
	}, nil
}

// =============================================================================
// Documents
// =============================================================================

// loadDocument reads a document argument: a file path, "-" for stdin, an
// http(s) URL, or store:NAME for a stored document.
func (c *CLI) loadDocument(ctx context.Context, arg string) (*graphdoc.Document, error) {
	switch {
	case arg == stdinArg:
		return graphdoc.Read(c.In)
	case httputil.IsURL(arg):
		c.Logger.Debug("fetching document", "url", arg)
		return httputil.Fetch(ctx, nil, arg)
	case strings.HasPrefix(arg, storePrefix):
		st, err := c.openStore(ctx)
		if err != nil {
			return nil, err
		}
		defer st.Close()
		return st.Get(ctx, strings.TrimPrefix(arg, storePrefix))
	}
	return graphdoc.ReadFile(arg)
}

// documentName derives a display and store name from a document argument.
func documentName(arg string) string {
	if strings.HasPrefix(arg, storePrefix) {
		return strings.TrimPrefix(arg, storePrefix)
	}
	if arg == stdinArg {
		return "stdin"
	}
	if httputil.IsURL(arg) {
		arg = strings.TrimRight(strings.SplitN(arg, "?", 2)[0], "/")
	}
	base := path.Base(filepath.ToSlash(arg))
	for _, ext := range []string{store.FileExt, ".json"} {
		if strings.HasSuffix(base, ext) {
			return strings.TrimSuffix(base, ext)
		}
	}
	return base
}

// writeDocument writes d to path, or to w when path is "-" or empty.
func writeDocument(w io.Writer, d *graphdoc.Document, path string) error {
	if path == "" || path == stdinArg {
		return graphdoc.Write(d, w)
	}
	return graphdoc.WriteFile(d, path)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the artifact cache directory using XDG standard
// (~/.cache/splice/artifacts).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName, "artifacts"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "locate home directory")
	}
	return filepath.Join(home, ".cache", appName, "artifacts"), nil
}
