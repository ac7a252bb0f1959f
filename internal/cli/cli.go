// Package cli implements the topolab command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/topolab/pkg/buildinfo"
	"github.com/matzehuels/topolab/pkg/cache"
	"github.com/matzehuels/topolab/pkg/errors"
	"github.com/matzehuels/topolab/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "topolab"

	// envRedisAddr selects a shared Redis cache instead of the local file
	// cache when set.
	envRedisAddr = "TOPOLAB_REDIS_ADDR"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "topolab",
		Short:        "Topolab turns NSP network topologies into containerlab labs",
		Long:         `Topolab fetches the Layer 2 topology from a Nokia NSP, normalizes it into a canonical graph, and exports containerlab topology files and deterministic diagram layouts.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.authCommand())
	root.AddCommand(c.snapshotCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

// newCache selects the cache backend: disabled, Redis when TOPOLAB_REDIS_ADDR
// is set, the local file cache otherwise.
func newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if addr := os.Getenv(envRedisAddr); addr != "" {
		return cache.NewRedisCache(ctx, addr)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/topolab/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Output Helpers
// =============================================================================

// defaultOutput derives an output path from the input file by swapping its
// extension for suffix.
func defaultOutput(input, suffix string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}

// resolveOutput picks the user-supplied output path or the fallback, and
// rejects unsafe paths before anything is written.
func resolveOutput(path, fallback string) (string, error) {
	if path == "" {
		path = fallback
	}
	if err := errors.ValidatePath(path); err != nil {
		return "", err
	}
	return path, nil
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	return os.Create(path)
}

// firstOf returns the first non-empty value.
func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
