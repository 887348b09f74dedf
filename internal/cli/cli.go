// Package cli implements the drawview command-line interface.
//
// Commands share one [CLI] value holding the logger and the configuration
// loaded in the root command's PersistentPreRunE. The logger is also
// attached to each command's context so helpers can reach it through
// loggerFromContext.
//
// # Commands
//
//   - decode, compress: convert between the stored and the plain XML form
//   - parse: summarize the diagram model
//   - render, export: write SVG and PNG artifacts
//   - watch: re-export whenever the document or the configuration changes
//   - serve: run the HTTP host
//   - cache, config, completion: housekeeping
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/drawview/pkg/buildinfo"
	"github.com/matzehuels/drawview/pkg/cache"
	"github.com/matzehuels/drawview/pkg/config"
	"github.com/matzehuels/drawview/pkg/observability"
	"github.com/matzehuels/drawview/pkg/pipeline"
	"github.com/matzehuels/drawview/pkg/settings"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "drawview"

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

	configPath string
	noCache    bool
	config     config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: config.Default(),
	}
}

// SetLogLevel updates the logger's level. At debug level pipeline stages
// are traced through observability hooks.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		observability.SetPipelineHooks(logHooks{logger: c.Logger})
		observability.SetCacheHooks(logHooks{logger: c.Logger})
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "drawview decodes, renders and exports Draw.io diagrams",
		Long:         `drawview reads Draw.io / diagrams.net files in any of their stored forms (bare XML, wrapped XML, compressed pages), renders the first page and exports it as SVG or PNG.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", config.DefaultPath(), "configuration file")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the on-disk cache")

	root.AddCommand(c.decodeCommand())
	root.AddCommand(c.compressCommand())
	root.AddCommand(c.parseCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.config = cfg
	c.Logger.Debug("loaded config", "path", c.configPath)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. Its settings store holds
// the [export] section of the configuration.
func (c *CLI) newRunner() (*pipeline.Runner, error) {
	st, err := c.config.Export.Settings()
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(c.newCache(), nil, c.Logger)
	runner.Settings = settings.NewStore(st)
	return runner, nil
}

func (c *CLI) newCache() cache.Cache {
	if c.noCache || c.config.Cache.Disabled {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(c.cacheDir())
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, falling back to the XDG
// standard location (~/.cache/drawview/).
func (c *CLI) cacheDir() string {
	if c.config.Cache.Dir != "" {
		return c.config.Cache.Dir
	}
	return defaultCacheDir()
}

func defaultCacheDir() string {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName)
	}
	return config.DefaultCacheDir()
}
