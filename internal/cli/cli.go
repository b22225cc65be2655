package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/zimmermanw84/ts-visio-sub000/pkg/autolayout"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/buildinfo"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/cache"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/config"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/connector"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/container"
	errs "github.com/zimmermanw84/ts-visio-sub000/pkg/errors"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/page"
	"github.com/zimmermanw84/ts-visio-sub000/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "tsvisio"

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
	verbose    bool
	cfg        config.Config

	// layoutCache is set by the layout command for the duration of a run.
	layoutCache cache.Cache

	// openStore is swapped out in tests.
	openStore func(ctx context.Context, cfg config.Store) (store.Store, error)
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:    newLogger(w, level),
		cfg:       config.Default(),
		openStore: store.Open,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "tsvisio edits the geometry of diagram pages",
		Long: `tsvisio keeps a tree of nested shapes per page, resolves their page
coordinates, routes connectors between them and stacks container members.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.loadConfig,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (.toml, .yaml); defaults to $"+config.EnvVar)
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.initCommand())
	root.AddCommand(c.pagesCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.attachCommand())
	root.AddCommand(c.moveCommand())
	root.AddCommand(c.resizeCommand())
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.connectCommand())
	root.AddCommand(c.containerCommand())
	root.AddCommand(c.memberCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the configuration file and applies its log level.
// --verbose always wins over the configured level.
func (c *CLI) loadConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = log.InfoLevel
	}
	if c.verbose {
		level = log.DebugLevel
	}
	c.SetLogLevel(level)
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// =============================================================================
// Engine Factory
// =============================================================================

// pageOptions builds the engine collaborators from the loaded configuration.
func (c *CLI) pageOptions() ([]page.Option, error) {
	policy, err := c.cfg.Connector.RouterPolicy()
	if err != nil {
		return nil, err
	}
	axis, err := c.cfg.Layout.StackAxis()
	if err != nil {
		return nil, err
	}
	l := c.cfg.Layout
	lo := autolayout.DefaultOptions()
	lo.Engine, lo.RankDir, lo.NodeSep, lo.RankSep = l.Engine, l.RankDir, l.NodeSep, l.RankSep
	lo.Cache = c.layoutCache

	return []page.Option{
		page.WithRouter(connector.NewRouter(connector.WithPolicy(policy), connector.WithLogger(c.Logger))),
		page.WithEngine(container.New(container.WithDefaults(axis, l.Spacing, l.Padding), container.WithLogger(c.Logger))),
		page.WithLayoutOptions(lo),
		page.WithLogger(c.Logger),
	}, nil
}

// newCache returns the on-disk layout cache, or a null cache when disabled
// or when no cache directory can be determined.
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

// cacheDir returns the cache directory using XDG standard (~/.cache/tsvisio/).
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

// open returns the configured store. Callers close it.
func (c *CLI) open(ctx context.Context) (store.Store, error) {
	return c.openStore(ctx, c.cfg.Store)
}

// readPage loads a page without saving it back.
func (c *CLI) readPage(ctx context.Context, pageID string) (*page.Page, error) {
	s, err := c.open(ctx)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	opts, err := c.pageOptions()
	if err != nil {
		return nil, err
	}
	return page.Load(ctx, s, pageID, opts...)
}

// editPage loads a page, applies fn and saves the result. Nothing is written
// when fn fails.
func (c *CLI) editPage(ctx context.Context, pageID string, fn func(*page.Page) error) (*page.Page, error) {
	s, err := c.open(ctx)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	opts, err := c.pageOptions()
	if err != nil {
		return nil, err
	}
	p, err := page.Load(ctx, s, pageID, opts...)
	if err != nil {
		if errs.Is(err, errs.ErrCodeNotFound) {
			return nil, errs.Wrap(errs.ErrCodeNotFound, err, "page %q does not exist (run %s init %s)", pageID, appName, pageID)
		}
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	if err := p.Save(ctx, s); err != nil {
		return nil, err
	}
	c.Logger.Debug("saved page", "page", pageID, "shapes", p.Tree().Len())
	return p, nil
}
