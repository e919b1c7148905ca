// Package cli implements the gitpkg command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gitpkg/pkg/backend/git"
	"github.com/matzehuels/gitpkg/pkg/buildinfo"
	"github.com/matzehuels/gitpkg/pkg/config"
	"github.com/matzehuels/gitpkg/pkg/observability"
	"github.com/matzehuels/gitpkg/pkg/orchestrator"
	"github.com/matzehuels/gitpkg/pkg/registry"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "gitpkg"

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

	configPath  string
	packagesDir string
	metricsAddr string
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
		Use:          appName,
		Short:        "gitpkg installs and updates packages from git URLs",
		Long:         `gitpkg installs packages straight from git repositories, follows their git dependencies, and keeps them up to date.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/gitpkg/config.toml)")
	root.PersistentFlags().StringVar(&c.packagesDir, "packages-dir", "", "directory packages are installed into")
	root.PersistentFlags().StringVar(&c.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")

	root.AddCommand(c.listCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.updateCommand())
	root.AddCommand(c.reinstallCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.uiCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Session
// =============================================================================

// session wires configuration, backend and orchestrator for one command.
type session struct {
	cfg     config.Config
	backend *git.Backend
	orch    *orchestrator.Orchestrator
	logger  *log.Logger

	shutdown func()
}

// loadConfig loads the config file and applies flag overrides.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	if c.packagesDir != "" {
		cfg.PackagesDir = c.packagesDir
	}
	if c.metricsAddr != "" {
		cfg.MetricsAddr = c.metricsAddr
	}
	return cfg, nil
}

// openSession builds the backend and orchestrator. Callers must call
// close when done.
func (c *CLI) openSession(ctx context.Context, progress orchestrator.Progress) (*session, error) {
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}

	b, err := git.New(cfg.PackagesDir, git.Options{
		ManifestName:  cfg.ManifestName,
		Depth:         cfg.CloneDepth,
		CloneAttempts: cfg.CloneAttempts,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}

	orch := orchestrator.New(b, registry.New(cfg.BuiltinPrefix), orchestrator.Options{
		SettleTicks:    cfg.SettleTicks,
		MaxAddAttempts: cfg.MaxAddAttempts,
		Logger:         logger,
		Progress:       progress,
	})

	s := &session{cfg: cfg, backend: b, orch: orch, logger: logger, shutdown: func() {}}

	if cfg.MetricsAddr != "" {
		stop, err := startMetrics(cfg.MetricsAddr, logger)
		if err != nil {
			return nil, err
		}
		s.shutdown = func() {
			stop()
			observability.Reset()
		}
	}

	logger.Debug("session opened", "packages_dir", cfg.PackagesDir, "settle_ticks", cfg.SettleTicks)
	return s, nil
}

func (s *session) close() {
	s.shutdown()
}

// run drives the orchestrator until it has nothing left to do.
func (s *session) run(ctx context.Context) error {
	return s.orch.Run(ctx, s.cfg.TickInterval)
}

// refresh lists installed packages and waits for the result.
func (s *session) refresh(ctx context.Context) error {
	s.orch.RequestRefresh(ctx)
	return s.run(ctx)
}
