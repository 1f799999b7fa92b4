package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Guliveer/umstartup/internal/app"
	"github.com/Guliveer/umstartup/internal/config"
	"github.com/Guliveer/umstartup/internal/platform"
)

// newPlatform is a variable so tests can substitute an in-memory platform.
var newPlatform = platform.New

// cli holds the state shared by every command once the root pre-run has
// loaded the configuration.
type cli struct {
	configPath  string
	logLevel    string
	settingsDir string
	autostart   bool

	cfg    *config.Config
	logger *zap.Logger
	app    *app.App
}

func newRootCommand(version string) *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "umstartup",
		Short: "Manage programs that launch at logon",
		Long: `umstartup lists the programs launched at logon from the registry run keys
and the Startup folders, enables, disables or deletes them, and can hide or
close their windows shortly after they appear.

Registered for logon with 'self-autostart enable', it runs as
'umstartup --autostart': it handles the configured windows and, when
auto-exit is on, exits once everything is done.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.autostart {
				return c.runMonitor(cmd, true)
			}
			return cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "Path to configuration file (default: auto-discover)")
	flags.StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&c.settingsDir, "settings-dir", "", "Directory holding settings.json")
	root.Flags().BoolVar(&c.autostart, "autostart", false, "Run the monitor as a logon launch")

	root.AddCommand(
		c.newListCommand(),
		c.newToggleCommand("enable", true),
		c.newToggleCommand("disable", false),
		c.newDeleteCommand(),
		c.newSettingsCommand(),
		c.newMonitorCommand(),
		c.newStatusCommand(),
		c.newSelfAutostartCommand(),
		c.newConfigCommand(),
	)
	return root
}

// init loads the layered configuration, builds the logger and the app.
func (c *cli) init() error {
	overrides := config.CLIOverrides{LogLevel: c.logLevel, SettingsDir: c.settingsDir}

	var (
		cfg *config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.LoadLayered(overrides, embeddedConfig, c.configPath)
	} else {
		cfg, err = config.LoadLayered(overrides, embeddedConfig)
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	c.cfg = cfg
	c.logger = initLogger(cfg)

	p := newPlatform()
	c.app = app.New(p, app.Options{
		SettingsDir:  cfg.Settings.Dir,
		PollInterval: cfg.Monitor.PollInterval.Duration,
		Exit: func() {
			_ = c.logger.Sync()
			os.Exit(0)
		},
	}, c.logger)

	c.logger.Debug("Initialized", zap.Stringer("app", c.app))
	return nil
}
