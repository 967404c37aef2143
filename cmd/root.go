package cmd

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/wintrack/internal/config"
	"github.com/lakshaymaurya-felt/wintrack/internal/logging"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	logLevel  string
	logFormat string

	// Version info populated from main
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"

	// Resolved per invocation in initConfig.
	settings config.Settings
	logger   = zerolog.Nop()
)

// ErrSilent signals a failure that was already reported to the user.
var ErrSilent = errors.New("silent failure")

// flagKeys binds command-line flags to config keys when a command has them.
var flagKeys = map[string]string{
	"state-dir": config.KeyStateDir,
	"threshold": config.KeyThreshold,
	"top":       config.KeyTop,
	"workers":   config.KeyWorkers,
	"catalog":   config.KeyCatalog,
	"log-dir":   config.KeyCleanLogDir,
}

// SetVersionInfo sets build-time version information.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "wt",
	Short: "Track file changes and clean junk on your drives",
	Long: `wintrack - see what changed on your disk since the last scan.

Each scan walks a directory tree, records every file's size, and compares
the result against the previous scan: new files, files that grew by more
than the threshold, and deleted files. Snapshots are kept as JSON under
the state directory.

Run without a subcommand to start an interactive scan of the configured
root.`,
	Args:              cobra.MaximumNArgs(1),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrack(cmd, args)
	},
}

// Root returns the root command, for ExecuteContext and tests.
func Root() *cobra.Command {
	return rootCmd
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is <user config dir>/wintrack/config.toml)")
	pf.BoolVar(&debug, "debug", false, "Show detailed operation logs")
	pf.StringVar(&logLevel, "log-level", string(logging.WARN), "Log level: debug, info, warn, error, silent")
	pf.StringVar(&logFormat, "log-format", string(logging.CONSOLE), "Log format: console or json")
	pf.String("state-dir", "", "Directory holding snapshots (overrides track.state_dir)")

	addTrackFlags(rootCmd)

	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(drivesCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig(cmd *cobra.Command, _ []string) error {
	v := config.NewViper(cfgFile)
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("bind --%s: %w", name, err)
			}
		}
	}
	if err := config.ReadInConfig(v); err != nil {
		return err
	}

	lvl := logging.Level(logLevel)
	if debug {
		lvl = logging.DEBUG
	}
	l, err := logging.New(cmd.ErrOrStderr(), lvl, logging.Format(logFormat))
	if err != nil {
		return err
	}
	logger = l

	s, err := config.Load(v)
	if err != nil {
		return err
	}
	settings = s

	if used := v.ConfigFileUsed(); used != "" {
		logger.Debug().Str("file", used).Msg("using config file")
	}
	return nil
}
