package cmd

import (
	"fmt"
	"os"
	"timetracker/config"
	"timetracker/core"
	"timetracker/database"
	"timetracker/logger"

	"github.com/spf13/cobra"
)

var (
	cfgFile           string
	dbPath            string // Bound to --dbpath flag
	appLogPathFlag    string
	accessLogPathFlag string
	logLevelFlag      string

	store *database.Store
)

var rootCmd = &cobra.Command{
	Use:   "timetracker",
	Short: "Track time spent on tasks",
	Long: `timetracker records time against tasks. Start an event for a task,
optionally labelled with tags, and stop it when you are done.

Run 'timetracker server' to expose the same operations over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(cfgFile, config.Overrides{
			AppLogPath:    appLogPathFlag,
			AccessLogPath: accessLogPathFlag,
			LogLevel:      logLevelFlag,
		}); err != nil {
			return fmt.Errorf("failed to initialize config in PersistentPreRunE: %w", err)
		}

		if cmd.Name() == "completion" ||
			cmd.Name() == cobra.ShellCompRequestCmd ||
			cmd.Name() == cobra.ShellCompNoDescRequestCmd {
			return nil
		}

		finalDBPath := config.AppConfig.Database.Path
		if dbPath != "" {
			finalDBPath = config.ExpandPath(dbPath)
			logger.Info("PersistentPreRunE: Using database path from --dbpath flag: '%s'", finalDBPath)
		}
		if finalDBPath == "" {
			logger.Error("PersistentPreRunE: Database path is empty after checking flag and config! Falling back to 'timetracker.db' in CWD.")
			finalDBPath = "timetracker.db"
		}

		s, err := database.Open(finalDBPath)
		if err != nil {
			return fmt.Errorf("failed to initialize database at %s: %w", finalDBPath, err)
		}
		store = s
		logger.Info("Database initialized at: %s", finalDBPath)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store == nil {
			return
		}
		if err := store.Close(); err != nil {
			logger.Error("Closing database: %v", err)
		}
		store = nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// service returns the event service backed by the store opened in
// PersistentPreRunE.
func service() *core.EventService {
	return core.NewEventService(store)
}

// exitWithError prints msg to stderr, logs the cause and exits non-zero.
func exitWithError(msg string, err error) {
	logger.Error("%s: %v", msg, err)
	fmt.Fprintf(os.Stderr, "%s %s: %v\n", errorStyle.Render("Error:"), msg, err)
	if store != nil {
		store.Close()
	}
	os.Exit(1)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/timetracker/config.yaml or ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "dbpath", "", "path to SQLite database file (overrides config/env/default)")
	rootCmd.PersistentFlags().StringVar(&appLogPathFlag, "app-log", "", "path for the application log file (overrides config/default)")
	rootCmd.PersistentFlags().StringVar(&accessLogPathFlag, "access-log", "", "path for the HTTP access log file (overrides config/default)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level: DEBUG, INFO, WARN, ERROR (overrides config/default)")
}
