package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/glefebvre/moviedesk/internal/config"
	"github.com/glefebvre/moviedesk/internal/logger"
	"github.com/glefebvre/moviedesk/internal/shutdown"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "moviedesk",
	Short: "Moviedesk manages movie records on a movie backend",
	Long: `Moviedesk lists, searches, adds, updates and deletes movie records stored
by a movie backend REST service, either one command at a time or from an
interactive shell.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of Moviedesk",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "Moviedesk v%s\n", version)
	},
}

var configFile string

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is ./config.yml)")
	cobra.OnInitialize(initConfig)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	// Skip config loading for version command
	if len(os.Args) > 1 && os.Args[1] == "version" {
		return
	}

	if err := config.LoadFile(configFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Get()
	logger.InitializeLoggersWithFormat(cfg.GetAppLogLevel(), cfg.GetHTTPLogLevel(), cfg.Logging.Format)
}

func main() {
	handler := shutdown.New(5 * time.Second)
	handler.Register("loggers", func(ctx context.Context) error {
		logger.AppLogger().Sync()
		logger.HTTPLogger().Sync()
		return nil
	})
	handler.Listen()

	err := rootCmd.ExecuteContext(handler.Context())
	handler.Shutdown()

	if err != nil {
		var failed *actionError
		if !errors.As(err, &failed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
