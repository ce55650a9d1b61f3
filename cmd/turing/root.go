package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/turing/internal/cli"
	"github.com/aretw0/turing/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfg      = config.Default()
	logger   *slog.Logger
	closeLog = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "turing",
	Short: "Turing is a single-tape Turing machine engine",
	Long: `Turing runs plain-text Turing machine programs: one rule per line,
"<state> <symbol> <new symbol> <l|r|s> <new state>".`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded

		if cmd.Flags().Changed("dir") {
			cfg.ProgramsDir, _ = cmd.Flags().GetString("dir")
		}
		if cmd.Flags().Changed("log-file") {
			cfg.LogFile, _ = cmd.Flags().GetString("log-file")
		}
		debug, _ := cmd.Flags().GetBool("debug")
		logger = cli.NewLogger(debug, cfg.LogLevel)

		if cfg.LogFile != "" {
			logger, closeLog, err = cli.TeeLogFile(logger, cfg.LogFile, slog.LevelDebug)
			if err != nil {
				return err
			}
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err))
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Config file (default: turing.yaml in the working directory)")
	rootCmd.PersistentFlags().String("dir", "", "Directory containing .tm programs (default: bundled examples)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().String("log-file", "", "Also append JSON logs (debug level) to this file")
}
