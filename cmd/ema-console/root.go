package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	logLevel   string
}

func rootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:          "ema-console",
		Short:        "Headless console for a realtime voice-agent session",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(flags.logLevel)
		},
	}
	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", defaultConfigPath(), "path to the JSON5 config file")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "debug, info, warn or error")

	cmd.AddCommand(runCmd(flags))
	cmd.AddCommand(toolsCmd())
	return cmd
}

func defaultConfigPath() string {
	if path, ok := os.LookupEnv("EMA_CONFIG"); ok {
		return path
	}
	return ""
}

func setupLogging(level string) error {
	var slogLevel slog.Level
	if err := slogLevel.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel})))
	return nil
}
