package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tunelock/tunedump/internal/cli"
	"github.com/tunelock/tunedump/internal/cli/config"
	"github.com/tunelock/tunedump/pkg/pipeline"
)

var (
	// Set at build time via -ldflags.
	version = "dev"
	commit  = "none"
	date    = "unknown"

	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "tunedump [flags] <pattern>...",
	Short: "Converts encrypted music containers back to playable audio.",
	Long: `tunedump expands glob patterns into encrypted music containers
(NCM, QMC), decrypts each one and writes the original audio back out,
named after the payload's actual format (flac or mp3).

Files are discovered while a pool of workers converts concurrently; a
failed file stops only its own conversion, never the rest of the run.`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, logger, err := config.LoadAndValidate(cfgFile, args, cmd.Flags())
		if err != nil {
			return err
		}
		return cli.Run(cmd.OutOrStdout(), settings, logger)
	},
}

// Execute runs the root command and returns its error for the exit code.
func Execute() error {
	rootCmd.SetVersionTemplate(`{{.Use}} version {{.Version}}` + "\n")
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Configuration file path (default: search . and $HOME/.config/tunedump/)")

	rootCmd.Flags().StringP("output", "o", "",
		"Directory receiving every converted file (default: next to each input)")
	rootCmd.Flags().BoolP("verbose", "v", false,
		"Enable per-file progress and debug logging")
	rootCmd.Flags().IntP("worker", "w", pipeline.DefaultWorkers,
		fmt.Sprintf("Number of conversion workers (%d-%d)", pipeline.MinWorkers, pipeline.MaxWorkers))
	rootCmd.Flags().String("report-format", config.ReportText,
		`Final report format ("text", "json", "yaml")`)
	rootCmd.Flags().Bool("no-progress", false,
		"Disable the progress bar even in a terminal")
}
