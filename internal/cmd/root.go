// Package cmd implements the slide-exporter command line.
package cmd

import (
	"github.com/luispater/slideExporter/internal/config"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "slide-exporter",
		Short: "Export Reveal.js presentations to images and PowerPoint",
		Long: `slide-exporter drives a headless Chrome through a Reveal.js deck and saves
one screenshot per slide with every fragment visible. The images can then be
assembled into a PPTX file together with the deck's speaker notes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./"+config.DefaultConfigFile+" when present)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newExportCmd(), newPptxCmd(), newVersionCmd())
	return rootCmd
}

// Execute runs the command line and returns the error that ended it.
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig reads the configuration named by --config and applies --debug.
func loadConfig(cmd *cobra.Command) (*config.AppConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("debug") {
		cfg.Debug, _ = cmd.Flags().GetBool("debug")
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
	return cfg, nil
}
