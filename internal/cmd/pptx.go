package cmd

import (
	"errors"
	"os"

	"github.com/luispater/slideExporter/internal/config"
	"github.com/luispater/slideExporter/internal/pptx"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newPptxCmd() *cobra.Command {
	pptxCmd := &cobra.Command{
		Use:   "pptx",
		Short: "Assemble exported slide images into a PowerPoint file",
		Long: `Pptx puts every exported slide image on its own full-bleed slide of a
16:9 presentation. Speaker notes found in the deck's index.html become the
notes pages of the matching slides.`,
		Args: cobra.NoArgs,
		RunE: runPptx,
	}

	flags := pptxCmd.Flags()
	flags.String("slides", "", "directory holding the slide images (default exports/slides)")
	flags.String("index", "", "deck HTML to read speaker notes from (default index.html)")
	flags.StringP("output", "o", "", "presentation file to write (default exports/presentation.pptx)")
	flags.String("title", "", "document title stored in the presentation")
	return pptxCmd
}

func pptxOptions(flags *pflag.FlagSet, cfg *config.AppConfig, fs afero.Fs) (pptx.Options, error) {
	opts := pptx.Options{
		SlidesDir: cfg.OutputDir,
		Index:     cfg.Pptx.Index,
		Output:    cfg.Pptx.Output,
	}
	if flags.Changed("slides") {
		opts.SlidesDir, _ = flags.GetString("slides")
	}
	if flags.Changed("output") {
		opts.Output, _ = flags.GetString("output")
	}
	opts.Title, _ = flags.GetString("title")

	if flags.Changed("index") {
		opts.Index, _ = flags.GetString("index")
		return opts, nil
	}
	// The implicit index is optional.
	if opts.Index != "" {
		if _, err := fs.Stat(opts.Index); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return opts, err
			}
			log.Warnf("%s not found, speaker notes are skipped", opts.Index)
			opts.Index = ""
		}
	}
	return opts, nil
}

func runPptx(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	fs := afero.NewOsFs()
	opts, err := pptxOptions(cmd.Flags(), cfg, fs)
	if err != nil {
		return err
	}

	summary, err := pptx.Export(fs, opts)
	if err != nil {
		return err
	}

	printPptxSummary(cmd.OutOrStdout(), summary)
	return nil
}
