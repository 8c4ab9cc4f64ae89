package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/luispater/slideExporter/internal/browser/chrome"
	"github.com/luispater/slideExporter/internal/config"
	"github.com/luispater/slideExporter/internal/exporter"
	"github.com/luispater/slideExporter/internal/method"
	"github.com/luispater/slideExporter/internal/server"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newExportCmd() *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export [url]",
		Short: "Save every slide of a running deck as an image",
		Long: `Export opens the deck at url (default http://localhost:3000) in headless
Chrome, waits for Reveal.js to be ready and saves one screenshot per horizontal
slide as slide-001.png, slide-002.png, ... in the output directory. Fragments
are forced visible before each capture.

With --serve the deck directory is served by a built-in HTTP server and its
address is used unless url is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runExport,
	}

	flags := exportCmd.Flags()
	flags.StringP("out", "o", "", "output directory for slide images (default exports/slides)")
	flags.String("serve", "", "serve this deck directory with the built-in HTTP server")
	flags.Int("port", 0, "port of the built-in HTTP server, 0 for any free port (default 3000)")
	flags.String("format", "", "image format: png or jpeg (default png)")
	flags.Int("quality", 0, "jpeg quality 0-100 (default 100)")
	flags.Int64("width", 0, "viewport width (default 1280)")
	flags.Int64("height", 0, "viewport height (default 720)")
	flags.Bool("full-page", false, "capture the full scrollable page instead of the viewport")
	flags.String("wait-until", "", "navigation wait: load, domcontentloaded or networkidle (default networkidle)")
	flags.String("chrome", "", "path to the Chrome or Chromium executable")
	return exportCmd
}

// applyExportFlags overlays the flags the user actually set.
func applyExportFlags(flags *pflag.FlagSet, args []string, cfg *config.AppConfig) (urlGiven bool) {
	if flags.Changed("out") {
		cfg.OutputDir, _ = flags.GetString("out")
	}
	if flags.Changed("serve") {
		cfg.Serve.Dir, _ = flags.GetString("serve")
	}
	if flags.Changed("port") {
		cfg.Serve.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("format") {
		cfg.Screenshot.Format, _ = flags.GetString("format")
	}
	if flags.Changed("quality") {
		cfg.Screenshot.Quality, _ = flags.GetInt("quality")
	}
	if flags.Changed("width") {
		cfg.Viewport.Width, _ = flags.GetInt64("width")
	}
	if flags.Changed("height") {
		cfg.Viewport.Height, _ = flags.GetInt64("height")
	}
	if flags.Changed("full-page") {
		cfg.Screenshot.FullPage, _ = flags.GetBool("full-page")
	}
	if flags.Changed("wait-until") {
		cfg.WaitUntil, _ = flags.GetString("wait-until")
	}
	if flags.Changed("chrome") {
		cfg.Browser.ChromiumPath, _ = flags.GetString("chrome")
	}
	if len(args) == 1 {
		cfg.URL = args[0]
		return true
	}
	return false
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	urlGiven := applyExportFlags(cmd.Flags(), args, cfg)
	if err = cfg.Validate(); err != nil {
		return err
	}

	waitUntil, err := chrome.ParseLifecycleEvent(cfg.WaitUntil)
	if err != nil {
		return err
	}
	format, err := chrome.ParseImageFormat(cfg.Screenshot.Format)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	url := cfg.URL
	if cfg.Serve.Dir != "" {
		srv := server.NewServer(cfg.Serve.Dir, net.JoinHostPort("127.0.0.1", strconv.Itoa(cfg.Serve.Port)), cfg.Debug)
		if err = srv.Start(); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if errStop := srv.Stop(shutdownCtx); errStop != nil {
				log.Debugf("Error stopping static server: %v", errStop)
			}
		}()
		if !urlGiven {
			url = srv.URL()
		}
		log.Infof("Serving %s at %s", cfg.Serve.Dir, srv.URL())
	}

	browserManager, err := chrome.NewManager(ctx, cfg)
	if err != nil {
		return fmt.Errorf("could not create browser manager: %w", err)
	}
	defer func() {
		log.Debug("Closing browser manager...")
		if errClose := browserManager.Close(); errClose != nil {
			log.Debugf("Error closing browser manager: %v", errClose)
		}
	}()

	if err = browserManager.LaunchBrowserAndContext(); err != nil {
		return fmt.Errorf("could not launch browser: %w", err)
	}
	page, err := browserManager.NewPage()
	if err != nil {
		return fmt.Errorf("could not create page: %w", err)
	}
	defer page.Close()

	deck := method.NewMethod(page, method.Options{
		WaitUntil:         waitUntil,
		NavigationTimeout: cfg.NavigationTimeout,
		ReadyTimeout:      cfg.ReadyTimeout,
		ActionTimeout:     cfg.NavigationTimeout,
		Format:            format,
		Quality:           cfg.Screenshot.Quality,
		FullPage:          cfg.Screenshot.FullPage,
	})

	result, err := exporter.New(deck, afero.NewOsFs(), exporter.Options{
		OutputDir:       cfg.OutputDir,
		Format:          format,
		TransitionDelay: cfg.TransitionDelay,
		FragmentDelay:   cfg.FragmentDelay,
		ViewportWidth:   cfg.Viewport.Width,
		ViewportHeight:  cfg.Viewport.Height,
	}).Run(ctx, url)
	if err != nil {
		return err
	}

	printExportSummary(cmd.OutOrStdout(), result, cfg.OutputDir)
	return nil
}
