package chrome

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/chromedp/chromedp"
	"github.com/luispater/slideExporter/internal/config"
	log "github.com/sirupsen/logrus"
)

// Manager manages a Chrome browser instance and its contexts.
type Manager struct {
	appConfig     *config.AppConfig
	allocator     context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	execPath      string
}

// NewManager creates a new Chromedp Manager instance.
// It initializes the allocator context but does not launch the browser yet.
// Cancelling ctx kills the browser process.
func NewManager(ctx context.Context, appConfig *config.AppConfig) (*Manager, error) {
	if appConfig == nil {
		return nil, fmt.Errorf("appConfig cannot be nil")
	}

	execPath := appConfig.Browser.ChromiumPath
	if execPath == "" {
		execPath = os.Getenv("CHROME_BIN")
		if execPath == "" {
			log.Debug("Chromium path not specified in config or CHROME_BIN env, will attempt auto-detection.")
		}
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocatorOptions(appConfig, execPath)...)

	return &Manager{
		appConfig:   appConfig,
		allocator:   allocCtx,
		allocCancel: allocCancel,
		execPath:    execPath,
	}, nil
}

func allocatorOptions(appConfig *config.AppConfig, execPath string) []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-background-timer-throttling", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.WindowSize(int(appConfig.Viewport.Width), int(appConfig.Viewport.Height)),
	}

	if execPath != "" {
		opts = append(opts, chromedp.ExecPath(execPath))
	}

	if appConfig.Headless {
		opts = append(opts, chromedp.Flag("headless", true))
		opts = append(opts, chromedp.Flag("disable-gpu", true))
		opts = append(opts, chromedp.Flag("hide-scrollbars", true))
	}

	if appConfig.Browser.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
		opts = append(opts, chromedp.Flag("disable-setuid-sandbox", true))
	}

	if appConfig.Browser.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(appConfig.Browser.UserDataDir))
	}

	for _, arg := range appConfig.Browser.Args {
		if arg != "" {
			parts := strings.SplitN(arg, "=", 2)
			if len(parts) == 2 {
				opts = append(opts, chromedp.Flag(strings.TrimPrefix(parts[0], "--"), parts[1]))
			} else {
				opts = append(opts, chromedp.Flag(strings.TrimPrefix(parts[0], "--"), true))
			}
		}
	}

	return opts
}

// LaunchBrowserAndContext launches the browser and creates a new browser context.
func (m *Manager) LaunchBrowserAndContext() error {
	if m.allocator == nil {
		return fmt.Errorf("manager not properly initialized, allocator is nil")
	}

	contextOpts := []chromedp.ContextOption{chromedp.WithLogf(log.Infof)}
	if m.appConfig.Debug {
		contextOpts = append(contextOpts, chromedp.WithDebugf(log.Debugf))
	}

	browserCtx, browserCancel := chromedp.NewContext(m.allocator, contextOpts...)
	m.browserCtx = browserCtx
	m.browserCancel = browserCancel

	if err := chromedp.Run(m.browserCtx); err != nil {
		_ = m.Close()
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	if m.execPath != "" {
		log.Debugf("Chromedp browser launched successfully with path: %s", m.execPath)
	} else {
		log.Debug("Chromedp browser launched successfully.")
	}
	return nil
}

// NewPage opens a blank tab sized to the configured viewport.
func (m *Manager) NewPage() (*Page, error) {
	if m.browserCtx == nil {
		return nil, fmt.Errorf("browser context not initialized. Call LaunchBrowserAndContext first")
	}

	return NewPage(m.browserCtx, m.appConfig.Viewport.Width, m.appConfig.Viewport.Height)
}

func (m *Manager) Close() error {
	if m.browserCancel != nil {
		log.Debug("Cancelling Chromedp browser context...")
		m.browserCancel()
		m.browserCancel = nil
		m.browserCtx = nil
	}

	if m.allocCancel != nil {
		log.Debug("Cancelling Chromedp allocator context...")
		m.allocCancel()
		m.allocCancel = nil
		m.allocator = nil
		log.Debug("Chromedp allocator context cancelled and browser process shut down.")
	}

	return nil
}
