package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/mstoykov/envconfig"
)

// DefaultConfigFile is read when no explicit config path is given. It is optional.
const DefaultConfigFile = "slide-exporter.yaml"

// EnvPrefix is the prefix of environment variables that override file settings.
const EnvPrefix = "SLIDE_EXPORTER"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// AppConfig holds the application configuration.
type AppConfig struct {
	Debug             bool                `yaml:"debug" split_words:"true"`
	Headless          bool                `yaml:"headless" split_words:"true"`
	URL               string              `yaml:"url" split_words:"true"`
	OutputDir         string              `yaml:"output-dir" split_words:"true"`
	Browser           AppConfigBrowser    `yaml:"browser" split_words:"true"`
	Viewport          AppConfigViewport   `yaml:"viewport" split_words:"true"`
	WaitUntil         string              `yaml:"wait-until" split_words:"true"`
	NavigationTimeout time.Duration       `yaml:"navigation-timeout" split_words:"true"`
	ReadyTimeout      time.Duration       `yaml:"ready-timeout" split_words:"true"`
	TransitionDelay   time.Duration       `yaml:"transition-delay" split_words:"true"`
	FragmentDelay     time.Duration       `yaml:"fragment-delay" split_words:"true"`
	Screenshot        AppConfigScreenshot `yaml:"screenshot" split_words:"true"`
	Serve             AppConfigServe      `yaml:"serve" split_words:"true"`
	Pptx              AppConfigPptx       `yaml:"pptx" split_words:"true"`
}

type AppConfigBrowser struct {
	ChromiumPath string   `yaml:"chromium-path" split_words:"true"`
	Args         []string `yaml:"args" split_words:"true"`
	UserDataDir  string   `yaml:"user-data-dir,omitempty" split_words:"true"`
	NoSandbox    bool     `yaml:"no-sandbox" split_words:"true"`
}

type AppConfigViewport struct {
	Width  int64 `yaml:"width" split_words:"true"`
	Height int64 `yaml:"height" split_words:"true"`
}

type AppConfigScreenshot struct {
	Format   string `yaml:"format" split_words:"true"`
	Quality  int    `yaml:"quality" split_words:"true"`
	FullPage bool   `yaml:"full-page" split_words:"true"`
}

// AppConfigServe configures the built-in static server. An empty Dir disables it.
type AppConfigServe struct {
	Dir  string `yaml:"dir" split_words:"true"`
	Port int    `yaml:"port" split_words:"true"`
}

type AppConfigPptx struct {
	Index  string `yaml:"index" split_words:"true"`
	Output string `yaml:"output" split_words:"true"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *AppConfig {
	return &AppConfig{
		Headless:  true,
		URL:       "http://localhost:3000",
		OutputDir: "exports/slides",
		Browser: AppConfigBrowser{
			NoSandbox: true,
		},
		Viewport: AppConfigViewport{
			Width:  1280,
			Height: 720,
		},
		WaitUntil:         "networkidle",
		NavigationTimeout: 30 * time.Second,
		ReadyTimeout:      15 * time.Second,
		TransitionDelay:   400 * time.Millisecond,
		FragmentDelay:     200 * time.Millisecond,
		Screenshot: AppConfigScreenshot{
			Format:  "png",
			Quality: 100,
		},
		Serve: AppConfigServe{
			Port: 3000,
		},
		Pptx: AppConfigPptx{
			Index:  "index.html",
			Output: "exports/presentation.pptx",
		},
	}
}

// LoadConfig loads configuration from defaults, the YAML file at path and
// SLIDE_EXPORTER_* environment variables, in that order.
// An empty path falls back to DefaultConfigFile, which may be absent.
func LoadConfig(path string) (*AppConfig, error) {
	config := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err = yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	if err = envconfig.Process(EnvPrefix, config); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	return config, nil
}

// Validate reports the first setting that cannot be used for an export.
func (c *AppConfig) Validate() error {
	if c.URL == "" && c.Serve.Dir == "" {
		return fmt.Errorf("%w: url is empty", ErrInvalid)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: output-dir is empty", ErrInvalid)
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return fmt.Errorf("%w: viewport %dx%d", ErrInvalid, c.Viewport.Width, c.Viewport.Height)
	}
	switch c.WaitUntil {
	case "load", "domcontentloaded", "networkidle":
	default:
		return fmt.Errorf("%w: wait-until %q, want load, domcontentloaded or networkidle", ErrInvalid, c.WaitUntil)
	}
	switch c.Screenshot.Format {
	case "png", "jpeg":
	default:
		return fmt.Errorf("%w: screenshot format %q, want png or jpeg", ErrInvalid, c.Screenshot.Format)
	}
	if c.Screenshot.Quality < 0 || c.Screenshot.Quality > 100 {
		return fmt.Errorf("%w: screenshot quality %d out of range 0-100", ErrInvalid, c.Screenshot.Quality)
	}
	if c.NavigationTimeout <= 0 || c.ReadyTimeout <= 0 {
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalid)
	}
	if c.TransitionDelay < 0 || c.FragmentDelay < 0 {
		return fmt.Errorf("%w: delays must not be negative", ErrInvalid)
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return fmt.Errorf("%w: serve port %d", ErrInvalid, c.Serve.Port)
	}
	return nil
}
