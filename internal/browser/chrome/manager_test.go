package chrome

import (
	"context"
	"testing"

	"github.com/luispater/slideExporter/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagerRequiresConfig(t *testing.T) {
	_, err := NewManager(context.Background(), nil)
	assert.EqualError(t, err, "appConfig cannot be nil")
}

func TestManagerBeforeLaunch(t *testing.T) {
	cfg := config.Default()
	cfg.Browser.ChromiumPath = "/nonexistent/chrome"
	cfg.Browser.Args = []string{"--lang=en-US", "--disable-dev-shm-usage", ""}

	m, err := NewManager(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "/nonexistent/chrome", m.execPath)

	_, err = m.NewPage()
	assert.EqualError(t, err, "browser context not initialized. Call LaunchBrowserAndContext first")

	assert.NoError(t, m.Close())
	assert.NoError(t, m.Close())

	err = m.LaunchBrowserAndContext()
	assert.EqualError(t, err, "manager not properly initialized, allocator is nil")
}

func TestManagerUsesChromeBinFallback(t *testing.T) {
	t.Setenv("CHROME_BIN", "/usr/bin/chromium")

	m, err := NewManager(context.Background(), config.Default())
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, "/usr/bin/chromium", m.execPath)
}

func TestAllocatorOptions(t *testing.T) {
	cfg := config.Default()
	base := len(allocatorOptions(cfg, ""))

	cfg.Browser.UserDataDir = "/tmp/profile"
	cfg.Browser.Args = []string{"--lang=en-US", "mute-audio"}
	assert.Len(t, allocatorOptions(cfg, "/usr/bin/chromium"), base+4)

	cfg = config.Default()
	cfg.Headless = false
	cfg.Browser.NoSandbox = false
	assert.Len(t, allocatorOptions(cfg, ""), base-5)
}
