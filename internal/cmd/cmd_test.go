package cmd

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	ppt "github.com/VantageDataChat/GoPPT"
	"github.com/luispater/slideExporter/internal/config"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subcommand(t *testing.T, name string, args ...string) *pflag.FlagSet {
	t.Helper()
	root := NewRootCmd()
	cmd, rest, err := root.Find(append([]string{name}, args...))
	require.NoError(t, err)
	require.NoError(t, cmd.ParseFlags(rest))
	return cmd.Flags()
}

func TestVersion(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "slide-exporter dev\n", out.String())
}

func TestApplyExportFlagsOnlyChanged(t *testing.T) {
	flags := subcommand(t, "export", "--out", "shots", "--format", "jpeg", "--width", "1920", "--chrome", "/opt/chrome")
	cfg := config.Default()
	cfg.Screenshot.Quality = 80

	urlGiven := applyExportFlags(flags, nil, cfg)
	assert.False(t, urlGiven)
	assert.Equal(t, "shots", cfg.OutputDir)
	assert.Equal(t, "jpeg", cfg.Screenshot.Format)
	assert.Equal(t, int64(1920), cfg.Viewport.Width)
	assert.Equal(t, int64(720), cfg.Viewport.Height)
	assert.Equal(t, "/opt/chrome", cfg.Browser.ChromiumPath)
	assert.Equal(t, 80, cfg.Screenshot.Quality)
	assert.Equal(t, "http://localhost:3000", cfg.URL)
	assert.Equal(t, 3000, cfg.Serve.Port)
}

func TestApplyExportFlagsURLArgument(t *testing.T) {
	flags := subcommand(t, "export", "--serve", "deck", "--port", "0")
	cfg := config.Default()

	urlGiven := applyExportFlags(flags, []string{"http://127.0.0.1:8000/talk.html"}, cfg)
	assert.True(t, urlGiven)
	assert.Equal(t, "http://127.0.0.1:8000/talk.html", cfg.URL)
	assert.Equal(t, "deck", cfg.Serve.Dir)
	assert.Equal(t, 0, cfg.Serve.Port)
}

func TestExportRejectsInvalidConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	root := NewRootCmd()
	root.SetArgs([]string{"export", "--format", "gif"})
	err := root.Execute()
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestExportTooManyArgs(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"export", "a", "b"})
	assert.Error(t, root.Execute())
}

func TestPptxOptions(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := config.Default()

	opts, err := pptxOptions(subcommand(t, "pptx"), cfg, fs)
	require.NoError(t, err)
	assert.Equal(t, "exports/slides", opts.SlidesDir)
	assert.Equal(t, "exports/presentation.pptx", opts.Output)
	assert.Empty(t, opts.Index, "missing default index is skipped")

	require.NoError(t, afero.WriteFile(fs, "index.html", []byte(`<div class="slides"></div>`), 0o644))
	opts, err = pptxOptions(subcommand(t, "pptx"), cfg, fs)
	require.NoError(t, err)
	assert.Equal(t, "index.html", opts.Index)

	opts, err = pptxOptions(subcommand(t, "pptx", "--index", "talk.html", "--slides", "shots", "-o", "talk.pptx", "--title", "Talk"), cfg, fs)
	require.NoError(t, err)
	assert.Equal(t, "shots", opts.SlidesDir)
	assert.Equal(t, "talk.html", opts.Index)
	assert.Equal(t, "talk.pptx", opts.Output)
	assert.Equal(t, "Talk", opts.Title)
}

func TestPptxCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.MkdirAll(filepath.Join("exports", "slides"), 0o755))
	for _, name := range []string{"slide-001.png", "slide-002.png"} {
		f, err := os.Create(filepath.Join("exports", "slides", name))
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, 4, 3))))
		require.NoError(t, f.Close())
	}
	deck := `<div class="slides"><section><aside class="notes">Hello</aside></section><section></section></div>`
	require.NoError(t, os.WriteFile("index.html", []byte(deck), 0o644))

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"pptx"})
	require.NoError(t, root.Execute())

	pres, err := (&ppt.PPTXReader{}).Read(filepath.Join("exports", "presentation.pptx"))
	require.NoError(t, err)
	slides := pres.GetAllSlides()
	require.Len(t, slides, 2)
	assert.Equal(t, "Hello", slides[0].GetNotes())
	assert.Contains(t, out.String(), "with 2 slides")
	assert.Contains(t, out.String(), "speaker notes on 1 slides")
}

func TestPptxCommandNoImages(t *testing.T) {
	t.Chdir(t.TempDir())

	root := NewRootCmd()
	root.SetArgs([]string{"pptx"})
	assert.Error(t, root.Execute())
}
