package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/linklabel/renderer"
	canvasrenderer "github.com/ByLCY/linklabel/renderer/canvas"
)

const cliDoc = `
label Cli v1 {
  config {
    frame: [0, 0, 200, 40]
    align: top
    validation: ensure
  }
  text {
    span size 16pt link "tel://${phone}" { "call" }
    " us"
  }
}
`

func TestTapListSet(t *testing.T) {
	var taps tapList
	require.NoError(t, taps.Set("30,110"))
	require.NoError(t, taps.Set(" 1.5 , 2 "))
	assert.Equal(t, tapList{{X: 30, Y: 110}, {X: 1.5, Y: 2}}, taps)
	assert.Equal(t, "30,110 1.5,2", taps.String())

	assert.Error(t, taps.Set("30"))
	assert.Error(t, taps.Set("a,1"))
	assert.Error(t, taps.Set("1,b"))
}

func TestLoadData(t *testing.T) {
	data, err := loadData(`{"phone": "909001"}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"phone": "909001"}, data)

	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"n": 1}`), 0o644))
	data, err = loadData("@" + path)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"n": 1.0}, data)

	data, err = loadData("")
	require.NoError(t, err)
	assert.Nil(t, data)

	_, err = loadData("{")
	assert.Error(t, err)
}

func TestRunRendersAndTaps(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "cli.label")
	require.NoError(t, os.WriteFile(input, []byte(cliDoc), 0o644))

	opts := options{
		input:     input,
		output:    filepath.Join(dir, "out", "cli.png"),
		debugPath: filepath.Join(dir, "out", "cli.json"),
		data:      map[string]any{"phone": "909001"},
		taps:      tapList{{X: 2, Y: 5}, {X: 2, Y: 39}},
	}
	var buf bytes.Buffer
	r := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{Format: renderer.FormatPNG})
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	require.NoError(t, run(opts, r, termenv.NewOutput(&buf, termenv.WithProfile(termenv.Ascii)), logger))

	img, err := os.ReadFile(opts.output)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, []byte("\x89PNG")))

	debug, err := os.ReadFile(opts.debugPath)
	require.NoError(t, err)
	assert.Contains(t, string(debug), `"contentRect"`)

	out := buf.String()
	assert.Contains(t, out, "tel://909001")
	assert.Contains(t, out, "未命中链接 (2, 39)")
}

func TestRunReportsMissingInput(t *testing.T) {
	r := canvasrenderer.NewRenderer("")
	err := run(options{input: filepath.Join(t.TempDir(), "none.label")}, r, termenv.NewOutput(&bytes.Buffer{}), slog.Default())
	assert.ErrorContains(t, err, "无法打开标签描述文件")
}
