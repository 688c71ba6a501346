package canvasrenderer

import (
	"bytes"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/linklabel/layout"
	"github.com/ByLCY/linklabel/renderer"
	"github.com/ByLCY/linklabel/richtext"
)

func bodyAttrs(size float64) richtext.Attributes {
	return richtext.Attributes{richtext.FontKey: richtext.Font{Family: "sans", Size: size}}
}

func TestAdvanceIsAdditive(t *testing.T) {
	r := NewRenderer(".")
	attrs := bodyAttrs(12)

	whole := r.Advance("hello world", attrs)
	if whole <= 0 {
		t.Fatalf("expected positive advance, got %g", whole)
	}
	parts := r.Advance("hello ", attrs) + r.Advance("world", attrs)
	// 允许字距调整带来的极小误差
	if diff := math.Abs(whole - parts); diff > 0.5 {
		t.Fatalf("advance mismatch: whole=%g parts=%g", whole, parts)
	}
	if big := r.Advance("hello world", bodyAttrs(24)); math.Abs(big-2*whole) > 0.5 {
		t.Fatalf("advance should scale with size: 12pt=%g 24pt=%g", whole, big)
	}
}

// TestMetricsInPoints 验证度量以 pt 返回：行高应与字号同一量级。
func TestMetricsInPoints(t *testing.T) {
	r := NewRenderer(".")
	m := r.Metrics(bodyAttrs(12))
	if m.Ascent <= 0 || m.Descent <= 0 {
		t.Fatalf("invalid metrics: %+v", m)
	}
	if m.LineHeight < 10 || m.LineHeight > 24 {
		t.Fatalf("12pt 字体的行高应在 pt 量级，实际 %g", m.LineHeight)
	}
}

func TestLayoutWithCanvasMeasurerWraps(t *testing.T) {
	r := NewRenderer(".")
	tx := richtext.New("hello world again", bodyAttrs(12))
	limit := 40.0
	box, err := layout.Layout(tx, layout.Options{
		Bounds:    layout.Rect{Width: limit, Height: 200},
		LineBreak: layout.WordWrap,
		Measurer:  r,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(box.Lines) < 2 {
		t.Fatalf("expected wrapping into multiple lines, got %d", len(box.Lines))
	}
	for i, line := range box.Lines {
		if line.Width-limit > 1e-6 {
			t.Fatalf("line %d width exceeds limit: width=%g limit=%g", i, line.Width, limit)
		}
	}
}

func renderSample(t *testing.T, r *Renderer) []byte {
	t.Helper()
	tx := richtext.New("call", richtext.Attributes{
		richtext.FontKey:        richtext.Font{Size: 12},
		richtext.Background:     color.RGBA{R: 255, A: 255},
		richtext.UnderlineStyle: richtext.UnderlineDouble,
	}).Append(" us", bodyAttrs(12))
	box, err := layout.Layout(tx, layout.Options{
		Bounds:   layout.Rect{Width: 100, Height: 30},
		Measurer: r,
	})
	if err != nil {
		t.Fatalf("layout error: %v", err)
	}
	data, err := r.Render(renderer.Frame{
		Size:       layout.Size{Width: 100, Height: 30},
		Background: canvas.White,
		Text:       tx,
		Box:        box,
		Title:      tx.String(),
	})
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	return data
}

func TestRenderPNG(t *testing.T) {
	r := NewRendererWithOptions(Options{Scale: 2})
	data := renderSample(t, r)
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if w := img.Bounds().Dx(); w < 198 || w > 202 {
		t.Fatalf("expected about 200px wide at 2x, got %d", w)
	}
}

func TestRenderPDF(t *testing.T) {
	r := NewRendererWithOptions(Options{Format: renderer.FormatPDF})
	data := renderSample(t, r)
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected PDF header, got %q", data[:min(8, len(data))])
	}
}

// TestRenderEmptyText 空文本只绘制背景，不报错。
func TestRenderEmptyText(t *testing.T) {
	r := NewRenderer(".")
	data, err := r.Render(renderer.Frame{Size: layout.Size{Width: 10, Height: 10}, Background: canvas.White})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected png bytes")
	}
	if _, err := r.Render(renderer.Frame{}); err == nil {
		t.Fatalf("zero-size frame must fail")
	}
}

func TestParseFontStyle(t *testing.T) {
	cases := map[string]canvas.FontStyle{
		"":            canvas.FontRegular,
		"bold":        canvas.FontBold,
		"SemiBold":    canvas.FontSemiBold,
		"bold-italic": canvas.FontBold | canvas.FontItalic,
		"oblique":     canvas.FontRegular | canvas.FontItalic,
	}
	for in, want := range cases {
		if got := parseFontStyle(in); got != want {
			t.Fatalf("parseFontStyle(%q)=%v want %v", in, got, want)
		}
	}
}

func TestUnknownFamilyFallsBack(t *testing.T) {
	r := NewRenderer(".")
	if w := r.Advance("abc", richtext.Attributes{richtext.FontKey: richtext.Font{Family: "no-such-font"}}); w <= 0 {
		t.Fatalf("fallback font should measure text, got %g", w)
	}
}
