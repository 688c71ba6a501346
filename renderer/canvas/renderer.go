package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/linklabel/fonts"
	"github.com/ByLCY/linklabel/layout"
	"github.com/ByLCY/linklabel/renderer"
	"github.com/ByLCY/linklabel/richtext"
)

// Renderer draws label frames via github.com/tdewolff/canvas and doubles as
// the layout measurer, so geometry and output use the same font faces.
type Renderer struct {
	baseDir string
	format  renderer.Format
	scale   float64

	// injected resources
	fontBlobs map[string][]byte // by family name

	fontMu         sync.Mutex
	fontFamilies   map[string]*fontFamilyEntry
	fallbackFamily *canvas.FontFamily
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Measurer   = (*Renderer)(nil)
)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Format  renderer.Format
	// Scale is the number of PNG pixels per point, 1 when unset.
	Scale float64
	Fonts map[string]Resource // custom font families, looked up before the built-in ones
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a PNG renderer rooted at baseDir for resolving font paths.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected fonts and output settings.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:      opts.BaseDir,
		format:       opts.Format,
		scale:        opts.Scale,
		fontBlobs:    map[string][]byte{},
		fontFamilies: map[string]*fontFamilyEntry{},
	}
	if r.scale <= 0 {
		r.scale = 1
	}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			r.fontBlobs[strings.ToLower(name)] = res.Bytes
			continue
		}
		if res.Path != "" {
			path := res.Path
			if !filepath.IsAbs(path) && r.baseDir != "" {
				path = filepath.Join(r.baseDir, path)
			}
			data, _ := os.ReadFile(path) // 读取失败时退回内置字体
			if len(data) > 0 {
				r.fontBlobs[strings.ToLower(name)] = data
			}
		}
	}
	return r
}

// Format reports the output format of Render.
func (r *Renderer) Format() renderer.Format { return r.format }

// Render draws the frame and encodes it as PNG or PDF.
func (r *Renderer) Render(frame renderer.Frame) ([]byte, error) {
	if frame.Size.Width <= 0 || frame.Size.Height <= 0 {
		return nil, fmt.Errorf("画布尺寸无效: %gx%g", frame.Size.Width, frame.Size.Height)
	}
	c := canvas.New(toMm(frame.Size.Width), toMm(frame.Size.Height))
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

	if err := r.drawFrame(ctx, frame); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch r.format {
	case renderer.FormatPDF:
		writer := pdf.New(&buf, c.W, c.H, nil)
		writer.SetInfo(frame.Title, "", "", "", "linklabel")
		c.RenderTo(writer)
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("写入 PDF 失败: %w", err)
		}
	default:
		img := rasterizer.Draw(c, canvas.DPI(72*r.scale), canvas.DefaultColorSpace)
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("编码 PNG 失败: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// Advance implements layout.Measurer.
func (r *Renderer) Advance(cluster string, attrs richtext.Attributes) float64 {
	face, err := r.fontFace(attrs, canvas.Black)
	if err != nil {
		return 0
	}
	return toPt(face.TextWidth(cluster))
}

// Metrics implements layout.Measurer.
func (r *Renderer) Metrics(attrs richtext.Attributes) layout.Metrics {
	face, err := r.fontFace(attrs, canvas.Black)
	if err != nil {
		return layout.Metrics{}
	}
	m := face.Metrics()
	return layout.Metrics{
		Ascent:     toPt(math.Abs(m.Ascent)),
		Descent:    toPt(math.Abs(m.Descent)),
		LineHeight: toPt(m.LineHeight),
	}
}

// drawFrame 依次绘制视图背景、字形背景、字形与下划线，坐标均以内容矩形为原点。
func (r *Renderer) drawFrame(ctx *canvas.Context, frame renderer.Frame) error {
	if frame.Background != nil {
		r.fillRect(ctx, layout.Rect{Width: frame.Size.Width, Height: frame.Size.Height}, frame.Background)
	}
	box := frame.Box
	if frame.Text.Len() == 0 || box.Empty() {
		return nil
	}
	origin := box.ContentRect.Origin()

	for _, line := range box.Lines {
		for _, g := range line.Glyphs {
			if bg, ok := g.Attrs.Color(richtext.Background); ok {
				r.fillRect(ctx, layout.Rect{
					X:      origin.X + g.X,
					Y:      origin.Y + line.Rect.Y,
					Width:  g.Advance,
					Height: line.Rect.Height,
				}, bg)
			}
		}
	}

	for _, line := range box.Lines {
		for _, g := range line.Glyphs {
			if isBlank(g.Text) {
				continue
			}
			face, err := r.fontFace(g.Attrs, foreground(g.Attrs))
			if err != nil {
				return err
			}
			textLine := canvas.NewTextLine(face, g.Text, canvas.Left)
			ctx.DrawText(toMm(origin.X+g.X), toMm(origin.Y+line.Baseline), textLine)
		}
	}

	for _, line := range box.Lines {
		for _, g := range line.Glyphs {
			r.drawUnderline(ctx, origin, line, g)
		}
	}
	return nil
}

// drawUnderline 在基线下方绘制下划线，颜色缺省时跟随前景色。
func (r *Renderer) drawUnderline(ctx *canvas.Context, origin layout.Point, line layout.LineFragment, g layout.Glyph) {
	style := g.Attrs.Underline()
	if style == richtext.UnderlineNone {
		return
	}
	col, ok := g.Attrs.Color(richtext.UnderlineColor)
	if !ok {
		col = foreground(g.Attrs)
	}
	font, _ := g.Attrs.Font()
	thickness := math.Max(font.PointSize()/17, 0.5)
	if style == richtext.UnderlineThick {
		thickness *= 2
	}
	y := origin.Y + line.Baseline + math.Max(line.Descent/3, thickness)
	rect := layout.Rect{X: origin.X + g.X, Y: y, Width: g.Advance, Height: thickness}
	r.fillRect(ctx, rect, col)
	if style == richtext.UnderlineDouble {
		rect.Y += thickness * 2
		r.fillRect(ctx, rect, col)
	}
}

func (r *Renderer) fillRect(ctx *canvas.Context, rc layout.Rect, col color.Color) {
	ctx.SetFillColor(col)
	ctx.SetStrokeColor(canvas.Transparent)
	ctx.DrawPath(toMm(rc.X), toMm(rc.Y), canvas.Rectangle(toMm(rc.Width), toMm(rc.Height)))
}

func (r *Renderer) fontFace(attrs richtext.Attributes, col color.Color) (*canvas.FontFace, error) {
	font, _ := attrs.Font()
	family, style, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	return family.Face(font.PointSize(), col, style, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(font richtext.Font) (*canvas.FontFamily, canvas.FontStyle, error) {
	key := fontCacheKey(font)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.fontFamilies[key]; ok {
		return entry.family, entry.style, nil
	}

	style := parseFontStyle(font.Style)
	familyName := font.Family
	if familyName == "" {
		familyName = fonts.DefaultFamily
	}
	family := canvas.NewFontFamily(familyName)

	if err := r.loadFontIntoFamily(family, font, style); err != nil {
		fallback, fbStyle, fbErr := r.fallback()
		if fbErr != nil {
			return nil, canvas.FontRegular, err
		}
		r.fontFamilies[key] = &fontFamilyEntry{family: fallback, style: fbStyle}
		return fallback, fbStyle, nil
	}

	entry := &fontFamilyEntry{family: family, style: style}
	r.fontFamilies[key] = entry
	return family, style, nil
}

func (r *Renderer) loadFontIntoFamily(family *canvas.FontFamily, font richtext.Font, style canvas.FontStyle) error {
	data, err := r.loadFontBytes(font)
	if err != nil {
		return err
	}
	return family.LoadFont(data, 0, style)
}

func (r *Renderer) loadFontBytes(font richtext.Font) ([]byte, error) {
	if blob, ok := r.fontBlobs[strings.ToLower(font.Family)]; ok {
		return blob, nil
	}
	if strings.HasPrefix(font.Family, "embed:") {
		return fonts.Load(font.Family)
	}
	return fonts.Lookup(font.Family, font.Style)
}

// fallback 需在持有 fontMu 时调用。
func (r *Renderer) fallback() (*canvas.FontFamily, canvas.FontStyle, error) {
	if r.fallbackFamily != nil {
		return r.fallbackFamily, canvas.FontRegular, nil
	}
	data, err := fonts.Lookup(fonts.DefaultFamily, "regular")
	if err != nil {
		return nil, canvas.FontRegular, err
	}
	family := canvas.NewFontFamily("linklabel-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, canvas.FontRegular, err
	}
	r.fallbackFamily = family
	return family, canvas.FontRegular, nil
}

func parseFontStyle(style string) canvas.FontStyle {
	if style == "" {
		return canvas.FontRegular
	}
	s := strings.ToLower(style)
	result := canvas.FontRegular
	switch {
	case strings.Contains(s, "black"):
		result = canvas.FontBlack
	case strings.Contains(s, "extrabold"):
		result = canvas.FontExtraBold
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"):
		result = canvas.FontSemiBold
	case strings.Contains(s, "bold"):
		result = canvas.FontBold
	case strings.Contains(s, "medium"):
		result = canvas.FontMedium
	case strings.Contains(s, "light"):
		result = canvas.FontLight
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}

func fontCacheKey(font richtext.Font) string {
	return fmt.Sprintf("%s|%s", strings.ToLower(font.Family), strings.ToLower(font.Style))
}

func foreground(attrs richtext.Attributes) color.Color {
	if c, ok := attrs.Color(richtext.Foreground); ok {
		return c
	}
	return canvas.Black
}

func isBlank(s string) bool {
	return strings.TrimFunc(s, unicode.IsSpace) == ""
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }

// toMm 将点(pt)转换为毫米(mm)。
func toMm(pt float64) float64 { return pt * layout.PtToMm }
