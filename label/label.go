// Package label 实现可点击链接的富文本标签：持有富文本副本，按需排版、绘制，
// 并把触摸事件换算为链接点击。
//
// Label 不做任何加锁，只能在同一个 goroutine 中使用。
package label

import (
	"errors"
	"image/color"
	"log/slog"
	"math"

	"github.com/ByLCY/linklabel/layout"
	"github.com/ByLCY/linklabel/measure"
	"github.com/ByLCY/linklabel/renderer"
	"github.com/ByLCY/linklabel/richtext"
)

// Label 是一个富文本标签视图。坐标均为视图本地坐标（左上角为原点，单位 pt），
// Frame 的原点只供宿主摆放视图使用，不参与排版。
type Label struct {
	frame   layout.Rect
	insets  layout.Insets
	align   layout.Alignment
	lines   int
	mode    layout.LineBreakMode
	padding float64

	linkAttrs         richtext.Attributes
	excludeUnderlines bool
	validation        richtext.ValidationMode

	interactive bool
	hidden      bool
	background  color.Color

	// source 为调用方文本的私有副本，rendered 为归一化后的绘制副本。
	source   *richtext.Text
	rendered *richtext.Text

	box      *layout.Box
	laidOut  bool
	dirty    bool
	measurer layout.Measurer
	delegate Delegate
	logger   *slog.Logger

	touch touchState
}

// New 创建标签。默认单行、尾部截断、垂直居中、去掉链接下划线、不改写链接。
func New(opts ...Option) *Label {
	l := &Label{
		lines:             1,
		mode:              layout.TruncateTail,
		align:             layout.AlignCenter,
		excludeUnderlines: true,
		validation:        richtext.ValidationSkip,
		interactive:       true,
		hidden:            true,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.measurer == nil {
		l.measurer = measure.Basic()
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// SetAttributedText 设置显示的富文本。标签保存 t 的副本，之后对 t 的修改不会影响标签。
// t 为 nil 时清空文本并隐藏标签。
func (l *Label) SetAttributedText(t *richtext.Text) {
	l.touch.reset()
	if t == nil {
		l.source, l.rendered = nil, nil
		l.hidden = true
		l.invalidate()
		l.box, l.laidOut = nil, false
		return
	}
	l.source = t.Clone()
	l.hidden = false
	l.rebuild()
}

// AttributedText 返回归一化后文本的副本，未设置文本时为 nil。
func (l *Label) AttributedText() *richtext.Text {
	if l.rendered == nil {
		return nil
	}
	return l.rendered.Clone()
}

// AccessibilityLabel 返回纯文本内容。
func (l *Label) AccessibilityLabel() string { return l.rendered.String() }

// Hidden 报告标签是否隐藏（未设置文本时隐藏）。
func (l *Label) Hidden() bool { return l.hidden }

// NeedsDisplay 报告自上次绘制以来是否有影响排版的修改。
func (l *Label) NeedsDisplay() bool { return l.dirty }

func (l *Label) SetFrame(r layout.Rect) {
	l.frame = r
	l.invalidate()
}

func (l *Label) Frame() layout.Rect { return l.frame }

func (l *Label) SetInsets(in layout.Insets) {
	l.insets = in
	l.invalidate()
}

func (l *Label) Insets() layout.Insets { return l.insets }

func (l *Label) SetAlignment(a layout.Alignment) {
	l.align = a
	l.invalidate()
}

func (l *Label) Alignment() layout.Alignment { return l.align }

// SetNumberOfLines 设置最大行数，0 表示不限。负数按 0 处理。
func (l *Label) SetNumberOfLines(n int) {
	l.lines = max(n, 0)
	l.invalidate()
}

func (l *Label) NumberOfLines() int { return l.lines }

func (l *Label) SetLineBreakMode(m layout.LineBreakMode) {
	l.mode = m
	l.invalidate()
}

func (l *Label) LineBreakMode() layout.LineBreakMode { return l.mode }

func (l *Label) SetLineFragmentPadding(p float64) {
	l.padding = math.Max(p, 0)
	l.invalidate()
}

func (l *Label) LineFragmentPadding() float64 { return l.padding }

// SetLinkAttributes 设置链接样式，仅在 ValidationEnsure 下生效。
func (l *Label) SetLinkAttributes(attrs richtext.Attributes) {
	if attrs == nil {
		l.linkAttrs = nil
	} else {
		l.linkAttrs = attrs.Clone()
	}
	l.rebuild()
}

func (l *Label) SetExcludeUnderlines(v bool) {
	l.excludeUnderlines = v
	l.rebuild()
}

func (l *Label) SetLinkValidation(m richtext.ValidationMode) {
	l.validation = m
	l.rebuild()
}

func (l *Label) LinkValidation() richtext.ValidationMode { return l.validation }

// SetUserInteractionEnabled 关闭交互后，触摸事件全部交给默认处理。
func (l *Label) SetUserInteractionEnabled(v bool) {
	l.interactive = v
	if !v {
		l.touch.reset()
	}
}

func (l *Label) UserInteractionEnabled() bool { return l.interactive }

func (l *Label) SetDelegate(d Delegate) { l.delegate = d }

// SetBackground 设置视图背景色，nil 表示透明。
func (l *Label) SetBackground(c color.Color) {
	l.background = c
	l.dirty = true
}

// Layout 返回当前排版结果，缓存失效时重新计算。没有文本时返回空结果。
func (l *Label) Layout() *layout.Box {
	if l.box != nil {
		return l.box
	}
	box, err := layout.Layout(l.rendered, l.layoutOptions(l.bounds()))
	if err != nil {
		l.logger.Warn("标签排版失败", slog.Any("error", err), slog.String("frame", l.frame.String()))
		if box == nil || !errors.Is(err, layout.ErrNegativeArea) {
			box = &layout.Box{}
		}
	}
	l.logger.Debug("标签重新排版",
		slog.Int("chars", l.rendered.Len()),
		slog.Int("lines", len(box.Lines)),
		slog.Bool("truncated", box.Truncated),
		slog.String("content", box.ContentRect.String()))
	l.box = box
	l.laidOut = true
	return box
}

// Draw 使缓存失效、重新排版并通过 r 绘制整个视图。
func (l *Label) Draw(r renderer.Renderer) ([]byte, error) {
	l.invalidate()
	box := l.Layout()
	frame := renderer.Frame{
		Size:       l.frame.Size(),
		Background: l.background,
		Text:       l.rendered,
		Box:        box,
		Title:      l.AccessibilityLabel(),
	}
	if l.hidden {
		frame.Text, frame.Box = nil, nil
	}
	data, err := r.Render(frame)
	if err != nil {
		return nil, err
	}
	l.dirty = false
	return data, nil
}

// SizeThatFits 返回在给定宽度内完整显示文本（受行数限制）所需的大小，包含内边距。
// size.Width 不大于 0 时视为不限宽度。
func (l *Label) SizeThatFits(size layout.Size) layout.Size {
	if l.rendered.Len() == 0 {
		return layout.Size{}
	}
	w := size.Width
	if w <= 0 {
		w = unbounded
	}
	box, err := layout.Layout(l.rendered, l.layoutOptions(layout.Rect{Width: w, Height: unbounded}))
	if err != nil {
		l.logger.Warn("计算标签尺寸失败", slog.Any("error", err))
		return layout.Size{}
	}
	return layout.Size{
		Width:  math.Ceil(box.UsedWidth + l.insets.Left + l.insets.Right),
		Height: math.Ceil(box.ContentRect.Height + l.insets.Top + l.insets.Bottom),
	}
}

const unbounded = 1e7

func (l *Label) bounds() layout.Rect {
	return layout.Rect{Width: l.frame.Width, Height: l.frame.Height}
}

func (l *Label) layoutOptions(bounds layout.Rect) layout.Options {
	return layout.Options{
		Bounds:              bounds,
		Insets:              l.insets,
		MaxLines:            l.lines,
		LineBreak:           l.mode,
		Alignment:           l.align,
		LineFragmentPadding: l.padding,
		Measurer:            l.measurer,
	}
}

// rebuild 由私有副本重新生成绘制副本。
func (l *Label) rebuild() {
	if l.source != nil {
		t := l.source.Clone()
		richtext.Normalize(t, richtext.NormalizeOptions{
			Mode:              l.validation,
			LinkAttributes:    l.linkAttrs,
			ExcludeUnderlines: l.excludeUnderlines,
		})
		l.rendered = t
	}
	l.invalidate()
}

func (l *Label) invalidate() {
	l.box = nil
	l.dirty = true
}
