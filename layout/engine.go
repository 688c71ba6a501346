package layout

import (
	"fmt"
	"math"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/ByLCY/linklabel/richtext"
)

const (
	ellipsis = "…"
	epsilon  = 1e-6
)

// cluster 是一个字形簇（grapheme cluster）及其测量结果。
type cluster struct {
	text     string
	rng      richtext.Range
	attrs    richtext.Attributes
	advance  float64
	metrics  Metrics
	canBreak bool // 其后存在 UAX #14 折行机会
	newline  bool
	space    bool
}

// span 是一行在 cluster 切片中的区间 [start, end)，segEnd 为所在段落正文的结束位置（不含换行符）。
type span struct {
	start, end int
	segEnd     int
}

type engine struct {
	opts    Options
	width   float64 // 行内可用宽度（已扣除两侧留白）
	height  float64
	metrics map[richtext.Font]Metrics
}

// Layout 在 opts.Bounds 扣除 Insets 后的区域内排版 t。
//
// 可用区域为负时返回位于内边距原点的空结果，并返回包装了 ErrNegativeArea 的错误。
// 空文本直接返回空结果，不做任何测量。第一行总会被排出，其余行受 MaxLines 与可用高度限制；
// 有内容被隐藏时按 LineBreak 处理最后一行并设置 Box.Truncated。
func Layout(t *richtext.Text, opts Options) (*Box, error) {
	avail := opts.Bounds.Inset(opts.Insets)
	box := &Box{Bounds: avail, Mode: opts.LineBreak.String()}
	if avail.Width < 0 || avail.Height < 0 {
		box.Bounds = Rect{X: avail.X, Y: avail.Y}
		box.ContentRect = box.Bounds
		return box, fmt.Errorf("%w: 区域 %s 扣除内边距 %+v 后为 %gx%g", ErrNegativeArea, opts.Bounds, opts.Insets, avail.Width, avail.Height)
	}
	box.ContentRect = Rect{X: avail.X, Y: avail.Y, Width: avail.Width}
	if t.Len() == 0 {
		return box, nil
	}
	if opts.Measurer == nil {
		return box, ErrNoMeasurer
	}

	e := &engine{
		opts:    opts,
		width:   math.Max(avail.Width-2*opts.LineFragmentPadding, 0),
		height:  avail.Height,
		metrics: map[richtext.Font]Metrics{},
	}
	cs := e.segment(t)
	spans := e.wrap(cs)
	n := e.visibleLines(cs, spans)
	hidden := n < len(spans)

	y := 0.0
	for i := 0; i < n; i++ {
		sp := spans[i]
		var glyphs []Glyph
		var rng richtext.Range
		if hidden && i == n-1 && opts.LineBreak.truncates() {
			glyphs, rng = e.truncate(cs, sp, spans[n].start)
		} else {
			glyphs = e.glyphs(cs[sp.start:sp.end])
			rng = richtext.Range{Start: cs[sp.start].rng.Start, End: cs[sp.end-1].rng.End}
		}
		line := e.finishLine(cs, sp, glyphs, rng, y)
		box.UsedWidth = math.Max(box.UsedWidth, line.Width+2*opts.LineFragmentPadding)
		box.Lines = append(box.Lines, line)
		y += line.Rect.Height
	}
	box.Truncated = hidden

	offset := 0.0
	switch opts.Alignment {
	case AlignCenter:
		offset = (avail.Height - y) / 2
	case AlignBottom:
		offset = avail.Height - y
	}
	box.ContentRect = Rect{X: avail.X, Y: avail.Y + offset, Width: avail.Width, Height: y}
	return box, nil
}

// segment 用 uniseg 切分字形簇并测量。
func (e *engine) segment(t *richtext.Text) []cluster {
	s := t.String()
	out := make([]cluster, 0, t.Len())
	state := -1
	pos := 0
	for len(s) > 0 {
		var c string
		var boundaries int
		c, s, boundaries, state = uniseg.StepString(s, state)
		n := utf8.RuneCountInString(c)
		attrs, _ := t.AttributesAt(pos)
		cl := cluster{
			text:     c,
			rng:      richtext.Range{Start: pos, End: pos + n},
			attrs:    attrs,
			metrics:  e.metricsFor(attrs),
			canBreak: boundaries&uniseg.MaskLine != uniseg.LineDontBreak,
			newline:  isNewline(c),
			space:    isSpace(c),
		}
		if !cl.newline {
			cl.advance = e.opts.Measurer.Advance(c, attrs)
		}
		out = append(out, cl)
		pos += n
	}
	return out
}

// metricsFor 按字体缓存纵向度量。
func (e *engine) metricsFor(attrs richtext.Attributes) Metrics {
	font, _ := attrs.Font()
	if m, ok := e.metrics[font]; ok {
		return m
	}
	m := e.opts.Measurer.Metrics(attrs)
	e.metrics[font] = m
	return m
}

// wrap 先按硬换行分段，再对每段贪心折行。
func (e *engine) wrap(cs []cluster) []span {
	var spans []span
	start := 0
	for i := range cs {
		if cs[i].newline {
			spans = e.wrapParagraph(spans, cs, start, i, i+1)
			start = i + 1
		}
	}
	if start < len(cs) {
		spans = e.wrapParagraph(spans, cs, start, len(cs), len(cs))
	}
	return spans
}

// wrapParagraph 折行 [start, segEnd)，最后一行延伸到 end 以包含段尾换行符。
func (e *engine) wrapParagraph(spans []span, cs []cluster, start, segEnd, end int) []span {
	if start == segEnd {
		return append(spans, span{start: start, end: end, segEnd: segEnd})
	}
	lineStart := start
	cur := 0.0
	emit := func(to int) {
		spans = append(spans, span{start: lineStart, end: to, segEnd: segEnd})
		lineStart = to
		cur = 0
	}
	// splitClusters 逐簇放置，用于字符折行以及放不下整行的长词。
	splitClusters := func(from, to int) {
		for k := from; k < to; k++ {
			c := cs[k]
			if k > lineStart && !c.space && cur+c.advance > e.width+epsilon {
				emit(k)
			}
			cur += c.advance
		}
	}

	if e.opts.LineBreak == CharWrap {
		splitClusters(start, segEnd)
	} else {
		for i := start; i < segEnd; {
			j := nextBreak(cs, i, segEnd)
			visible, full := unitWidth(cs[i:j])
			if i > lineStart && cur+visible > e.width+epsilon {
				emit(i)
			}
			if i == lineStart && visible > e.width+epsilon {
				splitClusters(i, j)
			} else {
				cur += full
			}
			i = j
		}
	}
	spans = append(spans, span{start: lineStart, end: end, segEnd: segEnd})
	return spans
}

// visibleLines 计算受 MaxLines 与可用高度限制后实际排出的行数，第一行总会排出。
func (e *engine) visibleLines(cs []cluster, spans []span) int {
	limit := len(spans)
	if e.opts.MaxLines > 0 && e.opts.MaxLines < limit {
		limit = e.opts.MaxLines
	}
	y := 0.0
	n := 0
	for n < limit {
		_, _, h := lineMetrics(cs[spans[n].start:spans[n].end])
		if n > 0 && y+h > e.height+epsilon {
			break
		}
		y += h
		n++
	}
	return n
}

func (e *engine) glyphs(cs []cluster) []Glyph {
	out := make([]Glyph, 0, len(cs))
	x := 0.0
	for _, c := range cs {
		if c.newline {
			continue
		}
		out = append(out, Glyph{Text: c.text, Range: c.rng, X: x, Advance: c.advance, Attrs: c.attrs})
		x += c.advance
	}
	return out
}

// truncate 为最后一行生成带省略号的字形，next 为下一行（已隐藏）的第一个簇。
// 省略号对应第一个未显示的字符，样式取本行第一个簇的属性。
func (e *engine) truncate(cs []cluster, sp span, next int) ([]Glyph, richtext.Range) {
	seg := cs[sp.start:sp.segEnd]
	rng := richtext.Range{Start: cs[sp.start].rng.Start, End: cs[sp.end-1].rng.End}
	if len(seg) > 0 {
		rng.End = seg[len(seg)-1].rng.End
	}
	attrs := cs[sp.start].attrs
	ell := Glyph{Text: ellipsis, Advance: e.opts.Measurer.Advance(ellipsis, attrs), Ellipsis: true, Attrs: attrs}
	budget := e.width - ell.Advance

	var prefix, suffix []cluster
	hiddenAt := -1 // seg 内第一个被隐藏的簇
	switch e.opts.LineBreak {
	case TruncateHead:
		k := fitFromEnd(seg, budget)
		for k < len(seg) && seg[k].space {
			k++
		}
		suffix = seg[k:]
		if k > 0 {
			hiddenAt = 0
		}
	case TruncateMiddle:
		p := fitFromStart(seg, budget/2)
		_, used := unitWidth(seg[:p])
		s := fitFromEnd(seg[p:], budget-used) + p
		prefix, suffix = seg[:p], seg[s:]
		if p < s {
			hiddenAt = p
		}
	default:
		k := fitFromStart(seg, budget)
		for k > 0 && seg[k-1].space {
			k--
		}
		prefix = seg[:k]
		if k < len(seg) {
			hiddenAt = k
		}
	}

	hidden := cs[next]
	if hiddenAt >= 0 {
		hidden = seg[hiddenAt]
	}
	ell.Range = hidden.rng

	out := e.glyphs(prefix)
	x := 0.0
	if len(out) > 0 {
		last := out[len(out)-1]
		x = last.X + last.Advance
	}
	ell.X = x
	out = append(out, ell)
	x += ell.Advance
	for _, g := range e.glyphs(suffix) {
		g.X += x
		out = append(out, g)
	}
	return out, rng
}

// finishLine 计算行高、基线与段落对齐后的字形位置。
func (e *engine) finishLine(cs []cluster, sp span, glyphs []Glyph, rng richtext.Range, y float64) LineFragment {
	var ascent, descent, height float64
	add := func(m Metrics) {
		ascent = math.Max(ascent, m.Ascent)
		descent = math.Max(descent, m.Descent)
		height = math.Max(height, m.LineHeight)
	}
	for _, g := range glyphs {
		add(e.metricsFor(g.Attrs))
	}
	for _, c := range cs[sp.start:sp.end] {
		if c.newline {
			add(c.metrics)
		}
	}

	width := visibleWidth(glyphs)
	shift := e.opts.LineFragmentPadding
	if room := e.width - width; room > 0 {
		shift += room * alignFactor(cs[sp.start].attrs.Paragraph().Align)
	}
	for i := range glyphs {
		glyphs[i].X += shift
	}
	return LineFragment{
		Range:    rng,
		Rect:     Rect{X: 0, Y: y, Width: e.width + 2*e.opts.LineFragmentPadding, Height: height},
		Baseline: y + ascent,
		Ascent:   ascent,
		Descent:  descent,
		Width:    width,
		Glyphs:   glyphs,
	}
}

// CharacterIndex 把内容矩形坐标系下的点映射到最近的字符下标。
// 行按 y 选择（超出时取最近的行），行内按字形的半开区间 [x, x+advance) 选择，超出时取首尾字形。
func (b *Box) CharacterIndex(p Point) (int, bool) {
	if b.Empty() {
		return -1, false
	}
	line := &b.Lines[len(b.Lines)-1]
	for i := range b.Lines {
		if p.Y < b.Lines[i].Rect.MaxY() {
			line = &b.Lines[i]
			break
		}
	}
	gs := line.Glyphs
	if len(gs) == 0 {
		return line.Range.Start, true
	}
	if p.X < gs[0].X {
		return gs[0].Range.Start, true
	}
	for _, g := range gs {
		if p.X >= g.X && p.X < g.X+g.Advance {
			return g.Range.Start, true
		}
	}
	return gs[len(gs)-1].Range.Start, true
}

// nextBreak 返回从 i 开始的不可拆分单元的结束位置。
func nextBreak(cs []cluster, i, end int) int {
	for j := i; j < end; j++ {
		if cs[j].canBreak {
			return j + 1
		}
	}
	return end
}

// unitWidth 返回去掉尾部空白的宽度与总宽度。
func unitWidth(cs []cluster) (visible, full float64) {
	for _, c := range cs {
		full += c.advance
		if !c.space {
			visible = full
		}
	}
	return visible, full
}

func fitFromStart(cs []cluster, budget float64) int {
	w := 0.0
	k := 0
	for k < len(cs) && w+cs[k].advance <= budget+epsilon {
		w += cs[k].advance
		k++
	}
	return k
}

func fitFromEnd(cs []cluster, budget float64) int {
	w := 0.0
	k := len(cs)
	for k > 0 && w+cs[k-1].advance <= budget+epsilon {
		w += cs[k-1].advance
		k--
	}
	return k
}

func lineMetrics(cs []cluster) (ascent, descent, height float64) {
	for _, c := range cs {
		ascent = math.Max(ascent, c.metrics.Ascent)
		descent = math.Max(descent, c.metrics.Descent)
		height = math.Max(height, c.metrics.LineHeight)
	}
	return ascent, descent, height
}

func visibleWidth(glyphs []Glyph) float64 {
	for i := len(glyphs) - 1; i >= 0; i-- {
		if glyphs[i].Ellipsis || !isSpace(glyphs[i].Text) {
			return glyphs[i].X + glyphs[i].Advance
		}
	}
	return 0
}

func alignFactor(a richtext.TextAlign) float64 {
	switch a {
	case richtext.AlignCenter:
		return 0.5
	case richtext.AlignRight:
		return 1
	default:
		return 0
	}
}

func isNewline(c string) bool {
	switch c {
	case "\n", "\r", "\r\n", "\v", "\f", "\u0085", "\u2028", "\u2029":
		return true
	}
	return false
}

func isSpace(c string) bool {
	if c == "" || isNewline(c) {
		return false
	}
	for _, r := range c {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
