package layout

import (
	"fmt"
	"strings"

	"github.com/ByLCY/linklabel/richtext"
)

// 该文件定义几何类型与布局结果，供布局计算、渲染、点击检测与调试 JSON 共用。
// 所有坐标与长度单位均为 pt，原点在左上角，y 轴向下。

// Point 是一个坐标点。
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size 是宽高。
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect 是左上角 + 宽高描述的矩形。
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MaxX 返回右边界。
func (r Rect) MaxX() float64 { return r.X + r.Width }

// MaxY 返回下边界。
func (r Rect) MaxY() float64 { return r.Y + r.Height }

// Origin 返回左上角。
func (r Rect) Origin() Point { return Point{X: r.X, Y: r.Y} }

// Size 返回宽高。
func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

// Contains 判断点是否在矩形内，左上边界包含、右下边界不包含。
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.MaxX() && p.Y >= r.Y && p.Y < r.MaxY()
}

// Inset 按内边距收缩矩形，结果的宽高可能为负。
func (r Rect) Inset(in Insets) Rect {
	return Rect{
		X:      r.X + in.Left,
		Y:      r.Y + in.Top,
		Width:  r.Width - in.Left - in.Right,
		Height: r.Height - in.Top - in.Bottom,
	}
}

func (r Rect) String() string {
	return fmt.Sprintf("(%g,%g %gx%g)", r.X, r.Y, r.Width, r.Height)
}

// Insets 是四个方向的内边距。
type Insets struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Bottom float64 `json:"bottom"`
	Right  float64 `json:"right"`
}

// Alignment 决定整块文字在可用高度内的垂直位置。零值为居中。
type Alignment int

const (
	AlignCenter Alignment = iota
	AlignTop
	AlignBottom
)

func (a Alignment) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignTop:
		return "top"
	case AlignBottom:
		return "bottom"
	default:
		return fmt.Sprintf("Alignment(%d)", int(a))
	}
}

// ParseAlignment 解析 top / center / bottom（middle 视为 center）。
func ParseAlignment(s string) (Alignment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "center", "middle":
		return AlignCenter, nil
	case "top":
		return AlignTop, nil
	case "bottom":
		return AlignBottom, nil
	default:
		return AlignCenter, fmt.Errorf("未知的垂直对齐方式 %q", s)
	}
}

// LineBreakMode 决定折行以及超出行数限制时最后一行的处理方式。零值为尾部截断。
type LineBreakMode int

const (
	TruncateTail LineBreakMode = iota
	Clip
	TruncateHead
	TruncateMiddle
	WordWrap
	CharWrap
)

var lineBreakNames = map[LineBreakMode]string{
	TruncateTail:   "truncate-tail",
	Clip:           "clip",
	TruncateHead:   "truncate-head",
	TruncateMiddle: "truncate-middle",
	WordWrap:       "word-wrap",
	CharWrap:       "char-wrap",
}

func (m LineBreakMode) String() string {
	if name, ok := lineBreakNames[m]; ok {
		return name
	}
	return fmt.Sprintf("LineBreakMode(%d)", int(m))
}

// ParseLineBreakMode 解析 clip / truncate-head / truncate-middle / truncate-tail / word-wrap / char-wrap。
// 同时接受去掉连字符或前缀的写法，例如 tail、wordwrap。
func ParseLineBreakMode(s string) (LineBreakMode, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return TruncateTail, nil
	}
	v = strings.ReplaceAll(strings.ReplaceAll(v, "_", "-"), " ", "-")
	for mode, name := range lineBreakNames {
		if v == name || v == strings.ReplaceAll(name, "-", "") || v == strings.TrimPrefix(name, "truncate-") {
			return mode, nil
		}
	}
	return TruncateTail, fmt.Errorf("未知的折行模式 %q", s)
}

// truncates 判断该模式是否在最后一行放置省略号。
func (m LineBreakMode) truncates() bool {
	return m == TruncateTail || m == TruncateHead || m == TruncateMiddle
}

// Glyph 是排版后的一个字形簇，X 相对内容矩形左边。
type Glyph struct {
	Text    string         `json:"text"`
	Range   richtext.Range `json:"range"` // 对应的字符区间；省略号对应第一个被隐藏的字符
	X       float64        `json:"x"`
	Advance float64        `json:"advance"`
	// Ellipsis 标记截断时插入的省略号。
	Ellipsis bool                `json:"ellipsis,omitempty"`
	Attrs    richtext.Attributes `json:"-"`
}

// LineFragment 是一行排版结果，Rect 与 Baseline 相对内容矩形左上角。
type LineFragment struct {
	Range    richtext.Range `json:"range"`
	Rect     Rect           `json:"rect"`
	Baseline float64        `json:"baseline"`
	Ascent   float64        `json:"ascent"`
	Descent  float64        `json:"descent"`
	// Width 为可见字形的宽度，不含行尾空白。
	Width  float64 `json:"width"`
	Glyphs []Glyph `json:"glyphs"`
}

// Box 是一次布局的完整结果。
type Box struct {
	// Bounds 是应用内边距后的可用区域（视图坐标）。
	Bounds Rect `json:"bounds"`
	// ContentRect 是文字实际占据的区域（视图坐标），也是点击检测的坐标原点。
	ContentRect Rect           `json:"contentRect"`
	Lines       []LineFragment `json:"lines"`
	// UsedWidth 是最宽一行的可见宽度加上两侧行片段留白。
	UsedWidth float64 `json:"usedWidth"`
	Truncated bool    `json:"truncated"`
	Mode      string  `json:"mode"`
}

// Empty 报告是否没有任何可绘制的行。
func (b *Box) Empty() bool { return b == nil || len(b.Lines) == 0 }

// Size 返回内容区域的大小。
func (b *Box) Size() Size {
	if b == nil {
		return Size{}
	}
	return b.ContentRect.Size()
}

// GlyphCount 返回所有行的字形数。
func (b *Box) GlyphCount() int {
	if b == nil {
		return 0
	}
	n := 0
	for _, line := range b.Lines {
		n += len(line.Glyphs)
	}
	return n
}
