package richtext

import (
	"fmt"
	"image/color"
	"net/url"
	"reflect"
	"sort"
)

// Key 是属性种类的封闭枚举，替代字符串键的属性字典。
type Key int

const (
	Foreground     Key = iota // 前景色（color.Color）
	Background                // 背景色（color.Color）
	FontKey                   // 字体（Font）
	UnderlineStyle            // 下划线样式（Underline）
	UnderlineColor            // 下划线颜色（color.Color）
	ParagraphKey              // 段落样式（Paragraph）
	Link                      // 调用方传入的普通链接（*url.URL 或 string）
	ManagedLink               // 归一化后由标签接管的链接（*url.URL 或 string）
)

var keyNames = map[Key]string{
	Foreground:     "foreground",
	Background:     "background",
	FontKey:        "font",
	UnderlineStyle: "underline-style",
	UnderlineColor: "underline-color",
	ParagraphKey:   "paragraph",
	Link:           "link",
	ManagedLink:    "managed-link",
}

func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Key(%d)", int(k))
}

// Underline 描述下划线样式。
type Underline int

const (
	UnderlineNone Underline = iota
	UnderlineSingle
	UnderlineThick
	UnderlineDouble
)

// Font 描述一段文字使用的字体，Size 单位为 pt。
type Font struct {
	Family string  `json:"family,omitempty"`
	Size   float64 `json:"size,omitempty"`
	Style  string  `json:"style,omitempty"` // regular/bold/italic/bold-italic
}

// DefaultFontSize 是未设置字号时使用的字号（pt）。
const DefaultFontSize = 17.0

// PointSize 返回字号，未设置时为 DefaultFontSize。
func (f Font) PointSize() float64 {
	if f.Size > 0 {
		return f.Size
	}
	return DefaultFontSize
}

// TextAlign 是段落内每一行的水平对齐方式。
type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

// Paragraph 保存段落级别的样式。
type Paragraph struct {
	Align TextAlign
}

// Transparent 用于“隐藏”下划线颜色。
var Transparent = color.RGBA{}

// Attributes 是一段文字上的属性集合。
type Attributes map[Key]any

// Clone 深拷贝属性集合；URL 值会复制一份，避免与调用方共享。
func (a Attributes) Clone() Attributes {
	if a == nil {
		return Attributes{}
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = cloneValue(v)
	}
	return out
}

// Merge 返回以 a 为底、overlay 覆盖其上的新集合。
func (a Attributes) Merge(overlay Attributes) Attributes {
	out := a.Clone()
	for k, v := range overlay {
		out[k] = cloneValue(v)
	}
	return out
}

// Equal 判断两组属性是否完全相同。
func (a Attributes) Equal(b Attributes) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		w, ok := b[k]
		if !ok || !valueEqual(v, w) {
			return false
		}
	}
	return true
}

// Keys 以枚举顺序返回已设置的键。
func (a Attributes) Keys() []Key {
	keys := make([]Key, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Font 返回字体属性，未设置时 ok 为 false。
func (a Attributes) Font() (Font, bool) {
	f, ok := a[FontKey].(Font)
	return f, ok
}

// Color 返回 key 对应的颜色。
func (a Attributes) Color(key Key) (color.Color, bool) {
	c, ok := a[key].(color.Color)
	return c, ok && c != nil
}

// Underline 返回下划线样式，未设置视为 UnderlineNone。
func (a Attributes) Underline() Underline {
	u, _ := a[UnderlineStyle].(Underline)
	return u
}

// Paragraph 返回段落样式。
func (a Attributes) Paragraph() Paragraph {
	p, _ := a[ParagraphKey].(Paragraph)
	return p
}

func cloneValue(v any) any {
	if u, ok := v.(*url.URL); ok && u != nil {
		c := *u
		if u.User != nil {
			uc := *u.User
			c.User = &uc
		}
		return &c
	}
	return v
}

func valueEqual(a, b any) bool {
	ua, okA := a.(*url.URL)
	ub, okB := b.(*url.URL)
	if okA || okB {
		if !okA || !okB || ua == nil || ub == nil {
			return okA == okB && ua == ub
		}
		return ua.String() == ub.String()
	}
	ca, okA := a.(color.Color)
	cb, okB := b.(color.Color)
	if okA && okB {
		r1, g1, b1, a1 := ca.RGBA()
		r2, g2, b2, a2 := cb.RGBA()
		return r1 == r2 && g1 == g2 && b1 == b2 && a1 == a2
	}
	return reflect.DeepEqual(a, b)
}
