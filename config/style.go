package config

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"strings"

	"github.com/ByLCY/linklabel/layout"
	"github.com/ByLCY/linklabel/richtext"
)

var namedColors = map[string]color.RGBA{
	"black":       {A: 255},
	"white":       {R: 255, G: 255, B: 255, A: 255},
	"red":         {R: 255, A: 255},
	"green":       {G: 255, A: 255},
	"blue":        {B: 255, A: 255},
	"gray":        {R: 128, G: 128, B: 128, A: 255},
	"link":        {G: 122, B: 255, A: 255},
	"clear":       {},
	"transparent": {},
}

// ParseColor 解析 #rgb、#rrggbb、#rrggbbaa 以及少量颜色名。
func ParseColor(value string) (color.RGBA, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if c, ok := namedColors[v]; ok {
		return c, nil
	}
	hex, ok := strings.CutPrefix(v, "#")
	if !ok {
		return color.RGBA{}, fmt.Errorf("颜色值 %q 无法解析", value)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("颜色值 %q 长度不正确", value)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("颜色值 %q 无法解析: %w", value, err)
	}
	// 与 image/color 一致使用预乘 alpha
	r, g, b, a := uint8(n>>24), uint8(n>>16), uint8(n>>8), uint8(n)
	return color.RGBA{
		R: premultiply(r, a),
		G: premultiply(g, a),
		B: premultiply(b, a),
		A: a,
	}, nil
}

func premultiply(c, a uint8) uint8 { return uint8(uint32(c) * uint32(a) / 255) }

// ParseUnderline 解析 none / single / thick / double。
func ParseUnderline(value string) (richtext.Underline, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "none", "false":
		return richtext.UnderlineNone, nil
	case "single", "true":
		return richtext.UnderlineSingle, nil
	case "thick":
		return richtext.UnderlineThick, nil
	case "double":
		return richtext.UnderlineDouble, nil
	default:
		return richtext.UnderlineNone, fmt.Errorf("未知的下划线样式 %q", value)
	}
}

// ParseTextAlign 解析段落对齐 left / center / right。
func ParseTextAlign(value string) (richtext.TextAlign, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "left", "natural":
		return richtext.AlignLeft, nil
	case "center":
		return richtext.AlignCenter, nil
	case "right":
		return richtext.AlignRight, nil
	default:
		return richtext.AlignLeft, fmt.Errorf("未知的段落对齐 %q", value)
	}
}

// ParseStyle 把 DSL 与配置文件中的样式键值转换为富文本属性。
//
// 支持的键：color、background、font（字体族）、size、style、underline、underline-color、
// align、link、managed-link。
func ParseStyle(props map[string]string) (richtext.Attributes, error) {
	attrs := richtext.Attributes{}
	var font richtext.Font
	hasFont := false

	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		val := props[key]
		switch strings.ToLower(key) {
		case "color", "foreground":
			c, err := ParseColor(val)
			if err != nil {
				return nil, fmt.Errorf("样式 %s: %w", key, err)
			}
			attrs[richtext.Foreground] = c
		case "background":
			c, err := ParseColor(val)
			if err != nil {
				return nil, fmt.Errorf("样式 %s: %w", key, err)
			}
			attrs[richtext.Background] = c
		case "underline-color":
			c, err := ParseColor(val)
			if err != nil {
				return nil, fmt.Errorf("样式 %s: %w", key, err)
			}
			attrs[richtext.UnderlineColor] = c
		case "font", "family":
			font.Family = val
			hasFont = true
		case "size":
			size, err := layout.ParsePoints(val)
			if err != nil {
				return nil, fmt.Errorf("样式 %s: %w", key, err)
			}
			if size <= 0 {
				return nil, fmt.Errorf("样式 %s: 字号必须为正数，实际为 %q", key, val)
			}
			font.Size = size
			hasFont = true
		case "style", "weight":
			font.Style = val
			hasFont = true
		case "underline":
			u, err := ParseUnderline(val)
			if err != nil {
				return nil, fmt.Errorf("样式 %s: %w", key, err)
			}
			attrs[richtext.UnderlineStyle] = u
		case "align":
			a, err := ParseTextAlign(val)
			if err != nil {
				return nil, fmt.Errorf("样式 %s: %w", key, err)
			}
			attrs[richtext.ParagraphKey] = richtext.Paragraph{Align: a}
		case "link":
			attrs[richtext.Link] = val
		case "managed-link":
			attrs[richtext.ManagedLink] = val
		default:
			return nil, fmt.Errorf("未知的样式属性 %q", key)
		}
	}
	if hasFont {
		attrs[richtext.FontKey] = font
	}
	return attrs, nil
}
