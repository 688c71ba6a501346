package richtext

import (
	"net/url"
	"strings"
	"unicode"
)

// LinkSpan 是从富文本中扫描出的一个链接区间。
type LinkSpan struct {
	Range   Range
	Value   any  // *url.URL 或 string，保持原样
	Managed bool // true 表示来自 ManagedLink
}

// URL 解析该链接的值。
func (s LinkSpan) URL() (*url.URL, bool) { return ResolveLink(s.Value) }

// Links 按顺序返回所有链接区间（普通链接与接管链接都会返回）。
func (t *Text) Links() []LinkSpan {
	var out []LinkSpan
	if t == nil {
		return out
	}
	for _, run := range t.runs {
		if v, ok := run.Attrs[ManagedLink]; ok {
			out = appendLinkSpan(out, LinkSpan{Range: run.Range, Value: v, Managed: true})
			continue
		}
		if v, ok := run.Attrs[Link]; ok {
			out = appendLinkSpan(out, LinkSpan{Range: run.Range, Value: v})
		}
	}
	return out
}

// appendLinkSpan 合并相邻且值相同的链接（属性不同导致被拆开的 run）。
func appendLinkSpan(spans []LinkSpan, s LinkSpan) []LinkSpan {
	if n := len(spans); n > 0 {
		last := &spans[n-1]
		if last.Range.End == s.Range.Start && last.Managed == s.Managed && valueEqual(last.Value, s.Value) {
			last.Range.End = s.Range.End
			return spans
		}
	}
	return append(spans, s)
}

// ResolveLink 把链接属性值转换为 URL。
// *url.URL 直接返回（副本）；string 尝试解析，空串、含空白/控制字符或解析失败均视为“没有链接”。
func ResolveLink(v any) (*url.URL, bool) {
	switch link := v.(type) {
	case *url.URL:
		if link == nil {
			return nil, false
		}
		return cloneValue(link).(*url.URL), true
	case url.URL:
		return &link, true
	case string:
		if link == "" || strings.IndexFunc(link, func(r rune) bool {
			return unicode.IsSpace(r) || unicode.IsControl(r)
		}) >= 0 {
			return nil, false
		}
		u, err := url.Parse(link)
		if err != nil {
			return nil, false
		}
		return u, true
	default:
		return nil, false
	}
}
