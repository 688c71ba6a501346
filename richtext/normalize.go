package richtext

import (
	"fmt"
	"strings"
)

// ValidationMode 控制设置文本时是否把普通链接改写为接管链接。
type ValidationMode int

const (
	// ValidationSkip 不做任何改写。
	ValidationSkip ValidationMode = iota
	// ValidationEnsure 把 Link 改写为 ManagedLink，并按需合并链接样式。
	ValidationEnsure
	// ValidationNoLinks 不添加任何链接类属性。
	ValidationNoLinks
)

func (m ValidationMode) String() string {
	switch m {
	case ValidationSkip:
		return "skip"
	case ValidationEnsure:
		return "ensure"
	case ValidationNoLinks:
		return "no-links"
	default:
		return fmt.Sprintf("ValidationMode(%d)", int(m))
	}
}

// ParseValidationMode 解析 skip / ensure / no-links。
func ParseValidationMode(s string) (ValidationMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "skip":
		return ValidationSkip, nil
	case "ensure":
		return ValidationEnsure, nil
	case "no-links", "nolinks", "none":
		return ValidationNoLinks, nil
	default:
		return ValidationSkip, fmt.Errorf("未知的链接校验模式 %q", s)
	}
}

// NormalizeOptions 是链接归一化的参数。
type NormalizeOptions struct {
	Mode ValidationMode
	// LinkAttributes 为调用方希望链接使用的样式，nil 表示只改键不合并样式。
	LinkAttributes Attributes
	// ExcludeUnderlines 在合并样式时强制去掉下划线。
	ExcludeUnderlines bool
}

// Normalize 原地改写 t 中的普通链接属性。
//
// Ensure 模式下，对每个链接 run：以 LinkAttributes 为底、已有属性覆盖其上（同名键已有值优先），
// 链接值始终保留并改存到 ManagedLink 下；ExcludeUnderlines 时下划线样式置为 None、颜色置为透明。
// 没有 LinkAttributes 时仅把 Link 改名为 ManagedLink。Skip 与 NoLinks 不做改写。
// 重复执行结果不变。
func Normalize(t *Text, opts NormalizeOptions) {
	if t == nil || opts.Mode != ValidationEnsure {
		return
	}
	for _, r := range legacyLinkRanges(t) {
		current, _ := t.AttributesAt(r.Start)
		link, ok := current[Link]
		if !ok {
			continue
		}
		if opts.LinkAttributes == nil {
			t.RemoveAttribute(Link, r)
			t.AddAttribute(ManagedLink, link, r)
			continue
		}
		merged := opts.LinkAttributes.Merge(current)
		if opts.ExcludeUnderlines {
			merged[UnderlineStyle] = UnderlineNone
			merged[UnderlineColor] = Transparent
		}
		delete(merged, Link)
		merged[ManagedLink] = link
		t.RemoveAttribute(Link, r)
		t.AddAttributes(merged, r)
	}
}

// legacyLinkRanges 在改写之前一次性收集所有带 Link 的 run 区间。
func legacyLinkRanges(t *Text) []Range {
	var out []Range
	for _, run := range t.runs {
		if _, ok := run.Attrs[Link]; ok {
			out = append(out, run.Range)
		}
	}
	return out
}
