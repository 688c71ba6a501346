package label

import (
	"net/url"

	"github.com/ByLCY/linklabel/layout"
	"github.com/ByLCY/linklabel/richtext"
)

// HitTest 返回视图坐标 p 处的链接。
//
// 从未排版过、没有文本、p 不在内容矩形内、该处没有 ManagedLink 或链接值无法解析时返回 nil。
// 排版缓存失效后会先重新排版，不会使用过期的几何信息。
func (l *Label) HitTest(p layout.Point) *url.URL {
	if !l.laidOut || l.rendered.Len() == 0 {
		return nil
	}
	box := l.Layout()
	if box.Empty() || !box.ContentRect.Contains(p) {
		return nil
	}
	local := layout.Point{X: p.X - box.ContentRect.X, Y: p.Y - box.ContentRect.Y}
	idx, ok := box.CharacterIndex(local)
	if !ok {
		return nil
	}
	v, ok := l.rendered.Attribute(richtext.ManagedLink, idx)
	if !ok {
		return nil
	}
	link, ok := richtext.ResolveLink(v)
	if !ok {
		return nil
	}
	return link
}

// ShouldHandle 报告标签是否应当接收落在 p 处的触摸：标签可见、允许交互且 p 处有链接。
// 返回 false 时宿主应把事件交给下层视图。
func (l *Label) ShouldHandle(p layout.Point) bool {
	return !l.hidden && l.interactive && l.HitTest(p) != nil
}

func sameLink(a, b *url.URL) bool {
	if a == nil || b == nil {
		return false
	}
	return a.String() == b.String()
}
