package label

import (
	"net/url"

	"github.com/ByLCY/linklabel/layout"
)

// Delegate 接收链接点击通知。
type Delegate interface {
	DidPress(link *url.URL, at layout.Point)
}

// DelegateFunc 让普通函数满足 Delegate。
type DelegateFunc func(link *url.URL, at layout.Point)

func (f DelegateFunc) DidPress(link *url.URL, at layout.Point) { f(link, at) }
