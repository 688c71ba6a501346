package label

import (
	"fmt"
	"log/slog"
	"net/url"

	"github.com/ByLCY/linklabel/layout"
)

// TouchPhase 是触摸状态机的状态。
type TouchPhase int

const (
	// Idle 没有进行中的链接点击。
	Idle TouchPhase = iota
	// PressCandidate 按下时命中了链接，等待长按识别或抬起。
	PressCandidate
	// LinkArmed 长按已识别，抬起时触发点击。
	LinkArmed
)

func (p TouchPhase) String() string {
	switch p {
	case Idle:
		return "idle"
	case PressCandidate:
		return "press-candidate"
	case LinkArmed:
		return "link-armed"
	default:
		return fmt.Sprintf("TouchPhase(%d)", int(p))
	}
}

// Result 告诉宿主该事件是否已被标签处理。
type Result int

const (
	// Forward 表示标签不处理，宿主应交给默认行为（例如滚动）。
	Forward Result = iota
	// Handled 表示事件已被标签消费。
	Handled
)

func (r Result) String() string {
	if r == Handled {
		return "handled"
	}
	return "forward"
}

type touchState struct {
	phase TouchPhase
	link  *url.URL
}

func (s *touchState) reset() { *s = touchState{} }

// State 返回触摸状态机当前的状态。
func (l *Label) State() TouchPhase { return l.touch.phase }

// TouchesBegan 处理按下。p 处有链接时进入 PressCandidate。
func (l *Label) TouchesBegan(p layout.Point) Result {
	l.touch.reset()
	if l.hidden || !l.interactive {
		return Forward
	}
	link := l.HitTest(p)
	if link == nil {
		return Forward
	}
	l.touch = touchState{phase: PressCandidate, link: link}
	return Handled
}

// PressRecognized 处理长按识别。仍停留在同一链接上时进入 LinkArmed。
func (l *Label) PressRecognized(p layout.Point) Result {
	if l.touch.phase != PressCandidate {
		return l.TouchesMoved(p)
	}
	if !sameLink(l.touch.link, l.HitTest(p)) {
		l.cancelTouch("长按位置已离开链接", p)
		return Forward
	}
	l.touch.phase = LinkArmed
	return Handled
}

// TouchesMoved 处理移动。移出原链接视为拖动，本次点击作废且不会再次激活。
func (l *Label) TouchesMoved(p layout.Point) Result {
	if l.touch.phase == Idle {
		return Forward
	}
	if !sameLink(l.touch.link, l.HitTest(p)) {
		l.cancelTouch("手指移出链接", p)
		return Forward
	}
	return Handled
}

// TouchesEnded 处理抬起。已激活，或未识别长按但抬起点仍在同一链接上时，通知 Delegate。
func (l *Label) TouchesEnded(p layout.Point) Result {
	s := l.touch
	l.touch.reset()
	switch s.phase {
	case LinkArmed:
	case PressCandidate:
		if !sameLink(s.link, l.HitTest(p)) {
			return Forward
		}
	default:
		return Forward
	}
	l.logger.Debug("点击链接", slog.String("link", s.link.String()), slog.Float64("x", p.X), slog.Float64("y", p.Y))
	if l.delegate != nil {
		l.delegate.DidPress(s.link, p)
	}
	return Handled
}

// TouchesCancelled 处理系统中断，回到 Idle，不发出通知。
func (l *Label) TouchesCancelled() {
	l.touch.reset()
}

func (l *Label) cancelTouch(reason string, p layout.Point) {
	l.logger.Debug(reason, slog.String("state", l.touch.phase.String()), slog.Float64("x", p.X), slog.Float64("y", p.Y))
	l.touch.reset()
}
