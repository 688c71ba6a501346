package label

import (
	"log/slog"

	"github.com/ByLCY/linklabel/layout"
)

// Option 配置 New 创建的标签。
type Option func(*Label)

// WithFrame 设置视图矩形。
func WithFrame(r layout.Rect) Option {
	return func(l *Label) { l.frame = r }
}

// WithMeasurer 指定文字测量后端，缺省为 measure.Basic()。
func WithMeasurer(m layout.Measurer) Option {
	return func(l *Label) { l.measurer = m }
}

// WithDelegate 设置链接点击的接收方。
func WithDelegate(d Delegate) Option {
	return func(l *Label) { l.delegate = d }
}

// WithLogger 设置日志输出，缺省为 slog.Default()。
func WithLogger(logger *slog.Logger) Option {
	return func(l *Label) { l.logger = logger }
}
