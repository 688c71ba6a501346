package layout

import (
	"errors"

	"github.com/ByLCY/linklabel/richtext"
)

var (
	// ErrNegativeArea 表示 Bounds 减去 Insets 后宽或高为负，属于调用方配置错误。
	ErrNegativeArea = errors.New("可用区域为负")
	// ErrNoMeasurer 表示未提供测量后端。
	ErrNoMeasurer = errors.New("未配置文字测量器")
)

// Options 配置一次布局所需的约束与依赖。
type Options struct {
	Bounds Rect
	Insets Insets
	// MaxLines 为 0 表示不限行数。
	MaxLines  int
	LineBreak LineBreakMode
	Alignment Alignment
	// LineFragmentPadding 在每行左右两侧各留出的空白。
	LineFragmentPadding float64
	Measurer            Measurer
}

// Metrics 是某个字体在某个字号下的纵向度量（pt）。
type Metrics struct {
	Ascent     float64
	Descent    float64
	LineHeight float64
}

// Measurer 负责根据属性测量字形簇，字形塑形由实现方委托给外部字体引擎。
type Measurer interface {
	// Advance 返回字形簇的水平步进。
	Advance(cluster string, attrs richtext.Attributes) float64
	// Metrics 返回 attrs 所用字体的纵向度量。
	Metrics(attrs richtext.Attributes) Metrics
}
