package renderer

import (
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/ByLCY/linklabel/layout"
	"github.com/ByLCY/linklabel/richtext"
)

// Frame 是一次绘制所需的全部输入：视图尺寸、背景、富文本及其布局结果。
type Frame struct {
	Size       layout.Size
	Background color.Color // nil 表示透明
	Text       *richtext.Text
	Box        *layout.Box
	Title      string // 写入 PDF 元信息
}

// Renderer 将一帧输出为最终文件，例如 PNG 或 PDF。
// Render 返回生成的二进制数据以及可能的错误；文本为空时只绘制背景。
type Renderer interface {
	Render(frame Frame) ([]byte, error)
}

// Format 是输出文件格式。
type Format int

const (
	FormatPNG Format = iota
	FormatPDF
)

func (f Format) String() string {
	if f == FormatPDF {
		return "pdf"
	}
	return "png"
}

// FormatForPath 根据扩展名判断输出格式。
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".pdf":
		return FormatPDF, nil
	default:
		return FormatPNG, fmt.Errorf("不支持的输出格式 %q（仅支持 .png / .pdf）", filepath.Ext(path))
	}
}
