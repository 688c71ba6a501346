// Package config 读取标签配置（TOML / YAML / JSON），支持分层覆盖并应用到 label.Label。
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jinzhu/copier"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ByLCY/linklabel/label"
	"github.com/ByLCY/linklabel/layout"
	"github.com/ByLCY/linklabel/richtext"
)

// Label 是标签的可序列化配置。指针、切片与 map 字段为空表示“未设置”，合并时不会覆盖已有值。
type Label struct {
	// Frame 为 [x, y, width, height]，单位 pt。
	Frame []float64 `toml:"frame,omitempty" yaml:"frame,omitempty" json:"frame,omitempty"`
	// Insets 为 [top, left, bottom, right]，只给一个值时四边相同。
	Insets            []float64         `toml:"insets,omitempty" yaml:"insets,omitempty" json:"insets,omitempty"`
	Align             string            `toml:"align,omitempty" yaml:"align,omitempty" json:"align,omitempty"`
	Lines             *int              `toml:"lines,omitempty" yaml:"lines,omitempty" json:"lines,omitempty"`
	Break             string            `toml:"break,omitempty" yaml:"break,omitempty" json:"break,omitempty"`
	Padding           *float64          `toml:"padding,omitempty" yaml:"padding,omitempty" json:"padding,omitempty"`
	Validation        string            `toml:"validation,omitempty" yaml:"validation,omitempty" json:"validation,omitempty"`
	ExcludeUnderlines *bool             `toml:"exclude-underlines,omitempty" yaml:"exclude-underlines,omitempty" json:"exclude-underlines,omitempty"`
	Interactive       *bool             `toml:"interactive,omitempty" yaml:"interactive,omitempty" json:"interactive,omitempty"`
	Background        string            `toml:"background,omitempty" yaml:"background,omitempty" json:"background,omitempty"`
	LinkAttributes    map[string]string `toml:"link-attributes,omitempty" yaml:"link-attributes,omitempty" json:"link-attributes,omitempty"`
}

// Default 返回与 label.New 一致的默认配置，外加一个 320x44 的视图矩形。
func Default() Label {
	lines := 1
	padding := 0.0
	exclude := true
	interactive := true
	return Label{
		Frame:             []float64{0, 0, 320, 44},
		Insets:            []float64{0, 0, 0, 0},
		Align:             layout.AlignCenter.String(),
		Lines:             &lines,
		Break:             layout.TruncateTail.String(),
		Padding:           &padding,
		Validation:        richtext.ValidationSkip.String(),
		ExcludeUnderlines: &exclude,
		Interactive:       &interactive,
	}
}

// Load 按扩展名（.toml / .yaml / .yml / .json）读取配置文件。
func Load(path string) (Label, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Label{}, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}
	var cfg Label
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".json":
		err = json.Unmarshal(data, &cfg)
	default:
		return Label{}, fmt.Errorf("不支持的配置文件格式 %q", ext)
	}
	if err != nil {
		return Label{}, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}
	return cfg, nil
}

// Merge 把 src 中已设置的字段覆盖到 dst 上。
func Merge(dst *Label, src Label) error {
	if err := copier.CopyWithOption(dst, &src, copier.Option{IgnoreEmpty: true}); err != nil {
		return fmt.Errorf("合并配置失败: %w", err)
	}
	return nil
}

// Apply 把已设置的字段写入 l。任意字段无法解析时返回错误，此前的字段已生效。
func (c Label) Apply(l *label.Label) error {
	if len(c.Frame) > 0 {
		if len(c.Frame) != 4 {
			return fmt.Errorf("frame 需要 4 个数值 [x, y, width, height]，实际为 %v", c.Frame)
		}
		l.SetFrame(layout.Rect{X: c.Frame[0], Y: c.Frame[1], Width: c.Frame[2], Height: c.Frame[3]})
	}
	if len(c.Insets) > 0 {
		in, err := insets(c.Insets)
		if err != nil {
			return err
		}
		l.SetInsets(in)
	}
	if c.Align != "" {
		a, err := layout.ParseAlignment(c.Align)
		if err != nil {
			return fmt.Errorf("align: %w", err)
		}
		l.SetAlignment(a)
	}
	if c.Lines != nil {
		if *c.Lines < 0 {
			return fmt.Errorf("lines 不能为负数: %d", *c.Lines)
		}
		l.SetNumberOfLines(*c.Lines)
	}
	if c.Break != "" {
		m, err := layout.ParseLineBreakMode(c.Break)
		if err != nil {
			return fmt.Errorf("break: %w", err)
		}
		l.SetLineBreakMode(m)
	}
	if c.Padding != nil {
		l.SetLineFragmentPadding(*c.Padding)
	}
	if c.Validation != "" {
		m, err := richtext.ParseValidationMode(c.Validation)
		if err != nil {
			return fmt.Errorf("validation: %w", err)
		}
		l.SetLinkValidation(m)
	}
	if c.ExcludeUnderlines != nil {
		l.SetExcludeUnderlines(*c.ExcludeUnderlines)
	}
	if c.Interactive != nil {
		l.SetUserInteractionEnabled(*c.Interactive)
	}
	if c.Background != "" {
		bg, err := ParseColor(c.Background)
		if err != nil {
			return fmt.Errorf("background: %w", err)
		}
		l.SetBackground(bg)
	}
	if len(c.LinkAttributes) > 0 {
		attrs, err := ParseStyle(c.LinkAttributes)
		if err != nil {
			return fmt.Errorf("link-attributes: %w", err)
		}
		l.SetLinkAttributes(attrs)
	}
	return nil
}

func insets(v []float64) (layout.Insets, error) {
	switch len(v) {
	case 1:
		return layout.Insets{Top: v[0], Left: v[0], Bottom: v[0], Right: v[0]}, nil
	case 4:
		return layout.Insets{Top: v[0], Left: v[1], Bottom: v[2], Right: v[3]}, nil
	default:
		return layout.Insets{}, fmt.Errorf("insets 需要 1 或 4 个数值，实际为 %v", v)
	}
}
