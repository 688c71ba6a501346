// Package measure 提供基于 golang.org/x/image 字体面的 layout.Measurer 实现。
package measure

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ByLCY/linklabel/fonts"
	"github.com/ByLCY/linklabel/layout"
	"github.com/ByLCY/linklabel/richtext"
)

// Source 根据字体属性返回 TTF/OTF 字节。
type Source func(f richtext.Font) ([]byte, error)

// Builtin 从内置 Latin Modern 字体中查找。
func Builtin(f richtext.Font) ([]byte, error) { return fonts.Lookup(f.Family, f.Style) }

// Faces 按字体属性缓存字体面并测量字形簇，可被多个标签共享。
type Faces struct {
	mu       sync.Mutex
	source   Source
	parsed   map[string]*opentype.Font
	faces    map[richtext.Font]font.Face
	fallback font.Face
	failed   map[string]error
}

var _ layout.Measurer = (*Faces)(nil)

// Basic 返回固定使用 basicfont.Face7x13 的测量器：每个字符步进 7，行高 13，与字号无关。
func Basic() *Faces { return New(nil) }

// New 创建从 src 加载字体的测量器；src 为空或加载失败时回退到 basicfont.Face7x13。
func New(src Source) *Faces {
	return &Faces{
		source:   src,
		parsed:   map[string]*opentype.Font{},
		faces:    map[richtext.Font]font.Face{},
		fallback: basicfont.Face7x13,
		failed:   map[string]error{},
	}
}

// Advance 实现 layout.Measurer。
func (m *Faces) Advance(cluster string, attrs richtext.Attributes) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return toFloat(font.MeasureString(m.face(attrs), cluster))
}

// Metrics 实现 layout.Measurer。
func (m *Faces) Metrics(attrs richtext.Attributes) layout.Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	met := m.face(attrs).Metrics()
	return layout.Metrics{
		Ascent:     toFloat(met.Ascent),
		Descent:    toFloat(met.Descent),
		LineHeight: toFloat(met.Height),
	}
}

// Err 返回某个字体加载失败的原因，没有失败时为 nil。
func (m *Faces) Err(f richtext.Font) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failed[sourceKey(f)]
}

// Close 释放已创建的字体面。
func (m *Faces) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, face := range m.faces {
		if face != m.fallback {
			face.Close()
		}
		delete(m.faces, key)
	}
	return nil
}

// face 需在持有 mu 时调用。
func (m *Faces) face(attrs richtext.Attributes) font.Face {
	f, _ := attrs.Font()
	key := richtext.Font{Family: f.Family, Size: f.PointSize(), Style: f.Style}
	if face, ok := m.faces[key]; ok {
		return face
	}
	face := m.fallback
	if m.source != nil {
		if created, err := m.open(key); err != nil {
			m.failed[sourceKey(key)] = err
		} else {
			face = created
		}
	}
	m.faces[key] = face
	return face
}

func (m *Faces) open(f richtext.Font) (font.Face, error) {
	sk := sourceKey(f)
	otf, ok := m.parsed[sk]
	if !ok {
		data, err := m.source(f)
		if err != nil {
			return nil, err
		}
		otf, err = opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("解析字体 %s 失败: %w", sk, err)
		}
		m.parsed[sk] = otf
	}
	face, err := opentype.NewFace(otf, &opentype.FaceOptions{
		Size:    f.Size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("创建字体面 %s@%gpt 失败: %w", sk, f.Size, err)
	}
	return face, nil
}

func sourceKey(f richtext.Font) string { return f.Family + "|" + fonts.NormalizeStyle(f.Style) }

func toFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }
