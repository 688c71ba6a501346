package richtext

import (
	"image/color"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linkSample(t *testing.T) *Text {
	t.Helper()
	u, err := url.Parse("lclabel://welcome")
	require.NoError(t, err)
	tx := New("LCLabel", Attributes{Foreground: white, FontKey: Font{Size: 14}})
	tx.Append("\n@LCLabel", Attributes{Foreground: white, FontKey: Font{Size: 10}, Link: u})
	return tx
}

func TestNormalizeEnsureRekeysLink(t *testing.T) {
	tx := linkSample(t)
	Normalize(tx, NormalizeOptions{Mode: ValidationEnsure})

	links := tx.Links()
	require.Len(t, links, 1)
	assert.True(t, links[0].Managed)
	assert.Equal(t, Range{7, 16}, links[0].Range)
	u, ok := links[0].URL()
	require.True(t, ok)
	assert.Equal(t, "lclabel://welcome", u.String())

	for _, run := range tx.Runs() {
		_, legacy := run.Attrs[Link]
		assert.False(t, legacy, "不应再残留普通链接属性")
	}
	// 没有 LinkAttributes 时不合并样式，也不动下划线
	attrs, _ := tx.AttributesAt(8)
	_, hasUnderline := attrs[UnderlineStyle]
	assert.False(t, hasUnderline)
}

func TestNormalizeSkipAndNoLinksLeaveTextUntouched(t *testing.T) {
	for _, mode := range []ValidationMode{ValidationSkip, ValidationNoLinks} {
		tx := linkSample(t)
		before := tx.Clone()
		Normalize(tx, NormalizeOptions{
			Mode:              mode,
			LinkAttributes:    Attributes{Foreground: color.RGBA{G: 255, A: 255}},
			ExcludeUnderlines: true,
		})
		assert.True(t, before.Equal(tx), mode.String())
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	opts := NormalizeOptions{
		Mode:              ValidationEnsure,
		LinkAttributes:    Attributes{Foreground: color.RGBA{G: 255, A: 255}, FontKey: Font{Size: 12}},
		ExcludeUnderlines: true,
	}
	once := linkSample(t)
	Normalize(once, opts)
	twice := once.Clone()
	Normalize(twice, opts)
	assert.True(t, once.Equal(twice))
}

func TestNormalizeMergeKeepsExistingAttributes(t *testing.T) {
	green := color.RGBA{G: 255, A: 255}
	tx := linkSample(t)
	Normalize(tx, NormalizeOptions{
		Mode: ValidationEnsure,
		LinkAttributes: Attributes{
			Foreground: green,
			Background: green,
			Link:       "https://override.example",
		},
		ExcludeUnderlines: true,
	})

	attrs, r := tx.AttributesAt(10)
	assert.Equal(t, Range{7, 16}, r)
	// 已有的前景色与字体优先于调用方样式
	c, _ := attrs.Color(Foreground)
	assert.True(t, valueEqual(white, c))
	f, _ := attrs.Font()
	assert.Equal(t, 10.0, f.Size)
	// 调用方独有的键会被合并进来
	bg, ok := attrs.Color(Background)
	require.True(t, ok)
	assert.True(t, valueEqual(green, bg))
	// 链接值保持原值
	u, ok := ResolveLink(attrs[ManagedLink])
	require.True(t, ok)
	assert.Equal(t, "lclabel://welcome", u.String())
	_, legacy := attrs[Link]
	assert.False(t, legacy)
	assert.Equal(t, UnderlineNone, attrs.Underline())
	assert.True(t, valueEqual(Transparent, attrs[UnderlineColor]))

	// 非链接部分不受影响
	plain, _ := tx.AttributesAt(0)
	_, ok = plain[Background]
	assert.False(t, ok)
}

func TestNormalizeKeepsStringLinkValue(t *testing.T) {
	tx := New("@LCLabel", Attributes{Link: "lclabel://welcome"})
	Normalize(tx, NormalizeOptions{Mode: ValidationEnsure, LinkAttributes: Attributes{}})
	v, ok := tx.Attribute(ManagedLink, 0)
	require.True(t, ok)
	assert.Equal(t, "lclabel://welcome", v)
}

func TestParseValidationMode(t *testing.T) {
	for in, want := range map[string]ValidationMode{
		"":         ValidationSkip,
		"skip":     ValidationSkip,
		"Ensure":   ValidationEnsure,
		"no-links": ValidationNoLinks,
		"nolinks":  ValidationNoLinks,
	} {
		got, err := ParseValidationMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseValidationMode("always")
	assert.Error(t, err)
}
