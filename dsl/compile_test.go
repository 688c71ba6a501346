package dsl_test

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/linklabel/dsl"
	"github.com/ByLCY/linklabel/richtext"
)

func compileSample(t *testing.T, data any) *dsl.Result {
	t.Helper()
	doc, err := dsl.ParseString(sampleDSL)
	require.NoError(t, err)
	res, err := dsl.Compile(doc, data)
	require.NoError(t, err)
	return res
}

func TestCompileText(t *testing.T) {
	data := map[string]any{"user": map[string]any{"name": "Ada", "phone": "909001"}}
	res := compileSample(t, data)

	assert.Equal(t, "Demo", res.Name)
	assert.Equal(t, "welcome to Ada\nplain tail", res.Text.String())
	assert.Empty(t, res.Missing)
	require.NoError(t, res.Text.Validate())

	welcome, rng := res.Text.AttributesAt(0)
	assert.Equal(t, richtext.Range{Start: 0, End: 7}, rng)
	assert.Equal(t, "tel://909001", welcome[richtext.Link])
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, welcome[richtext.Foreground])
	assert.Equal(t, richtext.Font{Size: 16}, welcome[richtext.FontKey])

	accent, rng := res.Text.AttributesAt(8)
	assert.Equal(t, richtext.Range{Start: 7, End: 14}, rng)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, accent[richtext.Foreground])
	assert.Equal(t, richtext.Font{Style: "bold"}, accent[richtext.FontKey])

	plain, _ := res.Text.AttributesAt(14)
	assert.Empty(t, plain)

	links := res.Text.Links()
	require.Len(t, links, 1)
	assert.False(t, links[0].Managed)
}

func TestCompileConfig(t *testing.T) {
	cfg := compileSample(t, nil).Config
	assert.Equal(t, []float64{10, 100, 300, 90}, cfg.Frame)
	assert.Equal(t, []float64{0, 30, 0, 30}, cfg.Insets)
	assert.Equal(t, "top", cfg.Align)
	require.NotNil(t, cfg.Lines)
	assert.Equal(t, 2, *cfg.Lines)
	assert.Equal(t, "truncate-tail", cfg.Break)
	assert.Equal(t, "ensure", cfg.Validation)
	require.NotNil(t, cfg.ExcludeUnderlines)
	assert.True(t, *cfg.ExcludeUnderlines)
	assert.Equal(t, map[string]string{"color": "#00ff00", "size": "12pt"}, cfg.LinkAttributes)
	assert.Nil(t, cfg.Interactive)
}

func TestCompileReportsMissingPlaceholders(t *testing.T) {
	res := compileSample(t, map[string]any{"user": map[string]any{"name": "Ada"}})
	assert.Equal(t, []string{"user.phone"}, res.Missing)
	v, _ := res.Text.Attribute(richtext.Link, 0)
	assert.Equal(t, "tel://${user.phone}", v)
}

func TestCompileNestedSpansInherit(t *testing.T) {
	doc, err := dsl.ParseString(`
label Nested v1 {
  text {
    span managed-link "https://example.com/${q}" {
      "go "
      span underline single { "here" }
    }
  }
}
`)
	require.NoError(t, err)
	res, err := dsl.Compile(doc, map[string]any{"q": "a b"})
	require.NoError(t, err)

	assert.Equal(t, "go here", res.Text.String())
	links := res.Text.Links()
	require.Len(t, links, 1)
	assert.Equal(t, richtext.Range{Start: 0, End: 7}, links[0].Range)
	assert.Equal(t, "https://example.com/a%20b", links[0].Value)
	assert.True(t, links[0].Managed)

	here, _ := res.Text.AttributesAt(4)
	assert.Equal(t, richtext.UnderlineSingle, here.Underline())
}

func TestCompileErrors(t *testing.T) {
	cases := map[string]string{
		"unknown style":   `label X v1 { text { span Missing { "x" } } }`,
		"unknown command": `label X v1 { text { image "a.png" } }`,
		"bad color":       `label X v1 { text { span color red-ish { "x" } } }`,
		"config key":      `label X v1 { config { colour: red } }`,
		"lines":           `label X v1 { config { lines: many } }`,
		"style name":      `label X v1 { styles { style } }`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			doc, err := dsl.ParseString(src)
			require.NoError(t, err)
			_, err = dsl.Compile(doc, nil)
			assert.Error(t, err)
		})
	}
	_, err := dsl.Compile(nil, nil)
	assert.Error(t, err)
}
