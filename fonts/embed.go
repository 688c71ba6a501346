package fonts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-fonts/latin-modern/lmmono10italic"
	"github.com/go-fonts/latin-modern/lmmono10regular"
	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10bolditalic"
	"github.com/go-fonts/latin-modern/lmroman10italic"
	"github.com/go-fonts/latin-modern/lmroman10regular"
	"github.com/go-fonts/latin-modern/lmsans10bold"
	"github.com/go-fonts/latin-modern/lmsans10oblique"
	"github.com/go-fonts/latin-modern/lmsans10regular"
)

// DefaultFamily 是未指定字体族时使用的内置字体。
const DefaultFamily = "sans"

// builtin 以 "family-style" 为键保存内置 Latin Modern 字体。
// 缺少的组合（例如 sans-bold-italic）在 Lookup 中逐级回退。
var builtin = map[string][]byte{
	"sans-regular":      lmsans10regular.TTF,
	"sans-bold":         lmsans10bold.TTF,
	"sans-italic":       lmsans10oblique.TTF,
	"serif-regular":     lmroman10regular.TTF,
	"serif-bold":        lmroman10bold.TTF,
	"serif-italic":      lmroman10italic.TTF,
	"serif-bold-italic": lmroman10bolditalic.TTF,
	"mono-regular":      lmmono10regular.TTF,
	"mono-italic":       lmmono10italic.TTF,
}

var familyAliases = map[string]string{
	"":           DefaultFamily,
	"sans":       "sans",
	"sans-serif": "sans",
	"serif":      "serif",
	"roman":      "serif",
	"mono":       "mono",
	"monospace":  "mono",
}

// Load 返回内置字体的字节数据，name 可写为 "embed:serif-bold" 或直接 "serif-bold"。
func Load(name string) ([]byte, error) {
	key := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "embed:"))
	if data, ok := builtin[key]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("读取内置字体 %s 失败: 不存在", name)
}

// Lookup 按字体族与样式查找内置字体，找不到精确样式时依次回退到去掉 italic、去掉 bold。
func Lookup(family, style string) ([]byte, error) {
	fam, ok := familyAliases[strings.ToLower(strings.TrimSpace(family))]
	if !ok {
		return nil, fmt.Errorf("未知的内置字体族 %q", family)
	}
	st := NormalizeStyle(style)
	candidates := []string{st}
	if st == "bold-italic" {
		candidates = append(candidates, "bold", "italic")
	}
	for _, candidate := range append(candidates, "regular") {
		if data, ok := builtin[fam+"-"+candidate]; ok {
			return data, nil
		}
	}
	return nil, fmt.Errorf("内置字体 %s 缺少样式 %s", fam, st)
}

// NormalizeStyle 把各种写法统一为 regular / bold / italic / bold-italic。
func NormalizeStyle(style string) string {
	s := strings.ToLower(style)
	bold := strings.Contains(s, "bold") || strings.Contains(s, "heavy") || strings.Contains(s, "black")
	italic := strings.Contains(s, "italic") || strings.Contains(s, "oblique")
	switch {
	case bold && italic:
		return "bold-italic"
	case bold:
		return "bold"
	case italic:
		return "italic"
	default:
		return "regular"
	}
}

// Names 返回所有内置字体名，按字母序排列。
func Names() []string {
	out := make([]string, 0, len(builtin))
	for name := range builtin {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
