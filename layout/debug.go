package layout

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ByLCY/linklabel/richtext"
)

type debugLink struct {
	Range   richtext.Range `json:"range"`
	Value   string         `json:"value"`
	Managed bool           `json:"managed"`
}

type debugDocument struct {
	Text  string      `json:"text,omitempty"`
	Links []debugLink `json:"links,omitempty"`
	Box   *Box        `json:"box"`
}

// WriteDebugJSON 将布局结果（以及可选的源文本与链接区间）输出为 JSON，便于调试或可视化。
func WriteDebugJSON(box *Box, t *richtext.Text, path string) error {
	if box == nil {
		return nil
	}
	doc := debugDocument{Text: t.String(), Box: box}
	for _, span := range t.Links() {
		doc.Links = append(doc.Links, debugLink{Range: span.Range, Value: fmt.Sprint(span.Value), Managed: span.Managed})
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化布局结果失败: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
