package fonts

import (
	"bytes"
	"testing"
)

func TestLookupFallsBackToAvailableStyle(t *testing.T) {
	cases := []struct {
		family, style string
		want          []byte
	}{
		{"", "", builtin["sans-regular"]},
		{"Sans", "Bold Italic", builtin["sans-bold"]},
		{"roman", "italic", builtin["serif-italic"]},
		{"mono", "bold", builtin["mono-regular"]},
		{"monospace", "bold-italic", builtin["mono-italic"]},
	}
	for _, c := range cases {
		got, err := Lookup(c.family, c.style)
		if err != nil {
			t.Fatalf("Lookup(%q,%q) 失败: %v", c.family, c.style, err)
		}
		if !bytes.Equal(got, c.want) {
			t.Fatalf("Lookup(%q,%q) 返回了错误的字体", c.family, c.style)
		}
	}
	if _, err := Lookup("fantasy", ""); err == nil {
		t.Fatalf("未知字体族应当报错")
	}
}

func TestLoadByName(t *testing.T) {
	for _, name := range Names() {
		data, err := Load("embed:" + name)
		if err != nil || len(data) == 0 {
			t.Fatalf("Load(%s) 失败: %v", name, err)
		}
	}
	if _, err := Load("sans-black"); err == nil {
		t.Fatalf("不存在的内置字体应当报错")
	}
}
