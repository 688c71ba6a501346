package layout

import (
	"math"
	"testing"
)

// TestPtMmRoundTrip 验证 pt↔mm 换算的往返精度（允许极小的浮点误差）。
func TestPtMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 72, 96, 144, 1000}
	for _, pt := range samples {
		mm := pt * PtToMm
		back := mm * MmToPt
		if diff := math.Abs(back - pt); diff > 1e-9 {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%gpt mm=%g back=%g diff=%g", pt, mm, back, diff)
		}
	}
}

// TestParseLength 覆盖常见单位到 pt 的转换，裸数字按 pt 处理。
func TestParseLength(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"12", 12},
		{"12pt", 12},
		{" 16PX ", 16},
		{"1in", 72},
		{"2.54cm", 25.4 * MmToPt},
		{"10mm", 10 * MmToPt},
	}
	for _, c := range cases {
		got, err := ParsePoints(c.in)
		if err != nil {
			t.Fatalf("解析 %q 失败: %v", c.in, err)
		}
		if math.Abs(got-c.want) > 1e-6 {
			t.Fatalf("%q 期望 %gpt，实际 %g", c.in, c.want, got)
		}
	}
	for _, bad := range []string{"", "pt", "twelve", "12qq"} {
		if _, err := ParseLength(bad); err == nil {
			t.Fatalf("%q 应当解析失败", bad)
		}
	}
}

// TestLengthString 验证长度可以按原单位输出。
func TestLengthString(t *testing.T) {
	l, err := ParseLength("4.5mm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := l.String(); got != "4.5mm" {
		t.Fatalf("期望 4.5mm，实际 %s", got)
	}
	if math.Abs(l.ToMM()-4.5) > 1e-9 {
		t.Fatalf("4.5mm 转回 mm 误差过大: %g", l.ToMM())
	}
}
