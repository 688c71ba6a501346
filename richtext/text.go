package richtext

import (
	"fmt"
	"strings"
)

// 该文件定义富文本模型：一段不可变文字 + 按区间排列的属性 run。
// 下标一律以 rune（Unicode 码点）计。

// Range 是半开区间 [Start, End)。
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len 返回区间长度。
func (r Range) Len() int { return r.End - r.Start }

// Contains 判断 i 是否落在区间内。
func (r Range) Contains(i int) bool { return i >= r.Start && i < r.End }

// Intersect 返回两个区间的交集，不相交时长度为 0。
func (r Range) Intersect(o Range) Range {
	out := Range{Start: max(r.Start, o.Start), End: min(r.End, o.End)}
	if out.End < out.Start {
		out.End = out.Start
	}
	return out
}

func (r Range) String() string { return fmt.Sprintf("[%d,%d)", r.Start, r.End) }

// Run 是一段属性一致的文字。
type Run struct {
	Range Range
	Attrs Attributes
}

// Text 是富文本。runs 按顺序覆盖 [0, Len())，互不重叠，且相邻 run 的属性不相等。
type Text struct {
	runes []rune
	runs  []Run
}

// New 用统一的属性创建富文本。
func New(s string, attrs Attributes) *Text {
	t := &Text{}
	t.Append(s, attrs)
	return t
}

// Append 在末尾追加一段文字。
func (t *Text) Append(s string, attrs Attributes) *Text {
	rs := []rune(s)
	if len(rs) == 0 {
		return t
	}
	start := len(t.runes)
	t.runes = append(t.runes, rs...)
	t.runs = append(t.runs, Run{Range: Range{start, len(t.runes)}, Attrs: attrs.Clone()})
	t.coalesce()
	return t
}

// Len 返回字符数。
func (t *Text) Len() int {
	if t == nil {
		return 0
	}
	return len(t.runes)
}

// String 返回纯文本内容。
func (t *Text) String() string {
	if t == nil {
		return ""
	}
	return string(t.runes)
}

// Slice 返回区间内的文字。
func (t *Text) Slice(r Range) string {
	r = r.Intersect(Range{0, t.Len()})
	return string(t.runes[r.Start:r.End])
}

// RuneAt 返回下标 i 处的字符。
func (t *Text) RuneAt(i int) rune {
	if i < 0 || i >= t.Len() {
		return 0
	}
	return t.runes[i]
}

// Runs 返回 run 列表的副本。
func (t *Text) Runs() []Run {
	if t == nil {
		return nil
	}
	out := make([]Run, len(t.runs))
	for i, run := range t.runs {
		out[i] = Run{Range: run.Range, Attrs: run.Attrs.Clone()}
	}
	return out
}

// AttributesAt 返回下标 i 处的属性以及其最长有效区间。
func (t *Text) AttributesAt(i int) (Attributes, Range) {
	idx := t.runIndex(i)
	if idx < 0 {
		return nil, Range{}
	}
	run := t.runs[idx]
	return run.Attrs.Clone(), run.Range
}

// Attribute 查询单个属性；单点查询，不返回区间。
func (t *Text) Attribute(key Key, i int) (any, bool) {
	idx := t.runIndex(i)
	if idx < 0 {
		return nil, false
	}
	v, ok := t.runs[idx].Attrs[key]
	return v, ok
}

// Enumerate 按顺序遍历与 r 相交的 run，fn 返回 false 时停止。
func (t *Text) Enumerate(r Range, fn func(Attributes, Range) bool) {
	if t == nil {
		return
	}
	r = r.Intersect(Range{0, len(t.runes)})
	for _, run := range t.runs {
		part := run.Range.Intersect(r)
		if part.Len() == 0 {
			continue
		}
		if !fn(run.Attrs.Clone(), part) {
			return
		}
	}
}

// AddAttribute 在区间 r 上设置单个属性。
func (t *Text) AddAttribute(key Key, value any, r Range) {
	t.edit(r, func(a Attributes) { a[key] = cloneValue(value) })
}

// AddAttributes 在区间 r 上设置多个属性（覆盖同名键）。
func (t *Text) AddAttributes(attrs Attributes, r Range) {
	t.edit(r, func(a Attributes) {
		for k, v := range attrs {
			a[k] = cloneValue(v)
		}
	})
}

// SetAttributes 用 attrs 整体替换区间 r 上的属性。
func (t *Text) SetAttributes(attrs Attributes, r Range) {
	t.edit(r, func(a Attributes) {
		for k := range a {
			delete(a, k)
		}
		for k, v := range attrs {
			a[k] = cloneValue(v)
		}
	})
}

// RemoveAttribute 在区间 r 上移除属性。
func (t *Text) RemoveAttribute(key Key, r Range) {
	t.edit(r, func(a Attributes) { delete(a, key) })
}

// Clone 深拷贝整段富文本。
func (t *Text) Clone() *Text {
	if t == nil {
		return nil
	}
	out := &Text{
		runes: append([]rune(nil), t.runes...),
		runs:  make([]Run, len(t.runs)),
	}
	for i, run := range t.runs {
		out.runs[i] = Run{Range: run.Range, Attrs: run.Attrs.Clone()}
	}
	return out
}

// Equal 比较文字与属性是否完全一致。
func (t *Text) Equal(o *Text) bool {
	if t == nil || o == nil {
		return t.Len() == 0 && o.Len() == 0
	}
	if string(t.runes) != string(o.runes) || len(t.runs) != len(o.runs) {
		return false
	}
	for i := range t.runs {
		if t.runs[i].Range != o.runs[i].Range || !t.runs[i].Attrs.Equal(o.runs[i].Attrs) {
			return false
		}
	}
	return true
}

// Validate 检查 run 的不变量：有序、不重叠、完整覆盖。
func (t *Text) Validate() error {
	pos := 0
	for i, run := range t.runs {
		if run.Range.Start != pos {
			return fmt.Errorf("run %d 起点 %d 与预期 %d 不符", i, run.Range.Start, pos)
		}
		if run.Range.Len() <= 0 {
			return fmt.Errorf("run %d 区间 %s 为空", i, run.Range)
		}
		pos = run.Range.End
	}
	if pos != len(t.runes) {
		return fmt.Errorf("run 覆盖到 %d，文本长度为 %d", pos, len(t.runes))
	}
	return nil
}

// Debug 返回便于排查的 run 描述。
func (t *Text) Debug() string {
	var b strings.Builder
	for _, run := range t.runs {
		fmt.Fprintf(&b, "%s %q", run.Range, string(t.runes[run.Range.Start:run.Range.End]))
		for _, k := range run.Attrs.Keys() {
			fmt.Fprintf(&b, " %s=%v", k, run.Attrs[k])
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (t *Text) runIndex(i int) int {
	if t == nil || i < 0 || i >= len(t.runes) {
		return -1
	}
	lo, hi := 0, len(t.runs)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		r := t.runs[mid].Range
		switch {
		case i < r.Start:
			hi = mid - 1
		case i >= r.End:
			lo = mid + 1
		default:
			return mid
		}
	}
	return -1
}

// edit 在 r 的边界处切分 run，对区间内每个 run 调用 fn，然后合并相邻的相同 run。
func (t *Text) edit(r Range, fn func(Attributes)) {
	if t == nil {
		return
	}
	r = r.Intersect(Range{0, len(t.runes)})
	if r.Len() == 0 {
		return
	}
	t.split(r.Start)
	t.split(r.End)
	for i := range t.runs {
		if t.runs[i].Range.Start >= r.Start && t.runs[i].Range.End <= r.End {
			if t.runs[i].Attrs == nil {
				t.runs[i].Attrs = Attributes{}
			}
			fn(t.runs[i].Attrs)
		}
	}
	t.coalesce()
}

// split 保证 pos 是某个 run 的边界。
func (t *Text) split(pos int) {
	idx := t.runIndex(pos)
	if idx < 0 || t.runs[idx].Range.Start == pos {
		return
	}
	run := t.runs[idx]
	left := Run{Range: Range{run.Range.Start, pos}, Attrs: run.Attrs}
	right := Run{Range: Range{pos, run.Range.End}, Attrs: run.Attrs.Clone()}
	t.runs = append(t.runs[:idx], append([]Run{left, right}, t.runs[idx+1:]...)...)
}

func (t *Text) coalesce() {
	if len(t.runs) < 2 {
		return
	}
	out := t.runs[:1]
	for _, run := range t.runs[1:] {
		last := &out[len(out)-1]
		if last.Range.End == run.Range.Start && last.Attrs.Equal(run.Attrs) {
			last.Range.End = run.Range.End
			continue
		}
		out = append(out, run)
	}
	t.runs = out
}
