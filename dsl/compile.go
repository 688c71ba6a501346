package dsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/linklabel/binding"
	"github.com/ByLCY/linklabel/config"
	"github.com/ByLCY/linklabel/layout"
	"github.com/ByLCY/linklabel/richtext"
)

// Result 是编译后的标签：富文本与 config 段给出的配置。
type Result struct {
	Name    string
	Version string
	Text    *richtext.Text
	Config  config.Label
	// Missing 列出文本与链接中在数据里找不到的占位符路径。
	Missing []string
}

// Compile 把文档编译为富文本与配置，文本与链接中的 ${path} 按 data 替换。
// 多个 config 段按出现顺序覆盖，多个 text 段依次拼接。
func Compile(doc *Document, data any) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	res := &Result{Name: doc.Name, Version: doc.Version, Text: richtext.New("", nil)}
	styles := map[string]map[string]string{}
	missing := map[string]bool{}

	for _, section := range doc.Sections {
		if section.Styles == nil {
			continue
		}
		if err := collectStyles(section.Styles.Block, styles); err != nil {
			return nil, err
		}
	}

	for _, section := range doc.Sections {
		switch {
		case section.Config != nil:
			cfg, err := compileConfig(section.Config.Block)
			if err != nil {
				return nil, err
			}
			if err := config.Merge(&res.Config, cfg); err != nil {
				return nil, err
			}
		case section.Text != nil:
			c := &textCompiler{out: res.Text, styles: styles, data: data, missing: missing}
			if err := c.block(section.Text.Block, nil); err != nil {
				return nil, err
			}
			res.Missing = append(res.Missing, c.missed...)
		}
	}
	return res, nil
}

func collectStyles(block *Block, styles map[string]map[string]string) error {
	if block == nil {
		return nil
	}
	for _, stmt := range block.Statements {
		cmd := stmt.Command
		if cmd == nil {
			continue
		}
		if cmd.Name != "style" {
			return fmt.Errorf("%s: styles 段只允许 style 命令，实际为 %q", cmd.Pos, cmd.Name)
		}
		if len(cmd.Args) == 0 || cmd.Args[0].Type != "Ident" {
			return fmt.Errorf("%s: style 缺少名称", cmd.Pos)
		}
		_, props, err := parseArgs(cmd.Args[1:], false)
		if err != nil {
			return fmt.Errorf("%s: style %s: %w", cmd.Pos, cmd.Args[0].Value, err)
		}
		if _, err := config.ParseStyle(props); err != nil {
			return fmt.Errorf("%s: style %s: %w", cmd.Pos, cmd.Args[0].Value, err)
		}
		styles[cmd.Args[0].Value] = props
	}
	return nil
}

type textCompiler struct {
	out     *richtext.Text
	styles  map[string]map[string]string
	data    any
	missing map[string]bool
	missed  []string
}

// block 编译 text 段或 span 内部的语句，inherited 为外层 span 的样式。
func (c *textCompiler) block(block *Block, inherited map[string]string) error {
	if block == nil {
		return nil
	}
	for _, stmt := range block.Statements {
		switch {
		case stmt.Text != nil:
			if err := c.appendText(string(stmt.Text.Value), inherited); err != nil {
				return err
			}
		case stmt.Command != nil:
			if err := c.command(stmt.Command, inherited); err != nil {
				return err
			}
		case stmt.Assignment != nil:
			return fmt.Errorf("%s: text 段不支持赋值 %q", stmt.Assignment.Pos, stmt.Assignment.Key)
		}
	}
	return nil
}

func (c *textCompiler) command(cmd *Command, inherited map[string]string) error {
	switch cmd.Name {
	case "span":
		style, inline, err := parseArgs(cmd.Args, true)
		if err != nil {
			return fmt.Errorf("%s: span: %w", cmd.Pos, err)
		}
		props := clone(inherited)
		if style != "" {
			named, ok := c.styles[style]
			if !ok {
				return fmt.Errorf("%s: 未定义的样式 %q", cmd.Pos, style)
			}
			for k, v := range named {
				props[k] = v
			}
		}
		for k, v := range inline {
			props[k] = v
		}
		if err := c.block(cmd.Block, props); err != nil {
			return err
		}
	case "br":
		return c.appendText("\n", inherited)
	default:
		return fmt.Errorf("%s: text 段不支持命令 %q", cmd.Pos, cmd.Name)
	}
	return nil
}

func (c *textCompiler) appendText(s string, props map[string]string) error {
	c.note(s)
	resolved := clone(props)
	for _, key := range []string{"link", "managed-link"} {
		if v, ok := resolved[key]; ok {
			c.note(v)
			resolved[key] = binding.InterpolateURL(v, c.data)
		}
	}
	attrs, err := config.ParseStyle(resolved)
	if err != nil {
		return err
	}
	c.out.Append(binding.Interpolate(s, c.data), attrs)
	return nil
}

func (c *textCompiler) note(s string) {
	for _, path := range binding.Missing(s, c.data) {
		if !c.missing[path] {
			c.missing[path] = true
			c.missed = append(c.missed, path)
		}
	}
}

// parseArgs 把 key value 成对的参数转换为 map。allowStyle 时，参数个数为奇数则第一个是样式名。
func parseArgs(args []*Lexeme, allowStyle bool) (string, map[string]string, error) {
	result := map[string]string{}
	var style string
	if allowStyle && len(args)%2 == 1 {
		if args[0].Type != "Ident" {
			return "", nil, fmt.Errorf("样式名 %q 无效", args[0].Raw)
		}
		style = args[0].Value
		args = args[1:]
	}
	if len(args)%2 != 0 {
		return "", nil, fmt.Errorf("参数 %q 缺少取值", args[len(args)-1].Value)
	}
	for i := 0; i < len(args); i += 2 {
		result[args[i].Value] = args[i+1].Value
	}
	return style, result, nil
}

func compileConfig(block *Block) (config.Label, error) {
	var cfg config.Label
	if block == nil {
		return cfg, nil
	}
	for _, stmt := range block.Statements {
		a := stmt.Assignment
		if a == nil {
			if stmt.Command != nil {
				return cfg, fmt.Errorf("%s: config 段只允许 key: value 赋值，实际为命令 %q", stmt.Command.Pos, stmt.Command.Name)
			}
			return cfg, fmt.Errorf("config 段只允许 key: value 赋值")
		}
		if err := assign(&cfg, a); err != nil {
			return cfg, fmt.Errorf("%s: %s: %w", a.Pos, a.Key, err)
		}
	}
	return cfg, nil
}

func assign(cfg *config.Label, a *Assignment) error {
	switch a.Key {
	case "frame":
		v, err := points(a.Value)
		if err != nil {
			return err
		}
		cfg.Frame = v
	case "insets":
		v, err := points(a.Value)
		if err != nil {
			return err
		}
		cfg.Insets = v
	case "lines":
		n, err := strconv.Atoi(scalar(a.Value))
		if err != nil {
			return fmt.Errorf("需要整数: %w", err)
		}
		cfg.Lines = &n
	case "padding":
		p, err := layout.ParsePoints(scalar(a.Value))
		if err != nil {
			return err
		}
		cfg.Padding = &p
	case "exclude-underlines", "interactive":
		b, err := strconv.ParseBool(scalar(a.Value))
		if err != nil {
			return fmt.Errorf("需要 true 或 false: %w", err)
		}
		if a.Key == "interactive" {
			cfg.Interactive = &b
		} else {
			cfg.ExcludeUnderlines = &b
		}
	case "align":
		cfg.Align = scalar(a.Value)
	case "break":
		cfg.Break = scalar(a.Value)
	case "validation":
		cfg.Validation = scalar(a.Value)
	case "background":
		cfg.Background = scalar(a.Value)
	case "link-attributes":
		if a.Value.Object == nil {
			return fmt.Errorf("需要 { key: value } 形式")
		}
		cfg.LinkAttributes = map[string]string{}
		for _, entry := range a.Value.Object.Entries {
			cfg.LinkAttributes[entry.Key] = scalar(entry.Value)
		}
	default:
		return fmt.Errorf("未知的配置项")
	}
	return nil
}

// scalar 返回值的文本形式。
func scalar(v *Value) string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		return *v.Number
	case v.Color != nil:
		return *v.Color
	case v.Expr != nil:
		return v.Expr.String()
	default:
		return ""
	}
}

// points 把单个长度或长度数组转换为 pt。
func points(v *Value) ([]float64, error) {
	items := []*Value{v}
	if v.Array != nil {
		items = v.Array.Values
	}
	out := make([]float64, 0, len(items))
	for _, item := range items {
		s := scalar(item)
		if s == "" {
			return nil, fmt.Errorf("需要长度或长度数组")
		}
		p, err := layout.ParsePoints(strings.ReplaceAll(s, " ", ""))
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func clone(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
