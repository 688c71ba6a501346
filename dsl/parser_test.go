package dsl_test

import (
	"strings"
	"testing"

	"github.com/ByLCY/linklabel/dsl"
)

const sampleDSL = `
// 欢迎语标签
label Demo v1 {
  config {
    frame: [10, 100, 300, 90]
    insets: [0, 30, 0, 30]
    align: top
    lines: 2
    break: truncate-tail
    validation: ensure
    exclude-underlines: true
    link-attributes: { color: #00ff00; size: 12pt }
  }

  styles {
    style Accent color #ff0000 style bold
  }

  text {
    span color #ffffff size 16pt link "tel://${user.phone}" { "welcome" }
    span Accent { " to ${user.name}" }
    br
    "plain tail" /* 无样式 */
  }
}
`

func TestParseDocument(t *testing.T) {
	doc, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if doc.Name != "Demo" || doc.Version != "v1" {
		t.Fatalf("unexpected header %s %s", doc.Name, doc.Version)
	}
	if len(doc.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(doc.Sections))
	}
	kinds := []string{doc.Sections[0].Kind(), doc.Sections[1].Kind(), doc.Sections[2].Kind()}
	if strings.Join(kinds, ",") != "config,styles,text" {
		t.Fatalf("unexpected section kinds %v", kinds)
	}

	cfg := doc.Sections[0].Config
	if len(cfg.Block.Statements) != 8 {
		t.Fatalf("expected 8 config statements, got %d", len(cfg.Block.Statements))
	}
	frame := cfg.Block.Statements[0].Assignment
	if frame == nil || frame.Key != "frame" || frame.Value.Array == nil || len(frame.Value.Array.Values) != 4 {
		t.Fatalf("expected frame array, got %+v", cfg.Block.Statements[0])
	}
	brk := cfg.Block.Statements[4].Assignment
	if brk == nil || brk.Value.Expr == nil || brk.Value.Expr.String() != "truncate-tail" {
		t.Fatalf("expected break expression, got %+v", cfg.Block.Statements[4])
	}
	attrs := cfg.Block.Statements[7].Assignment
	if attrs == nil || attrs.Value.Object == nil || len(attrs.Value.Object.Entries) != 2 {
		t.Fatalf("expected link-attributes object, got %+v", cfg.Block.Statements[7])
	}
	if got := *attrs.Value.Object.Entries[0].Value.Color; got != "#00ff00" {
		t.Fatalf("expected color #00ff00, got %s", got)
	}
	if got := *attrs.Value.Object.Entries[1].Value.Number; got != "12pt" {
		t.Fatalf("expected size 12pt, got %s", got)
	}

	text := doc.Sections[2].Text
	if len(text.Block.Statements) != 4 {
		t.Fatalf("expected 4 text statements, got %d", len(text.Block.Statements))
	}
	span := text.Block.Statements[0].Command
	if span == nil || span.Name != "span" || len(span.Args) != 6 {
		t.Fatalf("unexpected span %+v", text.Block.Statements[0])
	}
	if span.Args[1].Type != "Color" || span.Args[5].Value != "tel://${user.phone}" {
		t.Fatalf("unexpected span args: %+v", span.Args)
	}
	if span.Block == nil || string(span.Block.Statements[0].Text.Value) != "welcome" {
		t.Fatalf("span missing literal content")
	}
	if br := text.Block.Statements[2].Command; br == nil || br.Name != "br" || len(br.Args) != 0 || br.Block != nil {
		t.Fatalf("expected bare br command, got %+v", text.Block.Statements[2])
	}
	if lit := text.Block.Statements[3].Text; lit == nil || string(lit.Value) != "plain tail" {
		t.Fatalf("expected plain text literal, got %+v", text.Block.Statements[3])
	}
}

func TestExpressionKeepsSigns(t *testing.T) {
	doc, err := dsl.ParseString("label X v1 {\n config {\n  insets: [-4, 2pt]\n }\n}\n")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	values := doc.Sections[0].Config.Block.Statements[0].Assignment.Value.Array.Values
	if len(values) != 2 || values[0].Expr == nil || values[0].Expr.String() != "-4" {
		t.Fatalf("expected -4 expression, got %+v", values)
	}
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{
		"doc X v1 {}",
		"label X {}",
		"label X v1 { config { frame: } }",
		"label X v1 { unknown { } }",
	} {
		if _, err := dsl.ParseString(src); err == nil {
			t.Fatalf("expected error for %q", src)
		}
	}
}
