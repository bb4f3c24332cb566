package dsl_test

import (
	"strings"
	"testing"

	"github.com/ByLCY/emodis/dsl"
	"github.com/ByLCY/emodis/layout"
)

const sampleRecipe = `
// 团队表情包
defaults {
  size: 128
  fill: #ff3b30
  stroke-width: 6
  out: "out/${text}.png"
}

emoji "四字熟語"
emoji "草" { fill: #00aa00; scale: 1.0 }

/* 三字横一列，手动拉伸 */
emoji "ABC" {
  three: row
  stretch: 1.8
  background: #000
  font: mushin
}

defaults { size: 256 }
emoji "了解" { out: "big/${text}.png"; background: off }
`

func TestParseRecipe(t *testing.T) {
	recipe, err := dsl.ParseString(sampleRecipe)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(recipe.Entries) != 6 {
		t.Fatalf("expected 6 entries, got %d", len(recipe.Entries))
	}
	if recipe.Entries[0].Defaults == nil {
		t.Fatalf("first entry should be defaults")
	}
	props := recipe.Entries[0].Defaults.Block.Properties
	if len(props) != 4 {
		t.Fatalf("expected 4 default properties, got %d", len(props))
	}
	if props[1].Value.Color == nil || *props[1].Value.Color != "#ff3b30" {
		t.Fatalf("expected full hex color token, got %+v", props[1].Value)
	}
	if props[2].Key != "stroke-width" || props[2].Value.Number == nil || *props[2].Value.Number != 6 {
		t.Fatalf("unexpected stroke-width property: %+v", props[2])
	}

	first := recipe.Entries[1].Emoji
	if first == nil || first.Text != "四字熟語" || first.Block != nil {
		t.Fatalf("unexpected first emoji: %+v", first)
	}
	second := recipe.Entries[2].Emoji
	if second == nil || len(second.Block.Properties) != 2 {
		t.Fatalf("semicolon separated properties not parsed: %+v", second)
	}
	if line := recipe.Entries[3].Emoji.Pos.Line; line != 14 {
		t.Fatalf("expected ABC declaration on line 14, got %d", line)
	}
}

func TestCompileRecipe(t *testing.T) {
	recipe, err := dsl.ParseString(sampleRecipe)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	base := layout.DefaultRequest()
	jobs, err := dsl.Compile(recipe, dsl.CompileOptions{Base: base, Out: "${text}.png"})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if len(jobs) != 4 {
		t.Fatalf("expected 4 jobs, got %d", len(jobs))
	}

	if jobs[0].Request.Text != "四字熟語" || jobs[0].Out != "out/${text}.png" {
		t.Fatalf("defaults not applied: %+v", jobs[0])
	}
	if jobs[1].Request.Fill != layout.MustColor("#00aa00") || jobs[1].Request.FontScale != 1.0 {
		t.Fatalf("emoji properties not applied: %+v", jobs[1].Request)
	}
	// 声明自身的属性不影响后续声明。
	if jobs[2].Request.Fill != layout.MustColor("#ff3b30") {
		t.Fatalf("per-emoji fill leaked: %+v", jobs[2].Request.Fill)
	}

	abc := jobs[2].Request
	if abc.StretchMode != layout.StretchManual || abc.ManualStretch != 1.8 {
		t.Fatalf("manual stretch not applied: %+v", abc)
	}
	if !abc.Background || abc.BackgroundColor != layout.MustColor("#000000") {
		t.Fatalf("background not enabled: %+v", abc)
	}
	if abc.Font != layout.FontMushin {
		t.Fatalf("font not applied: %s", abc.Font)
	}

	last := jobs[3]
	if last.Request.Size != 256 || last.Out != "big/${text}.png" || last.Request.Background {
		t.Fatalf("second defaults block not applied: %+v", last)
	}
	if jobs[0].Request.Size != 128 {
		t.Fatalf("later defaults must not affect earlier jobs")
	}
}

func TestCompileErrorsCarryPosition(t *testing.T) {
	cases := map[string]string{
		"unknown key":  "emoji \"a\" {\n  colour: #fff\n}",
		"bad font":     "emoji \"a\" {\n  font: comic\n}",
		"bad size":     "emoji \"a\" {\n  size: 12.5\n}",
		"bad three":    "emoji \"a\" {\n  three: column\n}",
		"bad stretch":  "emoji \"a\" {\n  stretch: manual\n}",
		"bad out":      "emoji \"a\" {\n  out: result\n}",
		"unknown var":  "emoji \"a\" {\n  out: \"${name}.png\"\n}",
		"bad fill":     "emoji \"a\" {\n  fill: 12\n}",
		"invalid size": "emoji \"a\" {\n  size: 0\n}",
	}
	for name, src := range cases {
		recipe, err := dsl.ParseString(src)
		if err != nil {
			t.Fatalf("%s: parse failed: %v", name, err)
		}
		_, err = dsl.Compile(recipe, dsl.CompileOptions{Base: layout.DefaultRequest()})
		if err == nil {
			t.Fatalf("%s: expected compile error", name)
		}
		if !strings.Contains(err.Error(), ":") {
			t.Fatalf("%s: error should carry a position: %v", name, err)
		}
	}
}

func TestParseSyntaxError(t *testing.T) {
	if _, err := dsl.ParseString(`emoji { size: 1 }`); err == nil {
		t.Fatalf("expected syntax error for missing text")
	}
	if _, err := dsl.Parse("batch.emodis", strings.NewReader("emoji \"a\" { size 1 }")); err == nil || !strings.Contains(err.Error(), "batch.emodis") {
		t.Fatalf("expected syntax error naming the file, got %v", err)
	}
}

func TestParseEmpty(t *testing.T) {
	recipe, err := dsl.ParseString("\n// nothing\n")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	jobs, err := dsl.Compile(recipe, dsl.CompileOptions{Base: layout.DefaultRequest()})
	if err != nil || len(jobs) != 0 {
		t.Fatalf("expected no jobs, got %d (%v)", len(jobs), err)
	}
}
