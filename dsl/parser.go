package dsl

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\d+)`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[:;]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	recipeParser = participle.MustBuild[Recipe](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// Recipe is the root AST node of a batch recipe file: a sequence of
// defaults blocks and emoji declarations, evaluated top to bottom.
type Recipe struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Entries []*Entry       `parser:"Newline* ( @@ ( ';' | Newline )* )*"`
}

// Entry is either a defaults block or an emoji declaration.
type Entry struct {
	Defaults *Defaults  `parser:"  @@"`
	Emoji    *EmojiDecl `parser:"| @@"`
}

// Defaults 修改其后所有 emoji 声明的默认属性。
type Defaults struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Block *Block         `parser:"'defaults' @@"`
}

// EmojiDecl declares one image: `emoji "字" { ... }`, the block is optional.
type EmojiDecl struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Text  StringLiteral  `parser:"'emoji' @String"`
	Block *Block         `parser:"@@?"`
}

// Block is a delimited list of properties.
type Block struct {
	Properties []*Property `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Property uses colon syntax (key: value).
type Property struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident ':'"`
	Value *Value         `parser:"@@"`
}

// Value represents a property value.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *float64       `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Ident  *string        `parser:"| @Ident"`
}

// Raw 返回值的原始文本，用于错误信息。
func (v *Value) Raw() string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return strconv.Quote(string(*v.String))
	case v.Number != nil:
		return strconv.FormatFloat(*v.Number, 'g', -1, 64)
	case v.Color != nil:
		return *v.Color
	case v.Ident != nil:
		return *v.Ident
	default:
		return ""
	}
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses a recipe from an io.Reader; filename is used in error positions.
func Parse(filename string, r io.Reader) (*Recipe, error) {
	return recipeParser.Parse(filename, r)
}

// ParseString parses a recipe from a string.
func ParseString(input string) (*Recipe, error) {
	return recipeParser.ParseString("", input)
}
