package layout

import (
	"math"
	"reflect"
	"testing"
)

func TestChars(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   \t\n", nil},
		{" ABC ", []string{"A", "B", "C"}},
		{"四字熟語", []string{"四", "字", "熟", "語"}},
		{"1234567", []string{"1", "2", "3", "4", "5", "6"}},
		// 分解形式的「が」（か + 浊点）应算作一个字符。
		{"がき", []string{"が", "き"}},
		{"👍🏽ok", []string{"👍🏽", "o", "k"}},
	}
	for _, c := range cases {
		if got := Chars(c.in); !reflect.DeepEqual(got, c.want) {
			t.Fatalf("Chars(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want Color
	}{
		{"#ff3b30", Color{R: 255, G: 59, B: 48, A: 255}},
		{"#FFF", Color{R: 255, G: 255, B: 255, A: 255}},
		{"000000", Color{A: 255}},
		{"#11223380", Color{R: 0x11, G: 0x22, B: 0x33, A: 0x80}},
	}
	for _, c := range cases {
		got, err := ParseColor(c.in)
		if err != nil {
			t.Fatalf("ParseColor(%q) error: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseColor(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
	for _, bad := range []string{"", "#12", "#gggggg", "#1122334", "red"} {
		if _, err := ParseColor(bad); err == nil {
			t.Fatalf("ParseColor(%q) 应返回错误", bad)
		}
	}
}

func TestColorHex(t *testing.T) {
	if got := MustColor("#FF3B30").Hex(); got != "#ff3b30" {
		t.Fatalf("Hex() = %s", got)
	}
	if got := (Color{R: 1, G: 2, B: 3, A: 4}).Hex(); got != "#01020304" {
		t.Fatalf("Hex() = %s", got)
	}
}

func TestRequestValidate(t *testing.T) {
	if err := DefaultRequest().Validate(); err != nil {
		t.Fatalf("默认请求应合法: %v", err)
	}
	mutations := map[string]func(*Request){
		"size":       func(r *Request) { r.Size = -1 },
		"font":       func(r *Request) { r.Font = "comic" },
		"three":      func(r *Request) { r.ThreeMode = "column" },
		"stretch":    func(r *Request) { r.StretchMode = "auto-ish" },
		"scale":      func(r *Request) { r.FontScale = 0 },
		"scaleNaN":   func(r *Request) { r.FontScale = math.NaN() },
		"scaleInf":   func(r *Request) { r.FontScale = math.Inf(1) },
		"stretchNaN": func(r *Request) { r.StretchMode, r.ManualStretch = StretchManual, math.NaN() },
		"stretchInf": func(r *Request) { r.ManualStretch = math.Inf(-1) },
	}
	for name, mutate := range mutations {
		req := DefaultRequest()
		mutate(&req)
		if err := req.Validate(); err == nil {
			t.Fatalf("%s: 期望校验失败", name)
		}
	}
}

func TestGlyphMetricsWidthUsesAdvance(t *testing.T) {
	m := GlyphMetrics{Left: 1, Right: 5, Advance: 10, Ascent: 7, Descent: 3}
	if m.Width() != 10 || m.Height() != 10 {
		t.Fatalf("Width/Height = %g/%g", m.Width(), m.Height())
	}
	m.Advance = 2
	if m.Width() != 6 {
		t.Fatalf("Width = %g, 期望取墨迹宽度", m.Width())
	}
}
