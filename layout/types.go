package layout

// 该文件定义渲染请求、单元格与布局结果，供布局计算、渲染与调试 JSON 共用。

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-text/typesetting/segmenter"
	"github.com/lucasb-eyer/go-colorful"
)

// MaxChars 是一次渲染最多使用的字符数，多余字符被忽略。
const MaxChars = 6

// ThreeMode 决定 3 个字符时的排列方式。
type ThreeMode string

const (
	ThreeRow        ThreeMode = "row"        // 横一列
	ThreeTwoPlusOne ThreeMode = "twoPlusOne" // 上 2 + 下 1
)

// StretchMode 决定纵向拉伸率取自动值还是手动值。
type StretchMode string

const (
	StretchAuto   StretchMode = "auto"
	StretchManual StretchMode = "manual"
)

// FontKey 是可选字体的枚举键。
type FontKey string

const (
	FontPop      FontKey = "pop"
	FontMushin   FontKey = "mushin"
	FontYuGothic FontKey = "yugothic"
	FontMeiryo   FontKey = "meiryo"
)

// FontKeys 按界面顺序返回全部字体键。
func FontKeys() []FontKey {
	return []FontKey{FontPop, FontMushin, FontYuGothic, FontMeiryo}
}

// Valid 报告 k 是否为已知字体键。
func (k FontKey) Valid() bool {
	for _, known := range FontKeys() {
		if k == known {
			return true
		}
	}
	return false
}

// Request 是一次渲染所需的全部参数快照。
type Request struct {
	Text            string      `json:"text"`
	Size            int         `json:"size"` // 画布边长（px）
	Fill            Color       `json:"fill"`
	Stroke          Color       `json:"stroke"`
	StrokeWidth     int         `json:"strokeWidth"` // 描边宽度（px），0 表示不描边
	Background      bool        `json:"background"`
	BackgroundColor Color       `json:"backgroundColor"`
	Font            FontKey     `json:"font"`
	FontScale       float64     `json:"fontScale"`
	ThreeMode       ThreeMode   `json:"threeMode"`
	StretchMode     StretchMode `json:"stretchMode"`
	ManualStretch   float64     `json:"manualStretch"`
}

// DefaultRequest 返回与网页版初始状态一致的请求。
func DefaultRequest() Request {
	return Request{
		Text:            "四字熟語",
		Size:            128,
		Fill:            Color{R: 0xff, G: 0x3b, B: 0x30, A: 255},
		Stroke:          Color{R: 0xff, G: 0xff, B: 0xff, A: 255},
		StrokeWidth:     6,
		Background:      false,
		BackgroundColor: Color{A: 255},
		Font:            FontPop,
		FontScale:       1.3,
		ThreeMode:       ThreeRow,
		StretchMode:     StretchAuto,
		ManualStretch:   1.0,
	}
}

// Validate 只拒绝结构上无法渲染的请求；数值越界由布局阶段在边界处钳制。
func (r Request) Validate() error {
	if r.Size <= 0 {
		return fmt.Errorf("画布尺寸必须为正数，实际 %d", r.Size)
	}
	if !r.Font.Valid() {
		return fmt.Errorf("未知字体 %q", r.Font)
	}
	switch r.ThreeMode {
	case ThreeRow, ThreeTwoPlusOne:
	default:
		return fmt.Errorf("未知的三字布局 %q", r.ThreeMode)
	}
	switch r.StretchMode {
	case StretchAuto, StretchManual:
	default:
		return fmt.Errorf("未知的纵向拉伸模式 %q", r.StretchMode)
	}
	if !finite(r.FontScale) || r.FontScale <= 0 {
		return fmt.Errorf("字体倍率必须为大于 0 的有限数，实际 %g", r.FontScale)
	}
	if !finite(r.ManualStretch) {
		return fmt.Errorf("手动纵向拉伸率必须为有限数，实际 %g", r.ManualStretch)
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Chars 返回实际参与布局的字符：去掉首尾空白后按字素簇切分，最多 MaxChars 个。
func (r Request) Chars() []string {
	return Chars(r.Text)
}

// Chars 将文本切分为可见字符（字素簇），最多 MaxChars 个。
func Chars(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	var seg segmenter.Segmenter
	seg.Init([]rune(trimmed))
	iter := seg.GraphemeIterator()
	chars := make([]string, 0, MaxChars)
	for iter.Next() && len(chars) < MaxChars {
		chars = append(chars, string(iter.Grapheme().Text))
	}
	return chars
}

// Cell 是画布中分配给单个字符的矩形区域，CX/CY 为预先计算的中心点。
type Cell struct {
	X  int     `json:"x"`
	Y  int     `json:"y"`
	W  int     `json:"w"`
	H  int     `json:"h"`
	CX float64 `json:"cx"`
	CY float64 `json:"cy"`
}

func newCell(x, y, w, h int) Cell {
	return Cell{X: x, Y: y, W: w, H: h, CX: float64(x) + float64(w)/2, CY: float64(y) + float64(h)/2}
}

// Color 采用 0-255 的 RGBA 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
	A int `json:"a"`
}

// ParseColor 解析 #rgb、#rrggbb 与 #rrggbbaa 形式的颜色。
func ParseColor(value string) (Color, error) {
	v := strings.TrimSpace(value)
	if !strings.HasPrefix(v, "#") {
		v = "#" + v
	}
	switch len(v) {
	case 4, 7, 9:
	default:
		return Color{}, fmt.Errorf("颜色值 %s 长度不合法", value)
	}
	alpha := 255
	if len(v) == 9 {
		a, err := strconv.ParseUint(v[7:9], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("颜色值 %s 无法解析: %w", value, err)
		}
		alpha = int(a)
		v = v[:7]
	}
	c, err := colorful.Hex(v)
	if err != nil {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析: %w", value, err)
	}
	r, g, b := c.RGB255()
	return Color{R: int(r), G: int(g), B: int(b), A: alpha}, nil
}

// MustColor 用于常量颜色，解析失败时 panic。
func MustColor(value string) Color {
	c, err := ParseColor(value)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex 返回 #rrggbb（不透明）或 #rrggbbaa 形式。
func (c Color) Hex() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// FontResource 描述一个已解析的字体：键、回退链以及最终命中的字体来源。
// Src 可以是文件路径或 embed:<name> 形式。
type FontResource struct {
	Key      FontKey  `json:"key"`
	Label    string   `json:"label,omitempty"`
	Families []string `json:"families,omitempty"` // 字体回退链
	Family   string   `json:"family,omitempty"`   // 回退链中实际命中的字体族
	Src      string   `json:"src"`
}

// GlyphMetrics 是单个字符在某字号下的墨迹包围盒（与绘制表面同一坐标空间，单位 px）。
type GlyphMetrics struct {
	Ascent  float64 `json:"ascent"`
	Descent float64 `json:"descent"`
	Left    float64 `json:"left"`
	Right   float64 `json:"right"`
	Advance float64 `json:"advance"`
}

// Width 取墨迹宽度与步进宽度中的较大者。
func (m GlyphMetrics) Width() float64 {
	w := m.Left + m.Right
	if m.Advance > w {
		return m.Advance
	}
	return w
}

// Height 为墨迹高度。
func (m GlyphMetrics) Height() float64 { return m.Ascent + m.Descent }

// Result 是一次布局的完整绘制计划。
type Result struct {
	Size       int          `json:"size"`
	Background *Color       `json:"background,omitempty"` // 为空表示透明
	Stretch    float64      `json:"stretch"`
	Font       FontResource `json:"font"`
	Cells      []Cell       `json:"cells"`
	Glyphs     []Glyph      `json:"glyphs"`
	Warnings   []string     `json:"warnings,omitempty"`
}

// Glyph 记录单个字符的字号、基线与描边等绘制参数。
type Glyph struct {
	Char     string       `json:"char"`
	Cell     Cell         `json:"cell"`
	Padding  int          `json:"padding"`
	Fitted   int          `json:"fitted"`   // 二分搜索得到的字号
	FontSize int          `json:"fontSize"` // 乘以倍率并取整后的最终字号
	Metrics  GlyphMetrics `json:"metrics"`  // 最终字号下的度量
	Baseline float64      `json:"baseline"` // 以单元格中心为原点、向下为正的基线偏移（拉伸前）
	// LineWidth 为绘制时的描边宽度，已除以纵向拉伸率。
	LineWidth float64 `json:"lineWidth"`
	Fill      Color   `json:"fill"`
	Stroke    Color   `json:"stroke"`
}
