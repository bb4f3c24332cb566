package layout

import (
	"errors"
	"fmt"
	"math"
)

// 字号搜索范围与最终字号下限（px）。
const (
	DefaultMinFontSize = 8
	DefaultMaxFontSize = 512
	MinFinalFontSize   = 4
)

var (
	// ErrNoMeasurer 表示调用方没有提供测量后端。
	ErrNoMeasurer = errors.New("layout: 缺少测量后端 Measurer")
	// ErrNonMonotonic 表示字体在小字号下测得的包围盒大于大字号，二分搜索的前提不成立。
	ErrNonMonotonic = errors.New("layout: 字形尺寸随字号非单调")
)

// FitParams 描述一次字号搜索的约束。
type FitParams struct {
	CellWidth   float64
	CellHeight  float64
	Padding     float64
	StrokeWidth float64
	Font        FontResource
	Stretch     float64 // 纵向拉伸率，只作用于高度
	Min         int
	Max         int
}

// FitFontSize 在 [Min, Max] 内二分搜索能放进单元格内边距区域的最大字号。
//
// 搜索假设测得的包围盒随字号单调不减，这对常规可缩放字体成立；
// 若字体违反该假设，结果只是某个可行字号而不一定最大，见 CheckMonotonic。
// 接受时下界跳到 mid+2、拒绝时上界退到 mid-2，与网页版保持相同的探测序列。
// 没有任何字号被接受时返回 Min。
func FitFontSize(m Measurer, ch string, p FitParams) (int, error) {
	if m == nil {
		return 0, ErrNoMeasurer
	}
	lo, hi := p.Min, p.Max
	if lo <= 0 {
		lo = DefaultMinFontSize
	}
	if hi <= 0 {
		hi = DefaultMaxFontSize
	}
	stretch := p.Stretch
	if stretch <= 0 {
		stretch = 1
	}
	availW := p.CellWidth - 2*p.Padding
	availH := p.CellHeight - 2*p.Padding

	best := lo
	for lo <= hi {
		mid := (lo + hi) / 2
		metrics, err := m.MeasureGlyph(ch, p.Font, float64(mid))
		if err != nil {
			return 0, fmt.Errorf("测量字符 %q（%dpx）失败: %w", ch, mid, err)
		}
		effW := metrics.Width() + 2*p.StrokeWidth
		effH := (metrics.Height() + 2*p.StrokeWidth) * stretch
		if effW <= availW && effH <= availH {
			best = mid
			lo = mid + 2
		} else {
			hi = mid - 2
		}
	}
	return best, nil
}

// CellPadding 返回单元格内边距：短边的 6%，至少 2px。
func CellPadding(w, h int) int {
	short := w
	if h < short {
		short = h
	}
	pad := int(math.Floor(float64(short) * 0.06))
	if pad < 2 {
		return 2
	}
	return pad
}

// ScaleFontSize 将搜索结果乘以全局倍率，向下取整并保证不小于 MinFinalFontSize。
func ScaleFontSize(fitted int, scale float64) int {
	size := int(math.Floor(float64(fitted) * scale))
	if size < MinFinalFontSize {
		return MinFinalFontSize
	}
	return size
}

// CheckMonotonic 比较 min 与 max 两个字号下的包围盒，小字号更大时返回 ErrNonMonotonic。
func CheckMonotonic(m Measurer, ch string, font FontResource, min, max int) error {
	if m == nil {
		return ErrNoMeasurer
	}
	small, err := m.MeasureGlyph(ch, font, float64(min))
	if err != nil {
		return err
	}
	large, err := m.MeasureGlyph(ch, font, float64(max))
	if err != nil {
		return err
	}
	if small.Width() > large.Width() || small.Height() > large.Height() {
		return fmt.Errorf("%w: %q 在 %dpx 时为 %.1fx%.1f，%dpx 时为 %.1fx%.1f", ErrNonMonotonic, ch,
			min, small.Width(), small.Height(), max, large.Width(), large.Height())
	}
	return nil
}
