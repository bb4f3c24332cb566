package layout

// 自动纵向拉伸率：单元格明显宽于字形时，让单个字形在纵向上撑满单元格。
const (
	autoStretchThreeRow = 2.5
	autoStretchFiveSix  = 1.65
	minManualStretch    = 0.1
)

// StretchApplies 报告给定字符数与三字布局是否需要纵向拉伸（3 横一列、5、6 字）。
func StretchApplies(count int, mode ThreeMode) bool {
	return (count == 3 && mode == ThreeRow) || count == 5 || count == 6
}

// AutoStretch 返回自动模式下的拉伸率；不适用的排列返回 1。
func AutoStretch(count int, mode ThreeMode) float64 {
	switch {
	case count == 3 && mode == ThreeRow:
		return autoStretchThreeRow
	case count == 5 || count == 6:
		return autoStretchFiveSix
	default:
		return 1.0
	}
}

// StretchFactor 返回实际生效的纵向拉伸率。
// 不适用拉伸的排列无论模式如何都返回 1；手动值下限为 0.1，防止退化或翻转。
func StretchFactor(count int, mode ThreeMode, stretch StretchMode, manual float64) float64 {
	if !StretchApplies(count, mode) {
		return 1.0
	}
	if stretch == StretchManual {
		// NaN 也落到下限
		if !(manual >= minManualStretch) {
			return minManualStretch
		}
		return manual
	}
	return AutoStretch(count, mode)
}
