package layout

// 外边距与单元格间距固定为 0。所有尺寸均向下取整，不能整除时右侧/底部会留下几像素空白。

// rowSpec 描述一行：列数、行高除数（0 表示整幅高度）以及所在行号。
type rowSpec struct {
	cols      int
	heightDiv int
	row       int
}

type partitionKey struct {
	count int
	mode  ThreeMode
}

// partitions 按字符数与三字布局列出每种排列；只有 3 个字符时 mode 参与查表。
var partitions = map[partitionKey][]rowSpec{
	{1, ""}:              {{cols: 1, heightDiv: 1, row: 0}},
	{2, ""}:              {{cols: 2, heightDiv: 1, row: 0}},
	{3, ThreeRow}:        {{cols: 3, heightDiv: 1, row: 0}},
	{3, ThreeTwoPlusOne}: {{cols: 2, heightDiv: 2, row: 0}, {cols: 1, heightDiv: 2, row: 1}},
	{4, ""}:              {{cols: 2, heightDiv: 2, row: 0}, {cols: 2, heightDiv: 2, row: 1}},
	{5, ""}:              {{cols: 3, heightDiv: 2, row: 0}, {cols: 2, heightDiv: 2, row: 1}},
	{6, ""}:              {{cols: 3, heightDiv: 2, row: 0}, {cols: 3, heightDiv: 2, row: 1}},
}

// Partition 将边长为 size 的画布切分为 count 个单元格，顺序为先行后列。
// count 小于 1 时按 1 处理，大于 MaxChars 时按 MaxChars 处理。
func Partition(size, count int, mode ThreeMode) []Cell {
	count = clampCount(count)
	key := partitionKey{count: count}
	if count == 3 {
		key.mode = mode
		if mode != ThreeTwoPlusOne {
			key.mode = ThreeRow
		}
	}
	rows := partitions[key]
	cells := make([]Cell, 0, count)
	for _, r := range rows {
		w := size / r.cols
		h := size / r.heightDiv
		y := r.row * h
		for c := 0; c < r.cols; c++ {
			cells = append(cells, newCell(c*w, y, w, h))
		}
	}
	return cells
}

func clampCount(count int) int {
	if count < 1 {
		return 1
	}
	if count > MaxChars {
		return MaxChars
	}
	return count
}
