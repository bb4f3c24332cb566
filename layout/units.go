package layout

// 布局统一使用逻辑像素，绘制表面约定 1 逻辑像素 = 1 毫米，栅格化时再按设备像素比放大。

// DevicePixels 返回逻辑边长在给定设备像素比下的栅格边长；dpr 小于 1 或为 NaN 时按 1 处理。
func DevicePixels(size int, dpr float64) int {
	if !(dpr >= 1) {
		dpr = 1
	}
	return int(float64(size)*dpr + 0.5)
}
