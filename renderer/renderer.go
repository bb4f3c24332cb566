package renderer

import "github.com/ByLCY/emodis/layout"

// Renderer 将布局结果输出为最终文件，例如 PNG 图像。
// Render 返回编码后的二进制数据以及可能的错误。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}
