package fonts

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/tdewolff/font"
)

// ReadSource 读取字体来源：embed:<name> 取内置字体，其余按文件路径读取。
// WOFF2 文件会被转换为 SFNT，调用方拿到的总是可直接解析的 TTF/OTF/TTC 数据。
func ReadSource(src string) ([]byte, error) {
	if src == "" {
		return nil, fmt.Errorf("字体来源为空")
	}
	if strings.HasPrefix(src, "embed:") {
		return Load(src)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("读取字体文件 %s 失败: %w", src, err)
	}
	return ToSFNT(src, data)
}

// ToSFNT 在数据为 WOFF2 时转换为 SFNT，否则原样返回。name 用于按扩展名判断。
func ToSFNT(name string, data []byte) ([]byte, error) {
	if !isWOFF2(name, data) {
		return data, nil
	}
	sfnt, err := font.ToSFNT(data)
	if err != nil {
		return nil, fmt.Errorf("WOFF2 转换失败（%s）: %w", name, err)
	}
	return sfnt, nil
}

func isWOFF2(name string, data []byte) bool {
	if strings.HasSuffix(strings.ToLower(name), ".woff2") {
		return true
	}
	return bytes.HasPrefix(data, []byte("wOF2"))
}
