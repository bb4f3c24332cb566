package fonts

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// FallbackSrc 是回退链末端 sans-serif 对应的内置字体。
const FallbackSrc = "embed:gobold"

var embedded = map[string][]byte{
	"gobold":    gobold.TTF,
	"goregular": goregular.TTF,
}

// Load 返回内置字体的字节数据，name 可写为 "embed:gobold" 或直接 "gobold"。
func Load(name string) ([]byte, error) {
	key := strings.ToLower(strings.TrimPrefix(name, "embed:"))
	data, ok := embedded[key]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 可用内置字体为 %s", name, strings.Join(EmbeddedNames(), ", "))
	}
	return data, nil
}

// EmbeddedNames 按字母序列出内置字体名。
func EmbeddedNames() []string {
	names := make([]string, 0, len(embedded))
	for name := range embedded {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
