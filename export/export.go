// Package export 负责输出文件：文件命名、PNG 原子写入、预览缩略图与上传大小检查。
package export

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/disintegration/imaging"

	"github.com/ByLCY/emodis/atomicfile"
	"github.com/ByLCY/emodis/binding"
	"github.com/ByLCY/emodis/layout"
)

// UploadLimit 是聊天平台自定义表情的上传上限（256 KiB）。
const UploadLimit = 256 * 1024

// ErrTooLarge 表示 PNG 超过上传上限。
var ErrTooLarge = errors.New("export: 图像超过上传上限")

// FileName 返回下载文件名 <text>.png，文本为空时为 emoji.png。路径中不安全的字符替换为 "_"。
func FileName(text string) string {
	name := Sanitize(strings.TrimSpace(text))
	if name == "" {
		name = "emoji"
	}
	return name + ".png"
}

// Sanitize 替换文件名中的路径分隔符、Windows 保留字符与控制字符，并去掉首尾的点与空白。
func Sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if unicode.IsControl(r) {
			return '_'
		}
		return r
	}, s)
	return strings.Trim(s, ". ")
}

// Vars 返回输出路径模板可用的变量。
func Vars(req layout.Request, index int) map[string]any {
	name := strings.TrimSpace(req.Text)
	if name == "" {
		name = "emoji"
	}
	return map[string]any{
		"text":    name,
		"size":    req.Size,
		"font":    string(req.Font),
		"fill":    strings.TrimPrefix(req.Fill.Hex(), "#"),
		"stroke":  strings.TrimPrefix(req.Stroke.Hex(), "#"),
		"scale":   req.FontScale,
		"index":   index,
		"index1":  index + 1,
		"count":   len(req.Chars()),
		"stretch": string(req.StretchMode),
	}
}

// CheckTemplate 确认模板中的占位符都是 Vars 提供的变量，否则未知占位符会原样留在文件名里。
func CheckTemplate(template string) error {
	vars := Vars(layout.DefaultRequest(), 0)
	var unknown []string
	for _, name := range binding.Placeholders(template) {
		if _, ok := vars[name]; !ok {
			unknown = append(unknown, "${"+name+"}")
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Errorf("输出模板 %q 含未知占位符 %s，可用: %s", template, strings.Join(unknown, ", "), strings.Join(names, ", "))
}

// OutputPath 展开模板得到输出路径；模板为空时使用 FileName。相对路径基于 dir。
func OutputPath(template, dir string, req layout.Request, index int) string {
	var name string
	if strings.TrimSpace(template) == "" {
		name = FileName(req.Text)
	} else {
		name = binding.ExpandFunc(template, Vars(req, index), Sanitize)
	}
	if dir != "" && !filepath.IsAbs(name) {
		name = filepath.Join(dir, name)
	}
	return filepath.Clean(name)
}

// WritePNG 创建目录后原子写入文件。
func WritePNG(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := atomicfile.Write(path, data, 0o644); err != nil {
		return fmt.Errorf("写入 %s 失败: %w", path, err)
	}
	return nil
}

// Preview 将 PNG 缩放为 px 见方的缩略图（Lanczos 重采样）。
func Preview(data []byte, px int) ([]byte, error) {
	if px <= 0 {
		return nil, fmt.Errorf("预览尺寸必须为正数，实际 %d", px)
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("解码 PNG 失败: %w", err)
	}
	thumb := imaging.Resize(img, px, px, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.PNG); err != nil {
		return nil, fmt.Errorf("编码预览失败: %w", err)
	}
	return buf.Bytes(), nil
}

// PreviewPath 返回缩略图路径，例如 草.png → 草.preview32.png。
func PreviewPath(path string, px int) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".preview" + strconv.Itoa(px) + ".png"
}

// DebugPath 返回布局调试 JSON 的路径。
func DebugPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".layout.json"
}

// CheckUploadLimit 在数据超过 UploadLimit 时返回 ErrTooLarge。
func CheckUploadLimit(data []byte) error {
	if len(data) > UploadLimit {
		return fmt.Errorf("%w: %d KiB > %d KiB", ErrTooLarge, (len(data)+1023)/1024, UploadLimit/1024)
	}
	return nil
}
