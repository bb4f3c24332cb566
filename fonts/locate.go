package fonts

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"unicode"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrNotFound 表示在本地字体目录中找不到指定字体族。
var ErrNotFound = errors.New("fonts: 字体未找到")

// fontPattern 匹配可加载的字体文件；Windows 字体目录常见大写扩展名。
const fontPattern = "**/*.{ttf,otf,ttc,woff2,TTF,OTF,TTC,WOFF2}"

// DefaultDirs 返回当前系统的常见字体目录。不存在的目录会在搜索时跳过。
func DefaultDirs() []string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "windows":
		dirs := []string{filepath.Join(os.Getenv("WINDIR"), "Fonts")}
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			dirs = append(dirs, filepath.Join(local, "Microsoft", "Windows", "Fonts"))
		}
		return dirs
	case "darwin":
		return []string{"/System/Library/Fonts", "/Library/Fonts", filepath.Join(home, "Library", "Fonts")}
	default:
		return []string{"/usr/share/fonts", "/usr/local/share/fonts", filepath.Join(home, ".local", "share", "fonts"), filepath.Join(home, ".fonts")}
	}
}

// Locator 在一组目录中按文件名查找字体族。
type Locator struct {
	Dirs []string
}

// Files 列出全部目录下的字体文件，结果按路径排序。
func (l Locator) Files() ([]string, error) {
	var out []string
	for _, dir := range l.Dirs {
		if dir == "" {
			continue
		}
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		matches, err := doublestar.Glob(os.DirFS(dir), fontPattern)
		if err != nil {
			return nil, fmt.Errorf("搜索字体目录 %s 失败: %w", dir, err)
		}
		for _, m := range matches {
			out = append(out, filepath.Join(dir, filepath.FromSlash(m)))
		}
	}
	sort.Strings(out)
	return out, nil
}

// match 返回字体族对应的文件路径。文件名与别名完全一致者优先，其次是以别名开头的文件（例如 Mushin-Regular）。
func match(files []string, family string) (string, error) {
	aliases := Aliases(family)
	names := make([]string, len(files))
	for i, f := range files {
		base := path.Base(filepath.ToSlash(f))
		names[i] = normalize(strings.TrimSuffix(base, path.Ext(base)))
	}
	for _, alias := range aliases {
		for i, name := range names {
			if name == alias {
				return files[i], nil
			}
		}
	}
	for _, alias := range aliases {
		for i, name := range names {
			if strings.HasPrefix(name, alias) {
				return files[i], nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, family)
}

// normalize 转小写并去掉空白与连接符，使 "Yu Gothic"、"yu-gothic" 与 "YuGothic" 等价。
func normalize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsSpace(r) || r == '-' || r == '_' || r == '.' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
