package fonts

import "github.com/ByLCY/emodis/layout"

// SansSerif 是回退链的最后一项，总能由内置字体满足。
const SansSerif = "sans-serif"

// Entry 描述一个可选字体：界面标签与按优先级排列的字体族回退链。
type Entry struct {
	Key      layout.FontKey
	Label    string
	Families []string
}

var registry = []Entry{
	{Key: layout.FontPop, Label: "ポプらむキュート", Families: []string{"PopRumCute", "Yu Gothic", "Meiryo", SansSerif}},
	{Key: layout.FontMushin, Label: "無心", Families: []string{"Mushin", "Yu Gothic", "Meiryo", SansSerif}},
	{Key: layout.FontYuGothic, Label: "游ゴシック", Families: []string{"Yu Gothic", "Meiryo", SansSerif}},
	{Key: layout.FontMeiryo, Label: "メイリオ", Families: []string{"Meiryo", SansSerif}},
}

// Entries 按界面顺序返回全部字体条目的副本。
func Entries() []Entry {
	out := make([]Entry, len(registry))
	for i, e := range registry {
		e.Families = append([]string(nil), e.Families...)
		out[i] = e
	}
	return out
}

// Lookup 按键查找字体条目。
func Lookup(key layout.FontKey) (Entry, bool) {
	for _, e := range Entries() {
		if e.Key == key {
			return e, true
		}
	}
	return Entry{}, false
}

// familyAliases 列出字体族常见的文件名（去掉扩展名并规范化后比较）。
var familyAliases = map[string][]string{
	"PopRumCute": {"poprumcute", "ポプらむキュート", "poprum"},
	"Mushin":     {"mushin", "無心"},
	"Yu Gothic":  {"yugothic", "yugothb", "yugothm", "yugothr", "yugothl", "yugothicbold", "yugothicmedium", "yugothicregular"},
	"Meiryo":     {"meiryo", "meiryob", "meiryobold"},
}

// Aliases 返回某字体族可匹配的规范化文件名；未登记的字体族只匹配自身名称。
func Aliases(family string) []string {
	if list, ok := familyAliases[family]; ok {
		return list
	}
	return []string{normalize(family)}
}
