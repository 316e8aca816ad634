package classify

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"dohrano/internal/model"
)

// recoverPlaytime 为时长兜底策略：用于 "přes 35 hodin" 这类数字不在开头的写法。
// 在去掉变音符号后包含单位词根的平台字段中，按空格逐段尝试解析数字，
// 第一次成功即把该字段改为时长并结束。整个字段列表最多改写一条，不新增字段。
func (c *Classifier) recoverPlaytime(fields []model.FieldEntry) bool {
	for i, f := range fields {
		if f.Kind != model.KindPlatform {
			continue
		}
		text, _ := f.Text()
		if !strings.Contains(foldAccents(text), c.unitRoot) {
			continue
		}
		for _, chunk := range strings.Split(text, " ") {
			if h, ok := parseNumeral(chunk); ok {
				fields[i] = model.PlaytimeField(f.Original, h)
				return true
			}
		}
	}
	return false
}

// foldAccents 去掉变音符号，大小写保持不变：hodín -> hodin，HODÍN -> HODIN。
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
