// 包 plaintext 将帖子的 HTML 片段转换为纯文本行：
// - <br> 转换为换行
// - 其余标签仅保留文本（goquery）
// - 去除空白行
package plaintext

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var brTag = regexp.MustCompile(`(?i)<br\b[^>]*>`)

// Normalize 返回去掉标签与空白行后的文本，行序保持不变；不会失败。
func Normalize(html string) string {
	html = brTag.ReplaceAllString(html, "\n")
	text := html
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		text = doc.Text()
	}
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

// Lines 按行拆分文本。
func Lines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
