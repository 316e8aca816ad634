// 包 classify 实现帖子内容的分类流水线：
// - MarkerLine：找出带 #dohrano 标记的行
// - SplitFields：按分隔符拆分字段
// - Classify：识别游戏/平台/时长（含时长兜底策略）
// - Status：计算有效性状态
package classify

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"dohrano/internal/model"
	"dohrano/internal/plaintext"
)

// DefaultMarkers 为标记词的两种写法（ASCII 与带变音符号）。
var DefaultMarkers = []string{"#dohrano", "#dohráno"}

// DefaultUnitRoot 为时长单位词根（hodina/hodin/hod/hodiny...）。
const DefaultUnitRoot = "hod"

// separators 按优先级排列，顺序不可调整。
var separators = []string{"|", `\`, "/"}

// numeral 匹配开头的数字：digits [.,] digits。
var numeral = regexp.MustCompile(`^(\d*[,.]?\d*)`)

// Options 为分类器的不可变配置。
type Options struct {
	Markers     []string
	UnitRoot    string
	MaxPlaytime float64
}

// Classifier 无内部可变状态，可在多次运行间复用。
type Classifier struct {
	markers     []string
	unitRoot    string
	maxPlaytime model.Hours
}

// New 创建分类器，未设置的标记词/词根使用默认值。
func New(opts Options) *Classifier {
	markers := make([]string, 0, len(opts.Markers))
	for _, m := range opts.Markers {
		if m = strings.TrimSpace(m); m != "" {
			markers = append(markers, m)
		}
	}
	if len(markers) == 0 {
		markers = append(markers, DefaultMarkers...)
	}
	root := foldAccents(strings.TrimSpace(opts.UnitRoot))
	if root == "" {
		root = DefaultUnitRoot
	}
	return &Classifier{markers: markers, unitRoot: root, maxPlaytime: model.Hours(opts.MaxPlaytime)}
}

// MarkerLine 返回第一条包含任一标记写法的行；false 表示没有标记行。
func (c *Classifier) MarkerLine(text string) (string, bool) {
	for _, line := range plaintext.Lines(text) {
		if c.hasMarker(line) {
			return line, true
		}
	}
	return "", false
}

func (c *Classifier) hasMarker(s string) bool {
	for _, m := range c.markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// SplitFields 按 | \ / 的优先级选择分隔符拆分标记行，
// 去掉标记词与首尾空白，丢弃空字段。返回值非 nil。
func (c *Classifier) SplitFields(line string) []string {
	sep := separators[len(separators)-1]
	for _, s := range separators {
		if strings.Contains(line, s) {
			sep = s
			break
		}
	}
	parts := make([]string, 0, 4)
	for _, p := range strings.Split(line, sep) {
		for _, m := range c.markers {
			p = strings.ReplaceAll(p, m, "")
		}
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// Classify 逐字段识别类型：首字段为游戏；以数字开头的字段解析为时长；其余为平台。
// 若没有任何时长字段，则执行 recoverPlaytime 兜底。parts 为 nil 时返回 nil。
func (c *Classifier) Classify(parts []string) []model.FieldEntry {
	if parts == nil {
		return nil
	}
	fields := make([]model.FieldEntry, 0, len(parts))
	for i, part := range parts {
		switch {
		case i == 0:
			fields = append(fields, model.GameField(part, part))
		case startsWithDigit(part):
			if h, ok := parseNumeral(part); ok {
				fields = append(fields, model.PlaytimeField(part, h))
			} else {
				fields = append(fields, model.ErrorField(part))
			}
		default:
			fields = append(fields, model.PlatformField(part, part))
		}
	}
	if model.Count(fields, model.KindPlaytime) == 0 {
		c.recoverPlaytime(fields)
	}
	return fields
}

func startsWithDigit(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsDigit(r)
}

// parseNumeral 解析开头的数字前缀，逗号视为小数点，单位不做校验（"5hod"、"2,5 hod"、"6.5h"）。
func parseNumeral(s string) (model.Hours, bool) {
	m := numeral.FindStringSubmatch(s)
	if m == nil || m[1] == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return model.Hours(v), true
}
