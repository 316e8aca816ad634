// 包 model 定义分类流水线与统计输出共用的数据模型（字段/记录/状态/汇总）。
package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Status 为一条记录的有效性状态。
type Status string

const (
	StatusEmptySource       Status = "EMPTY_SOURCE"
	StatusPlaytimeMissing   Status = "PLAYTIME_MISSING"
	StatusPlaytimeTooHigh   Status = "PLAYTIME_TOO_HIGH"
	StatusPlaytimeDuplicate Status = "PLAYTIME_DUPLICATE"
	StatusGameMissing       Status = "GAME_MISSING"
	StatusOK                Status = "OK"
)

// OK 报告状态是否可进入汇总。
func (s Status) OK() bool { return s == StatusOK }

// Hours 为游戏时长（小时）。整数值输出时不带小数部分：6.0 -> 6，6.5 -> 6.5。
type Hours float64

func (h Hours) String() string { return strconv.FormatFloat(float64(h), 'f', -1, 64) }

// maxExactInt 为 float64 可精确表示的最大整数。
const maxExactInt = 1 << 53

// Integral 报告时长是否为整数。
func (h Hours) Integral() bool {
	f := float64(h)
	return !math.IsInf(f, 0) && f == math.Trunc(f)
}

// MarshalYAML 整数值按整数输出；超出精确整数范围时按浮点数输出。
func (h Hours) MarshalYAML() (any, error) {
	if h.Integral() && math.Abs(float64(h)) <= maxExactInt {
		return int64(h), nil
	}
	return float64(h), nil
}

func (h Hours) MarshalJSON() ([]byte, error) { return []byte(h.String()), nil }

// PostID 为帖子 ID；接口返回数字，覆盖清单中也可能写成字符串，统一按文本保存。
type PostID string

func (id *PostID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*id = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return fmt.Errorf("post id: %w", err)
		}
		*id = PostID(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("post id: %w", err)
	}
	*id = PostID(n.String())
	return nil
}

func (id *PostID) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("post id: expected scalar at line %d", n.Line)
	}
	*id = PostID(strings.TrimSpace(n.Value))
	return nil
}

// MarshalYAML 数字 ID 以整数输出，与接口原始格式一致。
func (id PostID) MarshalYAML() (any, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return n, nil
	}
	return string(id), nil
}

// Timestamp 为 UTC 时间点；解析时兼容带时区与不带时区（视为 UTC）的 ISO-8601。
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp 解析 ISO-8601 时间并转换为 UTC。
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{t.UTC()}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("parse timestamp %q: unsupported format", s)
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	v, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func (t *Timestamp) UnmarshalYAML(n *yaml.Node) error {
	v, err := ParseTimestamp(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*t = v
	return nil
}

func (t Timestamp) MarshalYAML() (any, error) { return t.UTC().Format(time.RFC3339), nil }

// DayMonth 按 "d.m." 输出日期（去掉前导零，不含年份）。
func (t Timestamp) DayMonth() string {
	u := t.UTC()
	return fmt.Sprintf("%d.%d.", u.Day(), int(u.Month()))
}

// Post 为来源无关的帖子（讨论 API 或订阅）。
type Post struct {
	ID         PostID    `json:"id"`
	Username   string    `json:"username"`
	InsertedAt Timestamp `json:"inserted_at"`
	Content    string    `json:"content"`
}

// Record 为一条帖子（或额外清单中的合成帖子）经过分类后的结果。
// SourceLine 为 nil 表示未找到标记行；SourceData 为 nil 表示无可分类内容。
type Record struct {
	ID          PostID       `yaml:"id"`
	Status      Status       `yaml:"status"`
	URL         string       `yaml:"url"`
	Author      string       `yaml:"username"`
	InsertedAt  Timestamp    `yaml:"inserted_at"`
	Content     string       `yaml:"content"`
	SourceLine  *string      `yaml:"source_line"`
	SourceParts []string     `yaml:"source_parts"`
	SourceData  []FieldEntry `yaml:"source_data"`
}

// Playtime 返回第一条时长字段。
func (r Record) Playtime() (Hours, bool) { return firstHours(r.SourceData) }

// Game 返回第一条游戏字段。
func (r Record) Game() (string, bool) {
	for _, f := range r.SourceData {
		if f.Kind == KindGame {
			if t, ok := f.Value.(Text); ok {
				return string(t), true
			}
		}
	}
	return "", false
}

func firstHours(fields []FieldEntry) (Hours, bool) {
	for _, f := range fields {
		if h, ok := f.Hours(); ok {
			return h, true
		}
	}
	return 0, false
}

// GameSummary 为汇总中的单条游戏。
type GameSummary struct {
	Name     string `yaml:"name" json:"name"`
	Playtime Hours  `yaml:"playtime" json:"playtime"`
	Date     string `yaml:"date" json:"date"`
	URL      string `yaml:"url" json:"url"`
}

// AuthorSummary 为单个作者一年内有效记录的汇总。
type AuthorSummary struct {
	Count    int           `yaml:"count" json:"count"`
	Playtime Hours         `yaml:"playtime" json:"playtime"`
	Games    []GameSummary `yaml:"games" json:"games"`
}
