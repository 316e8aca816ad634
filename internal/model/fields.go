package model

import "time"

// FieldKind 为字段类型。
type FieldKind string

const (
	KindGame       FieldKind = "game"
	KindPlatform   FieldKind = "platform"
	KindPlaytime   FieldKind = "playtime"
	KindError      FieldKind = "error"
	KindID         FieldKind = "id"
	KindUsername   FieldKind = "username"
	KindInsertedAt FieldKind = "inserted_at"
)

// FieldValue 为字段值的封闭联合类型：Text、Hours 或 Instant；error 字段的值为 nil。
type FieldValue interface {
	fieldValue()
}

// Text 为文本值（游戏名/平台/ID/用户名）。
type Text string

// Instant 为时间值（额外清单中的 inserted_at）。
type Instant Timestamp

func (Text) fieldValue()    {}
func (Hours) fieldValue()   {}
func (Instant) fieldValue() {}

// FieldEntry 为一条已分类的字段。Original 为原始子串，覆盖清单合成的字段为空。
type FieldEntry struct {
	Kind     FieldKind
	Original string
	Value    FieldValue
}

func GameField(original, name string) FieldEntry {
	return FieldEntry{Kind: KindGame, Original: original, Value: Text(name)}
}

func PlatformField(original, name string) FieldEntry {
	return FieldEntry{Kind: KindPlatform, Original: original, Value: Text(name)}
}

func PlaytimeField(original string, h Hours) FieldEntry {
	return FieldEntry{Kind: KindPlaytime, Original: original, Value: h}
}

func ErrorField(original string) FieldEntry {
	return FieldEntry{Kind: KindError, Original: original}
}

// TextField 构造 id/username 等文本型字段。
func TextField(kind FieldKind, original, v string) FieldEntry {
	return FieldEntry{Kind: kind, Original: original, Value: Text(v)}
}

func InstantField(original string, t time.Time) FieldEntry {
	return FieldEntry{Kind: KindInsertedAt, Original: original, Value: Instant{t.UTC()}}
}

// Hours 返回 playtime 字段的时长。
func (f FieldEntry) Hours() (Hours, bool) {
	if f.Kind != KindPlaytime {
		return 0, false
	}
	h, ok := f.Value.(Hours)
	return h, ok
}

// Text 返回文本型字段的值。
func (f FieldEntry) Text() (string, bool) {
	t, ok := f.Value.(Text)
	return string(t), ok
}

// MarshalYAML 输出 {type, original, value}。
func (f FieldEntry) MarshalYAML() (any, error) {
	var v any
	switch x := f.Value.(type) {
	case Text:
		v = string(x)
	case Hours:
		v = x
	case Instant:
		v = Timestamp(x)
	}
	return struct {
		Type     FieldKind `yaml:"type"`
		Original string    `yaml:"original"`
		Value    any       `yaml:"value"`
	}{f.Kind, f.Original, v}, nil
}

// Count 统计指定类型字段数量。
func Count(fields []FieldEntry, kind FieldKind) int {
	n := 0
	for _, f := range fields {
		if f.Kind == kind {
			n++
		}
	}
	return n
}
