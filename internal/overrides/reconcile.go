package overrides

import "dohrano/internal/model"

// Evaluator 计算字段列表的状态（由 classify.Classifier 实现）。
type Evaluator interface {
	Status(fields []model.FieldEntry) model.Status
}

// Action 为合并决策。
type Action int

const (
	Keep Action = iota
	Skip
	Fixed
)

func (a Action) String() string {
	switch a {
	case Skip:
		return "skip"
	case Fixed:
		return "fix"
	default:
		return "keep"
	}
}

// Outcome 为合并后的字段与状态。
type Outcome struct {
	Action Action
	Fields []model.FieldEntry
	Status model.Status
}

// Reconcile 仅在自动状态不是 OK 时生效：先查 skiplist（丢弃），再查 fixlist（替换字段并重新计算状态）；
// 其余情况保留自动分类结果。
func (l *Lists) Reconcile(ev Evaluator, id model.PostID, fields []model.FieldEntry, status model.Status) Outcome {
	if status.OK() {
		return Outcome{Action: Keep, Fields: fields, Status: status}
	}
	if l.Skipped(id) {
		return Outcome{Action: Skip}
	}
	if fix, ok := l.FixFor(id); ok {
		repl := fix.Fields()
		return Outcome{Action: Fixed, Fields: repl, Status: ev.Status(repl)}
	}
	return Outcome{Action: Keep, Fields: fields, Status: status}
}

// Fields 由修正项生成字段列表（game/platform/playtime，original 为空）。返回值非 nil。
func (f Fix) Fields() []model.FieldEntry {
	out := make([]model.FieldEntry, 0, 3)
	return appendValues(out, f.Game, f.Platform, f.Playtime)
}

// Fields 由额外项生成字段列表（id/username/inserted_at/game/platform/playtime）。
func (e Extra) Fields() []model.FieldEntry {
	out := make([]model.FieldEntry, 0, 6)
	if e.ID != "" {
		out = append(out, model.TextField(model.KindID, "", string(e.ID)))
	}
	if e.Username != "" {
		out = append(out, model.TextField(model.KindUsername, "", e.Username))
	}
	if e.InsertedAt != nil {
		out = append(out, model.InstantField("", e.InsertedAt.Time))
	}
	return appendValues(out, e.Game, e.Platform, e.Playtime)
}

func appendValues(out []model.FieldEntry, game, platform *string, playtime *float64) []model.FieldEntry {
	if game != nil {
		out = append(out, model.GameField("", *game))
	}
	if platform != nil {
		out = append(out, model.PlatformField("", *platform))
	}
	if playtime != nil {
		out = append(out, model.PlaytimeField("", model.Hours(*playtime)))
	}
	return out
}

// ExtraRecords 将额外清单转换为记录，顺序与文件一致。urlFor 生成帖子链接。
func (l *Lists) ExtraRecords(ev Evaluator, urlFor func(model.PostID) string) []model.Record {
	out := make([]model.Record, 0, len(l.Extra))
	for _, e := range l.Extra {
		fields := e.Fields()
		rec := model.Record{
			ID:          e.ID,
			Status:      ev.Status(fields),
			URL:         urlFor(e.ID),
			Author:      e.Username,
			Content:     "",
			SourceParts: []string{},
			SourceData:  fields,
		}
		if e.InsertedAt != nil {
			rec.InsertedAt = *e.InsertedAt
		}
		empty := ""
		rec.SourceLine = &empty
		out = append(out, rec)
	}
	return out
}
