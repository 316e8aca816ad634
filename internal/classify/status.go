package classify

import (
	"dohrano/internal/model"
	"dohrano/internal/plaintext"
)

// Status 计算字段列表的状态。只检查第一条时长是否超过上限；
// 多条时长或缺少游戏字段均视为无效，交由人工处理。
func (c *Classifier) Status(fields []model.FieldEntry) model.Status {
	if fields == nil {
		return model.StatusEmptySource
	}
	playtimes := 0
	var first model.Hours
	for _, f := range fields {
		if h, ok := f.Hours(); ok {
			if playtimes == 0 {
				first = h
			}
			playtimes++
		}
	}
	switch {
	case playtimes == 0:
		return model.StatusPlaytimeMissing
	case first > c.maxPlaytime:
		return model.StatusPlaytimeTooHigh
	case playtimes > 1:
		return model.StatusPlaytimeDuplicate
	case model.Count(fields, model.KindGame) != 1:
		return model.StatusGameMissing
	}
	return model.StatusOK
}

// Result 为单条帖子的分类结果。
type Result struct {
	Content    string
	SourceLine *string
	Parts      []string
	Fields     []model.FieldEntry
	Status     model.Status
}

// Evaluate 对帖子 HTML 依次执行：转纯文本 → 标记行 → 拆分 → 分类 → 状态。
func (c *Classifier) Evaluate(html string) Result {
	res := Result{Content: plaintext.Normalize(html)}
	if line, ok := c.MarkerLine(res.Content); ok {
		res.SourceLine = &line
		res.Parts = c.SplitFields(line)
		res.Fields = c.Classify(res.Parts)
	}
	res.Status = c.Status(res.Fields)
	return res
}
