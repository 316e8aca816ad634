// 包 summary 将按作者分组的记录汇总为作者统计（仅统计状态为 OK 的记录）。
package summary

import "dohrano/internal/model"

// Summarize 为每个至少有一条 OK 记录的作者生成汇总：
// 记录数、总时长、按原始顺序排列的游戏列表；结果按总时长倒序（相同时长保持出现顺序）。
func Summarize(records *model.RecordsByAuthor) *model.Summaries {
	out := model.NewSummaries()
	for _, author := range records.Authors() {
		var s model.AuthorSummary
		for _, rec := range records.Records(author) {
			if !rec.Status.OK() {
				continue
			}
			h, _ := rec.Playtime()
			name, _ := rec.Game()
			s.Count++
			s.Playtime += h
			s.Games = append(s.Games, model.GameSummary{
				Name:     name,
				Playtime: h,
				Date:     rec.InsertedAt.DayMonth(),
				URL:      rec.URL,
			})
		}
		if s.Count > 0 {
			out.Set(author, s)
		}
	}
	out.SortByPlaytime()
	return out
}

// MaxPlaytime 返回所有作者中的最大总时长；没有作者时为 0。
func MaxPlaytime(s *model.Summaries) model.Hours {
	var max model.Hours
	for _, e := range s.Entries() {
		if e.Playtime > max {
			max = e.Playtime
		}
	}
	return max
}
