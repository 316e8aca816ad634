// 包 aggregate 负责主流程编排：
// - 注入额外清单中的合成帖子
// - 按页（新→旧）拉取帖子，筛选当年范围
// - 逐帖分类并与覆盖清单合并
// - 汇总为作者统计
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dohrano/internal/classify"
	"dohrano/internal/logx"
	"dohrano/internal/model"
	"dohrano/internal/overrides"
	"dohrano/internal/summary"
)

// Source 为分页的讨论来源；anchor 为空表示最新一页，返回的帖子按新→旧排列。
type Source interface {
	Page(ctx context.Context, anchor model.PostID) ([]model.Post, error)
}

// Observer 接收每条进入结果的记录（用于指标统计）。
type Observer interface {
	Observe(rec model.Record)
}

// ErrNoSource 表示未配置来源。
var ErrNoSource = errors.New("aggregate: no discussion source")

// Runner 聚合执行器，持有分类器/覆盖清单/来源。
type Runner struct {
	source     Source
	classifier *classify.Classifier
	lists      *overrides.Lists
	postURL    func(model.PostID) string
	observers  []Observer
}

// Option 为 Runner 的可选配置。
type Option func(*Runner)

// WithPostURL 设置帖子链接生成函数。
func WithPostURL(fn func(model.PostID) string) Option {
	return func(r *Runner) { r.postURL = fn }
}

// WithObserver 追加记录观察者。
func WithObserver(o Observer) Option {
	return func(r *Runner) { r.observers = append(r.observers, o) }
}

// New 创建 Runner；lists 为 nil 时视为空清单。
func New(src Source, c *classify.Classifier, lists *overrides.Lists, opts ...Option) *Runner {
	if lists == nil {
		lists = overrides.New(nil, nil, nil)
	}
	r := &Runner{
		source:     src,
		classifier: c,
		lists:      lists,
		postURL:    func(id model.PostID) string { return string(id) },
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Result 为一次运行的全部产物。
type Result struct {
	Year      int
	Records   *model.RecordsByAuthor
	Summaries *model.Summaries
	Errors    []model.Record
	Skipped   int
	Fixed     int
}

// Window 返回某年的时间范围 [from, to]。
func Window(year int) (from, to time.Time) {
	from = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(1, 0, 0)
}

// Run 执行一轮：额外清单 → 分页拉取并分类 → 汇总。拉取失败时整体失败。
func (r *Runner) Run(ctx context.Context, year int) (*Result, error) {
	if r.source == nil {
		return nil, ErrNoSource
	}
	from, to := Window(year)
	logx.Infof("时间范围：%s - %s", from.Format(time.RFC3339), to.Format(time.RFC3339))

	res := &Result{Year: year, Records: model.NewRecordsByAuthor()}
	for _, rec := range r.lists.ExtraRecords(r.classifier, r.postURL) {
		logx.Infof("已添加额外帖子 %s", rec.ID)
		r.collect(res, rec)
	}

	var anchor model.PostID
	for {
		posts, err := r.source.Page(ctx, anchor)
		if err != nil {
			return nil, fmt.Errorf("fetch page (anchor=%q): %w", anchor, err)
		}
		if len(posts) == 0 {
			break
		}
		for _, p := range posts {
			t := p.InsertedAt.Time
			if t.Before(from) || t.After(to) {
				logx.Debug("跳过帖子（不在时间范围内）", "id", p.ID, "inserted_at", t.Format(time.RFC3339))
				continue
			}
			if rec, ok := r.process(res, p); ok {
				r.collect(res, rec)
			}
		}
		last := posts[len(posts)-1]
		if last.InsertedAt.Before(from) || last.ID == anchor {
			break
		}
		anchor = last.ID
	}

	res.Summaries = summary.Summarize(res.Records)
	logx.Infof("完成：记录=%d 作者=%d 错误=%d 跳过=%d 修正=%d",
		res.Records.Len(), res.Summaries.Len(), len(res.Errors), res.Skipped, res.Fixed)
	return res, nil
}

// process 分类单条帖子并与覆盖清单合并；返回 false 表示帖子被丢弃。
func (r *Runner) process(res *Result, p model.Post) (model.Record, bool) {
	ev := r.classifier.Evaluate(p.Content)
	out := r.lists.Reconcile(r.classifier, p.ID, ev.Fields, ev.Status)
	logx.Debug("覆盖清单决策", "id", p.ID, "action", out.Action.String())
	switch out.Action {
	case overrides.Skip:
		logx.Infof("跳过帖子 %s（在 skiplist 中）", p.ID)
		res.Skipped++
		return model.Record{}, false
	case overrides.Fixed:
		logx.Warn("帖子使用 fixlist 修正", "id", p.ID, "status", ev.Status)
		res.Fixed++
	}
	logx.Info("帖子已分类", "id", p.ID, "status", out.Status)
	return model.Record{
		ID:          p.ID,
		Status:      out.Status,
		URL:         r.postURL(p.ID),
		Author:      p.Username,
		InsertedAt:  p.InsertedAt,
		Content:     ev.Content,
		SourceLine:  ev.SourceLine,
		SourceParts: ev.Parts,
		SourceData:  out.Fields,
	}, true
}

func (r *Runner) collect(res *Result, rec model.Record) {
	res.Records.Add(rec)
	if !rec.Status.OK() {
		res.Errors = append(res.Errors, rec)
	}
	for _, o := range r.observers {
		o.Observe(rec)
	}
}
