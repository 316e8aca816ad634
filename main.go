// 命令行入口：
// - 解析 flags 与 config.yaml
// - 初始化日志、HTTP 客户端、覆盖清单
// - 运行一年的聚合，写出数据文件、HTML 报告，以及可选的运行历史与指标
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dohrano/internal/aggregate"
	"dohrano/internal/classify"
	"dohrano/internal/config"
	"dohrano/internal/export"
	"dohrano/internal/feeds"
	"dohrano/internal/fetch"
	"dohrano/internal/logx"
	"dohrano/internal/metrics"
	"dohrano/internal/model"
	"dohrano/internal/nyx"
	"dohrano/internal/overrides"
	"dohrano/internal/report"
	"dohrano/internal/store"
)

type flags struct {
	year     int
	config   string
	noReport bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logx.Errorf("运行失败：%v", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "dohrano --year YEAR",
		Short:         "Aggregate #dohrano posts of one year into per-author playtime summaries",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), f)
		},
	}
	cmd.Flags().IntVar(&f.year, "year", 0, "year to aggregate")
	cmd.Flags().StringVar(&f.config, "config", "config.yaml", "path to config.yaml")
	cmd.Flags().BoolVar(&f.noReport, "no-report", false, "skip HTML report rendering")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}

func run(ctx context.Context, f flags) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1) 加载配置并初始化日志
	cfg, err := config.Load(f.config)
	if err != nil {
		return err
	}
	logx.Init(logx.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Locale: cfg.LogLocale, Color: cfg.LogColor})
	logx.Infof("年份 %d，配置 %s", f.year, f.config)

	for _, dir := range []string{cfg.Data.Dir, cfg.Output.Dir, cfg.Source.Dir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	// 2) 覆盖清单
	lists, err := overrides.Load(overrides.Paths{
		Extra: cfg.ExtraListPath(),
		Fix:   cfg.FixListPath(),
		Skip:  cfg.SkipListPath(),
	})
	if err != nil {
		return err
	}
	extra, fixes, skips := lists.Counts()
	logx.Infof("覆盖清单：extra=%d fix=%d skip=%d", extra, fixes, skips)

	// 3) 来源：配置 feed.url 时读取订阅源，否则使用讨论 API
	cl := fetch.New(fetch.Options{
		Timeout: time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second,
		Retry:   cfg.Fetch.Retry,
	})
	var src aggregate.Source
	if cfg.Feed.URL != "" {
		logx.Infof("来源：订阅源 %s", cfg.Feed.URL)
		src = feeds.New(cl, cfg.Feed.URL)
	} else {
		logx.Infof("来源：讨论 %s", cfg.Nyx.DiscussionID)
		src = nyx.New(cl, nyx.Endpoint{
			APIURL:        cfg.Nyx.APIURL,
			DiscussionID:  cfg.Nyx.DiscussionID,
			QueryBase:     cfg.Nyx.QueryBase,
			QueryPrevious: cfg.Nyx.QueryPrevious,
		})
	}

	// 4) 聚合
	c := classify.New(classify.Options{Markers: cfg.Markers, UnitRoot: cfg.UnitRoot, MaxPlaytime: cfg.PlaytimeMax})
	rec := metrics.New(f.year)
	runner := aggregate.New(src, c, lists,
		aggregate.WithPostURL(func(id model.PostID) string { return cfg.PostURL(string(id)) }),
		aggregate.WithObserver(rec),
	)
	res, err := runner.Run(ctx, f.year)
	if err != nil {
		return err
	}
	now := time.Now()

	// 5) 数据文件
	if err := export.WriteAll(res, export.Paths{
		Source:  cfg.DataSourcePath(f.year),
		Summary: cfg.DataSummaryPath(f.year),
		Errors:  cfg.DataErrorsPath(f.year),
	}); err != nil {
		return err
	}
	logx.Infof("已写出数据文件：%s", cfg.DataSummaryPath(f.year))

	// 6) 运行历史（可选）
	if cfg.Database.DSN != "" {
		if err := saveRun(ctx, cfg, f.year, now, res); err != nil {
			logx.Warnf("保存运行历史失败：%v", err)
		}
	}

	// 7) 指标（可选）
	if cfg.Metrics.Textfile != "" {
		rec.Summarized(res.Summaries, now.Unix())
		if err := rec.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logx.Warnf("写出指标失败：%v", err)
		}
	}

	// 8) HTML 报告
	if f.noReport {
		logx.Infof("已跳过报告渲染（--no-report）")
		return nil
	}
	r, err := report.New(cfg.Templates.Dir, cfg.Templates.Main)
	if err != nil {
		return err
	}
	out := cfg.OutputYearPath(f.year)
	if err := r.WriteFile(out, report.NewData(res.Summaries, cfg.Years, f.year, now)); err != nil {
		return err
	}
	logx.Infof("已生成报告 %s", out)
	return nil
}

func saveRun(ctx context.Context, cfg *config.Config, year int, at time.Time, res *aggregate.Result) error {
	st, err := store.OpenSQLite(cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer st.Close()
	records := res.Records.All()

	// 与上一次运行比较，输出新增帖子数
	prev, err := st.LatestRun(ctx, year)
	switch {
	case errors.Is(err, store.ErrNoRun):
		logx.Infof("%d 年首次运行", year)
	case err != nil:
		return err
	default:
		prevRecs, err := st.ListRecords(ctx, prev.ID)
		if err != nil {
			return err
		}
		logx.Infof("相比上次运行 %s：新增帖子=%d 正常 %d→%d",
			prev.ID, countNew(prevRecs, records), prev.OK, countOK(records))
	}

	run, err := st.SaveRun(ctx, year, at, records)
	if err != nil {
		return err
	}
	logx.Infof("已保存运行 %s（记录=%d 正常=%d 错误=%d）", run.ID, run.Records, run.OK, run.Errors)
	return st.PruneRuns(ctx, year, cfg.Database.Keep)
}

// countNew 统计 cur 中不在 prev 里的帖子数。
func countNew(prev []store.StoredRecord, cur []model.Record) int {
	seen := make(map[model.PostID]struct{}, len(prev))
	for _, r := range prev {
		seen[r.PostID] = struct{}{}
	}
	n := 0
	for _, r := range cur {
		if _, ok := seen[r.ID]; !ok {
			n++
		}
	}
	return n
}

func countOK(records []model.Record) int {
	n := 0
	for _, r := range records {
		if r.Status.OK() {
			n++
		}
	}
	return n
}
