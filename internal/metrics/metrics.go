// 包 metrics 统计一次运行的记录状态与汇总指标，可导出为 Prometheus 文本文件
// （供 node_exporter textfile collector 读取）。
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"dohrano/internal/model"
)

const namespace = "dohrano"

// Recorder 实现 aggregate.Observer。
type Recorder struct {
	registry *prometheus.Registry
	year     string

	records  *prometheus.CounterVec
	authors  *prometheus.GaugeVec
	playtime *prometheus.GaugeVec
	lastRun  *prometheus.GaugeVec
}

// New 创建使用独立 registry 的 Recorder。
func New(year int) *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		registry: reg,
		year:     fmt.Sprint(year),
		records: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Records produced, by classification status.",
		}, []string{"year", "status"}),
		authors: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "authors",
			Help:      "Authors with at least one valid record.",
		}, []string{"year"}),
		playtime: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "playtime_hours",
			Help:      "Summed playtime of all valid records.",
		}, []string{"year"}),
		lastRun: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last finished run.",
		}, []string{"year"}),
	}
}

// Observe 按状态计数。
func (r *Recorder) Observe(rec model.Record) {
	r.records.WithLabelValues(r.year, string(rec.Status)).Inc()
}

// Summarized 记录汇总结果与完成时间。
func (r *Recorder) Summarized(s *model.Summaries, unix int64) {
	var total model.Hours
	for _, e := range s.Entries() {
		total += e.Playtime
	}
	r.authors.WithLabelValues(r.year).Set(float64(s.Len()))
	r.playtime.WithLabelValues(r.year).Set(float64(total))
	r.lastRun.WithLabelValues(r.year).Set(float64(unix))
}

// WriteTextfile 以文本格式原子写入 path。
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
