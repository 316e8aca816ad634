// 包 report 将作者汇总渲染为 HTML 报告（html/template）。
// 未配置模板目录时使用内置模板。
package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"dohrano/internal/model"
	"dohrano/internal/summary"
)

//go:embed templates/*.tmpl
var builtin embed.FS

const builtinName = "year.html.tmpl"

// Data 为模板输入。
type Data struct {
	Summary     []model.AuthorEntry
	MaxPlaytime model.Hours
	GeneratedAt string
	Years       []int
	Year        int
}

// NewData 组装模板输入；生成时间格式为 "d.m.YYYY @ HH:MM:SS UTC"。
func NewData(s *model.Summaries, years []int, year int, now time.Time) Data {
	u := now.UTC()
	return Data{
		Summary:     s.Entries(),
		MaxPlaytime: summary.MaxPlaytime(s),
		GeneratedAt: fmt.Sprintf("%d.%d.%d @ %s UTC", u.Day(), int(u.Month()), u.Year(), u.Format("15:04:05")),
		Years:       years,
		Year:        year,
	}
}

var funcs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
	// percent 返回 v 占 max 的百分比（保留一位小数）。
	"percent": func(v, max model.Hours) string {
		if max <= 0 {
			return "0"
		}
		return strconv.FormatFloat(float64(v)/float64(max)*100, 'f', 1, 64)
	},
}

// Renderer 持有已解析的模板。
type Renderer struct {
	tmpl *template.Template
}

// New 从 dir/name 加载模板；dir 或 name 为空时使用内置模板。
func New(dir, name string) (*Renderer, error) {
	if dir == "" || name == "" {
		t, err := template.New(builtinName).Funcs(funcs).ParseFS(builtin, "templates/"+builtinName)
		if err != nil {
			return nil, fmt.Errorf("parse builtin template: %w", err)
		}
		return &Renderer{tmpl: t}, nil
	}
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("template %s: %w", path, err)
	}
	t, err := template.New(name).Funcs(funcs).ParseGlob(filepath.Join(dir, "*"))
	if err != nil {
		return nil, fmt.Errorf("parse templates %s: %w", dir, err)
	}
	return &Renderer{tmpl: t}, nil
}

// Render 将报告写入 w。
func (r *Renderer) Render(w io.Writer, d Data) error {
	if err := r.tmpl.Execute(w, d); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// WriteFile 渲染并写入文件，目录不存在时自动创建。
func (r *Renderer) WriteFile(path string, d Data) error {
	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
