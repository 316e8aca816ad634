// 包 export 负责写出一次运行的数据文件（YAML）：
// - source：按作者分组的全部记录
// - summary：按总时长倒序的作者汇总
// - errors：状态非 OK 的记录
package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"dohrano/internal/aggregate"
	"dohrano/internal/model"
)

// Paths 为三个输出文件路径；空路径表示不写出。
type Paths struct {
	Source  string
	Summary string
	Errors  string
}

// WriteAll 写出三个数据文件，目录不存在时自动创建。
func WriteAll(res *aggregate.Result, p Paths) error {
	errs := res.Errors
	if errs == nil {
		errs = []model.Record{}
	}
	items := []struct {
		path string
		v    any
	}{
		{p.Source, res.Records},
		{p.Summary, res.Summaries},
		{p.Errors, errs},
	}
	for _, it := range items {
		if it.path == "" {
			continue
		}
		if err := WriteYAML(it.path, it.v); err != nil {
			return err
		}
	}
	return nil
}

// WriteYAML 将 v 编码为 YAML（两空格缩进、保留非 ASCII 字符）并原子替换目标文件。
func WriteYAML(path string, v any) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml to %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode yaml to %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
