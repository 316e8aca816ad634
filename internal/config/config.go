// 包 config 负责加载与校验应用配置（config.yaml），
// 加载顺序：默认值 → YAML 文件 → 环境变量（DOHRANO_ 前缀，"__" 表示层级）。
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix 为环境变量前缀，例如 DOHRANO_PLAYTIME_MAX、DOHRANO_NYX__DISCUSSION_ID。
const EnvPrefix = "DOHRANO_"

type Config struct {
	Nyx         Nyx       `koanf:"nyx"`
	Feed        Feed      `koanf:"feed"`
	Source      Source    `koanf:"source"`
	Data        Data      `koanf:"data"`
	Output      Output    `koanf:"output"`
	Templates   Templates `koanf:"templates"`
	Years       []int     `koanf:"years"`
	PlaytimeMax float64   `koanf:"playtime_max"`
	Markers     []string  `koanf:"markers"`
	UnitRoot    string    `koanf:"unit_root"`
	Fetch       Fetch     `koanf:"fetch"`
	Database    Database  `koanf:"database"`
	Metrics     Metrics   `koanf:"metrics"`
	LogLevel    string    `koanf:"log_level"`
	LogFormat   string    `koanf:"log_format"` // text|json|pretty
	LogLocale   string    `koanf:"log_locale"` // zh-CN|en
	LogColor    string    `koanf:"log_color"`  // auto|always|never
}

// Nyx 描述讨论 API：
// - 列表地址：{api_url}/{discussion_id}?{query_base}{query_previous}
// - query_previous 中的 {from_id} 替换为上一页最旧帖子的 ID
// - post_url 中的 {discussion_id}/{post_id} 用于生成帖子链接
type Nyx struct {
	APIURL        string `koanf:"api_url"`
	DiscussionID  string `koanf:"discussion_id"`
	QueryBase     string `koanf:"query_base"`
	QueryPrevious string `koanf:"query_previous"`
	PostURL       string `koanf:"post_url"`
}

// Feed 为可选的 RSS/Atom 来源；设置 url 时替代讨论 API。
type Feed struct {
	URL string `koanf:"url"`
}

type Source struct {
	Dir       string `koanf:"dir"`
	ExtraList string `koanf:"extralist"`
	FixList   string `koanf:"fixlist"`
	SkipList  string `koanf:"skiplist"`
}

// Data 中的文件名支持 {year} 占位符。
type Data struct {
	Dir     string `koanf:"dir"`
	Source  string `koanf:"source"`
	Summary string `koanf:"summary"`
	Errors  string `koanf:"errors"`
}

type Output struct {
	Dir  string `koanf:"dir"`
	Year string `koanf:"year"`
}

// Templates 为空时使用内置模板。
type Templates struct {
	Dir  string `koanf:"dir"`
	Main string `koanf:"main"`
}

type Fetch struct {
	Retry          int `koanf:"retry"`
	TimeoutSeconds int `koanf:"timeout_seconds"`
}

// Database 为空 DSN 时不记录运行历史；keep>0 时每年只保留最近 keep 次运行。
type Database struct {
	DSN  string `koanf:"dsn"`
	Keep int    `koanf:"keep"`
}

// Metrics 为空路径时不写出指标文件。
type Metrics struct {
	Textfile string `koanf:"textfile"`
}

// Default 返回默认配置。
func Default() Config {
	return Config{
		Nyx: Nyx{
			QueryBase:     "order=newest",
			QueryPrevious: "&from_id={from_id}",
		},
		Source:      Source{Dir: "source", ExtraList: "extralist.yaml", FixList: "fixlist.yaml", SkipList: "skiplist.yaml"},
		Data:        Data{Dir: "data", Source: "source-{year}.yaml", Summary: "summary-{year}.yaml", Errors: "errors-{year}.yaml"},
		Output:      Output{Dir: "output", Year: "{year}.html"},
		PlaytimeMax: 1000,
		Fetch:       Fetch{Retry: 2, TimeoutSeconds: 25},
		LogLevel:    "info",
	}
}

// Load 读取 YAML 文件与环境变量并校验；配置文件缺失视为错误。
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}
	c := Default()
	if err := k.UnmarshalWithConf("", &c, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshal config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// Validate 负责合法性检查与默认值设置，避免在业务层分散判空逻辑。
func (c *Config) Validate() error {
	if c.PlaytimeMax <= 0 {
		return errors.New("playtime_max must be > 0")
	}
	if c.Feed.URL == "" {
		if c.Nyx.APIURL == "" {
			return errors.New("nyx.api_url or feed.url is required")
		}
		if c.Nyx.DiscussionID == "" {
			return errors.New("nyx.discussion_id is required")
		}
	}
	if c.Fetch.Retry < 0 {
		c.Fetch.Retry = 2
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		c.Fetch.TimeoutSeconds = 25
	}
	if c.LogFormat == "" {
		c.LogFormat = "pretty"
	}
	if c.LogLocale == "" {
		c.LogLocale = "zh-CN"
	}
	if c.LogColor == "" {
		c.LogColor = "auto"
	}
	return nil
}

// ForYear 将路径中的 {year} 替换为年份。
func ForYear(path string, year int) string {
	return strings.ReplaceAll(path, "{year}", strconv.Itoa(year))
}

// ExtraListPath 等返回清单文件完整路径。
func (c *Config) ExtraListPath() string { return joinOpt(c.Source.Dir, c.Source.ExtraList) }
func (c *Config) FixListPath() string   { return joinOpt(c.Source.Dir, c.Source.FixList) }
func (c *Config) SkipListPath() string  { return joinOpt(c.Source.Dir, c.Source.SkipList) }

// DataSourcePath 等返回某年的输出文件路径。
func (c *Config) DataSourcePath(year int) string  { return ForYear(joinOpt(c.Data.Dir, c.Data.Source), year) }
func (c *Config) DataSummaryPath(year int) string { return ForYear(joinOpt(c.Data.Dir, c.Data.Summary), year) }
func (c *Config) DataErrorsPath(year int) string  { return ForYear(joinOpt(c.Data.Dir, c.Data.Errors), year) }
func (c *Config) OutputYearPath(year int) string  { return ForYear(joinOpt(c.Output.Dir, c.Output.Year), year) }

// PostURL 生成帖子链接。
func (c *Config) PostURL(id string) string {
	return strings.NewReplacer("{discussion_id}", c.Nyx.DiscussionID, "{post_id}", id).Replace(c.Nyx.PostURL)
}

// joinOpt 在文件名为空时返回空路径（表示不使用该文件）。
func joinOpt(dir, name string) string {
	if name == "" {
		return ""
	}
	return filepath.Join(dir, name)
}
