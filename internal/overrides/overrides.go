// 包 overrides 负责人工覆盖清单（extralist/fixlist/skiplist）的加载与合并：
// - 清单文件缺失视为空清单
// - 自动分类失败时：skiplist 优先于 fixlist
// - extralist 直接生成合成记录
package overrides

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"dohrano/internal/model"
)

// ErrNegativePlaytime 表示清单中的时长为负数。
var ErrNegativePlaytime = errors.New("overrides: negative playtime")

// Extra 为额外清单中的一条合成帖子。
type Extra struct {
	ID         model.PostID     `yaml:"id"`
	Username   string           `yaml:"username"`
	InsertedAt *model.Timestamp `yaml:"inserted_at"`
	Game       *string          `yaml:"game"`
	Platform   *string          `yaml:"platform"`
	Playtime   *float64         `yaml:"playtime"`
}

// Fix 为修正清单中的一条替换值。
type Fix struct {
	ID       model.PostID `yaml:"id"`
	Game     *string      `yaml:"game"`
	Platform *string      `yaml:"platform"`
	Playtime *float64     `yaml:"playtime"`
}

// Paths 为三个清单文件路径，空路径视为不存在。
type Paths struct {
	Extra string
	Fix   string
	Skip  string
}

// Lists 为一次运行内只读的覆盖清单。
type Lists struct {
	Extra []Extra
	fix   map[model.PostID]Fix
	skip  map[model.PostID]struct{}
}

// New 由内存数据构造清单（用于测试与调用方自行加载的场景）。
func New(extra []Extra, fixes []Fix, skip []model.PostID) *Lists {
	l := &Lists{
		Extra: extra,
		fix:   make(map[model.PostID]Fix, len(fixes)),
		skip:  make(map[model.PostID]struct{}, len(skip)),
	}
	for _, f := range fixes {
		l.fix[f.ID] = f
	}
	for _, id := range skip {
		l.skip[id] = struct{}{}
	}
	return l
}

// Load 读取三个清单文件；文件不存在时为空清单，格式错误时返回错误。
func Load(p Paths) (*Lists, error) {
	var (
		extra []Extra
		fixes []Fix
		skip  []model.PostID
	)
	if err := loadYAML(p.Extra, &extra); err != nil {
		return nil, err
	}
	if err := loadYAML(p.Fix, &fixes); err != nil {
		return nil, err
	}
	if err := loadYAML(p.Skip, &skip); err != nil {
		return nil, err
	}
	for _, e := range extra {
		if err := checkPlaytime(p.Extra, e.ID, e.Playtime); err != nil {
			return nil, err
		}
	}
	for _, f := range fixes {
		if err := checkPlaytime(p.Fix, f.ID, f.Playtime); err != nil {
			return nil, err
		}
	}
	return New(extra, fixes, skip), nil
}

// checkPlaytime 时长必须为非负数。
func checkPlaytime(path string, id model.PostID, h *float64) error {
	if h != nil && *h < 0 {
		return fmt.Errorf("%s: post %s: %w (%v)", path, id, ErrNegativePlaytime, *h)
	}
	return nil
}

func loadYAML(path string, out any) error {
	if path == "" {
		return nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, out); err != nil {
		return fmt.Errorf("unmarshal %s: %w", path, err)
	}
	return nil
}

// Skipped 报告帖子是否在跳过清单中。
func (l *Lists) Skipped(id model.PostID) bool {
	_, ok := l.skip[id]
	return ok
}

// FixFor 返回帖子的修正项。
func (l *Lists) FixFor(id model.PostID) (Fix, bool) {
	f, ok := l.fix[id]
	return f, ok
}

// Counts 返回三个清单的条目数，便于日志输出。
func (l *Lists) Counts() (extra, fix, skip int) {
	return len(l.Extra), len(l.fix), len(l.skip)
}
