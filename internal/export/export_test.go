package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"dohrano/internal/aggregate"
	"dohrano/internal/model"
	"dohrano/internal/summary"
)

func sampleResult() *aggregate.Result {
	line := "Kingdom Come | PC | 80 hodin #dohráno"
	rs := model.NewRecordsByAuthor()
	rs.Add(model.Record{
		ID: "100", Status: model.StatusOK, URL: "https://nyx.test/100", Author: "šimon",
		InsertedAt:  model.Timestamp{Time: time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)},
		Content:     line,
		SourceLine:  &line,
		SourceParts: []string{"Kingdom Come", "PC", "80 hodin"},
		SourceData: []model.FieldEntry{
			model.GameField("Kingdom Come", "Kingdom Come"),
			model.PlatformField("PC", "PC"),
			model.PlaytimeField("80 hodin", 80),
		},
	})
	bad := model.Record{ID: "101", Status: model.StatusEmptySource, Author: "ota", Content: "ahoj"}
	rs.Add(bad)
	return &aggregate.Result{Year: 2024, Records: rs, Summaries: summary.Summarize(rs), Errors: []model.Record{bad}}
}

func TestWriteAll(t *testing.T) {
	dir := t.TempDir()
	p := Paths{
		Source:  filepath.Join(dir, "data", "source-2024.yaml"),
		Summary: filepath.Join(dir, "data", "summary-2024.yaml"),
		Errors:  filepath.Join(dir, "data", "errors-2024.yaml"),
	}
	require.NoError(t, WriteAll(sampleResult(), p))

	b, err := os.ReadFile(p.Summary)
	require.NoError(t, err)
	var sum map[string]struct {
		Count    int     `yaml:"count"`
		Playtime float64 `yaml:"playtime"`
		Games    []struct {
			Name string `yaml:"name"`
			Date string `yaml:"date"`
		} `yaml:"games"`
	}
	require.NoError(t, yaml.Unmarshal(b, &sum))
	require.Contains(t, sum, "šimon")
	assert.Equal(t, 1, sum["šimon"].Count)
	assert.Equal(t, 80.0, sum["šimon"].Playtime)
	assert.Equal(t, "1.4.", sum["šimon"].Games[0].Date)
	assert.Contains(t, string(b), "šimon")

	b, err = os.ReadFile(p.Source)
	require.NoError(t, err)
	assert.Contains(t, string(b), "source_line: null")
	assert.Contains(t, string(b), "type: playtime")

	b, err = os.ReadFile(p.Errors)
	require.NoError(t, err)
	var errs []map[string]any
	require.NoError(t, yaml.Unmarshal(b, &errs))
	require.Len(t, errs, 1)
	assert.Equal(t, "EMPTY_SOURCE", errs[0]["status"])

	_, err = os.Stat(p.Errors + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestWriteAll_EmptyErrorsIsList(t *testing.T) {
	dir := t.TempDir()
	res := &aggregate.Result{Records: model.NewRecordsByAuthor(), Summaries: model.NewSummaries()}
	p := Paths{Errors: filepath.Join(dir, "errors.yaml")}
	require.NoError(t, WriteAll(res, p))
	b, err := os.ReadFile(p.Errors)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(b))
}
