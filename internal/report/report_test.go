package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dohrano/internal/model"
)

func sampleSummaries() *model.Summaries {
	s := model.NewSummaries()
	s.Set("eva", model.AuthorSummary{Count: 2, Playtime: 7.5, Games: []model.GameSummary{
		{Name: "Celeste", Playtime: 3, Date: "2.3.", URL: "https://nyx.test/1"},
		{Name: "Ori & <Will>", Playtime: 4.5, Date: "10.3.", URL: "https://nyx.test/2"},
	}})
	s.Set("petr", model.AuthorSummary{Count: 1, Playtime: 15, Games: []model.GameSummary{
		{Name: "Hades", Playtime: 15, Date: "1.1.", URL: "https://nyx.test/3"},
	}})
	s.SortByPlaytime()
	return s
}

func TestNewData(t *testing.T) {
	d := NewData(sampleSummaries(), []int{2023, 2024}, 2024, time.Date(2024, 12, 31, 8, 5, 9, 0, time.UTC))
	assert.Equal(t, model.Hours(15), d.MaxPlaytime)
	assert.Equal(t, "31.12.2024 @ 08:05:09 UTC", d.GeneratedAt)
	require.Len(t, d.Summary, 2)
	assert.Equal(t, "petr", d.Summary[0].Author)
}

func TestRender_Builtin(t *testing.T) {
	r, err := New("", "")
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, NewData(sampleSummaries(), []int{2023, 2024}, 2024, time.Now())))
	out := buf.String()

	assert.Contains(t, out, "#dohrano 2024")
	assert.Contains(t, out, `class="current">2024</a>`)
	assert.Contains(t, out, "<td>7.5</td>")
	assert.Contains(t, out, "(4.5 h, 10.3.)")
	assert.Contains(t, out, "Ori &amp; &lt;Will&gt;")
	assert.Contains(t, out, "width: 50.0%")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("petr")), bytes.Index(buf.Bytes(), []byte("eva")))
}

func TestRender_CustomTemplate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.html"),
		[]byte(`{{ define "row" }}{{ .Author }}={{ .Playtime }};{{ end }}{{ range .Summary }}{{ template "row" . }}{{ end }}`), 0o644))

	r, err := New(dir, "main.html")
	require.NoError(t, err)
	out := filepath.Join(t.TempDir(), "out", "2024.html")
	require.NoError(t, r.WriteFile(out, NewData(sampleSummaries(), nil, 2024, time.Now())))
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "petr=15;eva=7.5;", string(b))
}

func TestNew_MissingTemplate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.html"), []byte("x"), 0o644))
	_, err := New(dir, "main.html")
	assert.Error(t, err)
}
