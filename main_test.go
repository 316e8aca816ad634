package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dohrano/internal/model"
	"dohrano/internal/store"
)

func discussionServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("from_id") != "" {
			_, _ = w.Write([]byte(`{"posts": []}`))
			return
		}
		_, _ = w.Write([]byte(`{"posts": [
			{"id": 3, "username": "EVA", "inserted_at": "2024-06-01T10:00:00", "content": "Celeste | Switch | 12 hodin #dohrano"},
			{"id": 2, "username": "PETR", "inserted_at": "2024-05-01T10:00:00", "content": "jen text"},
			{"id": 1, "username": "EVA", "inserted_at": "2023-12-31T10:00:00", "content": "Hades | PC | 5 h #dohrano"}
		]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, dir, apiURL string) string {
	t.Helper()
	cfg := `nyx:
  api_url: "` + apiURL + `"
  discussion_id: "42"
  post_url: "https://nyx.test/discussion/{discussion_id}/id/{post_id}"
source:
  dir: "` + filepath.Join(dir, "source") + `"
data:
  dir: "` + filepath.Join(dir, "data") + `"
output:
  dir: "` + filepath.Join(dir, "output") + `"
years: [2023, 2024]
database:
  dsn: "` + filepath.Join(dir, "runs.db") + `"
metrics:
  textfile: "` + filepath.Join(dir, "metrics", "dohrano.prom") + `"
fetch:
  retry: 0
log_level: error
`
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func TestRootCmd_RequiresYear(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", "missing.yaml"})
	cmd.SetOut(new(nopWriter))
	cmd.SetErr(new(nopWriter))
	assert.Error(t, cmd.Execute())
}

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	srv := discussionServer(t)
	cfgPath := writeConfig(t, dir, srv.URL)

	require.NoError(t, run(context.Background(), flags{year: 2024, config: cfgPath}))

	sum, err := os.ReadFile(filepath.Join(dir, "data", "summary-2024.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(sum), "EVA:")
	assert.Contains(t, string(sum), "name: Celeste")
	assert.NotContains(t, string(sum), "Hades")

	errs, err := os.ReadFile(filepath.Join(dir, "data", "errors-2024.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(errs), "EMPTY_SOURCE")

	html, err := os.ReadFile(filepath.Join(dir, "output", "2024.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "https://nyx.test/discussion/42/id/3")

	prom, err := os.ReadFile(filepath.Join(dir, "metrics", "dohrano.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(prom), `dohrano_records_total{status="OK",year="2024"} 1`)

	_, err = os.Stat(filepath.Join(dir, "runs.db"))
	assert.NoError(t, err)
}

func TestRun_SecondRunComparesHistory(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, discussionServer(t).URL)

	require.NoError(t, run(context.Background(), flags{year: 2024, config: cfgPath, noReport: true}))
	require.NoError(t, run(context.Background(), flags{year: 2024, config: cfgPath, noReport: true}))

	st, err := store.OpenSQLite(filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	defer st.Close()
	last, err := st.LatestRun(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, 2, last.Records)
	assert.Equal(t, 1, last.OK)
}

func TestCountNew(t *testing.T) {
	prev := []store.StoredRecord{{PostID: "1"}, {PostID: "2"}}
	cur := []model.Record{{ID: "2"}, {ID: "3", Status: model.StatusOK}, {ID: "4"}}
	assert.Equal(t, 2, countNew(prev, cur))
	assert.Equal(t, 3, countNew(nil, cur))
	assert.Equal(t, 1, countOK(cur))
}

func TestRun_NoReport(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, discussionServer(t).URL)

	require.NoError(t, run(context.Background(), flags{year: 2024, config: cfgPath, noReport: true}))
	_, err := os.Stat(filepath.Join(dir, "output", "2024.html"))
	assert.True(t, os.IsNotExist(err))
}

type nopWriter struct{}

func (*nopWriter) Write(p []byte) (int, error) { return len(p), nil }
