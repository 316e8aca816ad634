package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dohrano/internal/fetch"
	"dohrano/internal/model"
)

const atom = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>dohrano</title>
  <entry>
    <id>post-1</id>
    <title>older</title>
    <author><name>eva</name></author>
    <updated>2024-02-01T10:00:00Z</updated>
    <content type="html">Celeste | PC | 12h #dohrano</content>
  </entry>
  <entry>
    <id>post-2</id>
    <title>newer</title>
    <author><name>petr</name></author>
    <updated>2024-03-01T10:00:00Z</updated>
    <content type="html">&lt;b&gt;Hades&lt;/b&gt; / Switch / 30 hod #dohráno</content>
  </entry>
  <entry>
    <title>no date</title>
    <content type="html">x</content>
  </entry>
</feed>`

func TestParse_NewestFirst(t *testing.T) {
	posts, err := Parse(strings.NewReader(atom))
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, model.PostID("post-2"), posts[0].ID)
	assert.Equal(t, "petr", posts[0].Username)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), posts[0].InsertedAt.Time)
	assert.Contains(t, posts[0].Content, "<b>Hades</b>")
	assert.Equal(t, model.PostID("post-1"), posts[1].ID)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse(strings.NewReader("not a feed"))
	assert.Error(t, err)
}

func TestSource_SinglePage(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(atom))
	}))
	defer srv.Close()

	s := New(fetch.New(fetch.Options{Timeout: 2 * time.Second}), srv.URL)
	posts, err := s.Page(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, posts, 2)

	next, err := s.Page(context.Background(), posts[len(posts)-1].ID)
	require.NoError(t, err)
	assert.Empty(t, next)
	assert.Equal(t, 1, calls)
}
