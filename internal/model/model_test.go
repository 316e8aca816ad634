package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestHours_Format(t *testing.T) {
	assert.Equal(t, "6", Hours(6.0).String())
	assert.Equal(t, "6.5", Hours(6.5).String())

	b, err := yaml.Marshal(map[string]Hours{"a": 6, "b": 6.5})
	require.NoError(t, err)
	assert.Equal(t, "a: 6\nb: 6.5\n", string(b))

	b, err = yaml.Marshal(map[string]Hours{"big": 1e20})
	require.NoError(t, err)
	assert.Equal(t, "big: 1e+20\n", string(b))
	assert.Equal(t, "100000000000000000000", Hours(1e20).String())

	b, err = yaml.Marshal(Hours(1 << 53))
	require.NoError(t, err)
	assert.Equal(t, "9007199254740992\n", string(b))

	j, err := json.Marshal([]Hours{6, 0.25})
	require.NoError(t, err)
	assert.Equal(t, "[6,0.25]", string(j))
}

func TestPostID_JSON(t *testing.T) {
	var p Post
	require.NoError(t, json.Unmarshal([]byte(`{"id": 51234, "username": "x", "inserted_at": "2024-01-02T03:04:05", "content": "c"}`), &p))
	assert.Equal(t, PostID("51234"), p.ID)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), p.InsertedAt.Time)

	require.NoError(t, json.Unmarshal([]byte(`{"id": "abc"}`), &p))
	assert.Equal(t, PostID("abc"), p.ID)
}

func TestPostID_YAMLRoundTrip(t *testing.T) {
	b, err := yaml.Marshal([]PostID{"12", "x1"})
	require.NoError(t, err)
	assert.Equal(t, "- 12\n- x1\n", string(b))
}

func TestParseTimestamp(t *testing.T) {
	ts, err := ParseTimestamp("2024-06-30T23:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 30, 21, 30, 0, 0, time.UTC), ts.Time)

	ts, err = ParseTimestamp("2024-06-30T23:30:00.123")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, ts.Location())

	_, err = ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestTimestamp_DayMonth(t *testing.T) {
	ts := Timestamp{time.Date(2024, 3, 5, 1, 0, 0, 0, time.UTC)}
	assert.Equal(t, "5.3.", ts.DayMonth())
	ts = Timestamp{time.Date(2024, 11, 25, 1, 0, 0, 0, time.UTC)}
	assert.Equal(t, "25.11.", ts.DayMonth())
}

func TestFieldEntry_YAML(t *testing.T) {
	fields := []FieldEntry{
		GameField("Hra", "Hra"),
		PlaytimeField("5,5 hod", 5.5),
		ErrorField("٣"),
	}
	b, err := yaml.Marshal(fields)
	require.NoError(t, err)
	assert.Equal(t, `- type: game
  original: Hra
  value: Hra
- type: playtime
  original: 5,5 hod
  value: 5.5
- type: error
  original: ٣
  value: null
`, string(b))
}

func TestRecord_Accessors(t *testing.T) {
	r := Record{SourceData: []FieldEntry{PlatformField("PC", "PC"), GameField("G", "G"), PlaytimeField("2h", 2)}}
	g, ok := r.Game()
	require.True(t, ok)
	assert.Equal(t, "G", g)
	h, ok := r.Playtime()
	require.True(t, ok)
	assert.Equal(t, Hours(2), h)

	_, ok = Record{}.Playtime()
	assert.False(t, ok)
}

func TestRecordsByAuthor_Order(t *testing.T) {
	rs := NewRecordsByAuthor()
	rs.Add(Record{ID: "1", Author: "zed"})
	rs.Add(Record{ID: "2", Author: "amy"})
	rs.Add(Record{ID: "3", Author: "zed"})

	assert.Equal(t, []string{"zed", "amy"}, rs.Authors())
	assert.Len(t, rs.Records("zed"), 2)
	assert.Equal(t, 3, rs.Len())
	ids := []PostID{}
	for _, r := range rs.All() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []PostID{"1", "3", "2"}, ids)

	b, err := yaml.Marshal(rs)
	require.NoError(t, err)
	var node yaml.Node
	require.NoError(t, yaml.Unmarshal(b, &node))
	m := node.Content[0]
	assert.Equal(t, "zed", m.Content[0].Value)
	assert.Equal(t, "amy", m.Content[2].Value)
}
