package logx

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T, o Options, fn func()) string {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	var buf bytes.Buffer
	o.Output = &buf
	Init(o)
	fn()
	return buf.String()
}

func TestPretty_ZHLabel(t *testing.T) {
	out := capture(t, Options{Level: "debug", Format: "pretty", Locale: "zh-CN", Color: "never"}, func() {
		Infof("hello %s", "world")
	})
	assert.Contains(t, out, "[信息] hello world")
}

func TestPretty_LevelFiltering(t *testing.T) {
	out := capture(t, Options{Level: "warn", Format: "pretty", Locale: "en", Color: "never"}, func() {
		Infof("should not print")
		Warnf("warn on")
	})
	assert.NotContains(t, out, "should not print")
	assert.Contains(t, out, "[WARN] warn on")
}

func TestPretty_AttrsAndGroups(t *testing.T) {
	out := capture(t, Options{Format: "pretty", Locale: "en", Color: "never"}, func() {
		With("run", "r1").WithGroup("post").Info("classified", "id", 42, "line", "Hra | PC")
	})
	assert.Contains(t, out, "[INFO] classified")
	assert.Contains(t, out, " run=r1")
	assert.Contains(t, out, " post.id=42")
	assert.Contains(t, out, ` post.line="Hra | PC"`)
}

func TestSilent(t *testing.T) {
	out := capture(t, Options{Level: "off", Format: "pretty", Color: "never"}, func() {
		Errorf("nothing")
	})
	assert.Empty(t, strings.TrimSpace(out))
}

func TestJSONFormat(t *testing.T) {
	out := capture(t, Options{Format: "json"}, func() {
		Info("hi", "k", "v")
	})
	assert.Contains(t, out, `"msg":"hi"`)
	assert.Contains(t, out, `"k":"v"`)
}
