package plaintext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"br tags become lines", "a<br>b<BR/>c<br />d", "a\nb\nc\nd"},
		{"br tags with attributes", `Hades | PC | 20h<br class="x">super<br data-n='1'/>konec`, "Hades | PC | 20h\nsuper\nkonec"},
		{"other b tags untouched", "<b>Zelda</b><bdi>x</bdi>", "Zeldax"},
		{"markup stripped", `<b>Zelda</b> | <a href="/x">Switch</a> | 40h`, "Zelda | Switch | 40h"},
		{"blank lines removed", "one<br><br>   <br>two", "one\ntwo"},
		{"entities decoded", "Ori &amp; the Will", "Ori & the Will"},
		{"empty", "", ""},
		{"malformed markup", "<div><b>Hades | PC | 20h", "Hades | PC | 20h"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestLines(t *testing.T) {
	assert.Nil(t, Lines(""))
	assert.Equal(t, []string{"a", "b"}, Lines("a\nb"))
}
