//nolint:all // test package
package mdc

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSum(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: "52525252525252522525252525252525"},
		{name: "three blocks", in: "Now is the time for all ", want: "42E50CD224BACEBA760BDD2BD409281A"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Sum([]byte(tt.in))
			assert.Equal(t, tt.want, strings.ToUpper(hex.EncodeToString(got[:])))
		})
	}
}

func TestStreamingMatchesSum(t *testing.T) {
	t.Parallel()

	msg := []byte("The quick brown fox jumps over the lazy dog")
	want := Sum(msg)

	h := New()
	for i := 0; i < len(msg); i += 5 {
		end := min(i+5, len(msg))
		h.Write(msg[i:end])
	}
	assert.Equal(t, want[:], h.Sum(nil))
	assert.Equal(t, want[:], h.Sum(nil), "sum does not change state")
	assert.Equal(t, Size, h.Size())
	assert.Equal(t, BlockSize, h.BlockSize())

	h.Reset()
	empty := Sum(nil)
	assert.Equal(t, empty[:], h.Sum(nil))
}

func TestPartialBlockZeroPadding(t *testing.T) {
	t.Parallel()

	a := Sum([]byte("abc"))
	b := Sum([]byte("abc\x00\x00\x00\x00\x00"))
	assert.Equal(t, a, b)
}
