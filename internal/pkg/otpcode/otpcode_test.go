package otpcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_LengthAndDigits(t *testing.T) {
	for _, n := range []int{1, 4, 6, 8} {
		code := New(n)
		assert.Len(t, code, n)
		for _, c := range code {
			assert.True(t, c >= '0' && c <= '9', "non-digit %q in %q", c, code)
		}
	}
}

func TestNew_DefaultLength(t *testing.T) {
	assert.Len(t, New(0), DefaultLength)
	assert.Len(t, New(-3), DefaultLength)
}

func TestNew_CoversAllDigits(t *testing.T) {
	seen := map[rune]bool{}
	for i := 0; i < 200; i++ {
		for _, c := range New(6) {
			seen[c] = true
		}
	}
	assert.Len(t, seen, 10)
}
