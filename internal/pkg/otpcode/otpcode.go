// Package otpcode generates numeric one-time codes.
package otpcode

import (
	"math/rand/v2"
	"strings"
)

// DefaultLength is the number of digits produced when no length is given.
const DefaultLength = 6

// New returns a string of exactly length decimal digits, each drawn uniformly.
// The global math/rand/v2 source is seeded from OS entropy, so successive
// codes cannot be predicted from the request time.
func New(length int) string {
	if length <= 0 {
		length = DefaultLength
	}
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		b.WriteByte(byte('0' + rand.IntN(10)))
	}
	return b.String()
}
