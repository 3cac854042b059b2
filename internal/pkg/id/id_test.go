package id

import (
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IsULID(t *testing.T) {
	_, err := ulid.Parse(New())
	require.NoError(t, err)
}

func TestMessageID(t *testing.T) {
	mid := MessageID("smtp.example.com")
	assert.True(t, strings.HasPrefix(mid, "<"))
	assert.True(t, strings.HasSuffix(mid, "@smtp.example.com>"))
	assert.NotEqual(t, mid, MessageID("smtp.example.com"))
	assert.True(t, strings.HasSuffix(MessageID(""), "@localhost>"))
}
