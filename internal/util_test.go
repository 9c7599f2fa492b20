package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniqueStringSlice(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, UniqueStringSlice([]string{"a", "b", "a"}))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "hello", TruncateString("hello", 5))
	assert.Equal(t, "hel…", TruncateString("hello", 4))
	assert.Equal(t, "नम…", TruncateString("नमस्ते", 3))
	assert.Equal(t, "hello", TruncateString("hello", 0))
}
