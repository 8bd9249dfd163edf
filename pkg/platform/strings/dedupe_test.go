package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	t.Run("removes duplicates preserving first occurrence", func(t *testing.T) {
		got := DedupeAndTrim([]string{"joao@mail.com", "11999990000", "joao@mail.com"})
		assert.Equal(t, []string{"joao@mail.com", "11999990000"}, got)
	})

	t.Run("trims whitespace before comparing", func(t *testing.T) {
		got := DedupeAndTrim([]string{"  foo ", "bar", "foo", "", "  "})
		assert.Equal(t, []string{"foo", "bar"}, got)
	})

	t.Run("empty input stays empty", func(t *testing.T) {
		assert.Empty(t, DedupeAndTrim(nil))
		assert.Empty(t, DedupeAndTrim([]string{}))
	})
}

func TestNormalizeLower(t *testing.T) {
	assert.Equal(t, "joão silva", NormalizeLower("  João Silva "))
	assert.Equal(t, "", NormalizeLower("   "))
}
