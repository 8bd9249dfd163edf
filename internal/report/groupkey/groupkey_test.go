package groupkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerive(t *testing.T) {
	t.Run("normalizes name case and surrounding whitespace", func(t *testing.T) {
		assert.Equal(t, "joão silva_11122233344", Derive("João Silva", "11122233344"))
		assert.Equal(t, "joão silva_11122233344", Derive("  JOÃO SILVA  ", " 11122233344 "))
	})

	t.Run("equal keys iff normalized pairs are equal", func(t *testing.T) {
		assert.Equal(t,
			Derive("João Silva", "11122233344"),
			Derive(" joão silva ", "11122233344"))

		assert.NotEqual(t,
			Derive("João Silva", "11122233344"),
			Derive("João Silva", "99988877766"))

		assert.NotEqual(t,
			Derive("João Silva", "11122233344"),
			Derive("Maria Souza", "11122233344"))
	})

	t.Run("interior whitespace is preserved", func(t *testing.T) {
		assert.NotEqual(t, Derive("João  Silva", "1"), Derive("João Silva", "1"))
	})

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, Derive("a", "b"), Derive("a", "b"))
	})

	t.Run("total over empty inputs", func(t *testing.T) {
		assert.Equal(t, "_", Derive("", ""))
		assert.Equal(t, "_123", Derive("  ", "123"))
	})
}
