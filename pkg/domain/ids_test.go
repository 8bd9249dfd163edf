package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "olhopix/pkg/domain-errors"
)

// TestParseReportID_Invariants validates the parsing invariant: IDs must be
// valid, non-empty, non-nil UUIDs.
func TestParseReportID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseReportID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseReportID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseReportID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseReportID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, ReportID(valid), id)
	})
}

func TestParseUserID_RoundTrip(t *testing.T) {
	id := NewUserID()
	parsed, err := ParseUserID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
	assert.False(t, parsed.IsNil())
}

// TestTypeDistinction verifies the compiler enforces type safety between ID
// kinds. If this compiles, the invariant holds.
func TestTypeDistinction(t *testing.T) {
	userID := UserID(uuid.New())
	reportID := ReportID(uuid.New())

	// These would fail to compile if types were interchangeable:
	// var _ UserID = reportID   // compile error
	// var _ ReportID = userID   // compile error

	assert.NotEqual(t, uuid.UUID(userID), uuid.UUID(reportID))
}
