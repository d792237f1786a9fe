package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "hydration/pkg/domain-errors"
)

func TestParseIDsRejectHostileInput(t *testing.T) {
	valid := uuid.New()
	rejected := map[string]string{
		"empty":             "",
		"whitespace":        "   ",
		"not a uuid":        "not-a-uuid",
		"nil uuid":          uuid.Nil.String(),
		"braced form":       "{" + valid.String() + "}",
		"urn form":          "urn:uuid:" + valid.String(),
		"sql fragment":      "'; DROP TABLE intakes;--",
		"null byte":         "550e8400\x00-e29b-41d4-a716-446655440000",
		"zero-width space":  "550e8400\u200B-e29b-41d4-a716-446655440000",
		"oversized payload": strings.Repeat("a", 1000),
	}
	for name, input := range rejected {
		t.Run(name, func(t *testing.T) {
			_, err := ParseUserID(input)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

			_, err = ParseIntakeID(input)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		})
	}
}

func TestParseIDsAcceptCanonicalForm(t *testing.T) {
	valid := uuid.New()

	userID, err := ParseUserID(valid.String())
	require.NoError(t, err)
	assert.Equal(t, UserID(valid), userID)

	intakeID, err := ParseIntakeID(strings.ToUpper(valid.String()))
	require.NoError(t, err)
	assert.Equal(t, valid.String(), intakeID.String())
}

func TestNewIDs(t *testing.T) {
	assert.False(t, NewUserID().IsNil())
	assert.False(t, NewIntakeID().IsNil())
	assert.True(t, UserID{}.IsNil())
	assert.NotEqual(t, NewUserID(), NewUserID())
}

func TestParseWeekday(t *testing.T) {
	d, err := ParseWeekday(" monday ")
	require.NoError(t, err)
	assert.Equal(t, Monday, d)

	for _, day := range AllWeekdays {
		parsed, err := ParseWeekday(strings.ToLower(day.String()))
		require.NoError(t, err)
		assert.Equal(t, day, parsed)
	}

	_, err = ParseWeekday("funday")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	assert.False(t, Weekday("Monday").IsValid())
}
