package journal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScore(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{raw: "0", want: 0},
		{raw: "100", want: 100},
		{raw: " 80 ", want: 80},
		{raw: "150", wantErr: true},
		{raw: "-1", wantErr: true},
		{raw: "", wantErr: true},
		{raw: "8.5", wantErr: true},
		{raw: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseScore(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidScore)
				assert.True(t, IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTierMatches(t *testing.T) {
	assert.True(t, TierHigh.Matches(75))
	assert.False(t, TierHigh.Matches(74))
	assert.True(t, TierMedium.Matches(50))
	assert.True(t, TierMedium.Matches(74))
	assert.False(t, TierMedium.Matches(75))
	assert.False(t, TierMedium.Matches(49))
	assert.True(t, TierLow.Matches(49))
	assert.False(t, TierLow.Matches(50))
	assert.True(t, TierNone.Matches(0))

	for score := MinScore; score <= MaxScore; score++ {
		assert.True(t, TierOf(score).Matches(score), "score %d", score)
	}
}

func TestParseTier(t *testing.T) {
	assert.Equal(t, TierHigh, ParseTier("high"))
	assert.Equal(t, TierMedium, ParseTier(" Medium "))
	assert.Equal(t, TierLow, ParseTier("low"))
	assert.Equal(t, TierNone, ParseTier(""))
	assert.Equal(t, TierNone, ParseTier("excellent"))
}

func TestCellRefRoundTrip(t *testing.T) {
	ref := CellRef{StudentID: 3, SubjectID: 7}
	parsed, err := ParseCellRef(ref.String())
	require.NoError(t, err)
	assert.Equal(t, ref, parsed)

	_, err = ParseCellRef("3")
	assert.True(t, IsValidation(err))

	_, err = ParseCellRef("0:1")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("Ali"))
	assert.ErrorIs(t, ValidateName(NormalizeName("   ")), ErrEmptyName)

	long := make([]rune, MaxNameLength+1)
	for i := range long {
		long[i] = 'a'
	}
	assert.ErrorIs(t, ValidateName(string(long)), ErrNameTooLong)
}

func TestDomainErrorKinds(t *testing.T) {
	assert.True(t, IsNotFound(ErrStudentNotFound))
	assert.True(t, IsNotFound(ErrSubjectNotFound))
	assert.True(t, IsAlreadyExists(ErrSubjectAlreadyExists))
	assert.False(t, IsNotFound(ErrStudentAlreadyExists))

	wrapped := WrapError("grade", "Upsert", ErrNotFound, "missing reference", ErrStudentNotFound)
	assert.True(t, errors.Is(wrapped, ErrStudentNotFound))
	assert.Equal(t, "grade.Upsert: missing reference: student.Find: student not found", wrapped.Error())
}
