package hijri

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeadingYear(t *testing.T) {
	year, ok := LeadingYear("1400-05-10")
	assert.True(t, ok)
	assert.Equal(t, 1400, year)

	_, ok = LeadingYear("")
	assert.False(t, ok)
}

func TestToGregorianRoughRange(t *testing.T) {
	out, err := ToGregorian("1400-01-01")
	assert.NoError(t, err)
	// 1400 AH falls in late 1979 Gregorian.
	assert.Contains(t, out, "1979")
}

func TestToGregorianInvalid(t *testing.T) {
	_, err := ToGregorian("not-a-date")
	assert.Error(t, err)
}
