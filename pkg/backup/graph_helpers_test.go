package backup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabelsToClauseJoinsMultipleLabels(t *testing.T) {
	assert.Equal(t, ":Person:Company", labelsToClause([]string{"Person", "Company"}))
}

func TestLabelsToClauseEmpty(t *testing.T) {
	assert.Equal(t, "", labelsToClause(nil))
}

func TestToStringSliceSkipsNonStrings(t *testing.T) {
	in := []any{"Person", 5, "Company", nil}
	assert.Equal(t, []string{"Person", "Company"}, toStringSlice(in))
}
