package graphstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordLookup(t *testing.T) {
	rec := Record{"n.name": "Ahmed", "n.id": int64(1)}
	assert.Equal(t, "Ahmed", rec["n.name"])
	assert.Equal(t, int64(1), rec["n.id"])
}
