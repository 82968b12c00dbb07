package ner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripFence(t *testing.T) {
	assert.Equal(t, `{"entities": []}`, stripFence("```json\n{\"entities\": []}\n```"))
	assert.Equal(t, `{"entities": ["Ahmed"]}`, stripFence(`{"entities": ["Ahmed"]}`))
}
