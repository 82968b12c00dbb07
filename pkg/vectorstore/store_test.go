package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToFloat32(t *testing.T) {
	out := toFloat32([]float64{1, 2.5, -3})
	assert.Equal(t, []float32{1, 2.5, -3}, out)
}

func TestFromValue(t *testing.T) {
	assert.Nil(t, fromValue(nil))
}

func TestFromPayloadNil(t *testing.T) {
	assert.Nil(t, fromPayload(nil))
}
