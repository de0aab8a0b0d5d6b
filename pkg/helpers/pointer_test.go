package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointers(t *testing.T) {
	p := Ptr("x")
	assert.Equal(t, "x", Value(p))
	assert.Equal(t, "", Value[string](nil))
	assert.Equal(t, 7, ValueOr(nil, 7))
	assert.Equal(t, 3, ValueOr(Ptr(3), 7))

	assert.True(t, Blank(nil))
	assert.True(t, Blank(Ptr("")))
	assert.False(t, Blank(p))
}
