package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatVector(t *testing.T) {
	assert.Equal(t, "[]", formatVector(nil))
	assert.Equal(t, "[0.500000,-1.250000]", formatVector([]float64{0.5, -1.25}))
}

func TestParseVector(t *testing.T) {
	vec, err := parseVector("[0.5,-1.25,0]")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, -1.25, 0}, vec)

	vec, err = parseVector("  [ 1.0 , 2.0 ]  ")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, vec)

	vec, err = parseVector("[]")
	require.NoError(t, err)
	assert.Empty(t, vec)
}

func TestParseVectorMalformed(t *testing.T) {
	for _, input := range []string{"", "1,2,3", "[1,x]", "[1,2"} {
		_, err := parseVector(input)
		assert.Error(t, err, "input %q", input)
	}
}
