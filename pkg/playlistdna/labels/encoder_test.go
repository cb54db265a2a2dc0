package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func TestEncodeRowsSumToOne(t *testing.T) {
	m, cats, err := Encode([]string{"rock", "jazz", "rock", "ambient"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ambient", "jazz", "rock"}, cats)

	r, c := m.Dims()
	assert.Equal(t, 4, r)
	assert.Equal(t, 3, c)
	for i := 0; i < r; i++ {
		assert.Equal(t, 1.0, floats.Sum(mat.Row(nil, i, m)))
	}
	assert.Equal(t, 1.0, m.At(0, 2))
	assert.Equal(t, 1.0, m.At(1, 1))
	assert.Equal(t, 1.0, m.At(3, 0))
}

func TestEncodeStableAcrossOrder(t *testing.T) {
	_, a, err := Encode([]string{"b", "c", "a"})
	require.NoError(t, err)
	_, b, err := Encode([]string{"a", "a", "c", "b"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEncoderReuse(t *testing.T) {
	e, err := Fit([]string{"pop", "metal"})
	require.NoError(t, err)

	restored, err := FromCategories(e.Categories())
	require.NoError(t, err)
	i, ok := restored.Index("pop")
	assert.True(t, ok)
	assert.Equal(t, 1, i)

	m, err := restored.Transform([]string{"pop"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, mat.Row(nil, 0, m))

	_, err = restored.Transform([]string{"polka"})
	assert.Error(t, err)
}

func TestEncodeErrors(t *testing.T) {
	_, _, err := Encode(nil)
	assert.Error(t, err)
	_, err = FromCategories([]string{"a", "a"})
	assert.Error(t, err)
}
