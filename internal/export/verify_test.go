package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/neuroanim/internal/codec"
)

func TestVerify(t *testing.T) {
	records := []codec.Record{
		{
			Type: "soma", X: []float64{0}, Y: []float64{0}, Z: []float64{0}, DIAM: []float64{10},
			Voltage: map[int][]float64{0: {-70}, 1: {35}, 2: {-70}},
		},
		{
			Type: "dend", X: []float64{0, 3}, Y: []float64{0, 4}, Z: []float64{0, 0}, DIAM: []float64{2, 1},
			Voltage: map[int][]float64{0: {-70, -70}, 1: {-60, -61}, 2: {-70, -70}},
		},
		{
			Type: "dend", X: []float64{5, 5}, Y: []float64{5, 5}, Z: []float64{-2, -2}, DIAM: []float64{1, 1},
		},
	}

	r, err := Verify(records)
	require.NoError(t, err)

	assert.Equal(t, 3, r.Sections)
	assert.Equal(t, map[string]int{"soma": 1, "dend": 2}, r.TypeCounts)
	assert.Equal(t, 5, r.Points)
	assert.Equal(t, 5.0, r.TotalLength)
	assert.Equal(t, 2.5, r.MeanLength)

	assert.Equal(t, 2, r.WithVoltage)
	assert.Equal(t, 3, r.Frames)
	require.NotNil(t, r.Voltage)
	assert.Equal(t, codec.Range{Min: -70, Max: 35}, *r.Voltage)
	assert.Equal(t, []int{0}, r.Spiking)

	assert.Equal(t, []int{0}, r.Short)
	assert.Equal(t, []int{2}, r.ZeroLength)
	assert.False(t, r.OK())

	assert.Equal(t, codec.Range{Min: 0, Max: 5}, r.X)
	assert.Equal(t, codec.Range{Min: -2, Max: 0}, r.Z)
	assert.Equal(t, codec.Range{Min: 1, Max: 10}, r.Diameter)

	var out bytes.Buffer
	r.Print(&out)
	assert.Contains(t, out.String(), "sections with <2 points: 1 [0]")
	assert.Contains(t, out.String(), "zero-length sections: 1 [2]")
	assert.NotContains(t, out.String(), "connectivity ok")
}

func TestVerifyExportedRecords(t *testing.T) {
	res, err := NewLadder(&memorySink{}, nil).Run(fixture(t))
	require.NoError(t, err)

	r, err := Verify(res.Records)
	require.NoError(t, err)
	assert.Equal(t, 12, r.WithVoltage)
	assert.Equal(t, 400, r.Frames)
	assert.Empty(t, r.Spiking)
	assert.Len(t, r.Short, 12)
}

func TestVerifyEmpty(t *testing.T) {
	_, err := Verify(nil)
	assert.ErrorIs(t, err, ErrNoRecords)
}
