package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	set := New(Options{
		ReferenceYear:       2024,
		NormalizeTableDates: true,
		ColumnGap:           12,
		RowGranularity:      2,
		ExtraNoise:          []string{"reward points"},
		Debug:               true,
	})

	require.NotNil(t, set.Lines)
	assert.Equal(t, 2024, set.Lines.ReferenceYear)
	assert.True(t, set.Lines.Debug)
	assert.True(t, set.Lines.Noise.IsNoise("Reward Points 10.00"))
	assert.True(t, set.Lines.Noise.IsNoise("Opening Balance 10.00"))

	assert.True(t, set.Table.NormalizeDates)
	assert.Equal(t, 12.0, set.Spatial.ColumnGap)
	assert.Equal(t, 2.0, set.Spatial.RowGranularity)
}

func TestNew_Defaults(t *testing.T) {
	set := New(Options{})
	assert.Same(t, DefaultNoiseFilter(), set.Lines.Noise)
	assert.Equal(t, DefaultColumnGap, set.Spatial.gap())
	assert.Equal(t, DefaultRowGranularity, set.Spatial.granularity())
}
