package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/croplens/croplens/internal/composite"
	"github.com/croplens/croplens/internal/raster"
)

func fieldBuffer(w, h int) *raster.Buffer {
	pix := make([]uint8, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			// Left half lush, right half dry soil.
			if x < w/2 {
				pix[i], pix[i+1], pix[i+2] = 40, 180, 50
			} else {
				pix[i], pix[i+1], pix[i+2] = 170, 130, 90
			}
			pix[i+3] = 255
		}
	}
	return &raster.Buffer{Width: w, Height: h, Pix: pix}
}

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	t.Setenv("ADVISORY_SERVICE_URL", "")
	return New()
}

func TestAnalyzeEndToEnd(t *testing.T) {
	a := newTestAnalyzer(t)

	result, err := a.Analyze(context.Background(), Request{
		Buffer:    fieldBuffer(40, 40),
		ZoneCount: 4,
		CropType:  "Corn",
	})
	require.NoError(t, err)

	require.Len(t, result.Zones, 4)
	require.Len(t, result.Composites, 5)
	for _, kind := range composite.Kinds {
		assert.Contains(t, result.Composites, kind)
	}

	assert.GreaterOrEqual(t, result.GlobalStats.OverallHealth, 0)
	assert.LessOrEqual(t, result.GlobalStats.OverallHealth, 100)
	assert.NotEmpty(t, result.ActionPlan, "the inspection item is always present")
	assert.Equal(t, 1, result.ActionPlan[0].Priority)

	// No external assessment: fixed defaults apply.
	assert.Equal(t, "Vegetative", result.GrowthStage)
	assert.Equal(t, 85, result.Confidence)
	assert.Equal(t, "Corn", result.CropType)

	for _, z := range result.Zones {
		assert.NotEmpty(t, z.Name)
		assert.NotEmpty(t, z.ColorSignature)
		assert.NotEmpty(t, z.IrrigationNeed)
		assert.GreaterOrEqual(t, z.HealthScore, 0)
		assert.LessOrEqual(t, z.HealthScore, 100)
	}
}

func TestAnalyzeNineZones(t *testing.T) {
	a := newTestAnalyzer(t)

	result, err := a.Analyze(context.Background(), Request{
		Buffer:    fieldBuffer(30, 30),
		ZoneCount: 9,
	})
	require.NoError(t, err)
	require.Len(t, result.Zones, 9)
	assert.Equal(t, "Center", result.Zones[4].Name)
}

func TestAnalyzeDecodeFailureAbortsPipeline(t *testing.T) {
	a := newTestAnalyzer(t)

	result, err := a.Analyze(context.Background(), Request{
		ImagePath: "/nonexistent/field.jpeg",
		ZoneCount: 4,
	})
	require.Error(t, err)
	assert.Nil(t, result, "no partial result on decode failure")

	var decodeErr *raster.DecodeError
	assert.True(t, errors.As(err, &decodeErr))
}

func TestAnalyzeDeterministic(t *testing.T) {
	a := newTestAnalyzer(t)
	buf := fieldBuffer(32, 32)

	first, err := a.Analyze(context.Background(), Request{Buffer: buf, ZoneCount: 4})
	require.NoError(t, err)
	second, err := a.Analyze(context.Background(), Request{Buffer: buf, ZoneCount: 4})
	require.NoError(t, err)

	assert.Equal(t, first.Zones, second.Zones)
	assert.Equal(t, first.GlobalStats, second.GlobalStats)
	assert.Equal(t, first.Composites[composite.KindCIR].Pix, second.Composites[composite.KindCIR].Pix)
}

func TestAnalyzeHonorsCanceledContext(t *testing.T) {
	a := newTestAnalyzer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Analyze(ctx, Request{Buffer: fieldBuffer(20, 20), ZoneCount: 4})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
