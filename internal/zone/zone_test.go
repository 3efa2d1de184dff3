package zone

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/croplens/croplens/internal/raster"
)

func solidBuffer(w, h int, r, g, b uint8) *raster.Buffer {
	pix := make([]uint8, w*h*4)
	for i := 0; i < w*h; i++ {
		pix[i*4] = r
		pix[i*4+1] = g
		pix[i*4+2] = b
		pix[i*4+3] = 255
	}
	return &raster.Buffer{Width: w, Height: h, Pix: pix}
}

func TestGridSize(t *testing.T) {
	assert.Equal(t, 2, GridSize(1))
	assert.Equal(t, 2, GridSize(4))
	assert.Equal(t, 3, GridSize(5))
	assert.Equal(t, 3, GridSize(9))
	assert.Equal(t, 3, GridSize(100), "anything above four zones is the 3x3 grid")
}

func TestGridPartitionsExactly(t *testing.T) {
	// 7x5 does not divide evenly by 2: the trailing row/column must absorb
	// the remainder with no gaps or overlaps.
	buf := solidBuffer(7, 5, 50, 120, 40)
	zones, err := Aggregate(buf, 4)
	require.NoError(t, err)
	require.Len(t, zones, 4)

	covered := image.Rectangle{}
	area := 0
	for i, z := range zones {
		assert.Equal(t, i/2, z.RowIndex)
		assert.Equal(t, i%2, z.ColIndex)
		area += z.Rect.Dx() * z.Rect.Dy()
		covered = covered.Union(z.Rect)
		for j, other := range zones {
			if i == j {
				continue
			}
			assert.True(t, z.Rect.Intersect(other.Rect).Empty(), "zones %d and %d overlap", i, j)
		}
	}
	assert.Equal(t, image.Rect(0, 0, 7, 5), covered)
	assert.Equal(t, 35, area)
}

func TestAggregateNineZones(t *testing.T) {
	buf := solidBuffer(10, 10, 50, 120, 40)
	zones, err := Aggregate(buf, 9)
	require.NoError(t, err)
	require.Len(t, zones, 9)

	// Trailing cells extend to the edge: 10/3 = 3, so the last row/column
	// cells are 4 pixels wide/tall.
	last := zones[8]
	assert.Equal(t, image.Rect(6, 6, 10, 10), last.Rect)
}

func TestAggregateUniformGreen(t *testing.T) {
	// Pure green: NDVI=1, NDWI=0, VARI=1 for every pixel.
	buf := solidBuffer(8, 8, 0, 255, 0)
	zones, err := Aggregate(buf, 4)
	require.NoError(t, err)

	for _, z := range zones {
		assert.Equal(t, 1.0, z.AvgNDVI)
		assert.Equal(t, 0.0, z.AvgNDWI)
		assert.Equal(t, 1.0, z.AvgVARI)
		assert.Equal(t, 0.0, z.StressPct)
		// (1+1)/2*60 + (0+1)/2*25 + (1+1)/2*15 = 87.5 -> 88
		assert.Equal(t, 88, z.HealthScore)
		assert.False(t, z.WaterStress)
		assert.False(t, z.VegetationStress)
	}
}

func TestAggregateUniformRed(t *testing.T) {
	// Pure red: NDVI=-1, NDWI=0 (zero denominator), VARI=-1; every pixel
	// counts as stressed.
	buf := solidBuffer(8, 8, 255, 0, 0)
	zones, err := Aggregate(buf, 4)
	require.NoError(t, err)

	for _, z := range zones {
		assert.Equal(t, -1.0, z.AvgNDVI)
		assert.Equal(t, 0.0, z.AvgNDWI)
		assert.Equal(t, -1.0, z.AvgVARI)
		assert.Equal(t, 100.0, z.StressPct)
		// 0*60 + 0.5*25 + 0*15 = 12.5 -> 13
		assert.Equal(t, 13, z.HealthScore)
		assert.False(t, z.WaterStress, "avgNDWI 0 is not water stress")
		assert.True(t, z.VegetationStress)
	}
}

func TestHealthScoreMonotonic(t *testing.T) {
	base := HealthScore(0, 0, 0)
	assert.GreaterOrEqual(t, HealthScore(0.2, 0, 0), base)
	assert.GreaterOrEqual(t, HealthScore(0, 0.2, 0), base)
	assert.GreaterOrEqual(t, HealthScore(0, 0, 0.2), base)

	prev := -1
	for v := -1.0; v <= 1.0; v += 0.1 {
		score := HealthScore(v, 0, 0)
		assert.GreaterOrEqual(t, score, prev)
		prev = score
	}
}

func TestHealthScoreClamped(t *testing.T) {
	assert.Equal(t, 100, HealthScore(1, 1, 1))
	assert.Equal(t, 0, HealthScore(-1, -1, -1))
}

func TestAggregateDeterministic(t *testing.T) {
	// Mixed-content buffer: results must be bit-identical across runs.
	buf := solidBuffer(20, 20, 0, 0, 0)
	for i := 0; i < len(buf.Pix); i += 4 {
		buf.Pix[i] = uint8(i % 251)
		buf.Pix[i+1] = uint8((i * 7) % 251)
		buf.Pix[i+2] = uint8((i * 13) % 251)
	}

	first, err := Aggregate(buf, 9)
	require.NoError(t, err)
	second, err := Aggregate(buf, 9)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFieldStatistics(t *testing.T) {
	buf := solidBuffer(40, 40, 0, 255, 0)
	stats, err := FieldStatistics(buf)
	require.NoError(t, err)

	assert.Equal(t, 1.0, stats.AvgNDVI)
	assert.Equal(t, 0.0, stats.AvgNDWI)
	// Field-level health uses NDVI only: round((1+1)/2*100) = 100.
	assert.Equal(t, 100, stats.OverallHealth)
}

func TestFieldStatisticsSamplesStride(t *testing.T) {
	// Paint only pixels off the stride-10 lattice red; the sampled summary
	// must not see them.
	buf := solidBuffer(30, 30, 0, 255, 0)
	for y := 0; y < 30; y++ {
		for x := 0; x < 30; x++ {
			if x%10 == 0 && y%10 == 0 {
				continue
			}
			i := (y*30 + x) * 4
			buf.Pix[i] = 255
			buf.Pix[i+1] = 0
			buf.Pix[i+2] = 0
		}
	}

	stats, err := FieldStatistics(buf)
	require.NoError(t, err)
	assert.Equal(t, 1.0, stats.AvgNDVI, "off-lattice pixels are never sampled")
	assert.Equal(t, 100, stats.OverallHealth)
}

func TestAggregateRejectsEmptyBuffer(t *testing.T) {
	_, err := Aggregate(nil, 4)
	assert.Error(t, err)

	_, err = FieldStatistics(&raster.Buffer{})
	assert.Error(t, err)
}
