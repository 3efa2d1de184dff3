// Package zone partitions a field raster into a grid and aggregates the
// per-pixel indices into per-zone statistics. The grid exactly partitions the
// raster: cell sizes come from floor division and the trailing row/column
// absorbs any remainder pixels.
package zone

import (
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/gammazero/workerpool"
	"github.com/montanaflynn/stats"

	"github.com/croplens/croplens/internal/raster"
	"github.com/croplens/croplens/internal/spectral"
)

// Pixels below these thresholds count as stressed.
const (
	stressedNDVIThreshold = 0.3
	stressedNDWIThreshold = -0.2
)

// Zone health score weights; they sum to 100.
const (
	healthWeightNDVI = 60.0
	healthWeightNDWI = 25.0
	healthWeightVARI = 15.0
)

// fieldSampleStride is the sampling step for field-level statistics. Zones
// are aggregated at full resolution; the field summary is a stride sample.
const fieldSampleStride = 10

// Zone holds the aggregate statistics of one grid cell.
type Zone struct {
	RowIndex int `json:"rowIndex" csv:"row"`
	ColIndex int `json:"colIndex" csv:"col"`

	// Rect is the cell's pixel extent within the source raster.
	Rect image.Rectangle `json:"-" csv:"-"`

	AvgNDVI          float64 `json:"avgNdvi" csv:"avg_ndvi"`
	AvgNDWI          float64 `json:"avgNdwi" csv:"avg_ndwi"`
	AvgVARI          float64 `json:"avgVari" csv:"avg_vari"`
	StressPct        float64 `json:"stressPercentage" csv:"stress_pct"`
	HealthScore      int     `json:"healthScore" csv:"health_score"`
	WaterStress      bool    `json:"waterStress" csv:"water_stress"`
	VegetationStress bool    `json:"vegetationStress" csv:"vegetation_stress"`
}

// FieldStats summarizes the whole raster from a stride-10 sample. Unlike the
// zone score, OverallHealth is derived from NDVI alone; the asymmetry is
// inherited behavior and deliberately kept.
type FieldStats struct {
	AvgNDVI       float64 `json:"avgNdvi"`
	AvgNDWI       float64 `json:"avgNdwi"`
	OverallHealth int     `json:"overallHealth"`
}

// GridSize maps a requested zone count onto the two supported grids: 2x2 for
// four or fewer zones, 3x3 otherwise.
func GridSize(requestedZones int) int {
	if requestedZones <= 4 {
		return 2
	}
	return 3
}

// cellRect computes the pixel extent of cell (row,col); the final row and
// column extend to the raster edge.
func cellRect(width, height, gridSize, row, col int) image.Rectangle {
	cellW := width / gridSize
	cellH := height / gridSize

	x0 := col * cellW
	y0 := row * cellH
	x1 := x0 + cellW
	y1 := y0 + cellH
	if col == gridSize-1 {
		x1 = width
	}
	if row == gridSize-1 {
		y1 = height
	}
	return image.Rect(x0, y0, x1, y1)
}

// Aggregate iterates every pixel of every cell at full resolution and returns
// the per-zone statistics in row-major order.
func Aggregate(buf *raster.Buffer, requestedZones int) ([]Zone, error) {
	if buf == nil || buf.Width == 0 || buf.Height == 0 {
		return nil, fmt.Errorf("empty raster buffer")
	}

	gridSize := GridSize(requestedZones)
	if buf.Width < gridSize || buf.Height < gridSize {
		return nil, fmt.Errorf("raster %dx%d too small for a %dx%d grid", buf.Width, buf.Height, gridSize, gridSize)
	}

	zones := make([]Zone, gridSize*gridSize)

	wp := workerpool.New(gridSize)
	var mu sync.Mutex
	for row := 0; row < gridSize; row++ {
		for col := 0; col < gridSize; col++ {
			row, col := row, col
			idx := row*gridSize + col
			rect := cellRect(buf.Width, buf.Height, gridSize, row, col)
			wp.Submit(func() {
				z := aggregateCell(buf, rect)
				z.RowIndex = row
				z.ColIndex = col
				z.Rect = rect
				mu.Lock()
				zones[idx] = z
				mu.Unlock()
			})
		}
	}
	wp.StopWait()

	return zones, nil
}

func aggregateCell(buf *raster.Buffer, rect image.Rectangle) Zone {
	var sumNDVI, sumNDWI, sumVARI float64
	stressed := 0
	total := rect.Dx() * rect.Dy()

	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			r, g, b := buf.RGB(x, y)
			s := spectral.Sample(r, g, b)
			sumNDVI += s.NDVI
			sumNDWI += s.NDWI
			sumVARI += s.VARI
			if s.NDVI < stressedNDVIThreshold || s.NDWI < stressedNDWIThreshold {
				stressed++
			}
		}
	}

	avgNDVI := sumNDVI / float64(total)
	avgNDWI := sumNDWI / float64(total)
	avgVARI := sumVARI / float64(total)

	return Zone{
		AvgNDVI:          round(avgNDVI, 3),
		AvgNDWI:          round(avgNDWI, 3),
		AvgVARI:          round(avgVARI, 3),
		StressPct:        round(float64(stressed)/float64(total)*100, 1),
		HealthScore:      HealthScore(avgNDVI, avgNDWI, avgVARI),
		WaterStress:      avgNDWI < -0.1,
		VegetationStress: avgNDVI < 0.3,
	}
}

// HealthScore blends the three zone averages with weights 60/25/15 after
// shifting each index into [0,1], clamped to [0,100].
func HealthScore(avgNDVI, avgNDWI, avgVARI float64) int {
	score := (avgNDVI+1)/2*healthWeightNDVI +
		(avgNDWI+1)/2*healthWeightNDWI +
		(avgVARI+1)/2*healthWeightVARI
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return int(math.Round(score))
}

// FieldStatistics samples the raster at a stride of 10 pixels in both
// dimensions. Sampling keeps the summary pass cheap on large photos.
func FieldStatistics(buf *raster.Buffer) (FieldStats, error) {
	if buf == nil || buf.Width == 0 || buf.Height == 0 {
		return FieldStats{}, fmt.Errorf("empty raster buffer")
	}

	var sumNDVI, sumNDWI float64
	count := 0
	for y := 0; y < buf.Height; y += fieldSampleStride {
		for x := 0; x < buf.Width; x += fieldSampleStride {
			r, g, b := buf.RGB(x, y)
			s := spectral.Sample(r, g, b)
			sumNDVI += s.NDVI
			sumNDWI += s.NDWI
			count++
		}
	}

	avgNDVI := sumNDVI / float64(count)
	avgNDWI := sumNDWI / float64(count)

	return FieldStats{
		AvgNDVI:       round(avgNDVI, 3),
		AvgNDWI:       round(avgNDWI, 3),
		OverallHealth: int(math.Round((avgNDVI + 1) / 2 * 100)),
	}, nil
}

func round(v float64, places int) float64 {
	r, err := stats.Round(v, places)
	if err != nil {
		return v
	}
	return r
}
