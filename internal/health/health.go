// Package health turns zone statistics into qualitative labels, issue lists,
// resource-need categories and a priority tier. All of the threshold-to-label
// rules are explicit ordered tables evaluated top-down; the order is part of
// the contract.
package health

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/croplens/croplens/internal/zone"
)

// Priority ranks how urgently a zone needs attention.
type Priority string

const (
	PriorityCritical Priority = "Critical"
	PriorityHigh     Priority = "High"
	PriorityMedium   Priority = "Medium"
	PriorityLow      Priority = "Low"
)

// Irrigation and fertilization need categories.
const (
	IrrigationCritical = "Critical - Urgent irrigation required"
	IrrigationHigh     = "High - Immediate irrigation recommended"
	IrrigationModerate = "Moderate - Scheduled irrigation sufficient"
	IrrigationLow      = "Low - Monitor soil moisture"

	FertilizationHigh     = "High - Nitrogen deficiency likely"
	FertilizationModerate = "Moderate - Supplemental feeding advised"
	FertilizationLow      = "Low - Adequate nutrient levels"
)

// ClassifiedZone is a zone enriched with classifier output and, after the
// assessment merge, optional external qualitative fields.
type ClassifiedZone struct {
	zone.Zone

	Name              string   `json:"name"`
	ColorSignature    string   `json:"colorSignature"`
	Issues            []string `json:"issues"`
	IrrigationNeed    string   `json:"irrigationNeed"`
	FertilizationNeed string   `json:"fertilizationNeed"`
	Priority          Priority `json:"priority"`

	// Filled from the external qualitative assessment when present.
	Condition      string `json:"condition,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`
}

// Anomaly flags a zone whose NDVI falls well below the field mean.
type Anomaly struct {
	ZoneName string  `json:"zoneName"`
	GapPct   float64 `json:"gapPercentage"`
	Message  string  `json:"message"`
}

var twoByTwoNames = []string{"Northwest (NW)", "Northeast (NE)", "Southwest (SW)", "Southeast (SE)"}

var threeByThreeNames = []string{
	"Northwest (NW)", "North (N)", "Northeast (NE)",
	"West (W)", "Center", "East (E)",
	"Southwest (SW)", "South (S)", "Southeast (SE)",
}

// ZoneName returns the compass name of the cell at a row-major index.
func ZoneName(index, gridSize int) string {
	if gridSize == 2 && index < len(twoByTwoNames) {
		return twoByTwoNames[index]
	}
	if gridSize == 3 && index < len(threeByThreeNames) {
		return threeByThreeNames[index]
	}
	return fmt.Sprintf("Zone %d", index+1)
}

// Classify enriches every zone with labels, issues, needs and priority.
func Classify(zones []zone.Zone, gridSize int) []ClassifiedZone {
	classified := make([]ClassifiedZone, len(zones))
	for i, z := range zones {
		classified[i] = ClassifiedZone{
			Zone:              z,
			Name:              ZoneName(i, gridSize),
			ColorSignature:    colorSignature(z.AvgNDVI, z.AvgNDWI),
			Issues:            issues(z),
			IrrigationNeed:    irrigationNeed(z.AvgNDWI),
			FertilizationNeed: fertilizationNeed(z.AvgNDVI),
			Priority:          priority(z),
		}
	}
	return classified
}

// colorSignature rules are ordered; the first match wins.
func colorSignature(ndvi, ndwi float64) string {
	switch {
	case ndvi > 0.5 && ndwi > 0:
		return "Deep red-infrared signature - dense healthy vegetation"
	case ndvi > 0.3 && ndwi > -0.1:
		return "Red-pink signature - moderate vegetation"
	case ndvi > 0.1 && ndwi < -0.1:
		return "Pale pink signature - stressed vegetation"
	case ndvi < 0.1:
		return "Gray-brown signature - sparse or stressed cover"
	default:
		return "Mixed signature - mixed vegetation patterns"
	}
}

// issues are evaluated independently and can co-occur.
func issues(z zone.Zone) []string {
	var out []string
	if z.WaterStress {
		out = append(out, "Water stress detected - canopy moisture below target")
	}
	if z.VegetationStress {
		out = append(out, "Vegetation stress detected - low canopy vigor")
	}
	if z.AvgNDVI < 0.2 {
		out = append(out, "Very low chlorophyll activity")
	}
	if z.AvgNDWI < -0.3 {
		out = append(out, "Severe water deficiency")
	}
	if z.StressPct > 40 {
		out = append(out, fmt.Sprintf("%.1f%% of zone pixels show stress indicators", z.StressPct))
	}
	return out
}

func irrigationNeed(ndwi float64) string {
	switch {
	case ndwi < -0.3:
		return IrrigationCritical
	case ndwi < -0.1:
		return IrrigationHigh
	case ndwi < 0.1:
		return IrrigationModerate
	default:
		return IrrigationLow
	}
}

func fertilizationNeed(ndvi float64) string {
	switch {
	case ndvi < 0.2:
		return FertilizationHigh
	case ndvi < 0.35:
		return FertilizationModerate
	default:
		return FertilizationLow
	}
}

// priority branches are ordered; the first match wins regardless of the
// remaining conditions.
func priority(z zone.Zone) Priority {
	switch {
	case z.HealthScore < 40 || z.WaterStress:
		return PriorityCritical
	case z.HealthScore < 60 || z.VegetationStress:
		return PriorityHigh
	case z.HealthScore < 75:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// anomalyGap is how far below the field mean a zone's NDVI must fall to be
// flagged.
const anomalyGap = 0.15

// FindNDVIAnomalies flags zones whose NDVI sits more than 0.15 below the mean
// across all zones, reporting the percentage gap to the mean.
func FindNDVIAnomalies(zones []ClassifiedZone) []Anomaly {
	if len(zones) == 0 {
		return nil
	}

	values := make([]float64, len(zones))
	for i, z := range zones {
		values[i] = z.AvgNDVI
	}
	mean, err := stats.Mean(values)
	if err != nil {
		return nil
	}

	var anomalies []Anomaly
	for _, z := range zones {
		if z.AvgNDVI >= mean-anomalyGap {
			continue
		}
		gap := 0.0
		if math.Abs(mean) > 1e-9 {
			gap = (mean - z.AvgNDVI) / math.Abs(mean) * 100
		}
		gap = math.Round(gap*10) / 10
		anomalies = append(anomalies, Anomaly{
			ZoneName: z.Name,
			GapPct:   gap,
			Message:  fmt.Sprintf("%s NDVI is %.1f%% below the field mean", z.Name, gap),
		})
	}
	return anomalies
}
