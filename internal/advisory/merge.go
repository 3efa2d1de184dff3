package advisory

import (
	"github.com/croplens/croplens/internal/assessment"
	"github.com/croplens/croplens/internal/composite"
	"github.com/croplens/croplens/internal/health"
	"github.com/croplens/croplens/internal/raster"
	"github.com/croplens/croplens/internal/zone"
)

// Result is the final analysis object handed to the presentation and
// activity-log collaborators.
type Result struct {
	Zones               []health.ClassifiedZone              `json:"zones"`
	Composites          map[composite.Kind]*composite.Raster `json:"-"`
	GlobalStats         zone.FieldStats                      `json:"globalStats"`
	EarlyWarnings       []assessment.Warning                 `json:"earlyWarnings"`
	ResourceApplication ResourcePlan                         `json:"resourceApplication"`
	ActionPlan          []assessment.ActionItem              `json:"actionPlan"`
	Anomalies           []health.Anomaly                     `json:"anomalies,omitempty"`

	// Source is the decoded buffer the analysis ran on, kept for the
	// presentation collaborators (overlay rendering).
	Source *raster.Buffer `json:"-"`

	FieldSize   string `json:"fieldSize,omitempty"`
	CropType    string `json:"cropType,omitempty"`
	GrowthStage string `json:"growthStage"`
	Summary     string `json:"summary,omitempty"`
	Confidence  int    `json:"confidence"`
}

// externalZoneLabels is the fixed positional label order external zone
// assessments are matched against. Positional matching is only meaningful for
// the 2x2 grid.
var externalZoneLabels = []string{"NW", "NE", "SW", "SE"}

// MergeZones enriches computed zones with same-index external assessments.
// Precedence per field: the external value wins whenever it is present.
// Grids other than 2x2 skip positional matching entirely.
func MergeZones(zones []health.ClassifiedZone, external []assessment.ZoneAssessment, gridSize int) []health.ClassifiedZone {
	if gridSize != 2 || len(external) == 0 {
		return zones
	}

	merged := make([]health.ClassifiedZone, len(zones))
	copy(merged, zones)

	for i := range merged {
		if i >= len(external) || i >= len(externalZoneLabels) {
			break
		}
		ext := external[i]
		if ext.Name != nil {
			merged[i].Name = *ext.Name
		}
		if ext.Condition != nil {
			merged[i].Condition = *ext.Condition
		}
		if len(ext.Issues) > 0 {
			merged[i].Issues = ext.Issues
		}
		if ext.Recommendation != nil {
			merged[i].Recommendation = *ext.Recommendation
		}
	}
	return merged
}

// ApplyAssessment overlays the external top-level object onto the computed
// result. Precedence table:
//
//	zones               computed (already enriched per zone)  -- external never replaces the array
//	earlyWarnings       external when present, else computed
//	actionPlan          external when present, else computed
//	summary             external when present
//	confidence          external when present, else 85
//	healthMap.*         external when present, else defaults (growthStage "Vegetative")
//
// A nil assessment leaves every computed value and default untouched.
func ApplyAssessment(result *Result, ext *assessment.Assessment) {
	if result.GrowthStage == "" {
		result.GrowthStage = assessment.DefaultGrowthStage
	}
	if result.Confidence == 0 {
		result.Confidence = assessment.DefaultConfidence
	}
	if ext == nil {
		return
	}

	if ext.EarlyWarnings != nil {
		result.EarlyWarnings = ext.EarlyWarnings
	}
	if ext.ActionPlan != nil {
		result.ActionPlan = ext.ActionPlan
	}
	if ext.Summary != "" {
		result.Summary = ext.Summary
	}
	if ext.Confidence != nil {
		result.Confidence = *ext.Confidence
	}
	if ext.HealthMap != nil {
		if ext.HealthMap.FieldSize != "" {
			result.FieldSize = ext.HealthMap.FieldSize
		}
		if ext.HealthMap.CropType != "" {
			result.CropType = ext.HealthMap.CropType
		}
		if ext.HealthMap.GrowthStage != "" {
			result.GrowthStage = ext.HealthMap.GrowthStage
		}
	}
}
