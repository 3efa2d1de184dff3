// Package assessment talks to the external qualitative-assessment service
// (the generative-AI side of the advisory product). Its absence is never an
// error: every consumer substitutes fixed defaults.
package assessment

// Defaults used when no external assessment is available.
const (
	DefaultGrowthStage = "Vegetative"
	DefaultConfidence  = 85
)

// Assessment is the optional qualitative object returned by the external
// service. Every field may be missing.
type Assessment struct {
	Zones         []ZoneAssessment `json:"zones,omitempty"`
	EarlyWarnings []Warning        `json:"earlyWarnings,omitempty"`
	ActionPlan    []ActionItem     `json:"actionPlan,omitempty"`
	HealthMap     *HealthMap       `json:"healthMap,omitempty"`
	Summary       string           `json:"summary,omitempty"`
	Confidence    *int             `json:"confidence,omitempty"`
}

// ZoneAssessment carries per-zone qualitative fields. Zones are matched
// positionally against the fixed NW/NE/SW/SE label order, so only the first
// four entries are meaningful.
type ZoneAssessment struct {
	Name           *string  `json:"name,omitempty"`
	Condition      *string  `json:"condition,omitempty"`
	Issues         []string `json:"issues,omitempty"`
	Recommendation *string  `json:"recommendation,omitempty"`
}

// HealthMap holds free-text field metadata from the external service.
type HealthMap struct {
	FieldSize   string `json:"fieldSize,omitempty"`
	CropType    string `json:"cropType,omitempty"`
	GrowthStage string `json:"growthStage,omitempty"`
}

// Warning is a single early warning, either externally supplied or derived
// from zone statistics.
type Warning struct {
	Zone     string `json:"zone,omitempty"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// ActionItem is one entry of the prioritized action plan.
type ActionItem struct {
	Priority int    `json:"priority"`
	Action   string `json:"action"`
	Timeline string `json:"timeline,omitempty"`
}
