// Package advisory turns classified zones into early warnings, a
// resource-application plan and a prioritized action plan, and merges the
// optional external qualitative assessment on top with an explicit,
// auditable precedence.
package advisory

import (
	"fmt"
	"strings"

	"github.com/croplens/croplens/internal/assessment"
	"github.com/croplens/croplens/internal/health"
)

// ResourcePlan groups zones by the resource they need.
type ResourcePlan struct {
	IrrigationUrgent    []string `json:"irrigationUrgent"`
	IrrigationScheduled []string `json:"irrigationScheduled"`
	FertilizerNeeded    []string `json:"fertilizerNeeded"`
	PestInspection      []string `json:"pestInspection"`
	Guidance            string   `json:"guidance"`
}

// EarlyWarnings starts from the external warning list unchanged, then appends
// computed warnings per zone in index order. Water stress outranks nutrient
// deficiency within a zone.
func EarlyWarnings(zones []health.ClassifiedZone, external []assessment.Warning) []assessment.Warning {
	warnings := make([]assessment.Warning, 0, len(external)+len(zones))
	warnings = append(warnings, external...)

	for _, z := range zones {
		switch {
		case z.WaterStress && z.StressPct > 30:
			severity := "High"
			if z.AvgNDWI < -0.3 {
				severity = "Critical"
			}
			warnings = append(warnings, assessment.Warning{
				Zone:     z.Name,
				Severity: severity,
				Message:  fmt.Sprintf("Water stress across %.1f%% of %s - irrigation shortfall likely", z.StressPct, z.Name),
			})
		case z.VegetationStress && !z.WaterStress:
			warnings = append(warnings, assessment.Warning{
				Zone:     z.Name,
				Severity: "Moderate",
				Message:  fmt.Sprintf("Possible nutrient deficiency in %s - canopy vigor below target", z.Name),
			})
		}
	}
	return warnings
}

// ResourceApplication partitions zones by need category and produces the
// field-wide guidance text.
func ResourceApplication(zones []health.ClassifiedZone) ResourcePlan {
	plan := ResourcePlan{
		IrrigationUrgent:    []string{},
		IrrigationScheduled: []string{},
		FertilizerNeeded:    []string{},
		PestInspection:      []string{},
	}

	for _, z := range zones {
		if strings.Contains(z.IrrigationNeed, "Critical") || strings.Contains(z.IrrigationNeed, "High") {
			plan.IrrigationUrgent = append(plan.IrrigationUrgent, z.Name)
		} else if strings.Contains(z.IrrigationNeed, "Moderate") {
			plan.IrrigationScheduled = append(plan.IrrigationScheduled, z.Name)
		}
		if strings.Contains(z.FertilizationNeed, "High") || strings.Contains(z.FertilizationNeed, "Moderate") {
			plan.FertilizerNeeded = append(plan.FertilizerNeeded, z.Name)
		}
		if z.Priority == health.PriorityCritical || z.Priority == health.PriorityHigh {
			plan.PestInspection = append(plan.PestInspection, z.Name)
		}
	}

	if len(plan.IrrigationUrgent) > 0 {
		plan.Guidance = "Prioritize urgent irrigation zones before any other field work; recheck canopy moisture within 48 hours."
	} else {
		plan.Guidance = "Maintain the current application schedule and monitor zone statistics weekly."
	}
	return plan
}

// actionDedupePrefixLen bounds the case-insensitive prefix compared when
// deciding whether an external action item repeats a computed one.
const actionDedupePrefixLen = 20

// GenerateActionPlan builds the prioritized action list: urgent irrigation if
// any zone is Critical, corrective work if any is High, a fixed inspection
// item always, then external items that are not already represented.
// Priorities are renumbered sequentially as items are appended.
func GenerateActionPlan(zones []health.ClassifiedZone, external []assessment.ActionItem) []assessment.ActionItem {
	var critical, high []string
	for _, z := range zones {
		switch z.Priority {
		case health.PriorityCritical:
			critical = append(critical, z.Name)
		case health.PriorityHigh:
			high = append(high, z.Name)
		}
	}

	var plan []assessment.ActionItem
	if len(critical) > 0 {
		plan = append(plan, assessment.ActionItem{
			Priority: len(plan) + 1,
			Action:   fmt.Sprintf("Apply urgent irrigation for %s", strings.Join(critical, ", ")),
			Timeline: "Within 24 hours",
		})
	}
	if len(high) > 0 {
		plan = append(plan, assessment.ActionItem{
			Priority: len(plan) + 1,
			Action:   fmt.Sprintf("Schedule corrective treatment for %s", strings.Join(high, ", ")),
			Timeline: "Within 3 days",
		})
	}
	plan = append(plan, assessment.ActionItem{
		Priority: len(plan) + 1,
		Action:   "Conduct field inspection to verify zone readings",
		Timeline: "This week",
	})

	for _, item := range external {
		if containsAction(plan, item.Action) {
			continue
		}
		item.Priority = len(plan) + 1
		plan = append(plan, item)
	}
	return plan
}

func containsAction(plan []assessment.ActionItem, action string) bool {
	probe := actionPrefix(action)
	for _, item := range plan {
		existing := actionPrefix(item.Action)
		if strings.Contains(existing, probe) || strings.Contains(probe, existing) {
			return true
		}
	}
	return false
}

func actionPrefix(action string) string {
	s := strings.ToLower(strings.TrimSpace(action))
	if len(s) > actionDedupePrefixLen {
		s = s[:actionDedupePrefixLen]
	}
	return s
}
