package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/croplens/croplens/internal/health"
)

// zoneRecord flattens a classified zone for CSV export.
type zoneRecord struct {
	Name              string  `csv:"zone"`
	Row               int     `csv:"row"`
	Col               int     `csv:"col"`
	AvgNDVI           float64 `csv:"avg_ndvi"`
	AvgNDWI           float64 `csv:"avg_ndwi"`
	AvgVARI           float64 `csv:"avg_vari"`
	StressPct         float64 `csv:"stress_pct"`
	HealthScore       int     `csv:"health_score"`
	WaterStress       bool    `csv:"water_stress"`
	VegetationStress  bool    `csv:"vegetation_stress"`
	IrrigationNeed    string  `csv:"irrigation_need"`
	FertilizationNeed string  `csv:"fertilization_need"`
	Priority          string  `csv:"priority"`
}

// CreateZoneReportCSV writes the per-zone statistics table.
func CreateZoneReportCSV(zones []health.ClassifiedZone, dir, prefix string) (string, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create output folder: %w", err)
	}

	records := make([]zoneRecord, 0, len(zones))
	for _, z := range zones {
		records = append(records, zoneRecord{
			Name:              z.Name,
			Row:               z.RowIndex,
			Col:               z.ColIndex,
			AvgNDVI:           z.AvgNDVI,
			AvgNDWI:           z.AvgNDWI,
			AvgVARI:           z.AvgVARI,
			StressPct:         z.StressPct,
			HealthScore:       z.HealthScore,
			WaterStress:       z.WaterStress,
			VegetationStress:  z.VegetationStress,
			IrrigationNeed:    z.IrrigationNeed,
			FertilizationNeed: z.FertilizationNeed,
			Priority:          string(z.Priority),
		})
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_zones.csv", prefix))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create zone report file: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&records, file); err != nil {
		return "", fmt.Errorf("failed to write zone report: %w", err)
	}
	return path, nil
}

// CreateZoneGeoJSON exports the zone grid as a FeatureCollection of
// pixel-space polygons carrying the aggregate statistics as properties.
// Coordinates are image pixels, not geographic, since field photos carry no
// georeference.
func CreateZoneGeoJSON(zones []health.ClassifiedZone, dir, prefix string) (string, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create output folder: %w", err)
	}

	fc := geojson.NewFeatureCollection()
	for _, z := range zones {
		rect := z.Rect
		ring := orb.Ring{
			{float64(rect.Min.X), float64(rect.Min.Y)},
			{float64(rect.Max.X), float64(rect.Min.Y)},
			{float64(rect.Max.X), float64(rect.Max.Y)},
			{float64(rect.Min.X), float64(rect.Max.Y)},
			{float64(rect.Min.X), float64(rect.Min.Y)},
		}
		feature := geojson.NewFeature(orb.Polygon{ring})
		feature.Properties = geojson.Properties{
			"zone":        z.Name,
			"avgNdvi":     z.AvgNDVI,
			"avgNdwi":     z.AvgNDWI,
			"avgVari":     z.AvgVARI,
			"stressPct":   z.StressPct,
			"healthScore": z.HealthScore,
			"priority":    string(z.Priority),
		}
		fc.Append(feature)
	}

	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode zone geojson: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_zones.geojson", prefix))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write zone geojson: %w", err)
	}
	return path, nil
}
