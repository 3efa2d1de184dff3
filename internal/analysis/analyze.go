// Package analysis orchestrates the field health pipeline: decode, composite
// rendering, zonal aggregation, field sampling, classification and
// recommendation synthesis. Starting a new analysis supersedes any in-flight
// one; a superseded run stops at the next between-pass checkpoint and its
// partial results are discarded.
package analysis

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/croplens/croplens/internal/advisory"
	"github.com/croplens/croplens/internal/assessment"
	"github.com/croplens/croplens/internal/cache"
	"github.com/croplens/croplens/internal/composite"
	"github.com/croplens/croplens/internal/health"
	"github.com/croplens/croplens/internal/properties"
	"github.com/croplens/croplens/internal/raster"
	"github.com/croplens/croplens/internal/zone"
)

// Request describes one analysis invocation. Either ImagePath or Buffer must
// be set; Buffer wins when both are.
type Request struct {
	ImagePath string
	Buffer    *raster.Buffer
	ZoneCount int
	CropType  string
}

// Analyzer runs analyses and enforces the supersede rule: at most one run is
// in flight, and a newer one cancels it.
type Analyzer struct {
	mu     sync.Mutex
	cancel context.CancelFunc

	assess          *assessment.Client
	assessmentCache *cache.FileCache[assessment.Assessment]
	showProgress    bool
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithAssessmentClient enables qualitative enrichment from the external
// advisory service.
func WithAssessmentClient(c *assessment.Client) Option {
	return func(a *Analyzer) { a.assess = c }
}

// WithProgress prints a progress bar across pipeline passes.
func WithProgress() Option {
	return func(a *Analyzer) { a.showProgress = true }
}

// New builds an Analyzer. When an advisory service URL is configured the
// assessment client and its response cache are wired in automatically.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{}
	if url := properties.AdvisoryServiceURL(); url != "" {
		a.assess = assessment.NewClient(url)
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.assess != nil {
		a.assessmentCache = cache.NewFileCache[assessment.Assessment]("assessment_cache")
	}
	return a
}

// Analyze runs the full pipeline and returns the final result. A decode
// failure aborts with no partial output; cancellation is honored between
// passes only.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*advisory.Result, error) {
	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.mu.Unlock()
	defer cancel()

	var bar *progressbar.ProgressBar
	if a.showProgress {
		bar = progressbar.Default(6, "Analyzing field")
	}
	step := func() {
		if bar != nil {
			bar.Add(1)
		}
	}

	buf := req.Buffer
	if buf == nil {
		var err error
		buf, err = raster.DecodeFile(req.ImagePath)
		if err != nil {
			return nil, fmt.Errorf("analysis failed: %w", err)
		}
	}
	step()

	if err := runCtx.Err(); err != nil {
		return nil, fmt.Errorf("analysis superseded: %w", err)
	}
	composites, err := composite.RenderAll(runCtx, buf)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	step()

	if err := runCtx.Err(); err != nil {
		return nil, fmt.Errorf("analysis superseded: %w", err)
	}
	zones, err := zone.Aggregate(buf, req.ZoneCount)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	step()

	if err := runCtx.Err(); err != nil {
		return nil, fmt.Errorf("analysis superseded: %w", err)
	}
	fieldStats, err := zone.FieldStatistics(buf)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	step()

	gridSize := zone.GridSize(req.ZoneCount)
	classified := health.Classify(zones, gridSize)
	anomalies := health.FindNDVIAnomalies(classified)
	step()

	if err := runCtx.Err(); err != nil {
		return nil, fmt.Errorf("analysis superseded: %w", err)
	}
	ext := a.fetchAssessment(runCtx, buf, req, fieldStats, zones)

	if ext != nil {
		classified = advisory.MergeZones(classified, ext.Zones, gridSize)
	}

	var externalWarnings []assessment.Warning
	var externalActions []assessment.ActionItem
	if ext != nil {
		externalWarnings = ext.EarlyWarnings
		externalActions = ext.ActionPlan
	}

	result := &advisory.Result{
		Zones:               classified,
		Composites:          composites,
		GlobalStats:         fieldStats,
		EarlyWarnings:       advisory.EarlyWarnings(classified, externalWarnings),
		ResourceApplication: advisory.ResourceApplication(classified),
		ActionPlan:          advisory.GenerateActionPlan(classified, externalActions),
		Anomalies:           anomalies,
		CropType:            req.CropType,
		Source:              buf,
	}
	advisory.ApplyAssessment(result, ext)
	step()

	return result, nil
}

// fetchAssessment returns nil whenever enrichment is unavailable; the
// pipeline treats that as normal.
func (a *Analyzer) fetchAssessment(ctx context.Context, buf *raster.Buffer, req Request, stats zone.FieldStats, zones []zone.Zone) *assessment.Assessment {
	if a.assess == nil {
		return nil
	}

	key := ""
	if a.assessmentCache != nil {
		key = a.assessmentCache.GenerateKey(imageChecksum(buf), req.ZoneCount, req.CropType)
		if cached, ok := a.assessmentCache.Get(key); ok {
			return &cached
		}
	}

	ext, err := a.assess.Fetch(ctx, assessment.Request{
		CropType:   req.CropType,
		ZoneCount:  req.ZoneCount,
		FieldStats: stats,
		Zones:      zones,
	})
	if err != nil {
		fmt.Printf("Assessment service unavailable, continuing with computed data: %v\n", err)
		return nil
	}

	if a.assessmentCache != nil && key != "" {
		if err := a.assessmentCache.Set(key, *ext); err != nil {
			fmt.Printf("Failed to cache assessment: %v\n", err)
		}
	}
	return ext
}

func imageChecksum(buf *raster.Buffer) string {
	h := sha1.New()
	h.Write(buf.Pix)
	return hex.EncodeToString(h.Sum(nil))
}
