package assessment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/croplens/croplens/internal/zone"
)

func TestFetchDecodesAssessment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/assessments", r.URL.Path)

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Corn", req.CropType)
		assert.Equal(t, 4, req.ZoneCount)

		confidence := 91
		json.NewEncoder(w).Encode(Assessment{
			Summary:    "Field looks balanced",
			Confidence: &confidence,
			HealthMap:  &HealthMap{GrowthStage: "Flowering"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	out, err := c.Fetch(context.Background(), Request{
		CropType:   "Corn",
		ZoneCount:  4,
		FieldStats: zone.FieldStats{AvgNDVI: 0.4, OverallHealth: 70},
	})
	require.NoError(t, err)

	assert.Equal(t, "Field looks balanced", out.Summary)
	require.NotNil(t, out.Confidence)
	assert.Equal(t, 91, *out.Confidence)
	assert.Equal(t, "Flowering", out.HealthMap.GrowthStage)
}

func TestFetchNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "service busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Fetch(context.Background(), Request{ZoneCount: 4})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-2xx")
}
