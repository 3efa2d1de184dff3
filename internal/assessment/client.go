package assessment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/croplens/croplens/internal/properties"
	"github.com/croplens/croplens/internal/zone"
)

// Request is the payload sent to the assessment service: the computed field
// summary plus the crop type the farmer selected, if any.
type Request struct {
	CropType   string          `json:"cropType,omitempty"`
	ZoneCount  int             `json:"zoneCount"`
	FieldStats zone.FieldStats `json:"fieldStats"`
	Zones      []zone.Zone     `json:"zones"`
}

// Client fetches qualitative assessments over JSON/HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for the given base URL. When client credentials
// are configured the underlying HTTP client handles token acquisition and
// refresh; otherwise requests go out unauthenticated.
func NewClient(baseURL string) *Client {
	httpClient := &http.Client{Timeout: 25 * time.Second}

	if properties.AdvisoryClientID() != "" {
		conf := clientcredentials.Config{
			ClientID:     properties.AdvisoryClientID(),
			ClientSecret: properties.AdvisoryClientSecret(),
			TokenURL:     properties.AdvisoryTokenURL(),
		}
		httpClient = conf.Client(context.Background())
		httpClient.Timeout = 25 * time.Second
	}

	return &Client{baseURL: baseURL, http: httpClient}
}

// Fetch posts the computed summary and returns the qualitative assessment.
func (c *Client) Fetch(ctx context.Context, in Request) (*Assessment, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("marshal assessment request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/assessments", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build assessment request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("assessment call failed: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("assessment service non-2xx: %s, body: %s", resp.Status, string(data))
	}

	var out Assessment
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode assessment response: %w", err)
	}
	return &out, nil
}
