package prefetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const vulnBatchSize = 500

// vulnQuery is one {name, version, ecosystem} triple sent to the
// vulnerability service.
type vulnQuery struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Ecosystem string `json:"ecosystem"`
}

type vulnBatchResponse struct {
	Results [][]VulnerabilityInfo `json:"results"`
}

// VulnClient issues batched vulnerability queries against an OSV-shaped
// batch endpoint.
type VulnClient struct {
	HTTPClient *http.Client
	BaseURL    string
	Ecosystem  string
}

// WorkItem is one (name, version) pair the prefetcher needs data for.
type WorkItem struct {
	Name    string
	Version string
}

// QueryBatch chunks items into groups of up to 500 and issues one request
// per chunk, returning results keyed by "name@version".
func (c *VulnClient) QueryBatch(ctx context.Context, items []WorkItem) (map[string][]VulnerabilityInfo, error) {
	out := make(map[string][]VulnerabilityInfo, len(items))

	for start := 0; start < len(items); start += vulnBatchSize {
		end := start + vulnBatchSize
		if end > len(items) {
			end = len(items)
		}
		chunk := items[start:end]

		queries := make([]vulnQuery, len(chunk))
		for i, item := range chunk {
			ecosystem := c.Ecosystem
			if ecosystem == "" {
				ecosystem = "npm"
			}
			queries[i] = vulnQuery{Name: item.Name, Version: item.Version, Ecosystem: ecosystem}
		}

		body, err := json.Marshal(map[string]interface{}{"queries": queries})
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return nil, err
		}
		var decoded vulnBatchResponse
		err = json.NewDecoder(resp.Body).Decode(&decoded)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("decode vulnerability batch response: %w", err)
		}

		for i, item := range chunk {
			if i < len(decoded.Results) {
				out[item.Name+"@"+item.Version] = decoded.Results[i]
			}
		}
	}
	return out, nil
}
