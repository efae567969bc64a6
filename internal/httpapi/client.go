package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Client talks to a running inference server.
type Client struct {
	baseURL string
	hc      *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      http.DefaultClient,
	}
}

// Infer posts named feature columns and returns one output vector per
// input row.
func (c *Client) Infer(ctx context.Context, experiment string, inputs map[string][]float64) ([][]float64, error) {
	body, err := json.Marshal(InferRequest{Inputs: inputs})
	if err != nil {
		return nil, err
	}

	url := c.baseURL + "/api/infer/" + experiment
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(b, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("infer %s: %s", experiment, apiErr.Error)
		}
		return nil, fmt.Errorf("infer %s: status %d", experiment, resp.StatusCode)
	}

	var out InferResponse
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out.Outputs, nil
}

// Experiments fetches the server's experiment list.
func (c *Client) Experiments(ctx context.Context) ([]ExperimentInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/experiments", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list experiments: status %d", resp.StatusCode)
	}
	var infos []ExperimentInfo
	if err := json.NewDecoder(resp.Body).Decode(&infos); err != nil {
		return nil, err
	}
	return infos, nil
}
