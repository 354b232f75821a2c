package mlclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a client for the secondary classifier service API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClassifyRequest represents a single classification request.
type ClassifyRequest struct {
	Text      string  `json:"text"`
	Threshold float64 `json:"threshold"`
}

// Classification represents the classification result.
type Classification struct {
	Category     string  `json:"category"`
	RiskScore    float64 `json:"risk_score"`
	IsScam       bool    `json:"is_scam"`
	Confidence   float64 `json:"confidence"`
	ModelVersion string  `json:"model_version,omitempty"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	Message     string `json:"message"`
}

// NewClient creates a new secondary classifier client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Classify classifies a single text.
func (c *Client) Classify(ctx context.Context, text string, threshold float64) (*Classification, error) {
	reqBody := ClassifyRequest{
		Text:      text,
		Threshold: threshold,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/v1/classify", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("classifier service returned status %d: %s", resp.StatusCode, string(body))
	}

	var result Classification
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

// HealthCheck checks if the classifier service is healthy.
func (c *Client) HealthCheck(ctx context.Context) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/v1/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("classifier service returned status %d: %s", resp.StatusCode, string(body))
	}

	var result HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}
