package optimizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// #region client-struct
// Client talks to the Python evolve sidecar over HTTP.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// #endregion client-struct

// #region constructor
// NewClient creates a sidecar client. token may be empty when the sidecar
// runs without auth. timeout bounds the whole evolve call so the caller's
// in-flight slot always resolves.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// NewClientWithHTTP creates a client with an injected *http.Client.
// Used for testing without a real sidecar.
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: baseURL, http: hc}
}

// #endregion constructor

// #region evolve
// Evolve runs one optimization pass against the sidecar.
func (c *Client) Evolve(ctx context.Context, req EvolveRequest) (EvolveResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return EvolveResult{}, fmt.Errorf("marshal evolve request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/evolve", bytes.NewReader(body))
	if err != nil {
		return EvolveResult{}, fmt.Errorf("build evolve request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return EvolveResult{}, fmt.Errorf("evolve rpc: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return EvolveResult{}, fmt.Errorf("evolve rpc: sidecar returned %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}

	var result EvolveResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return EvolveResult{}, fmt.Errorf("decode evolve response: %w", err)
	}
	if err := validateResult(result); err != nil {
		return EvolveResult{}, fmt.Errorf("evolve rpc: %w", err)
	}
	return result, nil
}

// validateResult rejects structurally incomplete sidecar output.
func validateResult(r EvolveResult) error {
	if r.Champion.ID == "" {
		return fmt.Errorf("incomplete result: missing champion")
	}
	if len(r.ChampionEvaluation.Objectives) == 0 {
		return fmt.Errorf("incomplete result: missing champion evaluation")
	}
	return nil
}

// #endregion evolve

// #region health
// Healthy probes the sidecar's health endpoint.
func (c *Client) Healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("health probe: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health probe: sidecar returned %d", resp.StatusCode)
	}
	return nil
}

// #endregion health
