package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"synathrozo/internal/domain"
)

type functionResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Error   string `json:"error"`
}

type httpClient struct {
	client *http.Client
	url    string
	key    string
}

// NewHTTPClient returns a DeliveryClient that posts to the email function at url,
// authenticating with key as a bearer token.
func NewHTTPClient(client *http.Client, url, key string) domain.DeliveryClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpClient{client: client, url: url, key: key}
}

func (c *httpClient) newRequest(ctx context.Context, method string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.key != "" {
		req.Header.Set("Authorization", "Bearer "+c.key)
	}
	return req, nil
}

func (c *httpClient) Send(ctx context.Context, in *domain.DeliveryRequest) (*domain.DeliveryReceipt, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call email function: %w", err)
	}
	defer resp.Body.Close()

	var out functionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("email function returned status %d: %w", resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !out.Success {
		if out.Error != "" {
			return nil, errors.New(out.Error)
		}
		return nil, fmt.Errorf("email function returned status %d", resp.StatusCode)
	}
	return &domain.DeliveryReceipt{ID: out.ID}, nil
}

func (c *httpClient) Probe(ctx context.Context) bool {
	req, err := c.newRequest(ctx, http.MethodOptions, nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
