// Package cloudflare points site hostnames at the server through the
// Cloudflare DNS API.
package cloudflare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const baseURL = "https://api.cloudflare.com/client/v4"

// Client is a minimal Cloudflare API client for DNS record management.
type Client struct {
	apiToken   string
	httpClient *http.Client
}

// Record represents a Cloudflare DNS record.
type Record struct {
	ID      string `json:"id,omitempty"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	TTL     int    `json:"ttl,omitempty"`
	Proxied bool   `json:"proxied"`
}

type apiResponse struct {
	Success bool            `json:"success"`
	Errors  []apiError      `json:"errors"`
	Result  json.RawMessage `json:"result"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type zoneResult struct {
	ID string `json:"id"`
}

// NewClient creates a new Cloudflare API client.
func NewClient(apiToken string) *Client {
	return &Client{
		apiToken:   apiToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// GetZoneID returns the zone ID for the given domain.
func (c *Client) GetZoneID(ctx context.Context, domain string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/zones?name="+url.QueryEscape(domain), nil)
	if err != nil {
		return "", err
	}

	var resp apiResponse
	if err := c.do(req, &resp); err != nil {
		return "", fmt.Errorf("get zone ID: %w", err)
	}

	var zones []zoneResult
	if err := json.Unmarshal(resp.Result, &zones); err != nil {
		return "", fmt.Errorf("parse zones: %w", err)
	}

	if len(zones) == 0 {
		return "", fmt.Errorf("no zone found for domain %s", domain)
	}

	return zones[0].ID, nil
}

// FindRecord returns the record with the given type and name, if any.
func (c *Client) FindRecord(ctx context.Context, zoneID, recordType, name string) (*Record, error) {
	q := url.Values{"type": {recordType}, "name": {name}}
	req, err := c.newRequest(ctx, http.MethodGet,
		fmt.Sprintf("/zones/%s/dns_records?%s", zoneID, q.Encode()), nil)
	if err != nil {
		return nil, err
	}

	var resp apiResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("find DNS record %s %s: %w", recordType, name, err)
	}

	var records []Record
	if err := json.Unmarshal(resp.Result, &records); err != nil {
		return nil, fmt.Errorf("parse records: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// CreateRecord creates a DNS record.
func (c *Client) CreateRecord(ctx context.Context, zoneID string, rec Record) error {
	req, err := c.newJSONRequest(ctx, http.MethodPost, fmt.Sprintf("/zones/%s/dns_records", zoneID), rec)
	if err != nil {
		return err
	}
	var resp apiResponse
	if err := c.do(req, &resp); err != nil {
		return fmt.Errorf("create DNS record %s %s: %w", rec.Type, rec.Name, err)
	}
	return nil
}

// UpdateRecord replaces the DNS record with the given ID.
func (c *Client) UpdateRecord(ctx context.Context, zoneID, recordID string, rec Record) error {
	req, err := c.newJSONRequest(ctx, http.MethodPut, fmt.Sprintf("/zones/%s/dns_records/%s", zoneID, recordID), rec)
	if err != nil {
		return err
	}
	var resp apiResponse
	if err := c.do(req, &resp); err != nil {
		return fmt.Errorf("update DNS record %s: %w", recordID, err)
	}
	return nil
}

// UpsertRecord makes name resolve to content in zone. A matching record is
// left untouched.
func (c *Client) UpsertRecord(ctx context.Context, zone, recordType, name, content string) error {
	zoneID, err := c.GetZoneID(ctx, zone)
	if err != nil {
		return err
	}

	existing, err := c.FindRecord(ctx, zoneID, recordType, name)
	if err != nil {
		return err
	}

	rec := Record{Type: recordType, Name: name, Content: content, TTL: 1}
	switch {
	case existing == nil:
		return c.CreateRecord(ctx, zoneID, rec)
	case existing.Content == content:
		return nil
	default:
		return c.UpdateRecord(ctx, zoneID, existing.ID, rec)
	}
}

func (c *Client) newJSONRequest(ctx context.Context, method, path string, v any) (*http.Request, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return c.newRequest(ctx, method, path, bytes.NewReader(body))
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, out *apiResponse) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w (status %d)", err, resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !out.Success {
		if len(out.Errors) > 0 {
			return fmt.Errorf("API error (status %d): %s (code %d)", resp.StatusCode, out.Errors[0].Message, out.Errors[0].Code)
		}
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return nil
}
