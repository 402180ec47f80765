// Package providers contains the Cloudflare DNS record API client.
//
// The client is deliberately a direct HTTP client rather than the official
// SDK: the service touches three zone-scoped endpoints and nothing else, and
// a direct client keeps the dependency tree light.
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/think0rcode/whatismyip/internal/dns/domain"
)

const (
	cloudflareBaseURL = "https://api.cloudflare.com/client/v4"
	cloudflareTimeout = 30 * time.Second

	// recordTTL of 1 means "automatic" in Cloudflare terms. Together with
	// proxied=false this is fixed policy for every record this service
	// touches, not configuration.
	recordTTL     = 1
	recordProxied = false
)

// CloudflareClient performs authenticated record CRUD calls against the
// Cloudflare API v4. It authenticates via a scoped API token with Zone:Read
// and DNS:Edit permissions.
type CloudflareClient struct {
	token   string
	baseURL string
	client  *http.Client
	log     logr.Logger
}

// NewCloudflareClient creates a CloudflareClient with the given API token.
func NewCloudflareClient(token string, log logr.Logger) *CloudflareClient {
	return &CloudflareClient{
		token:   token,
		baseURL: cloudflareBaseURL,
		client:  &http.Client{Timeout: cloudflareTimeout},
		log:     log,
	}
}

// --- API request/response types ---

// cfEnvelope is the standard Cloudflare API response wrapper.
type cfEnvelope[T any] struct {
	Success bool      `json:"success"`
	Errors  []cfError `json:"errors"`
	Result  T         `json:"result"`
}

// cfError represents a single Cloudflare API error.
type cfError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// cfDNSRecord is the Cloudflare DNS record object.
type cfDNSRecord struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// cfRecordBody is the request body for creating or updating a DNS record.
type cfRecordBody struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	TTL     int    `json:"ttl"`
	Proxied bool   `json:"proxied"`
}

// --- HTTP helpers ---

// envelopeError converts an unsuccessful envelope into a domain error.
// The success flag is authoritative regardless of HTTP status; Cloudflare
// reports partial failures with 200 responses.
func envelopeError(success bool, errors []cfError) error {
	if success {
		return nil
	}
	return fmt.Errorf("%w: %s", domain.ErrProvider, cfErrorString(errors))
}

// cfErrorString joins multiple Cloudflare errors into a single string.
func cfErrorString(errors []cfError) string {
	if len(errors) == 0 {
		return "unknown error"
	}
	msgs := make([]string, 0, len(errors))
	for _, e := range errors {
		msgs = append(msgs, fmt.Sprintf("[%d] %s", e.Code, e.Message))
	}
	return strings.Join(msgs, "; ")
}

// doJSON executes an authenticated request and decodes the response into out.
func (c *CloudflareClient) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("cloudflare: failed to encode request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("cloudflare: failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("cloudflare: request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("cloudflare: failed to decode response: %w", err)
	}

	return nil
}

// recordBody builds the fixed-policy create/update payload.
func recordBody(t domain.RecordType, name, content string) cfRecordBody {
	return cfRecordBody{
		Type:    string(t),
		Name:    name,
		Content: content,
		TTL:     recordTTL,
		Proxied: recordProxied,
	}
}

// --- Record operations ---

// ListRecords returns the zone's DNS records matching the given name and type.
func (c *CloudflareClient) ListRecords(ctx context.Context, zoneID, name string, t domain.RecordType) ([]domain.Record, error) {
	path := fmt.Sprintf("/zones/%s/dns_records?name=%s&type=%s",
		zoneID, url.QueryEscape(name), url.QueryEscape(string(t)))

	var out cfEnvelope[[]cfDNSRecord]
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list %s records for %q: %w", t, name, err)
	}
	if apiErr := envelopeError(out.Success, out.Errors); apiErr != nil {
		return nil, fmt.Errorf("failed to list %s records for %q: %w", t, name, apiErr)
	}

	records := make([]domain.Record, 0, len(out.Result))
	for _, r := range out.Result {
		records = append(records, domain.Record{
			ID:      r.ID,
			Type:    domain.RecordType(r.Type),
			Name:    r.Name,
			Content: r.Content,
		})
	}
	return records, nil
}

// CreateRecord creates a new DNS record and returns the provider-assigned id.
func (c *CloudflareClient) CreateRecord(ctx context.Context, zoneID, name, content string, t domain.RecordType) (string, error) {
	c.log.Info("creating record", "name", name, "type", t, "content", content)

	path := fmt.Sprintf("/zones/%s/dns_records", zoneID)
	var out cfEnvelope[cfDNSRecord]
	if err := c.doJSON(ctx, http.MethodPost, path, recordBody(t, name, content), &out); err != nil {
		return "", fmt.Errorf("failed to create %s record for %q: %w", t, name, err)
	}
	if apiErr := envelopeError(out.Success, out.Errors); apiErr != nil {
		return "", fmt.Errorf("failed to create %s record for %q: %w", t, name, apiErr)
	}

	return out.Result.ID, nil
}

// UpdateRecord replaces an existing DNS record's content by id.
func (c *CloudflareClient) UpdateRecord(ctx context.Context, zoneID, id, name, content string, t domain.RecordType) error {
	c.log.Info("updating record", "name", name, "type", t, "content", content, "id", id)

	path := fmt.Sprintf("/zones/%s/dns_records/%s", zoneID, id)
	var out cfEnvelope[json.RawMessage]
	if err := c.doJSON(ctx, http.MethodPut, path, recordBody(t, name, content), &out); err != nil {
		return fmt.Errorf("failed to update record %q for %q: %w", id, name, err)
	}
	if apiErr := envelopeError(out.Success, out.Errors); apiErr != nil {
		return fmt.Errorf("failed to update record %q for %q: %w", id, name, apiErr)
	}

	return nil
}
