package dns

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPLookuper posts {domain, recordType} to a DNS-JSON lookup endpoint, such
// as the server's own /api/dns-lookup.
type HTTPLookuper struct {
	endpoint string
	client   *http.Client
}

func NewHTTPLookuper(endpoint string, timeout time.Duration) *HTTPLookuper {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPLookuper{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (l *HTTPLookuper) Lookup(ctx context.Context, _ VantagePoint, domain string, rt RecordType) ([]Record, error) {
	body, err := json.Marshal(LookupRequest{Domain: domain, RecordType: string(rt)})
	if err != nil {
		return nil, fmt.Errorf("encode lookup request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build lookup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/dns-json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("lookup endpoint returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out JSONResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode lookup response: %w", err)
	}
	if err := rcodeError(out.Status); err != nil {
		return nil, err
	}
	return out.Records(rt), nil
}
