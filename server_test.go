package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	dnspkg "dnsprop/dns"
)

type fakeResolver struct {
	resp *dnspkg.JSONResponse
	err  error
	got  dnspkg.LookupRequest
}

func (f *fakeResolver) Resolve(ctx context.Context, domain string, rt dnspkg.RecordType) (*dnspkg.JSONResponse, error) {
	f.got = dnspkg.LookupRequest{Domain: domain, RecordType: string(rt)}
	return f.resp, f.err
}

func testConfig() *dnspkg.Config {
	cfg := dnspkg.DefaultConfig
	cfg.VantagePoints = []dnspkg.VantagePoint{
		{Name: "New York", Resolver: "192.0.2.1", Flag: "🇺🇸", Region: dnspkg.RegionAmericas},
		{Name: "London", Resolver: "192.0.2.2", Flag: "🇬🇧", Region: dnspkg.RegionEurope},
		{Name: "Tokyo", Resolver: "192.0.2.3", Flag: "🇯🇵", Region: dnspkg.RegionAsia},
		{Name: "Sydney", Resolver: "192.0.2.4", Flag: "🇦🇺", Region: dnspkg.RegionOceania},
	}
	cfg.Probe.Delay = "0s"
	cfg.Server.MaxSessions = 2
	return &cfg
}

// fakeLookuper propagates everywhere except Tokyo, which fails.
func fakeLookuper() dnspkg.LookupFunc {
	return func(ctx context.Context, point dnspkg.VantagePoint, domain string, rt dnspkg.RecordType) ([]dnspkg.Record, error) {
		if point.Name == "Tokyo" {
			return nil, errors.New("i/o timeout")
		}
		return []dnspkg.Record{{Data: "93.184.216.34"}}, nil
	}
}

func newTestServer(t *testing.T, resolver Resolver) *Server {
	t.Helper()
	if resolver == nil {
		resolver = &fakeResolver{resp: &dnspkg.JSONResponse{}}
	}
	s, err := NewServer(testConfig(), fakeLookuper(), resolver, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewServer returned error: %v", err)
	}
	return s
}

func doRequest(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	w := doRequest(s, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected health response %d %s", w.Code, w.Body.String())
	}
}

func TestCheckValidation(t *testing.T) {
	s := newTestServer(t, nil)

	for _, target := range []string{"/check", "/check?domain=%20%20", "/check?domain=example.com&type=SRV"} {
		w := doRequest(s, http.MethodGet, target, "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, w.Code)
		}
		var resp errorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Error == "" {
			t.Fatalf("%s: expected error body, got %s", target, w.Body.String())
		}
	}
}

func TestCheckAndRetrieve(t *testing.T) {
	s := newTestServer(t, nil)

	w := doRequest(s, http.MethodGet, "/check?domain=https://example.com/&type=a", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		dnspkg.CheckSummary
		StatusLabel string `json:"status_label"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Domain != "example.com" || resp.RecordType != dnspkg.TypeA {
		t.Fatalf("unexpected domain/type %q %q", resp.Domain, resp.RecordType)
	}
	if resp.Propagated != 3 || resp.Errors != 1 || resp.PercentPropagated != 75 {
		t.Fatalf("unexpected counts %+v", resp.CheckSummary)
	}
	if resp.StatusLabel != "Mostly Propagated" {
		t.Fatalf("unexpected label %q", resp.StatusLabel)
	}
	if resp.SessionID == "" {
		t.Fatalf("missing session id")
	}

	w = doRequest(s, http.MethodGet, "/checks/"+resp.SessionID, "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), resp.SessionID) {
		t.Fatalf("stored check not returned: %d", w.Code)
	}

	w = doRequest(s, http.MethodGet, "/checks/"+resp.SessionID+"/csv", "")
	if w.Code != http.StatusOK {
		t.Fatalf("csv: expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="dns-propagation-example.com-A.csv"` {
		t.Fatalf("unexpected disposition %q", cd)
	}
	lines := strings.Split(strings.TrimRight(w.Body.String(), "\n"), "\n")
	if len(lines) != 5 || lines[0] != dnspkg.CSVHeader {
		t.Fatalf("unexpected csv body:\n%s", w.Body.String())
	}

	w = doRequest(s, http.MethodGet, "/checks/"+resp.SessionID+"/csv?escaped=1", "")
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Body.String(), dnspkg.CSVHeader) {
		t.Fatalf("escaped csv: unexpected response %d", w.Code)
	}

	w = doRequest(s, http.MethodGet, "/checks/unknown", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestCheckPostJSON(t *testing.T) {
	s := newTestServer(t, nil)
	w := doRequest(s, http.MethodPost, "/check", `{"domain":"example.com","type":"MX"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"record_type":"MX"`) {
		t.Fatalf("unexpected body %s", w.Body.String())
	}

	w = doRequest(s, http.MethodPost, "/check", `{"domain":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad JSON, got %d", w.Code)
	}
}

func TestSessionEviction(t *testing.T) {
	s := newTestServer(t, nil)

	var ids []string
	for i := 0; i < 3; i++ {
		w := doRequest(s, http.MethodGet, "/check?domain=example.com", "")
		var resp dnspkg.CheckSummary
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		ids = append(ids, resp.SessionID)
	}

	if w := doRequest(s, http.MethodGet, "/checks/"+ids[0], ""); w.Code != http.StatusNotFound {
		t.Fatalf("oldest check should be evicted, got %d", w.Code)
	}
	for _, id := range ids[1:] {
		if w := doRequest(s, http.MethodGet, "/checks/"+id, ""); w.Code != http.StatusOK {
			t.Fatalf("check %s should be kept, got %d", id, w.Code)
		}
	}
}

func TestCheckStream(t *testing.T) {
	s := newTestServer(t, nil)
	ts := httptest.NewServer(s.Router)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/check/stream?domain=example.com&type=A")
	if err != nil {
		t.Fatalf("GET stream: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("unexpected content type %q", ct)
	}

	var events []string
	var lastProgress dnspkg.Progress
	scanner := bufio.NewScanner(resp.Body)
	var current string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			current = strings.TrimPrefix(line, "event:")
			events = append(events, current)
		case strings.HasPrefix(line, "data:") && current == "progress":
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data:")), &lastProgress); err != nil {
				t.Fatalf("decode progress: %v", err)
			}
		}
	}

	if len(events) != 5 {
		t.Fatalf("expected 4 progress events and a summary, got %v", events)
	}
	for _, ev := range events[:4] {
		if ev != "progress" {
			t.Fatalf("unexpected event order %v", events)
		}
	}
	if events[4] != "summary" {
		t.Fatalf("expected summary last, got %v", events)
	}
	if lastProgress.Percent != 100 || lastProgress.Completed != 4 || lastProgress.SessionID == "" {
		t.Fatalf("unexpected final progress %+v", lastProgress)
	}
}

func TestCheckStreamValidationError(t *testing.T) {
	s := newTestServer(t, nil)
	ts := httptest.NewServer(s.Router)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/check/stream?type=A")
	if err != nil {
		t.Fatalf("GET stream: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "event:error") || strings.Contains(string(body), "event:progress") {
		t.Fatalf("expected a lone error event, got %s", body)
	}
}

func TestCheckStreamRejectsOversizedInput(t *testing.T) {
	s := newTestServer(t, nil)
	ts := httptest.NewServer(s.Router)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/check/stream?type=A&domain=" + strings.Repeat("a", 3000))
	if err != nil {
		t.Fatalf("GET stream: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "event:error") || !strings.Contains(string(body), "invalid request") {
		t.Fatalf("expected an invalid request event, got %s", body)
	}
	if strings.Contains(string(body), "event:progress") {
		t.Fatalf("no lookups should run for a rejected request, got %s", body)
	}

	w := doRequest(s, http.MethodGet, "/check?type=A&domain="+strings.Repeat("a", 3000), "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 from /check, got %d", w.Code)
	}
}

func TestDNSLookup(t *testing.T) {
	resolver := &fakeResolver{resp: &dnspkg.JSONResponse{
		Status: 0,
		Answer: []dnspkg.JSONAnswer{{Name: "example.com.", Type: 1, TTL: 300, Data: "93.184.216.34"}},
	}}
	s := newTestServer(t, resolver)

	if w := doRequest(s, http.MethodGet, "/api/dns-lookup", ""); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
	if w := doRequest(s, http.MethodPost, "/api/dns-lookup", `{"domain":"example.com"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	w := doRequest(s, http.MethodPost, "/api/dns-lookup", `{"domain":"example.com","recordType":"a"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if resolver.got.Domain != "example.com" || resolver.got.RecordType != "A" {
		t.Fatalf("unexpected resolver call %+v", resolver.got)
	}
	want := `{"Status":0,"Answer":[{"name":"example.com.","type":1,"TTL":300,"data":"93.184.216.34"}]}`
	if strings.TrimSpace(w.Body.String()) != want {
		t.Fatalf("unexpected body:\n got %s\nwant %s", w.Body.String(), want)
	}

	resolver.err = errors.New("upstream down")
	w = doRequest(s, http.MethodPost, "/api/dns-lookup", `{"domain":"example.com","recordType":"A"}`)
	if w.Code != http.StatusInternalServerError || !strings.Contains(w.Body.String(), "Failed to fetch DNS records") {
		t.Fatalf("expected 500, got %d %s", w.Code, w.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	doRequest(s, http.MethodGet, "/check?domain=example.com", "")

	w := doRequest(s, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	for _, name := range []string{"dnsprop_probes_total", "dnsprop_checks_total", "go_goroutines"} {
		if !strings.Contains(w.Body.String(), name) {
			t.Fatalf("metrics output missing %s", name)
		}
	}
}

func TestUI(t *testing.T) {
	s := newTestServer(t, nil)
	w := doRequest(s, http.MethodGet, "/", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "/check/stream") {
		t.Fatalf("unexpected UI response %d", w.Code)
	}
}
