package dns

import (
	"context"
	"fmt"
	"strings"
	"time"

	mdns "github.com/miekg/dns"
)

// Lookuper resolves one record type for a domain as seen from a vantage point.
// A returned error is a transport failure; an empty slice means the lookup
// succeeded and found nothing.
type Lookuper interface {
	Lookup(ctx context.Context, point VantagePoint, domain string, rt RecordType) ([]Record, error)
}

// LookupFunc adapts a plain function to the Lookuper interface.
type LookupFunc func(ctx context.Context, point VantagePoint, domain string, rt RecordType) ([]Record, error)

func (f LookupFunc) Lookup(ctx context.Context, point VantagePoint, domain string, rt RecordType) ([]Record, error) {
	return f(ctx, point, domain, rt)
}

// LookupRequest is the body accepted by the dns-lookup endpoint.
type LookupRequest struct {
	Domain     string `json:"domain"`
	RecordType string `json:"recordType"`
}

// JSONAnswer is one answer entry in the DNS-JSON format served by public
// resolvers such as dns.google.
type JSONAnswer struct {
	Name string `json:"name"`
	Type int    `json:"type"`
	TTL  int    `json:"TTL"`
	Data string `json:"data"`
}

// JSONResponse is a DNS-JSON lookup response.
type JSONResponse struct {
	Status int          `json:"Status"`
	Answer []JSONAnswer `json:"Answer,omitempty"`
}

// Records keeps the answers matching rt.
func (r *JSONResponse) Records(rt RecordType) []Record {
	records := []Record{}
	if r == nil {
		return records
	}
	want := int(rt.Qtype())
	for _, a := range r.Answer {
		if a.Type != want {
			continue
		}
		ttl := a.TTL
		records = append(records, Record{Data: a.Data, TTL: &ttl})
	}
	return records
}

// rcodeError turns a response code into a lookup failure. NXDOMAIN is an
// answer, not a failure: the name simply isn't there yet.
func rcodeError(rcode int) error {
	if rcode == mdns.RcodeSuccess || rcode == mdns.RcodeNameError {
		return nil
	}
	name, ok := mdns.RcodeToString[rcode]
	if !ok {
		name = fmt.Sprintf("%d", rcode)
	}
	return fmt.Errorf("query failed with code: %s", name)
}

// Lookup backend names accepted in config.
const (
	BackendUDP  = "udp"
	BackendDoH  = "doh"
	BackendHTTP = "http"
)

// NewLookuper builds the lookup backend named in cfg.
func NewLookuper(cfg LookupConfig, timeout time.Duration) (Lookuper, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendUDP:
		return NewUDPLookuper(timeout), nil
	case BackendDoH:
		providers, err := ParseDoHProviders(cfg.DoHProviders)
		if err != nil {
			return nil, err
		}
		return NewDoHLookuper(providers...), nil
	case BackendHTTP:
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("lookup backend %q requires an endpoint", cfg.Backend)
		}
		return NewHTTPLookuper(cfg.Endpoint, timeout), nil
	default:
		return nil, fmt.Errorf("unknown lookup backend %q", cfg.Backend)
	}
}
