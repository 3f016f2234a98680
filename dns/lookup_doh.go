package dns

import (
	"context"
	"fmt"
	"strings"

	"github.com/likexian/doh"
	dohdns "github.com/likexian/doh/dns"
)

// DoHLookuper resolves over DNS-over-HTTPS. Every vantage point shares the
// same upstream providers, so the point's resolver address is not used.
type DoHLookuper struct {
	client *doh.DoH
}

// NewDoHLookuper queries the named providers, falling back to Google when
// none are given. Unknown names are skipped; validate them with
// ParseDoHProviders first.
func NewDoHLookuper(names ...string) *DoHLookuper {
	selected := doh.Providers[:0:0]
	for _, name := range names {
		switch normalizeProvider(name) {
		case "google":
			selected = append(selected, doh.GoogleProvider)
		case "cloudflare":
			selected = append(selected, doh.CloudflareProvider)
		case "quad9":
			selected = append(selected, doh.Quad9Provider)
		case "dnspod":
			selected = append(selected, doh.DNSPodProvider)
		}
	}
	if len(selected) == 0 {
		selected = append(selected, doh.GoogleProvider)
	}
	return &DoHLookuper{client: doh.Use(selected...)}
}

// ParseDoHProviders checks provider names from config and returns them
// normalized.
func ParseDoHProviders(names []string) ([]string, error) {
	providers := make([]string, 0, len(names))
	for _, name := range names {
		switch n := normalizeProvider(name); n {
		case "google", "cloudflare", "quad9", "dnspod":
			providers = append(providers, n)
		default:
			return nil, fmt.Errorf("unknown doh provider %q", name)
		}
	}
	return providers, nil
}

func normalizeProvider(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Resolve returns the full DNS-JSON answer, including records of other types
// such as a CNAME chain.
func (l *DoHLookuper) Resolve(ctx context.Context, domain string, rt RecordType) (*JSONResponse, error) {
	resp, err := l.client.Query(ctx, dohdns.Domain(domain), dohdns.Type(rt))
	if err != nil {
		return nil, err
	}

	out := &JSONResponse{Status: resp.Status}
	for _, a := range resp.Answer {
		out.Answer = append(out.Answer, JSONAnswer{
			Name: a.Name,
			Type: a.Type,
			TTL:  a.TTL,
			Data: a.Data,
		})
	}
	return out, nil
}

func (l *DoHLookuper) Lookup(ctx context.Context, _ VantagePoint, domain string, rt RecordType) ([]Record, error) {
	resp, err := l.Resolve(ctx, domain, rt)
	if err != nil {
		return nil, err
	}
	if err := rcodeError(resp.Status); err != nil {
		return nil, err
	}
	return resp.Records(rt), nil
}

// Close releases the provider connections.
func (l *DoHLookuper) Close() {
	l.client.Close()
}
