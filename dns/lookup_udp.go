package dns

import (
	"context"
	"fmt"
	"strings"
	"time"

	mdns "github.com/miekg/dns"
)

// UDPLookuper sends the query straight to the vantage point's resolver.
type UDPLookuper struct {
	client *mdns.Client
}

func NewUDPLookuper(timeout time.Duration) *UDPLookuper {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &UDPLookuper{client: &mdns.Client{Timeout: timeout}}
}

func (l *UDPLookuper) Lookup(ctx context.Context, point VantagePoint, domain string, rt RecordType) ([]Record, error) {
	qtype := rt.Qtype()
	if qtype == 0 {
		return nil, fmt.Errorf("unsupported record type %q", rt)
	}

	m := new(mdns.Msg)
	m.SetQuestion(mdns.Fqdn(domain), qtype)
	m.RecursionDesired = true

	r, _, err := l.client.ExchangeContext(ctx, m, point.ResolverAddr())
	if err != nil {
		return nil, err
	}

	if err := rcodeError(r.Rcode); err != nil {
		return nil, err
	}

	return answerRecords(r.Answer, qtype), nil
}

// answerRecords extracts answers of the requested type, formatted the way
// DNS-JSON resolvers present them.
func answerRecords(answers []mdns.RR, qtype uint16) []Record {
	records := []Record{}
	for _, rr := range answers {
		if rr.Header().Rrtype != qtype {
			continue
		}
		var data string
		switch v := rr.(type) {
		case *mdns.A:
			data = v.A.String()
		case *mdns.AAAA:
			data = v.AAAA.String()
		case *mdns.MX:
			data = fmt.Sprintf("%d %s", v.Preference, v.Mx)
		case *mdns.TXT:
			data = strings.Join(v.Txt, "")
		case *mdns.NS:
			data = v.Ns
		case *mdns.CNAME:
			data = v.Target
		default:
			continue
		}
		ttl := int(rr.Header().Ttl)
		records = append(records, Record{Data: data, TTL: &ttl})
	}
	return records
}
