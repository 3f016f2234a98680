package dns

import (
	"strings"

	mdns "github.com/miekg/dns"
)

// RecordType is a DNS record type that can be checked for propagation.
type RecordType string

const (
	TypeA     RecordType = "A"
	TypeAAAA  RecordType = "AAAA"
	TypeMX    RecordType = "MX"
	TypeTXT   RecordType = "TXT"
	TypeNS    RecordType = "NS"
	TypeCNAME RecordType = "CNAME"
)

// RecordTypes lists the supported record types in display order.
var RecordTypes = []RecordType{TypeA, TypeAAAA, TypeMX, TypeTXT, TypeNS, TypeCNAME}

// ParseRecordType converts a case-insensitive record type name.
func ParseRecordType(t string) (RecordType, error) {
	rt := RecordType(strings.ToUpper(strings.TrimSpace(t)))
	for _, known := range RecordTypes {
		if rt == known {
			return rt, nil
		}
	}
	return "", &ValidationError{Field: "record_type", Reason: "unsupported record type " + strings.TrimSpace(t)}
}

// Qtype returns the wire type constant for the record type.
func (t RecordType) Qtype() uint16 {
	switch t {
	case TypeA:
		return mdns.TypeA
	case TypeAAAA:
		return mdns.TypeAAAA
	case TypeMX:
		return mdns.TypeMX
	case TypeTXT:
		return mdns.TypeTXT
	case TypeNS:
		return mdns.TypeNS
	case TypeCNAME:
		return mdns.TypeCNAME
	default:
		return 0
	}
}

// Record is one answer entry returned by a lookup.
type Record struct {
	Data string `json:"data"`
	TTL  *int   `json:"TTL,omitempty"`
}

// NormalizeDomain strips a leading scheme and any path from user input.
func NormalizeDomain(input string) string {
	d := strings.TrimSpace(input)
	lower := strings.ToLower(d)
	for _, scheme := range []string{"http://", "https://"} {
		if strings.HasPrefix(lower, scheme) {
			d = d[len(scheme):]
			break
		}
	}
	d = strings.TrimSuffix(d, "/")
	if i := strings.Index(d, "/"); i >= 0 {
		d = d[:i]
	}
	return d
}
