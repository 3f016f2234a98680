package dns

import (
	"errors"
	"testing"
)

func TestParseRecordType(t *testing.T) {
	for _, in := range []string{"a", "AAAA", " mx ", "Txt", "ns", "cname"} {
		if _, err := ParseRecordType(in); err != nil {
			t.Errorf("ParseRecordType(%q) returned %v", in, err)
		}
	}
	_, err := ParseRecordType("SRV")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNormalizeDomain(t *testing.T) {
	tests := map[string]string{
		"example.com":                    "example.com",
		"  https://example.com/  ":       "example.com",
		"HTTP://www.example.com/a/b?c=d": "www.example.com",
		"example.com/path":               "example.com",
	}
	for in, want := range tests {
		if got := NormalizeDomain(in); got != want {
			t.Errorf("NormalizeDomain(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolverAddr(t *testing.T) {
	tests := map[string]string{
		"8.8.8.8":              "8.8.8.8:53",
		"127.0.0.1:5353":       "127.0.0.1:5353",
		"2001:4860:4860::8888": "[2001:4860:4860::8888]:53",
	}
	for in, want := range tests {
		if got := (VantagePoint{Resolver: in}).ResolverAddr(); got != want {
			t.Errorf("ResolverAddr(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDefaultVantagePoints(t *testing.T) {
	if len(DefaultVantagePoints) != 12 {
		t.Fatalf("expected 12 default vantage points, got %d", len(DefaultVantagePoints))
	}
	names := make(map[string]bool)
	for _, p := range DefaultVantagePoints {
		if names[p.Name] {
			t.Fatalf("duplicate vantage point %q", p.Name)
		}
		names[p.Name] = true
		if _, err := ParseRegion(string(p.Region)); err != nil {
			t.Fatalf("vantage point %q has bad region: %v", p.Name, err)
		}
	}
}
