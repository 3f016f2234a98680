package dns

import (
	"fmt"
	"net"
	"strings"
)

// Region groups vantage points geographically.
type Region string

const (
	RegionAmericas   Region = "Americas"
	RegionEurope     Region = "Europe"
	RegionAsia       Region = "Asia"
	RegionOceania    Region = "Oceania"
	RegionAfrica     Region = "Africa"
	RegionMiddleEast Region = "Middle East"
)

// Regions lists every region a vantage point may belong to.
var Regions = []Region{
	RegionAmericas,
	RegionEurope,
	RegionAsia,
	RegionOceania,
	RegionAfrica,
	RegionMiddleEast,
}

// ParseRegion matches a region label case-insensitively.
func ParseRegion(s string) (Region, error) {
	for _, r := range Regions {
		if strings.EqualFold(string(r), strings.TrimSpace(s)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown region %q", s)
}

// VantagePoint is a named location backed by a DNS resolver.
type VantagePoint struct {
	Name     string `yaml:"name" mapstructure:"name" json:"name"`
	Resolver string `yaml:"resolver" mapstructure:"resolver" json:"resolver"`
	Flag     string `yaml:"flag" mapstructure:"flag" json:"flag"`
	Region   Region `yaml:"region" mapstructure:"region" json:"region"`
}

// ResolverAddr returns the resolver as host:port, defaulting to port 53.
func (v VantagePoint) ResolverAddr() string {
	if _, _, err := net.SplitHostPort(v.Resolver); err == nil {
		return v.Resolver
	}
	return net.JoinHostPort(strings.Trim(v.Resolver, "[]"), "53")
}

// DefaultVantagePoints are the twelve locations checked when no list is configured.
var DefaultVantagePoints = []VantagePoint{
	{Name: "North America - New York", Resolver: "8.8.8.8", Flag: "🇺🇸", Region: RegionAmericas},
	{Name: "North America - Los Angeles", Resolver: "1.1.1.1", Flag: "🇺🇸", Region: RegionAmericas},
	{Name: "Europe - London", Resolver: "8.8.4.4", Flag: "🇬🇧", Region: RegionEurope},
	{Name: "Europe - Frankfurt", Resolver: "9.9.9.9", Flag: "🇩🇪", Region: RegionEurope},
	{Name: "Asia - Singapore", Resolver: "208.67.222.222", Flag: "🇸🇬", Region: RegionAsia},
	{Name: "Asia - Tokyo", Resolver: "208.67.220.220", Flag: "🇯🇵", Region: RegionAsia},
	{Name: "Asia - Mumbai", Resolver: "1.0.0.1", Flag: "🇮🇳", Region: RegionAsia},
	{Name: "Oceania - Sydney", Resolver: "8.26.56.26", Flag: "🇦🇺", Region: RegionOceania},
	{Name: "South America - Sao Paulo", Resolver: "64.6.64.6", Flag: "🇧🇷", Region: RegionAmericas},
	{Name: "Africa - Cape Town", Resolver: "156.154.70.1", Flag: "🇿🇦", Region: RegionAfrica},
	{Name: "Europe - Amsterdam", Resolver: "77.88.8.8", Flag: "🇳🇱", Region: RegionEurope},
	{Name: "Middle East - Dubai", Resolver: "94.140.14.14", Flag: "🇦🇪", Region: RegionMiddleEast},
}
