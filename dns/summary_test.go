package dns

import (
	"testing"
	"time"
)

func TestSummarize(t *testing.T) {
	results := []ProbeResult{
		{Location: "a", Region: RegionEurope, Status: StatusPropagated, ResponseTimeMs: 40, Records: []Record{{Data: "192.0.2.1"}, {Data: "192.0.2.2"}}},
		{Location: "b", Region: RegionAsia, Status: StatusPropagated, ResponseTimeMs: 60, Records: []Record{{Data: "192.0.2.2"}}},
		{Location: "c", Region: RegionEurope, Status: StatusNotPropagated, ResponseTimeMs: 20, Records: []Record{}},
		{Location: "d", Region: RegionAsia, Status: StatusError, Records: []Record{}, Error: "timeout"},
	}

	s := Summarize("example.org", TypeA, results)

	if s.Total != 4 || s.Propagated != 2 || s.NotPropagated != 1 || s.Errors != 1 {
		t.Fatalf("unexpected counts %+v", s)
	}
	if s.Propagated+s.NotPropagated+s.Errors != s.Total {
		t.Fatalf("counts do not add up")
	}
	if s.PercentPropagated != 50 {
		t.Fatalf("expected 50%%, got %d", s.PercentPropagated)
	}
	if len(s.DistinctValues) != 2 || s.DistinctValues[0] != "192.0.2.1" || s.DistinctValues[1] != "192.0.2.2" {
		t.Fatalf("unexpected distinct values %#v", s.DistinctValues)
	}
	if s.AvgResponseMs != 30 {
		t.Fatalf("expected average 30 with errors counted as 0, got %d", s.AvgResponseMs)
	}
	if s.AvgResponseMsExcludingErrors != 40 {
		t.Fatalf("expected average 40 without errors, got %d", s.AvgResponseMsExcludingErrors)
	}
	if s.StatusLabel() != "Partially Propagated" {
		t.Fatalf("unexpected label %q", s.StatusLabel())
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize("example.org", TypeMX, nil)
	if s.Total != 0 || s.PercentPropagated != 0 || s.AvgResponseMs != 0 {
		t.Fatalf("unexpected empty summary %+v", s)
	}
	if s.DistinctValues == nil {
		t.Fatalf("distinct values should be an empty list, not nil")
	}
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		percent int
		want    string
	}{
		{100, "Fully Propagated"},
		{99, "Mostly Propagated"},
		{75, "Mostly Propagated"},
		{74, "Partially Propagated"},
		{50, "Partially Propagated"},
		{49, "Limited Propagation"},
		{25, "Limited Propagation"},
		{24, "Not Propagated"},
		{0, "Not Propagated"},
	}
	for _, tt := range tests {
		if got := StatusLabel(tt.percent); got != tt.want {
			t.Errorf("StatusLabel(%d) = %q, want %q", tt.percent, got, tt.want)
		}
	}
}

func TestGroupByRegion(t *testing.T) {
	results := []ProbeResult{
		{Location: "ny", Region: RegionAmericas},
		{Location: "london", Region: RegionEurope},
		{Location: "sp", Region: RegionAmericas},
		{Location: "tokyo", Region: RegionAsia},
	}
	groups := GroupByRegion(results)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	if groups[0].Region != RegionAmericas || len(groups[0].Results) != 2 || groups[0].Results[1].Location != "sp" {
		t.Fatalf("unexpected first group %+v", groups[0])
	}
	if groups[2].Region != RegionAsia {
		t.Fatalf("unexpected order %+v", groups)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := map[time.Duration]string{
		250 * time.Millisecond:  "250ms",
		1500 * time.Millisecond: "1.5s",
		2 * time.Minute:         "2m",
		90 * time.Second:        "1m30s",
	}
	for d, want := range tests {
		if got := FormatDuration(d); got != want {
			t.Errorf("FormatDuration(%s) = %q, want %q", d, got, want)
		}
	}
}
