package dns

import (
	"fmt"
	"math"
	"time"
)

// TimestampLayout is the human-readable form of CheckSummary.Timestamp.
const TimestampLayout = "2006-01-02 15:04:05 MST"

// CheckSummary aggregates one completed check.
type CheckSummary struct {
	SessionID                    string        `json:"session_id"`
	Domain                       string        `json:"domain"`
	RecordType                   RecordType    `json:"record_type"`
	Results                      []ProbeResult `json:"results"`
	Total                        int           `json:"total"`
	Propagated                   int           `json:"propagated"`
	NotPropagated                int           `json:"not_propagated"`
	Errors                       int           `json:"errors"`
	PercentPropagated            int           `json:"percent_propagated"`
	DistinctValues               []string      `json:"distinct_values"`
	AvgResponseMs                int           `json:"avg_response_time_ms"`
	AvgResponseMsExcludingErrors int           `json:"avg_response_time_ms_excluding_errors"`
	Timestamp                    string        `json:"timestamp"`
	CheckedAt                    time.Time     `json:"checked_at"`
}

// Summarize computes the statistics for a set of results. The average
// response time counts failed points as 0ms; AvgResponseMsExcludingErrors
// leaves them out.
func Summarize(domain string, rt RecordType, results []ProbeResult) CheckSummary {
	s := CheckSummary{
		Domain:         domain,
		RecordType:     rt,
		Results:        results,
		Total:          len(results),
		DistinctValues: []string{},
	}

	seen := make(map[string]struct{})
	var totalMs, okMs, okCount int
	for _, r := range results {
		switch r.Status {
		case StatusPropagated:
			s.Propagated++
		case StatusNotPropagated:
			s.NotPropagated++
		default:
			s.Errors++
		}

		totalMs += r.ResponseTimeMs
		if r.Status != StatusError {
			okMs += r.ResponseTimeMs
			okCount++
		}

		for _, rec := range r.Records {
			if _, ok := seen[rec.Data]; ok {
				continue
			}
			seen[rec.Data] = struct{}{}
			s.DistinctValues = append(s.DistinctValues, rec.Data)
		}
	}

	if s.Total > 0 {
		s.PercentPropagated = roundPercent(s.Propagated, s.Total)
		s.AvgResponseMs = int(math.Round(float64(totalMs) / float64(s.Total)))
	}
	if okCount > 0 {
		s.AvgResponseMsExcludingErrors = int(math.Round(float64(okMs) / float64(okCount)))
	}
	return s
}

func roundPercent(n, total int) int {
	return int(math.Round(float64(n) / float64(total) * 100))
}

// StatusLabel describes a propagation percentage.
func StatusLabel(percent int) string {
	switch {
	case percent >= 100:
		return "Fully Propagated"
	case percent >= 75:
		return "Mostly Propagated"
	case percent >= 50:
		return "Partially Propagated"
	case percent >= 25:
		return "Limited Propagation"
	default:
		return "Not Propagated"
	}
}

// StatusLabel describes the summary's propagation percentage.
func (s *CheckSummary) StatusLabel() string {
	return StatusLabel(s.PercentPropagated)
}

// RegionGroup holds the results of one region in probe order.
type RegionGroup struct {
	Region  Region        `json:"region"`
	Results []ProbeResult `json:"results"`
}

// GroupByRegion groups results by region. Regions appear in the order they
// are first seen.
func GroupByRegion(results []ProbeResult) []RegionGroup {
	var groups []RegionGroup
	index := make(map[Region]int)
	for _, r := range results {
		i, ok := index[r.Region]
		if !ok {
			i = len(groups)
			index[r.Region] = i
			groups = append(groups, RegionGroup{Region: r.Region})
		}
		groups[i].Results = append(groups[i].Results, r)
	}
	return groups
}

// FormatDuration formats a duration for display.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if secs == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dm%ds", mins, secs)
}
