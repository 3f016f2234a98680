package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	dnspkg "dnsprop/dns"
)

// printer renders check progress and results for the terminal.
type printer struct {
	w     io.Writer
	start time.Time

	ok    *color.Color
	warn  *color.Color
	bad   *color.Color
	dim   *color.Color
	title *color.Color
}

func newPrinter(w io.Writer) *printer {
	return &printer{
		w:     w,
		start: time.Now(),
		ok:    color.New(color.FgGreen),
		warn:  color.New(color.FgYellow),
		bad:   color.New(color.FgRed),
		dim:   color.New(color.Faint),
		title: color.New(color.Bold),
	}
}

func (p *printer) Header(domain string, rt dnspkg.RecordType, points int) {
	p.title.Fprintf(p.w, "Checking %s record propagation for %s\n", rt, domain)
	p.dim.Fprintf(p.w, "Querying %d vantage points\n\n", points)
}

// Progress prints one line per completed vantage point.
func (p *printer) Progress(pr dnspkg.Progress) {
	r := pr.Result
	if r == nil {
		return
	}
	fmt.Fprintf(p.w, "[%3d%%] %s %-16s %-16s %s\n",
		pr.Percent, r.Flag, r.Location, r.Server, p.describe(r))
}

func (p *printer) describe(r *dnspkg.ProbeResult) string {
	switch r.Status {
	case dnspkg.StatusPropagated:
		return p.ok.Sprintf("✓ %s (%dms)", recordsText(r.Records), r.ResponseTimeMs)
	case dnspkg.StatusNotPropagated:
		return p.warn.Sprintf("✗ no records (%dms)", r.ResponseTimeMs)
	default:
		return p.bad.Sprintf("! %s", r.Error)
	}
}

func (p *printer) Summary(s *dnspkg.CheckSummary) {
	fmt.Fprintln(p.w)
	for _, g := range dnspkg.GroupByRegion(s.Results) {
		p.title.Fprintf(p.w, "=== %s ===\n", g.Region)
		for i := range g.Results {
			r := &g.Results[i]
			fmt.Fprintf(p.w, "  %s %-16s %s\n", r.Flag, r.Location, p.describe(r))
		}
	}

	fmt.Fprintln(p.w)
	label := p.labelColor(s.PercentPropagated).Sprintf("%s (%d%%)", s.StatusLabel(), s.PercentPropagated)
	fmt.Fprintf(p.w, "%s\n", label)
	fmt.Fprintf(p.w, "Propagated: %d  Not propagated: %d  Errors: %d  Total: %d\n",
		s.Propagated, s.NotPropagated, s.Errors, s.Total)
	fmt.Fprintf(p.w, "Average response time: %dms (%dms excluding errors)\n",
		s.AvgResponseMs, s.AvgResponseMsExcludingErrors)
	if len(s.DistinctValues) > 0 {
		fmt.Fprintf(p.w, "Distinct values: %s\n", strings.Join(s.DistinctValues, ", "))
	}
	p.dim.Fprintf(p.w, "Checked at %s in %s\n", s.Timestamp, dnspkg.FormatDuration(time.Since(p.start)))
}

func (p *printer) labelColor(percent int) *color.Color {
	switch {
	case percent >= 75:
		return p.ok
	case percent >= 25:
		return p.warn
	default:
		return p.bad
	}
}

func (p *printer) Saved(path string) {
	p.ok.Fprintf(p.w, "Results saved to %s\n", path)
}

func (p *printer) VantagePoints(points []dnspkg.VantagePoint) {
	groups := make(map[dnspkg.Region][]dnspkg.VantagePoint)
	for _, v := range points {
		groups[v.Region] = append(groups[v.Region], v)
	}
	for _, region := range dnspkg.Regions {
		if len(groups[region]) == 0 {
			continue
		}
		p.title.Fprintf(p.w, "%s\n", region)
		for _, v := range groups[region] {
			fmt.Fprintf(p.w, "  %s %-16s %s\n", v.Flag, v.Name, p.dim.Sprint(v.Resolver))
		}
	}
}

func recordsText(records []dnspkg.Record) string {
	data := make([]string, len(records))
	for i, r := range records {
		data[i] = r.Data
	}
	return strings.Join(data, ", ")
}

// writeCSV saves the summary export to path.
func writeCSV(path string, s *dnspkg.CheckSummary, escaped bool) error {
	out := dnspkg.ToCSV(s)
	if escaped {
		var err error
		if out, err = dnspkg.ToCSVEscaped(s); err != nil {
			return fmt.Errorf("encode csv: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write csv %q: %w", path, err)
	}
	return nil
}
