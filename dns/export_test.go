package dns

import (
	"encoding/csv"
	"strings"
	"testing"
)

func exportSummary() *CheckSummary {
	ttl := 3600
	s := Summarize("example.com", TypeMX, []ProbeResult{
		{Location: "New York", Region: RegionAmericas, Server: "8.8.8.8", Status: StatusPropagated, ResponseTimeMs: 42,
			Records: []Record{{Data: "10 mx1.example.com.", TTL: &ttl}, {Data: "20 mx2.example.com."}}},
		{Location: "London", Region: RegionEurope, Server: "1.1.1.1", Status: StatusNotPropagated, ResponseTimeMs: 17, Records: []Record{}},
		{Location: "Tokyo", Region: RegionAsia, Server: "208.67.222.222", Status: StatusError, Records: []Record{}, Error: "timeout"},
	})
	return &s
}

func TestToCSV(t *testing.T) {
	out := ToCSV(exportSummary())
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d lines:\n%s", len(lines), out)
	}
	if lines[0] != CSVHeader {
		t.Fatalf("unexpected header %q", lines[0])
	}
	want := `"New York","Americas","8.8.8.8","propagated",42,"10 mx1.example.com.; 20 mx2.example.com."`
	if lines[1] != want {
		t.Fatalf("unexpected row:\n got %s\nwant %s", lines[1], want)
	}
	if lines[3] != `"Tokyo","Asia","208.67.222.222","error",0,""` {
		t.Fatalf("unexpected error row %s", lines[3])
	}
	for i, line := range lines {
		if n := len(strings.Split(line, ",")); n != 6 {
			t.Fatalf("line %d has %d fields", i, n)
		}
	}
}

func TestToCSVEmpty(t *testing.T) {
	s := Summarize("example.com", TypeA, nil)
	if out := ToCSV(&s); out != CSVHeader+"\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestToCSVEscaped(t *testing.T) {
	s := exportSummary()
	s.Results[1].Records = []Record{{Data: `"v=spf1 include:_spf.example.com ~all"`}}

	out, err := ToCSVEscaped(s)
	if err != nil {
		t.Fatalf("ToCSVEscaped returned error: %v", err)
	}
	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	for _, row := range rows {
		if len(row) != 6 {
			t.Fatalf("expected 6 fields, got %d", len(row))
		}
	}
	if rows[2][5] != `"v=spf1 include:_spf.example.com ~all"` {
		t.Fatalf("records not preserved: %q", rows[2][5])
	}
}

func TestCSVFilename(t *testing.T) {
	if got := CSVFilename(exportSummary()); got != "dns-propagation-example.com-MX.csv" {
		t.Fatalf("unexpected filename %q", got)
	}
}
