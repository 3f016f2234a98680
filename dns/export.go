package dns

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// CSVHeader is the first line of every export.
const CSVHeader = "Location,Region,DNS Server,Status,Response Time (ms),Records"

// ToCSV renders the results one row per vantage point. Text fields are
// quoted but not escaped, so a quote or comma inside record data will shift
// columns; ToCSVEscaped produces strictly valid CSV.
func ToCSV(s *CheckSummary) string {
	var b strings.Builder
	b.WriteString(CSVHeader)
	b.WriteString("\n")
	for _, r := range s.Results {
		fmt.Fprintf(&b, "\"%s\",\"%s\",\"%s\",\"%s\",%d,\"%s\"\n",
			r.Location, r.Region, r.Server, r.Status, r.ResponseTimeMs, joinRecords(r.Records))
	}
	return b.String()
}

// ToCSVEscaped renders the same columns as ToCSV with RFC 4180 quoting.
func ToCSVEscaped(s *CheckSummary) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write(strings.Split(CSVHeader, ",")); err != nil {
		return "", err
	}
	for _, r := range s.Results {
		row := []string{
			r.Location,
			string(r.Region),
			r.Server,
			string(r.Status),
			strconv.Itoa(r.ResponseTimeMs),
			joinRecords(r.Records),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return b.String(), nil
}

// CSVFilename is the download name for a summary's export.
func CSVFilename(s *CheckSummary) string {
	return fmt.Sprintf("dns-propagation-%s-%s.csv", s.Domain, s.RecordType)
}

func joinRecords(records []Record) string {
	data := make([]string, len(records))
	for i, r := range records {
		data[i] = r.Data
	}
	return strings.Join(data, "; ")
}
