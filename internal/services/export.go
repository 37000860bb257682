package services

import (
	"bytes"
	"strings"
	"time"
)

// ExportRow is one line of the response export. All fields are already
// joined with their cycle/department context and formatted by the caller.
type ExportRow struct {
	Period      string // YYYY-MM
	Score       int
	Name        string // "Anonymous" when not given
	Department  string // "Not specified" when not given
	Answer1     string
	Answer2     string
	Answer3     string
	SubmittedAt string // ISO8601
}

// exportHeader is a file-format contract consumed by downstream reporting
// sheets; field order must not change.
var exportHeader = []string{
	"Cycle", "eNPS Score", "Name", "Department",
	"Question 1", "Question 2", "Question 3", "Submitted At",
}

// RenderCSV renders rows as RFC4180 CSV with every field double-quoted and
// internal quotes doubled, rows joined by newline. Empty optional fields
// render as quoted empty strings.
func RenderCSV(rows []ExportRow) []byte {
	buf := &bytes.Buffer{}
	writeCSVRecord(buf, exportHeader, false)
	for _, r := range rows {
		writeCSVRecord(buf, []string{
			r.Period,
			itoa(r.Score),
			r.Name,
			r.Department,
			r.Answer1,
			r.Answer2,
			r.Answer3,
			r.SubmittedAt,
		}, true)
	}
	return buf.Bytes()
}

func writeCSVRecord(buf *bytes.Buffer, fields []string, leadingNewline bool) {
	if leadingNewline {
		buf.WriteByte('\n')
	}
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(f, `"`, `""`))
		buf.WriteByte('"')
	}
}

// ExportFilename composes the deterministic download name, e.g.
// propellic_pulse_2025-01_2025-02-01.csv. scope is "all" or a
// YYYY-MM period; date stamps the day of the export in UTC.
func ExportFilename(scope string, date time.Time) string {
	if strings.TrimSpace(scope) == "" {
		scope = "all"
	}
	return "propellic_pulse_" + scope + "_" + date.UTC().Format("2006-01-02") + ".csv"
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := false
	if i < 0 {
		neg = true
		i = -i
	}
	var b [20]byte
	bp := len(b)
	for i > 0 {
		bp--
		b[bp] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		bp--
		b[bp] = '-'
	}
	return string(b[bp:])
}
