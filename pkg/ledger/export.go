package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// csvHeader is the column row of an exported booking report.
var csvHeader = []string{"project", "start", "stop", "minutes", "comment"}

// WriteCSV writes entries as a CSV table with a header row. Times are
// written in RFC 3339 in the location of loc.
func WriteCSV(w io.Writer, entries []Entry, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		row := []string{
			e.ProjectID,
			e.Start.In(loc).Format(time.RFC3339),
			e.Stop.In(loc).Format(time.RFC3339),
			strconv.FormatInt(e.Minutes, 10),
			e.Comment,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSV returns the report as a CSV string.
func CSV(entries []Entry, loc *time.Location) (string, error) {
	var b strings.Builder
	if err := WriteCSV(&b, entries, loc); err != nil {
		return "", err
	}
	return b.String(), nil
}
