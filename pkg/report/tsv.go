package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/grafana/turnaround/pkg/metrics"
)

// WriteTSV writes the table with a header row. Column order:
// number, created_at, closed_at|merged_at, state, title, user, metric.
func WriteTSV(w io.Writer, t metrics.Table) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	header := []string{
		"number",
		"created_at",
		t.Columns.ClosedAt,
		"state",
		"title",
		"user",
		t.Columns.Metric,
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, row := range t.Rows {
		closed := ""
		if row.ClosedAt != nil {
			closed = row.ClosedAt.UTC().Format(time.RFC3339)
		}
		err := cw.Write([]string{
			strconv.Itoa(row.Number),
			row.CreatedAt.UTC().Format(time.RFC3339),
			closed,
			row.State,
			row.Title,
			row.Author,
			strconv.Itoa(row.Days),
		})
		if err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
