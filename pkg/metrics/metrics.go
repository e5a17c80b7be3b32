// Package metrics turns closed records into the turnaround table: it picks
// the records a report cares about and computes the clamped elapsed days.
package metrics

import (
	"slices"
	"time"

	"github.com/grafana/turnaround/pkg/commontypes"
)

const day = 24 * time.Hour

// Predicate decides whether a record belongs in the table.
type Predicate func(commontypes.Record) bool

// HasLabel keeps closed records carrying label.
func HasLabel(label string) Predicate {
	return func(r commontypes.Record) bool {
		return r.ClosedAt != nil && r.HasLabels && r.HasLabel(label)
	}
}

// MergedExcept keeps merged records whose author is not in excluded.
func MergedExcept(excluded []string) Predicate {
	return func(r commontypes.Record) bool {
		return r.ClosedAt != nil && !slices.Contains(excluded, r.Author)
	}
}

// ElapsedDays is the number of whole days from created to closed, kept
// within [0, ceiling].
func ElapsedDays(created, closed time.Time, ceiling int) int {
	days := closed.Sub(created) / day
	if days < 0 {
		return 0
	}
	if days >= time.Duration(ceiling) {
		return ceiling
	}
	return int(days)
}

// Columns names the two pipeline specific columns of a table.
type Columns struct {
	ClosedAt string
	Metric   string
}

var (
	IssueColumns = Columns{ClosedAt: "closed_at", Metric: "time_to_fix"}
	PullColumns  = Columns{ClosedAt: "merged_at", Metric: "time_to_merge"}
)

type Row struct {
	commontypes.Record
	Days int
}

// Table is the aggregated result. Rows keep the order of the input.
type Table struct {
	Columns Columns
	Ceiling int
	Rows    []Row
}

// Aggregate keeps the records accepted by keep and computes their days.
func Aggregate(records []commontypes.Record, keep Predicate, cols Columns, ceiling int) Table {
	t := Table{Columns: cols, Ceiling: ceiling}
	for _, r := range records {
		if r.ClosedAt == nil || !keep(r) {
			continue
		}
		t.Rows = append(t.Rows, Row{
			Record: r,
			Days:   ElapsedDays(r.CreatedAt, *r.ClosedAt, ceiling),
		})
	}
	return t
}

// WithoutAuthors returns a new table without the rows of authors.
func (t Table) WithoutAuthors(authors []string) Table {
	out := Table{Columns: t.Columns, Ceiling: t.Ceiling}
	for _, row := range t.Rows {
		if slices.Contains(authors, row.Author) {
			continue
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// Authors returns the sorted unique authors of the table.
func (t Table) Authors() []string {
	authors := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		authors = append(authors, row.Author)
	}
	slices.Sort(authors)
	return slices.Compact(authors)
}

func (t Table) Days() []int {
	days := make([]int, len(t.Rows))
	for i, row := range t.Rows {
		days[i] = row.Days
	}
	return days
}

func (t Table) Len() int {
	return len(t.Rows)
}
