package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/turnaround/pkg/commontypes"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func closedAt(s string) *time.Time {
	t := date(s)
	return &t
}

func issue(number int, created, closed string, labels ...string) commontypes.Record {
	r := commontypes.Record{
		Number:    number,
		CreatedAt: date(created),
		State:     "closed",
		Title:     "issue",
		Author:    "someone",
		HasLabels: true,
	}
	if closed != "" {
		r.ClosedAt = closedAt(closed)
	}
	for _, l := range labels {
		r.Labels = append(r.Labels, commontypes.Label{Name: l})
	}
	return r
}

func pull(number int, author, created, merged string) commontypes.Record {
	r := commontypes.Record{
		Number:    number,
		CreatedAt: date(created),
		State:     "closed",
		Title:     "pr",
		Author:    author,
	}
	if merged != "" {
		r.ClosedAt = closedAt(merged)
	}
	return r
}

func TestElapsedDays(t *testing.T) {
	tests := []struct {
		name    string
		created time.Time
		closed  time.Time
		ceiling int
		want    int
	}{
		{"ten days", date("2023-01-01"), date("2023-01-11"), 180, 10},
		{"leap year clamped", date("2020-01-01"), date("2021-01-01"), 180, 180},
		{"exactly the ceiling", date("2023-01-01"), date("2023-04-01"), 90, 90},
		{"partial day floors", date("2023-01-01"), date("2023-01-02").Add(23 * time.Hour), 180, 1},
		{"same day", date("2023-01-01"), date("2023-01-01").Add(time.Hour), 180, 0},
		{"closed before created", date("2023-01-10"), date("2023-01-01"), 180, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ElapsedDays(tt.created, tt.closed, tt.ceiling))
		})
	}
}

func TestAggregateIssues(t *testing.T) {
	records := []commontypes.Record{
		issue(1, "2023-01-01", "2023-01-11", "Bug"),
		issue(2, "2020-01-01", "2021-01-01", "Bug", "Documentation"),
		issue(3, "2023-01-01", "2023-01-05", "Enhancement"),
		issue(4, "2023-01-01", "", "Bug"),
	}
	noLabels := issue(5, "2023-01-01", "2023-01-02")
	noLabels.HasLabels = false
	records = append(records, noLabels)

	table := Aggregate(records, HasLabel("Bug"), IssueColumns, 180)

	require.Len(t, table.Rows, 2)
	assert.Equal(t, 1, table.Rows[0].Number)
	assert.Equal(t, 10, table.Rows[0].Days)
	assert.Equal(t, 2, table.Rows[1].Number)
	assert.Equal(t, 180, table.Rows[1].Days)
	assert.Equal(t, []int{10, 180}, table.Days())
	assert.Equal(t, IssueColumns, table.Columns)
}

func TestAggregateDropsUnclosed(t *testing.T) {
	records := []commontypes.Record{
		pull(1, "alice", "2023-01-01", ""),
		issue(2, "2023-01-01", "", "Bug"),
	}
	keepAll := func(commontypes.Record) bool { return true }

	table := Aggregate(records, keepAll, PullColumns, 90)

	assert.Empty(t, table.Rows)
}

func TestAggregateBounds(t *testing.T) {
	var records []commontypes.Record
	start := date("2019-01-01")
	for i := 0; i < 400; i += 7 {
		closed := start.AddDate(0, 0, i)
		records = append(records, commontypes.Record{
			Number:    i,
			CreatedAt: start,
			ClosedAt:  &closed,
			Author:    "alice",
		})
	}

	table := Aggregate(records, MergedExcept(nil), PullColumns, 90)

	require.Len(t, table.Rows, len(records))
	for _, row := range table.Rows {
		assert.GreaterOrEqual(t, row.Days, 0)
		assert.LessOrEqual(t, row.Days, 90)
	}
}

func TestMergedExcept(t *testing.T) {
	excluded := []string{"dependabot[bot]", "pre-commit-ci[bot]"}
	records := []commontypes.Record{
		pull(1, "dependabot[bot]", "2023-01-01", "2023-01-02"),
		pull(2, "alice", "2023-01-01", "2023-01-03"),
		pull(3, "bob", "2023-01-01", ""),
		pull(4, "pre-commit-ci[bot]", "2023-01-01", "2023-01-02"),
		pull(5, "GaelVaroquaux", "2023-01-01", "2023-02-01"),
	}

	table := Aggregate(records, MergedExcept(excluded), PullColumns, 90)

	require.Len(t, table.Rows, 2)
	for _, row := range table.Rows {
		assert.NotContains(t, excluded, row.Author)
	}

	community := table.WithoutAuthors([]string{"GaelVaroquaux"})
	require.Len(t, community.Rows, 1)
	assert.Equal(t, "alice", community.Rows[0].Author)
	assert.Equal(t, 2, community.Rows[0].Days)
	assert.Len(t, table.Rows, 2, "filtering must not touch the source table")
}

func TestAuthors(t *testing.T) {
	table := Table{Rows: []Row{
		{Record: commontypes.Record{Author: "zed"}},
		{Record: commontypes.Record{Author: "alice"}},
		{Record: commontypes.Record{Author: "zed"}},
		{Record: commontypes.Record{Author: "Bob"}},
	}}

	assert.Equal(t, []string{"Bob", "alice", "zed"}, table.Authors())
	assert.Empty(t, Table{}.Authors())
}

func TestAggregateIsDeterministic(t *testing.T) {
	records := []commontypes.Record{
		issue(1, "2023-01-01", "2023-01-11", "Bug"),
		issue(2, "2023-03-01", "2023-03-02", "Bug"),
	}

	first := Aggregate(records, HasLabel("Bug"), IssueColumns, 180)
	second := Aggregate(records, HasLabel("Bug"), IssueColumns, 180)

	assert.Equal(t, first, second)
}
