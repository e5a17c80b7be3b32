package commontypes

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/go-github/v68/github"
)

var ErrMalformedRecord = errors.New("malformed record")

// Record is one closed issue or pull request. ClosedAt holds the closure
// time for issues and the merge time for pull requests.
type Record struct {
	Number    int
	CreatedAt time.Time
	ClosedAt  *time.Time
	State     string
	Title     string
	Author    string
	Labels    []Label
	HasLabels bool
}

type Label struct {
	Name string `json:"name"`
}

func (r Record) HasLabel(name string) bool {
	return slices.ContainsFunc(r.Labels, func(l Label) bool { return l.Name == name })
}

// IssueRecord validates a single API issue.
func IssueRecord(issue *github.Issue) (Record, error) {
	if issue == nil {
		return Record{}, fmt.Errorf("%w: empty item", ErrMalformedRecord)
	}
	rec, err := baseRecord(issue.Number, issue.CreatedAt, issue.User)
	if err != nil {
		return Record{}, err
	}

	rec.ClosedAt = timestamp(issue.ClosedAt)
	rec.State = issue.GetState()
	rec.Title = issue.GetTitle()
	rec.HasLabels = issue.Labels != nil
	for _, l := range issue.Labels {
		if l == nil || l.Name == nil {
			continue
		}
		rec.Labels = append(rec.Labels, Label{Name: l.GetName()})
	}

	return rec, nil
}

// PullRecord validates a single API pull request. An unmerged pull request
// is valid and comes back with a nil ClosedAt.
func PullRecord(pr *github.PullRequest) (Record, error) {
	if pr == nil {
		return Record{}, fmt.Errorf("%w: empty item", ErrMalformedRecord)
	}
	rec, err := baseRecord(pr.Number, pr.CreatedAt, pr.User)
	if err != nil {
		return Record{}, err
	}

	rec.ClosedAt = timestamp(pr.MergedAt)
	rec.State = pr.GetState()
	rec.Title = pr.GetTitle()

	return rec, nil
}

// IssueRecords converts every issue, keeping the valid ones in order.
func IssueRecords(issues []*github.Issue) ([]Record, []error) {
	return convert(issues, IssueRecord)
}

// PullRecords converts every pull request, keeping the valid ones in order.
func PullRecords(prs []*github.PullRequest) ([]Record, []error) {
	return convert(prs, PullRecord)
}

func convert[T any](items []T, fn func(T) (Record, error)) ([]Record, []error) {
	records := make([]Record, 0, len(items))
	var errs []error
	for i, item := range items {
		rec, err := fn(item)
		if err != nil {
			errs = append(errs, fmt.Errorf("item %d: %w", i, err))
			continue
		}
		records = append(records, rec)
	}
	return records, errs
}

func baseRecord(number *int, created *github.Timestamp, user *github.User) (Record, error) {
	if number == nil {
		return Record{}, fmt.Errorf("%w: missing number", ErrMalformedRecord)
	}
	if created == nil || created.IsZero() {
		return Record{}, fmt.Errorf("%w: #%d has no created_at", ErrMalformedRecord, *number)
	}
	if user == nil || user.GetLogin() == "" {
		return Record{}, fmt.Errorf("%w: #%d has no author", ErrMalformedRecord, *number)
	}

	return Record{
		Number:    *number,
		CreatedAt: created.UTC(),
		Author:    user.GetLogin(),
	}, nil
}

func timestamp(ts *github.Timestamp) *time.Time {
	if ts == nil || ts.IsZero() {
		return nil
	}
	t := ts.UTC()
	return &t
}
