package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	gh "github.com/google/go-github/v68/github"

	"github.com/grafana/turnaround/pkg/commontypes"
	"github.com/grafana/turnaround/pkg/config"
	"github.com/grafana/turnaround/pkg/github"
	"github.com/grafana/turnaround/pkg/logme"
	"github.com/grafana/turnaround/pkg/metrics"
	"github.com/grafana/turnaround/pkg/report"
	"github.com/grafana/turnaround/pkg/snapshot"
)

type IssueSource interface {
	ClosedIssues(ctx context.Context) ([]*gh.Issue, error)
}

type PullSource interface {
	ClosedPulls(ctx context.Context) ([]*gh.PullRequest, error)
}

// Deps are the collaborators of a run. Sources may be nil in local mode.
type Deps struct {
	Issues   IssueSource
	Pulls    PullSource
	Store    snapshot.Store
	Reporter *report.Reporter
	Out      io.Writer
}

type Result struct {
	Table  metrics.Table
	Output report.Output

	// PR pipeline only
	NonMaintainers       metrics.Table
	NonMaintainersOutput report.Output
	Authors              []string
}

func IssuesName(cfg config.Pipeline) string {
	return fmt.Sprintf("closed_issues_%s_%s", cfg.Owner, cfg.Repo)
}

func PullsName(cfg config.Pipeline) string {
	return fmt.Sprintf("closed_prs_%s_%s", cfg.Owner, cfg.Repo)
}

// RunIssues reports how long issues carrying cfg.Label stayed open.
func RunIssues(ctx context.Context, cfg config.Pipeline, d Deps) (Result, error) {
	name := IssuesName(cfg)

	var list func(context.Context) ([]*gh.Issue, error)
	if d.Issues != nil {
		list = d.Issues.ClosedIssues
	}
	issues, err := fetch(ctx, cfg, d.Store, name, list)
	if err != nil {
		return Result{}, err
	}

	records, rejected := commontypes.IssueRecords(issues)
	warnRejected(rejected)

	table := metrics.Aggregate(records, metrics.HasLabel(cfg.Label), metrics.IssueColumns, cfg.Ceiling)
	logme.InfoF("%d of %d closed issues are labelled %q\n", table.Len(), len(records), cfg.Label)

	out, err := d.Reporter.Publish(ctx, name, table, cfg.Chart)
	if err != nil {
		return Result{}, err
	}

	return Result{Table: table, Output: out}, nil
}

// RunPulls reports how long merged PRs took, once for everybody but the
// excluded authors and once more without the maintainers.
func RunPulls(ctx context.Context, cfg config.Pipeline, d Deps) (Result, error) {
	name := PullsName(cfg)

	var list func(context.Context) ([]*gh.PullRequest, error)
	if d.Pulls != nil {
		list = d.Pulls.ClosedPulls
	}
	prs, err := fetch(ctx, cfg, d.Store, name, list)
	if err != nil {
		return Result{}, err
	}

	records, rejected := commontypes.PullRecords(prs)
	warnRejected(rejected)

	table := metrics.Aggregate(records, metrics.MergedExcept(cfg.ExcludedAuthors), metrics.PullColumns, cfg.Ceiling)
	logme.InfoF("%d of %d closed PRs were merged\n", table.Len(), len(records))

	res := Result{Table: table}
	res.Output, err = d.Reporter.Publish(ctx, name, table, cfg.Chart)
	if err != nil {
		return Result{}, err
	}

	res.NonMaintainers = table.WithoutAuthors(cfg.Maintainers)
	res.NonMaintainersOutput, err = d.Reporter.Publish(ctx, name+"_noCoreDev", res.NonMaintainers, cfg.MaintainerChart)
	if err != nil {
		return Result{}, err
	}

	res.Authors = res.NonMaintainers.Authors()
	out := d.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, "[%s]\n", strings.Join(res.Authors, ", "))

	return res, nil
}

// fetch loads the saved snapshot in local mode, otherwise it collects from
// the API and saves what it got. A collection stopped by the API is only a
// warning: the partial result goes on.
func fetch[T any](
	ctx context.Context,
	cfg config.Pipeline,
	store snapshot.Store,
	name string,
	list func(context.Context) ([]T, error),
) ([]T, error) {
	if cfg.UseLocal {
		items, err := snapshot.Get[T](ctx, store, name)
		if err != nil {
			return nil, fmt.Errorf("loading local snapshot: %w", err)
		}
		logme.InfoF("Loaded %d items from snapshot %s\n", len(items), name)
		return items, nil
	}

	if list == nil {
		return nil, errors.New("no source configured")
	}

	items, err := list(ctx)
	var statusErr *github.StatusError
	switch {
	case errors.As(err, &statusErr):
		logme.WarnF("%v\n", statusErr)
	case err != nil:
		return nil, err
	}

	if err := snapshot.Put(ctx, store, name, items); err != nil {
		return nil, fmt.Errorf("saving snapshot: %w", err)
	}
	logme.InfoF("Saved %d items to snapshot %s\n", len(items), name)

	return items, nil
}

func warnRejected(errs []error) {
	for _, err := range errs {
		logme.WarnF("skipping %v\n", err)
	}
}
