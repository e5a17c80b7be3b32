package pipeline

import (
	"os"

	"github.com/grafana/turnaround/pkg/config"
	"github.com/grafana/turnaround/pkg/github"
	"github.com/grafana/turnaround/pkg/report"
	"github.com/grafana/turnaround/pkg/snapshot"
	"github.com/grafana/turnaround/pkg/viewer"
)

// NewDeps wires the real collaborators for cfg. The returned func releases
// the snapshot store.
func NewDeps(cfg config.Pipeline, opts ...github.Option) (Deps, func(), error) {
	deps := Deps{Out: os.Stdout}
	cleanup := func() {}

	if !cfg.UseLocal {
		creds, err := config.LoadCredentials(cfg.TokenFile, cfg.Username)
		if err != nil {
			return Deps{}, cleanup, err
		}
		collector, err := github.NewCollector(cfg, creds, opts...)
		if err != nil {
			return Deps{}, cleanup, err
		}
		deps.Issues = collector
		deps.Pulls = collector
	}

	switch cfg.Snapshot {
	case config.SnapshotSQLite:
		store, err := snapshot.OpenSQLite(cfg.SnapshotDb)
		if err != nil {
			return Deps{}, cleanup, err
		}
		deps.Store = store
		cleanup = func() { store.Close() }
	default:
		deps.Store = snapshot.JSONStore{Dir: cfg.OutputDir}
	}

	v, err := viewer.New(cfg.View)
	if err != nil {
		cleanup()
		return Deps{}, func() {}, err
	}
	deps.Reporter = report.NewReporter(cfg.OutputDir, v)

	return deps, cleanup, nil
}
