package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/grafana/turnaround/pkg/config"
	"github.com/grafana/turnaround/pkg/logme"
	"github.com/grafana/turnaround/pkg/metrics"
)

// Viewer presents a rendered chart. Reporting never depends on one being
// available.
type Viewer interface {
	Show(ctx context.Context, htmlPath string) error
}

type Reporter struct {
	dir    string
	viewer Viewer
}

// Output lists the files written for one table.
type Output struct {
	TSV  string
	HTML string
}

func NewReporter(dir string, viewer Viewer) *Reporter {
	return &Reporter{dir: dir, viewer: viewer}
}

// Publish writes <name>.tsv and <name>.html and shows the chart.
// A viewer failure is logged, the files are already on disk.
func (r *Reporter) Publish(ctx context.Context, name string, t metrics.Table, chart config.Chart) (Output, error) {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return Output{}, err
	}

	out := Output{
		TSV:  filepath.Join(r.dir, name+".tsv"),
		HTML: filepath.Join(r.dir, name+".html"),
	}

	if err := writeFile(out.TSV, func(f *os.File) error { return WriteTSV(f, t) }); err != nil {
		return Output{}, fmt.Errorf("writing %s: %w", out.TSV, err)
	}
	logme.InfoF("Wrote %d rows to %s\n", t.Len(), out.TSV)

	err := writeFile(out.HTML, func(f *os.File) error {
		return RenderHistogram(f, t.Days(), chart, t.Columns.Metric)
	})
	if err != nil {
		return Output{}, fmt.Errorf("writing %s: %w", out.HTML, err)
	}
	logme.InfoF("Wrote chart to %s\n", out.HTML)

	if r.viewer != nil {
		if err := r.viewer.Show(ctx, out.HTML); err != nil {
			logme.WarnF("could not show %s: %v\n", out.HTML, err)
		}
	}

	return out, nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
