package config

import (
	"errors"
	"flag"
	"fmt"
	"regexp"
	"strings"
)

const (
	DefaultPerPage = 100

	SnapshotJSON   = "json"
	SnapshotSQLite = "sqlite"

	ViewNone       = "none"
	ViewScreenshot = "screenshot"
	ViewBrowser    = "browser"
)

var repoPattern = regexp.MustCompile(`^[a-zA-Z0-9_.\-]+/[a-zA-Z0-9_.\-]+$`)

// Chart holds the histogram parameters. Min and Max bound the x axis and
// the bins are equal width over that range.
type Chart struct {
	Title string
	Bins  int
	Min   float64
	Max   float64
}

// Pipeline is everything one run of the issue or PR pipeline needs.
// It is built once in main and passed down; nothing reads globals.
type Pipeline struct {
	Owner string
	Repo  string

	Username  string
	TokenFile string

	PerPage  int
	MaxPages int
	Debug    bool
	UseLocal bool

	Label           string
	ExcludedAuthors []string
	Maintainers     []string
	Ceiling         int

	Chart           Chart
	MaintainerChart Chart

	OutputDir  string
	Snapshot   string
	SnapshotDb string
	View       string
}

// IssueDefaults matches the bug fix time report of nilearn/nilearn.
func IssueDefaults() Pipeline {
	return Pipeline{
		Owner:     "nilearn",
		Repo:      "nilearn",
		Username:  "Remi-Gau",
		TokenFile: "token.txt",
		PerPage:   DefaultPerPage,
		MaxPages:  200,
		Label:     "Bug",
		Ceiling:   180,
		Chart: Chart{
			Title: "Time to fix bug (days)",
			Bins:  90,
			Min:   0,
			Max:   180,
		},
		OutputDir: ".",
		Snapshot:  SnapshotJSON,
		View:      ViewNone,
	}
}

// PullDefaults matches the merge time report of nilearn/nilearn.
func PullDefaults() Pipeline {
	return Pipeline{
		Owner:     "nilearn",
		Repo:      "nilearn",
		Username:  "Remi-Gau",
		TokenFile: "token.txt",
		PerPage:   DefaultPerPage,
		MaxPages:  100,
		ExcludedAuthors: []string{
			"dependabot[bot]",
			"pre-commit-ci[bot]",
			"allcontributors[bot]",
			"github-actions[bot]",
		},
		Maintainers: []string{
			"GaelVaroquaux",
			"alexisthual",
			"bthirion",
			"emdupre",
			"htwangtw",
			"jeromedockes",
			"Nicolas Gensollen",
			"Remi-Gau",
			"tsalo",
			"ymzayek",
			"AlexandreAbraham",
			"KamalakerDadi",
			"lesteve",
			"pgervais",
			"kchawla-pi",
		},
		Ceiling: 90,
		Chart: Chart{
			Title: "Time to merge PRs (days)",
			Bins:  90,
			Min:   0,
			Max:   90,
		},
		MaintainerChart: Chart{
			Title: "Time to merge PRs (days) - no core devs",
			Bins:  90,
			Min:   0,
			Max:   90,
		},
		OutputDir: ".",
		Snapshot:  SnapshotJSON,
		View:      ViewNone,
	}
}

// FullName returns owner/repo.
func (p Pipeline) FullName() string {
	return p.Owner + "/" + p.Repo
}

// ParseRepo splits an owner/repo coordinate.
func ParseRepo(repo string) (string, string, error) {
	if !repoPattern.MatchString(repo) {
		return "", "", fmt.Errorf("repo %q is invalid. Must be owner/repo", repo)
	}
	owner, name, _ := strings.Cut(repo, "/")
	return owner, name, nil
}

// Validate checks the values that would otherwise fail deep in the run.
func (p Pipeline) Validate() error {
	var errs []error

	if p.Owner == "" || p.Repo == "" {
		errs = append(errs, errors.New("owner and repo are required"))
	}
	if p.PerPage <= 0 {
		errs = append(errs, fmt.Errorf("perPage must be positive, got %d", p.PerPage))
	}
	if p.MaxPages <= 0 {
		errs = append(errs, fmt.Errorf("maxPages must be positive, got %d", p.MaxPages))
	}
	if p.Ceiling <= 0 {
		errs = append(errs, fmt.Errorf("ceiling must be positive, got %d", p.Ceiling))
	}
	if err := p.Chart.validate(); err != nil {
		errs = append(errs, err)
	}
	if len(p.Maintainers) > 0 {
		if err := p.MaintainerChart.validate(); err != nil {
			errs = append(errs, err)
		}
	}
	switch p.Snapshot {
	case SnapshotJSON:
	case SnapshotSQLite:
		if p.SnapshotDb == "" {
			errs = append(errs, errors.New("snapshotDb is required with the sqlite snapshot"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown snapshot backend %q", p.Snapshot))
	}
	switch p.View {
	case ViewNone, ViewScreenshot, ViewBrowser:
	default:
		errs = append(errs, fmt.Errorf("unknown view mode %q", p.View))
	}

	return errors.Join(errs...)
}

func (c Chart) validate() error {
	if c.Bins <= 0 {
		return fmt.Errorf("chart %q: bins must be positive, got %d", c.Title, c.Bins)
	}
	if c.Max <= c.Min {
		return fmt.Errorf("chart %q: range [%g, %g] is empty", c.Title, c.Min, c.Max)
	}
	return nil
}

// BindFlags registers the command line flags on fs, using the current
// values of p as defaults. The repo flag is resolved by Finish.
func BindFlags(fs *flag.FlagSet, p *Pipeline) *Flags {
	f := &Flags{pipeline: p}

	fs.StringVar(&f.repo, "repo", p.FullName(), "Github repo to inspect (owner/repo)")
	fs.StringVar(&p.Username, "username", p.Username, "Github username used with the token for basic auth")
	fs.StringVar(&p.TokenFile, "tokenFile", p.TokenFile, "File holding a Github token")
	fs.IntVar(&p.MaxPages, "maxPages", p.MaxPages, "Maximum number of pages to request")
	fs.BoolVar(&p.Debug, "debug", p.Debug, "Only fetch the first page")
	fs.BoolVar(&p.UseLocal, "useLocal", p.UseLocal, "Read the saved snapshot instead of calling the API")
	fs.IntVar(&p.Ceiling, "ceiling", p.Ceiling, "Upper bound of the elapsed days")
	fs.IntVar(&p.Chart.Bins, "bins", p.Chart.Bins, "Number of histogram bins")
	fs.StringVar(&p.OutputDir, "outDir", p.OutputDir, "Output directory")
	fs.StringVar(&p.Snapshot, "snapshot", p.Snapshot, "Snapshot backend: json or sqlite")
	fs.StringVar(&p.SnapshotDb, "snapshotDb", p.SnapshotDb, "SQLite file used by the sqlite snapshot")
	fs.StringVar(&p.View, "view", p.View, "Chart viewer: none, screenshot or browser")
	fs.Func("exclude", "Comma separated authors to drop", func(s string) error {
		p.ExcludedAuthors = splitList(s)
		return nil
	})
	fs.Func("maintainers", "Comma separated maintainer roster", func(s string) error {
		p.Maintainers = splitList(s)
		return nil
	})
	if p.Label != "" {
		fs.StringVar(&p.Label, "label", p.Label, "Label an issue must carry")
	}

	return f
}

// Flags keeps the raw values that need post processing after Parse.
type Flags struct {
	pipeline *Pipeline
	repo     string
}

// Finish applies the parsed flags and validates the pipeline.
func (f *Flags) Finish() error {
	owner, repo, err := ParseRepo(f.repo)
	if err != nil {
		return err
	}
	f.pipeline.Owner = owner
	f.pipeline.Repo = repo

	// the axis follows the clamp so the last bin holds the clamped items
	f.pipeline.Chart.Max = float64(f.pipeline.Ceiling)
	f.pipeline.MaintainerChart.Bins = f.pipeline.Chart.Bins
	f.pipeline.MaintainerChart.Max = float64(f.pipeline.Ceiling)

	return f.pipeline.Validate()
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
