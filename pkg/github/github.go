package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v68/github"

	"github.com/grafana/turnaround/pkg/config"
	"github.com/grafana/turnaround/pkg/logme"
)

const maxErrorBody = 64 << 10

// StatusError stops a collection early. The pages fetched before it are
// still returned to the caller.
type StatusError struct {
	Page       int
	StatusCode int
	Body       string
	Err        error
}

func (e *StatusError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("page %d: request failed: %v", e.Page, e.Err)
	}
	return fmt.Sprintf("Error %d on page %d: %s", e.StatusCode, e.Page, e.Body)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

type Collector struct {
	client   *gh.Client
	owner    string
	repo     string
	perPage  int
	maxPages int
	debug    bool
}

type Option func(*Collector) error

// WithBaseURL points the client at another API root (tests, enterprise).
func WithBaseURL(raw string) Option {
	return func(c *Collector) error {
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("parsing base url: %w", err)
		}
		c.client.BaseURL = u
		return nil
	}
}

// NewCollector builds a collector for cfg. Credentials with a username go
// out as basic auth, a bare token as a bearer token.
func NewCollector(cfg config.Pipeline, creds config.Credentials, opts ...Option) (*Collector, error) {
	var httpClient *http.Client
	if !creds.Anonymous() && creds.Username != "" {
		transport := &gh.BasicAuthTransport{
			Username: creds.Username,
			Password: creds.Token,
		}
		httpClient = transport.Client()
	}

	client := gh.NewClient(httpClient)
	if !creds.Anonymous() && creds.Username == "" {
		client = client.WithAuthToken(creds.Token)
	}

	perPage := cfg.PerPage
	if perPage <= 0 {
		perPage = config.DefaultPerPage
	}

	c := &Collector{
		client:   client,
		owner:    cfg.Owner,
		repo:     cfg.Repo,
		perPage:  perPage,
		maxPages: cfg.MaxPages,
		debug:    cfg.Debug,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ClosedIssues lists the closed issues of the repository. A non nil
// *StatusError comes with the issues fetched before the failing page.
func (c *Collector) ClosedIssues(ctx context.Context) ([]*gh.Issue, error) {
	return collect[*gh.Issue](ctx, c, "issues", func(ctx context.Context, lo gh.ListOptions) ([]*gh.Issue, *gh.Response, error) {
		return c.client.Issues.ListByRepo(ctx, c.owner, c.repo, &gh.IssueListByRepoOptions{
			State:       "closed",
			ListOptions: lo,
		})
	})
}

// ClosedPulls lists the closed pull requests, merged or not.
func (c *Collector) ClosedPulls(ctx context.Context) ([]*gh.PullRequest, error) {
	return collect[*gh.PullRequest](ctx, c, "PRs", func(ctx context.Context, lo gh.ListOptions) ([]*gh.PullRequest, *gh.Response, error) {
		return c.client.PullRequests.List(ctx, c.owner, c.repo, &gh.PullRequestListOptions{
			State:       "closed",
			ListOptions: lo,
		})
	})
}

type pageFunc[T any] func(ctx context.Context, lo gh.ListOptions) ([]T, *gh.Response, error)

func collect[T any](ctx context.Context, c *Collector, kind string, fetch pageFunc[T]) ([]T, error) {
	var items []T
	for page := 1; page <= c.maxPages; page++ {
		logme.InfoF("Getting page %d of %s\n", page, kind)

		batch, resp, err := fetch(ctx, gh.ListOptions{Page: page, PerPage: c.perPage})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return items, ctxErr
			}
			return items, statusError(page, resp, err)
		}

		items = append(items, batch...)
		logme.DebugF("page %d: %d %s, %d total\n", page, len(batch), kind, len(items))

		if c.debug {
			break
		}
		if len(batch) < c.perPage {
			break
		}
	}
	return items, nil
}

func statusError(page int, resp *gh.Response, err error) *StatusError {
	se := &StatusError{Page: page, Err: err, Body: err.Error()}
	if resp != nil && resp.Response != nil {
		se.StatusCode = resp.StatusCode
	}

	var errResp *gh.ErrorResponse
	if errors.As(err, &errResp) {
		if errResp.Response != nil {
			se.StatusCode = errResp.Response.StatusCode
		}
		if errResp.Message != "" {
			se.Body = errResp.Message
		} else if body := readBody(errResp.Response); body != "" {
			se.Body = body
		}
	}
	return se
}

// readBody returns the text of a non JSON error page. go-github leaves the
// body rewound after CheckResponse.
func readBody(resp *http.Response) string {
	if resp == nil || resp.Body == nil {
		return ""
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
