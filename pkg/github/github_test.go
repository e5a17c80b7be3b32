package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/turnaround/pkg/config"
)

// pagedAPI serves pages[n-1] for ?page=n and an empty list after the last.
func pagedAPI(t *testing.T, path string, pages [][]int, requests *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(requests, 1)
		assert.Equal(t, "closed", r.URL.Query().Get("state"))

		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		assert.NoError(t, err)

		items := []map[string]any{}
		if page <= len(pages) {
			for _, n := range pages[page-1] {
				items = append(items, map[string]any{
					"number":     n,
					"created_at": "2023-01-01T00:00:00Z",
					"closed_at":  "2023-01-11T00:00:00Z",
					"state":      "closed",
					"title":      fmt.Sprintf("item %d", n),
					"user":       map[string]any{"login": "alice"},
				})
			}
		}
		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, json.NewEncoder(w).Encode(items))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newCollector(t *testing.T, srv *httptest.Server, cfg config.Pipeline) *Collector {
	t.Helper()
	c, err := NewCollector(cfg, config.Credentials{}, WithBaseURL(srv.URL))
	require.NoError(t, err)
	return c
}

func testConfig() config.Pipeline {
	return config.Pipeline{Owner: "nilearn", Repo: "nilearn", PerPage: 3, MaxPages: 10}
}

func TestClosedIssuesStopsOnPartialPage(t *testing.T) {
	var requests int32
	pages := [][]int{{1, 2, 3}, {4, 5, 6}, {7}}
	srv := pagedAPI(t, "/repos/nilearn/nilearn/issues", pages, &requests)

	issues, err := newCollector(t, srv, testConfig()).ClosedIssues(context.Background())

	require.NoError(t, err)
	require.Len(t, issues, 7)
	for i, issue := range issues {
		assert.Equal(t, i+1, issue.GetNumber())
	}
	assert.EqualValues(t, 3, atomic.LoadInt32(&requests))
}

func TestClosedPullsStopsOnEmptyPage(t *testing.T) {
	var requests int32
	pages := [][]int{{1, 2, 3}, {4, 5, 6}}
	srv := pagedAPI(t, "/repos/nilearn/nilearn/pulls", pages, &requests)

	prs, err := newCollector(t, srv, testConfig()).ClosedPulls(context.Background())

	require.NoError(t, err)
	require.Len(t, prs, 6)
	assert.Equal(t, 6, prs[5].GetNumber())
	assert.EqualValues(t, 3, atomic.LoadInt32(&requests))
}

func TestPageCeiling(t *testing.T) {
	var requests int32
	pages := [][]int{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}, {10, 11, 12}}
	srv := pagedAPI(t, "/repos/nilearn/nilearn/issues", pages, &requests)

	cfg := testConfig()
	cfg.MaxPages = 2
	issues, err := newCollector(t, srv, cfg).ClosedIssues(context.Background())

	require.NoError(t, err)
	assert.Len(t, issues, 6)
	assert.EqualValues(t, 2, atomic.LoadInt32(&requests))
}

func TestDebugFetchesOnePage(t *testing.T) {
	var requests int32
	pages := [][]int{{1, 2, 3}, {4, 5, 6}}
	srv := pagedAPI(t, "/repos/nilearn/nilearn/issues", pages, &requests)

	cfg := testConfig()
	cfg.Debug = true
	issues, err := newCollector(t, srv, cfg).ClosedIssues(context.Background())

	require.NoError(t, err)
	assert.Len(t, issues, 3)
	assert.EqualValues(t, 1, atomic.LoadInt32(&requests))
}

func TestFailingPageKeepsEarlierPages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/nilearn/nilearn/issues", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"message":"server on fire"}`)
			return
		}
		fmt.Fprint(w, `[
			{"number":1,"created_at":"2023-01-01T00:00:00Z","user":{"login":"a"}},
			{"number":2,"created_at":"2023-01-01T00:00:00Z","user":{"login":"a"}},
			{"number":3,"created_at":"2023-01-01T00:00:00Z","user":{"login":"a"}}
		]`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	issues, err := newCollector(t, srv, testConfig()).ClosedIssues(context.Background())

	require.Error(t, err)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Equal(t, 2, statusErr.Page)
	assert.Contains(t, statusErr.Error(), "500")
	assert.Contains(t, statusErr.Error(), "server on fire")
	assert.Len(t, issues, 3)
}

func TestFailingPageNonJSONBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/nilearn/nilearn/issues", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "upstream gateway exploded\n")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	issues, err := newCollector(t, srv, testConfig()).ClosedIssues(context.Background())

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, 1, statusErr.Page)
	assert.Equal(t, "upstream gateway exploded", statusErr.Body)
	assert.Contains(t, statusErr.Error(), "502")
	assert.Contains(t, statusErr.Error(), "upstream gateway exploded")
	assert.Empty(t, issues)
}

func TestBasicAuth(t *testing.T) {
	var user, pass string
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/nilearn/nilearn/pulls", func(w http.ResponseWriter, r *http.Request) {
		user, pass, _ = r.BasicAuth()
		fmt.Fprint(w, `[]`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	creds := config.Credentials{Username: "Remi-Gau", Token: "s3cret"}
	c, err := NewCollector(testConfig(), creds, WithBaseURL(srv.URL))
	require.NoError(t, err)

	prs, err := c.ClosedPulls(context.Background())

	require.NoError(t, err)
	assert.Empty(t, prs)
	assert.Equal(t, "Remi-Gau", user)
	assert.Equal(t, "s3cret", pass)
}

func TestCancelledContext(t *testing.T) {
	var requests int32
	srv := pagedAPI(t, "/repos/nilearn/nilearn/issues", [][]int{{1, 2, 3}}, &requests)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newCollector(t, srv, testConfig()).ClosedIssues(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}
