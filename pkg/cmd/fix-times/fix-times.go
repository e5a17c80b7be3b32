package main

// go run ./pkg/cmd/fix-times -repo=nilearn/nilearn
// fetches the closed issues of the repo, keeps the ones labelled Bug
// and plots how many days they took to close

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/grafana/turnaround/pkg/config"
	"github.com/grafana/turnaround/pkg/logme"
	"github.com/grafana/turnaround/pkg/pipeline"
)

func main() {
	config.LoadEnv()

	cfg := config.IssueDefaults()
	flags := config.BindFlags(flag.CommandLine, &cfg)
	flag.Parse()

	if err := flags.Finish(); err != nil {
		fmt.Printf("Error validating flags: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	deps, cleanup, err := pipeline.NewDeps(cfg)
	if err != nil {
		logme.FatalF("Error setting up: %v\n", err)
	}
	defer cleanup()

	res, err := pipeline.RunIssues(ctx, cfg, deps)
	if err != nil {
		cleanup()
		logme.FatalF("Error computing fix times: %v\n", err)
	}

	logme.InfoF("Done: %d bugs in %s\n", res.Table.Len(), res.Output.TSV)
}
