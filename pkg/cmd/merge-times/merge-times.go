package main

// go run ./pkg/cmd/merge-times -repo=nilearn/nilearn
// fetches the closed PRs of the repo and plots how many days the merged
// ones took, with and without the core devs

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

	cfg := config.PullDefaults()
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

	res, err := pipeline.RunPulls(ctx, cfg, deps)
	if err != nil {
		cleanup()
		logme.FatalF("Error computing merge times: %v\n", err)
	}

	logme.InfoF(
		"Done: %d merged PRs, %d from %d outside contributors\n",
		res.Table.Len(),
		res.NonMaintainers.Len(),
		len(res.Authors),
	)
}
