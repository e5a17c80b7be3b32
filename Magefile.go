//go:build mage
// +build mage

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

type Run mg.Namespace
type Build mg.Namespace

// set default to build commands

var Default = Build.Commands

var archTargets = map[string]map[string]string{
	"darwin_amd64": {
		"CGO_ENABLED": "1",
		"GO111MODULE": "on",
		"GOARCH":      "amd64",
		"GOOS":        "darwin",
	},
	"darwin_arm64": {
		"CGO_ENABLED": "1",
		"GO111MODULE": "on",
		"GOARCH":      "arm64",
		"GOOS":        "darwin",
	},
	"linux_amd64": {
		"CGO_ENABLED": "1",
		"GO111MODULE": "on",
		"GOARCH":      "amd64",
		"GOOS":        "linux",
	},
}

func Clean() {
	log.Printf("Cleaning all")
	os.RemoveAll("./bin")
}

func buildCommand(command string, arch string) error {
	env, ok := archTargets[arch]
	if !ok {
		return fmt.Errorf("unknown arch %s", arch)
	}
	log.Printf("Building %s/%s\n", arch, command)
	outDir := fmt.Sprintf("./bin/%s/%s", arch, command)
	cmdDir := fmt.Sprintf("./pkg/cmd/%s", command)
	if err := sh.RunWith(env, "go", "build", "-o", outDir, cmdDir); err != nil {
		return err
	}

	// intentionally igores errors
	return sh.RunV("chmod", "+x", outDir)
}

func (Build) Commands(ctx context.Context) error {
	mg.Deps(
		Clean,
	)

	const commandsFolder = "./pkg/cmd"
	folders, err := os.ReadDir(commandsFolder)

	if err != nil {
		return err
	}

	for _, folder := range folders {
		if folder.IsDir() {
			currentArch := runtime.GOOS + "_" + runtime.GOARCH
			err := buildCommand(folder.Name(), currentArch)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func (Run) FixTimes(ctx context.Context, repo string) error {
	mg.Deps(func() error {
		return buildCommand("fix-times", runtime.GOOS+"_"+runtime.GOARCH)
	})

	command := []string{
		"./bin/" + runtime.GOOS + "_" + runtime.GOARCH + "/fix-times",
		"-repo=" + repo,
		"-outDir=out",
		"-tokenFile=token.txt",
	}

	return sh.RunV(command[0], command[1:]...)
}

func (Run) MergeTimes(ctx context.Context, repo string) error {
	mg.Deps(func() error {
		return buildCommand("merge-times", runtime.GOOS+"_"+runtime.GOARCH)
	})

	command := []string{
		"./bin/" + runtime.GOOS + "_" + runtime.GOARCH + "/merge-times",
		"-repo=" + repo,
		"-outDir=out",
		"-tokenFile=token.txt",
	}

	return sh.RunV(command[0], command[1:]...)
}

// Local reruns both reports from the snapshots saved in ./out
func (Run) Local(ctx context.Context, repo string) error {
	mg.Deps(
		Build.Commands,
	)

	for _, command := range []string{"fix-times", "merge-times"} {
		bin := "./bin/" + runtime.GOOS + "_" + runtime.GOARCH + "/" + command
		if err := sh.RunV(bin, "-repo="+repo, "-outDir=out", "-useLocal"); err != nil {
			return err
		}
	}
	return nil
}

func Test() error {
	return sh.RunV("go", "test", "./...")
}
