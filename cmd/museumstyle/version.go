package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/nao1215/museumstyle/internal/httpclient"
)

// Set at build time:
//
//	go build -ldflags "-X main.version=v1.0.0 -X main.commit=abc1234 -X main.date=2026-01-01"
var (
	version = ""
	commit  = ""
	date    = ""
)

// buildInfo describes the running binary.
type buildInfo struct {
	Version string
	Commit  string
	Date    string
	Dirty   bool
}

// readBuildInfo merges the ldflags values with the vcs settings the Go
// toolchain embeds. ldflags win.
func readBuildInfo() buildInfo {
	bi := buildInfo{Version: version, Commit: commit, Date: date}

	info, ok := debug.ReadBuildInfo()
	if ok {
		if bi.Version == "" && info.Main.Version != "" {
			bi.Version = info.Main.Version
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if bi.Commit == "" {
					bi.Commit = s.Value
				}
			case "vcs.time":
				if bi.Date == "" {
					bi.Date = s.Value
				}
			case "vcs.modified":
				bi.Dirty = s.Value == "true"
			}
		}
	}

	if bi.Version == "" {
		bi.Version = "(devel)"
	}
	if len(bi.Commit) > 7 {
		bi.Commit = bi.Commit[:7]
	}
	if bi.Commit == "" {
		bi.Commit = "unknown"
	}
	if bi.Date == "" {
		bi.Date = "unknown"
	}
	return bi
}

// getVersion returns the version reported to users and to Wikimedia.
func getVersion() string {
	return readBuildInfo().Version
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print the version, commit and build date of museumstyle, the Go
release it was built with, and the User-Agent it sends to Wikimedia.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			bi := readBuildInfo()
			rev := bi.Commit
			if bi.Dirty {
				rev += "-dirty"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "museumstyle version %s\n", bi.Version)
			fmt.Fprintf(out, "  commit:     %s\n", rev)
			fmt.Fprintf(out, "  built:      %s\n", bi.Date)
			fmt.Fprintf(out, "  go:         %s\n", runtime.Version())
			fmt.Fprintf(out, "  user agent: %s\n", httpclient.BuildUserAgent(bi.Version))
		},
	}
}
