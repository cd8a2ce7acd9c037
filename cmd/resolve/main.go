// Command resolve is a thin front door over the resolver pipeline: it
// scans a mods root, validates every candidate against a host API version
// and the bundled compatibility database, orders the survivors by
// dependency, and prints the result. It has no interactive surface; that
// is left to the installer and host runtime this module is embedded in.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kestrelmods/resolver/pkg/compatdb"
	"github.com/kestrelmods/resolver/pkg/logging"
	"github.com/kestrelmods/resolver/pkg/resolver"
	"github.com/kestrelmods/resolver/pkg/semver"
)

// CLIArgs holds all command-line arguments passed to the resolve command.
type CLIArgs struct {
	ModsDir        string
	HostAPIVersion string
	Verbose        bool
}

// ParseCLIArgs parses the command-line flags and returns a populated CLIArgs struct.
func ParseCLIArgs() *CLIArgs {
	args := &CLIArgs{}

	flag.StringVar(&args.ModsDir, "mods-dir", ".", "Directory containing candidate mod folders.")
	flag.StringVar(&args.HostAPIVersion, "host-api-version", "1.0.0", "The host application's API version.")
	flag.BoolVar(&args.Verbose, "verbose", false, "Enable verbose (debug) logging.")
	flag.Parse()

	return args
}

func main() {
	args := ParseCLIArgs()

	logger := logging.NewLogger()
	logger.SetWriter(os.Stderr)
	logger.SetDebug(args.Verbose)
	logging.SetDefault(logger)

	hostVersion, err := semver.Parse(args.HostAPIVersion)
	if err != nil {
		logging.Errorf(logging.StageCLI, "invalid -host-api-version %q: %v", args.HostAPIVersion, err)
		fmt.Fprintf(os.Stderr, "invalid -host-api-version %q: %v\n", args.HostAPIVersion, err)
		os.Exit(2)
	}

	db, err := compatdb.LoadEmbedded()
	if err != nil {
		logging.Warnf(logging.StageCLI, "compatibility database loaded with errors: %v", err)
	}

	// No update-check web service is wired up; it is an external
	// collaborator this module does not implement.
	var getUpdateURL func(string) *string

	records := resolver.ReadManifests(args.ModsDir, resolver.DefaultParser, db)
	resolver.ValidateManifests(records, hostVersion, getUpdateURL)
	ordered := resolver.ProcessDependencies(records, db)

	for _, r := range ordered {
		if r.IsFound() {
			fmt.Printf("OK      %-30s %s\n", r.Manifest.UniqueID, r.Manifest.Version)
		} else {
			fmt.Printf("FAILED  %-30s %s\n", r.DisplayName, *r.Error)
		}
	}

	if warnings := logger.Store().Warnings(); len(warnings) > 0 {
		fmt.Fprintf(os.Stderr, "\n%d warning(s) during this run:\n", len(warnings))
		for _, w := range warnings {
			fmt.Fprintf(os.Stderr, "  [%s] %s\n", w.Stage, w.Message)
		}
	}
}
