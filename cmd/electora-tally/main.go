// Command electora-tally prints the results of an exported election.
//
// The input file holds {"election": {...}, "votes": [...]} in the same shape
// the server returns from GET /api/elections/{id} and /votes.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/abrezinsky/electora/internal/models"
	"github.com/abrezinsky/electora/internal/report"
	"github.com/abrezinsky/electora/internal/services"
)

type export struct {
	Election *models.Election `json:"election"`
	Votes    []models.Vote    `json:"votes"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("electora-tally", flag.ContinueOnError)
	fs.SetOutput(stderr)
	asJSON := fs.Bool("json", false, "Print the results document as JSON instead of tables")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: electora-tally [-json] <export.json>\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	results, err := tallyFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "electora-tally: %v\n", err)
		return 1
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			fmt.Fprintf(stderr, "electora-tally: %v\n", err)
			return 1
		}
		return 0
	}

	report.NewResultsReport(results).Print(stdout)
	return 0
}

func tallyFile(path string) (*services.ElectionResults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var in export
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if in.Election == nil {
		return nil, fmt.Errorf("%s: missing election", path)
	}

	return services.TallyVotes(in.Election, in.Votes)
}
