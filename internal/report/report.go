// Package report renders election results as Markdown-style text tables.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/abrezinsky/electora/internal/services"
	"github.com/abrezinsky/electora/internal/tally"
)

// ResultsReport prints a results document category by category
type ResultsReport struct {
	Results *services.ElectionResults
}

// NewResultsReport creates a report for results
func NewResultsReport(results *services.ElectionResults) *ResultsReport {
	return &ResultsReport{Results: results}
}

// Print writes the heading, one standings table per category and, for
// Condorcet elections, the pairwise table.
func (r *ResultsReport) Print(w io.Writer) {
	title := "Election"
	if e := r.Results.Election; e != nil && e.Title != "" {
		title = e.Title
	}
	fmt.Fprintf(w, "# %s (%s, %d votes)\n", title, r.Results.Results.ContestType, r.Results.TotalVotes)

	for _, cat := range r.Results.Results.Categories {
		fmt.Fprintf(w, "\n## %s\n\n", cat.CategoryName)
		if cat.Results == nil {
			continue
		}
		r.PrintStandingsTable(w, cat.Results)
		if cat.Results.Method == tally.Condorcet {
			fmt.Fprintln(w)
			r.PrintPairwiseTable(w, cat.Results)
		}
		fmt.Fprintf(w, "\n%s\n", WinnersLine(cat.Results))
	}
}

// PrintStandingsTable writes candidates in standing order with the
// method's headline number
func (r *ResultsReport) PrintStandingsTable(w io.Writer, res *tally.Result) {
	table := newTable(w)

	switch res.Method {
	case tally.Condorcet:
		table.SetHeader([]string{"Rank", "Candidate", "Wins", "Losses"})
		for i, s := range res.Standings {
			rec := res.CandidateScores[s.Candidate]
			table.Append([]string{fmt.Sprint(i + 1), s.Candidate, fmt.Sprint(rec.Wins), fmt.Sprint(rec.Losses)})
		}
	default:
		table.SetHeader([]string{"Rank", "Candidate", valueHeading(res.Method)})
		for i, s := range res.Standings {
			table.Append([]string{fmt.Sprint(i + 1), s.Candidate, fmt.Sprint(s.Value)})
		}
	}

	table.Render()
}

// PrintPairwiseTable writes every head-to-head match-up
func (r *ResultsReport) PrintPairwiseTable(w io.Writer, res *tally.Result) {
	table := newTable(w)
	table.SetHeader([]string{"A", "B", "# A", "# B", "Winner"})

	for _, p := range res.Pairwise {
		winner := p.Winner
		if winner == "" {
			winner = "tie"
		}
		table.Append([]string{p.A, p.B, fmt.Sprint(p.Wins), fmt.Sprint(p.Losses), winner})
	}

	table.Render()
}

// WinnersLine summarises the outcome of one category
func WinnersLine(res *tally.Result) string {
	if res.NoCondorcetWinner {
		line := "No Condorcet winner"
		for _, cycle := range res.Cycles {
			line += fmt.Sprintf("; cycle: %s", strings.Join(cycle, " > "))
		}
		return line
	}
	switch len(res.Winners) {
	case 0:
		return "No winner"
	case 1:
		return "Winner: " + res.Winners[0]
	default:
		return "Tie: " + strings.Join(res.Winners, ", ")
	}
}

func valueHeading(m tally.Method) string {
	switch m {
	case tally.Approval:
		return "Approvals"
	case tally.Borda:
		return "Points"
	default:
		return "Votes"
	}
}

func newTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	return table
}
