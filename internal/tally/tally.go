// Package tally computes per-category election results.
//
// Every function here is a pure function of its arguments: inputs are never
// modified and there is no package-level mutable state, so the same category
// and ballots always produce the same Result.
package tally

import (
	"errors"
	"sort"
)

// Method is a voting method (the election's contest type)
type Method string

const (
	Condorcet Method = "Condorcet"
	Plurality Method = "Plurality"
	Approval  Method = "Approval"
	Borda     Method = "Borda"
)

// Methods lists the supported methods in display order
var Methods = []Method{Condorcet, Plurality, Approval, Borda}

// ErrUnknownMethod is returned by Compute for an unsupported method
var ErrUnknownMethod = errors.New("unknown contest type")

// ParseMethod returns the Method named s, matched exactly
func ParseMethod(s string) (Method, bool) {
	for _, m := range Methods {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}

// Ranked reports whether ballots for m carry a preference ranking
// rather than a selection.
func (m Method) Ranked() bool {
	return m == Condorcet || m == Borda
}

// Category is the part of an election category the calculator needs
type Category struct {
	ID         string
	Name       string
	Candidates []string
}

// Ballot is one voter's ballot for one category. Ranked methods read
// Preferences (most preferred first); Plurality and Approval read Selected.
type Ballot struct {
	Preferences []string
	Selected    []string
}

// Standing is a candidate's headline number under the method: votes,
// approvals, Borda points or pairwise wins.
type Standing struct {
	Candidate string `json:"candidate"`
	Value     int    `json:"value"`
}

// Result is the outcome of one category
type Result struct {
	Method     Method     `json:"method"`
	TotalVotes int        `json:"totalVotes"`
	Winners    []string   `json:"winners"`
	Standings  []Standing `json:"standings"`

	// Plurality and Approval
	VoteCounts map[string]int `json:"voteCounts,omitempty"`

	// Borda
	Scores map[string]int `json:"scores,omitempty"`

	// Condorcet
	Pairwise          []PairResult      `json:"pairwiseResults,omitempty"`
	CandidateScores   map[string]Record `json:"candidateScores,omitempty"`
	NoCondorcetWinner bool              `json:"noCondorcetWinner,omitempty"`
	Cycles            [][]string        `json:"cycles,omitempty"`
}

// Compute dispatches to the calculator for method
func Compute(method Method, cat Category, ballots []Ballot) (*Result, error) {
	switch method {
	case Condorcet:
		return ComputeCondorcet(cat, ballots), nil
	case Plurality:
		return ComputePlurality(cat, ballots), nil
	case Approval:
		return ComputeApproval(cat, ballots), nil
	case Borda:
		return ComputeBorda(cat, ballots), nil
	default:
		return nil, ErrUnknownMethod
	}
}

// ComputePlurality counts each ballot's single selection
func ComputePlurality(cat Category, ballots []Ballot) *Result {
	index := candidateIndex(cat.Candidates)
	counts := make([]int, len(cat.Candidates))

	for _, b := range ballots {
		if len(b.Selected) == 0 {
			continue
		}
		if i, ok := index[b.Selected[0]]; ok {
			counts[i]++
		}
	}

	return &Result{
		Method:     Plurality,
		TotalVotes: len(ballots),
		Winners:    maxSet(cat.Candidates, counts),
		Standings:  standings(cat.Candidates, counts),
		VoteCounts: asMap(cat.Candidates, counts),
	}
}

// ComputeApproval counts one approval per distinct selected candidate per ballot
func ComputeApproval(cat Category, ballots []Ballot) *Result {
	index := candidateIndex(cat.Candidates)
	counts := make([]int, len(cat.Candidates))

	for _, b := range ballots {
		seen := make(map[int]bool, len(b.Selected))
		for _, name := range b.Selected {
			i, ok := index[name]
			if !ok || seen[i] {
				continue
			}
			seen[i] = true
			counts[i]++
		}
	}

	return &Result{
		Method:     Approval,
		TotalVotes: len(ballots),
		Winners:    maxSet(cat.Candidates, counts),
		Standings:  standings(cat.Candidates, counts),
		VoteCounts: asMap(cat.Candidates, counts),
	}
}

// ComputeBorda awards numCandidates-1-k points for rank position k
func ComputeBorda(cat Category, ballots []Ballot) *Result {
	n := len(cat.Candidates)
	index := candidateIndex(cat.Candidates)
	scores := make([]int, n)

	for _, b := range ballots {
		seen := make(map[int]bool, len(b.Preferences))
		for k, name := range b.Preferences {
			i, ok := index[name]
			if !ok || seen[i] {
				continue
			}
			seen[i] = true
			if points := n - 1 - k; points > 0 {
				scores[i] += points
			}
		}
	}

	return &Result{
		Method:     Borda,
		TotalVotes: len(ballots),
		Winners:    maxSet(cat.Candidates, scores),
		Standings:  standings(cat.Candidates, scores),
		Scores:     asMap(cat.Candidates, scores),
	}
}

// candidateIndex maps each name to its first position in candidates
func candidateIndex(candidates []string) map[string]int {
	index := make(map[string]int, len(candidates))
	for i, name := range candidates {
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	return index
}

// maxSet returns every candidate holding the maximum value, in candidate order.
// Ties are reported, never broken.
func maxSet(candidates []string, values []int) []string {
	winners := []string{}
	if len(candidates) == 0 {
		return winners
	}
	best := values[0]
	for _, v := range values[1:] {
		if v > best {
			best = v
		}
	}
	for i, v := range values {
		if v == best {
			winners = append(winners, candidates[i])
		}
	}
	return winners
}

// standings orders candidates by value descending, keeping candidate order on ties
func standings(candidates []string, values []int) []Standing {
	out := make([]Standing, len(candidates))
	for i, name := range candidates {
		out[i] = Standing{Candidate: name, Value: values[i]}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Value > out[b].Value
	})
	return out
}

func asMap(candidates []string, values []int) map[string]int {
	m := make(map[string]int, len(candidates))
	for i, name := range candidates {
		m[name] += values[i]
	}
	return m
}
