package tally

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// PairResult is the head-to-head count for candidates A and B.
// Wins counts ballots ranking A ahead of B, Losses the reverse.
// Winner is empty when the counts are equal.
type PairResult struct {
	A      string `json:"a"`
	B      string `json:"b"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
	Winner string `json:"winner,omitempty"`
}

// Record is a candidate's tally of pairwise match-ups won and lost
type Record struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
}

// ComputeCondorcet runs every pairwise comparison and reports the
// candidate with no pairwise losses, if exactly one exists.
//
// A ballot that leaves a candidate unranked is indifferent about every pair
// involving that candidate; it neither wins nor loses those pairs.
func ComputeCondorcet(cat Category, ballots []Ballot) *Result {
	n := len(cat.Candidates)
	index := candidateIndex(cat.Candidates)

	// beats[i][j] = ballots ranking i ahead of j
	beats := make([][]int, n)
	for i := range beats {
		beats[i] = make([]int, n)
	}

	for _, b := range ballots {
		rank := make(map[int]int, len(b.Preferences))
		for pos, name := range b.Preferences {
			i, ok := index[name]
			if !ok {
				continue
			}
			if _, dup := rank[i]; !dup {
				rank[i] = pos
			}
		}
		for i, ri := range rank {
			for j, rj := range rank {
				if ri < rj {
					beats[i][j]++
				}
			}
		}
	}

	records := make([]Record, n)
	pairs := make([]PairResult, 0, n*(n-1)/2)
	g := simple.NewDirectedGraph()
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			p := PairResult{
				A:      cat.Candidates[i],
				B:      cat.Candidates[j],
				Wins:   beats[i][j],
				Losses: beats[j][i],
			}
			switch {
			case p.Wins > p.Losses:
				p.Winner = p.A
				records[i].Wins++
				records[j].Losses++
				g.SetEdge(simple.Edge{F: simple.Node(i), T: simple.Node(j)})
			case p.Losses > p.Wins:
				p.Winner = p.B
				records[j].Wins++
				records[i].Losses++
				g.SetEdge(simple.Edge{F: simple.Node(j), T: simple.Node(i)})
			}
			pairs = append(pairs, p)
		}
	}

	undefeated := []string{}
	wins := make([]int, n)
	scores := make(map[string]Record, n)
	for i, name := range cat.Candidates {
		wins[i] = records[i].Wins
		scores[name] = records[i]
		if records[i].Losses == 0 {
			undefeated = append(undefeated, name)
		}
	}

	res := &Result{
		Method:          Condorcet,
		TotalVotes:      len(ballots),
		Winners:         []string{},
		Standings:       standings(cat.Candidates, wins),
		Pairwise:        pairs,
		CandidateScores: scores,
		Cycles:          majorityCycles(g, cat.Candidates),
	}
	if len(undefeated) == 1 {
		res.Winners = undefeated
	} else {
		res.NoCondorcetWinner = true
	}
	return res
}

// majorityCycles returns the strongly connected components of the
// pairwise-majority graph that contain more than one candidate. Each cycle
// lists its members in candidate order.
func majorityCycles(g *simple.DirectedGraph, candidates []string) [][]string {
	var components [][]int
	for _, scc := range topo.TarjanSCC(g) {
		if len(scc) < 2 {
			continue
		}
		ids := make([]int, len(scc))
		for k, node := range scc {
			ids[k] = int(node.ID())
		}
		sort.Ints(ids)
		components = append(components, ids)
	}
	sort.Slice(components, func(a, b int) bool {
		return components[a][0] < components[b][0]
	})

	cycles := make([][]string, 0, len(components))
	for _, ids := range components {
		names := make([]string, len(ids))
		for k, id := range ids {
			names[k] = candidates[id]
		}
		cycles = append(cycles, names)
	}
	if len(cycles) == 0 {
		return nil
	}
	return cycles
}
