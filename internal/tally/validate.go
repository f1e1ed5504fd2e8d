package tally

import "fmt"

// BallotError explains why a ballot does not fit its category and method
type BallotError struct {
	CategoryID string
	Reason     string
}

func (e *BallotError) Error() string {
	return e.Reason
}

// ValidateBallot checks a ballot's shape against the method before it is
// stored, so the calculators can assume well-formed input.
//
// Ranked methods need a complete ranking of distinct candidates. Plurality
// needs exactly one candidate selected; Approval accepts any number of
// distinct candidates, including none.
func ValidateBallot(method Method, cat Category, b Ballot) error {
	reject := func(format string, args ...any) error {
		return &BallotError{CategoryID: cat.ID, Reason: fmt.Sprintf(format, args...)}
	}
	index := candidateIndex(cat.Candidates)

	switch method {
	case Condorcet, Borda:
		if b.Preferences == nil {
			return reject("%s voting requires preference rankings", method)
		}
		if len(b.Preferences) != len(cat.Candidates) {
			return reject("All candidates must be ranked")
		}
		if err := distinctCandidates(b.Preferences, index, "ranked"); err != "" {
			return reject("%s", err)
		}

	case Plurality:
		if len(b.Selected) != 1 {
			return reject("Plurality voting requires exactly one selection")
		}
		if _, ok := index[b.Selected[0]]; !ok {
			return reject("Unknown candidate %q", b.Selected[0])
		}

	case Approval:
		if b.Selected == nil {
			return reject("Approval voting requires selected candidates")
		}
		if err := distinctCandidates(b.Selected, index, "selected"); err != "" {
			return reject("%s", err)
		}

	default:
		return ErrUnknownMethod
	}
	return nil
}

func distinctCandidates(names []string, index map[string]int, verb string) string {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := index[name]; !ok {
			return fmt.Sprintf("Unknown candidate %q", name)
		}
		if seen[name] {
			return fmt.Sprintf("Candidate %q %s more than once", name, verb)
		}
		seen[name] = true
	}
	return ""
}
