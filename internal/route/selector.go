package route

// SelectSafest returns the index of the candidate with the lowest average
// risk. Ties break to the earliest index: providers list their own
// recommended route first, so the first-listed alternative wins.
// Returns ErrNoCandidates for empty input; never silently defaults.
func SelectSafest(candidates []ScoredRoute) (int, error) {
	if len(candidates) == 0 {
		return 0, ErrNoCandidates
	}

	best := 0
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Summary.AverageRisk < candidates[best].Summary.AverageRisk {
			best = i
		}
	}
	return best, nil
}
