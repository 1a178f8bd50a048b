package vectorindex

// MaximalMarginalRelevance selects up to k candidates that are relevant
// to the query but mutually dissimilar, to avoid surfacing near-duplicate
// chunks from a larger retrieval pool. lambda trades relevance against
// diversity (1 = pure relevance, 0 = pure diversity). Returns candidate
// indices in selection order.
func MaximalMarginalRelevance(query []float64, candidates [][]float64, lambda float64, k int) []int {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}
	if k > len(candidates) {
		k = len(candidates)
	}
	if lambda < 0 {
		lambda = 0
	}
	if lambda > 1 {
		lambda = 1
	}

	relevance := make([]float64, len(candidates))
	for i, c := range candidates {
		relevance[i] = cosine(query, c)
	}

	selected := make([]int, 0, k)
	picked := make([]bool, len(candidates))

	for len(selected) < k {
		best := -1
		bestScore := 0.0
		for i := range candidates {
			if picked[i] {
				continue
			}
			// Penalize by the closest already-selected candidate
			maxSim := 0.0
			for _, j := range selected {
				if sim := cosine(candidates[i], candidates[j]); sim > maxSim {
					maxSim = sim
				}
			}
			score := lambda*relevance[i] - (1-lambda)*maxSim
			if best == -1 || score > bestScore {
				best = i
				bestScore = score
			}
		}
		if best == -1 {
			break
		}
		picked[best] = true
		selected = append(selected, best)
	}

	return selected
}
