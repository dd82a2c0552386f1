package assess

import (
	"math"
)

// marginalEpsilon guards against floating point noise when deciding whether
// an item's marginal is already settled at 0 or 1.
const marginalEpsilon = 1e-9

// selectQuestion implements the half-split questioning rule: pick the item
// whose marginal probability of mastery is closest to 1/2, skipping items
// whose marginals have collapsed to 0 or 1. Ties break on canonical domain
// order, so the rule is deterministic for a given distribution.
//
// Returns the item and true, or "" and false when every marginal is settled
// and no question carries information.
func selectQuestion(l *Likelihood) (string, bool) {
	bestItem := ""
	bestGap := math.Inf(1)

	for _, item := range l.structure.Domain().Items() {
		m, err := l.Marginal(item)
		if err != nil {
			continue
		}
		if m < marginalEpsilon || m > 1-marginalEpsilon {
			continue
		}
		gap := math.Abs(m - 0.5)
		if gap < bestGap {
			bestGap = gap
			bestItem = item
		}
	}

	return bestItem, bestItem != ""
}

// responseProbability returns P(response | latent state K) under the local
// independence model: a learner in state K answers item q correctly with
// probability 1-beta when q ∈ K (careless error beta), and with probability
// eta when q ∉ K (lucky guess eta).
func responseProbability(inState, correct bool, params *Params) float64 {
	if inState {
		if correct {
			return 1 - params.CarelessError
		}
		return params.CarelessError
	}
	if correct {
		return params.LuckyGuess
	}
	return 1 - params.LuckyGuess
}

// updateMass applies the multiplicative Bayesian updating rule: each state's
// mass is scaled by the probability of the observed response given that
// state, then the vector is renormalized. Returns the updated mass vector
// and the pre-normalization total; a total of zero means the update is
// degenerate and the caller must reject it.
func updateMass(l *Likelihood, itemIdx int, correct bool, params *Params) ([]float64, float64) {
	updated := make([]float64, len(l.mass))
	total := 0.0

	for i, k := range l.states {
		p := l.mass[i] * responseProbability(k.Test(itemIdx), correct, params)
		updated[i] = p
		total += p
	}

	if total > 0 {
		for i := range updated {
			updated[i] /= total
		}
	}

	return updated, total
}
