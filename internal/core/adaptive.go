package core

import (
	"crypto/rand"
	"math/big"
)

// buildRank computes the difficulty ranking described in §4.4: rank
// feedbacks by total occurrence count over all ordered code pairs,
// sort descending (most frequent = easiest), and assign ordinals
// 0..F-1. Ties are broken by lowest feedback index (spec §9 Open
// Question). The ranking is computed once per Context and persisted.
func (ctx *Context) buildRank() {
	ctx.rankOnce.Do(func() {
		counts := make([]int64, ctx.F)
		for a := 0; a < ctx.M; a++ {
			for b := 0; b < ctx.M; b++ {
				counts[ctx.Feedback(Code(a), Code(b))]++
			}
		}
		order := make([]int, ctx.F)
		for i := range order {
			order[i] = i
		}
		// Stable descending sort by count, ties by ascending index
		// (insertion sort is fine: F is at most ~66 for N,K ≤ 10).
		for i := 1; i < len(order); i++ {
			for j := i; j > 0; j-- {
				a, b := order[j-1], order[j]
				if counts[a] < counts[b] || (counts[a] == counts[b] && a > b) {
					order[j-1], order[j] = order[j], order[j-1]
				} else {
					break
				}
			}
		}
		rank := make([]int, ctx.F)
		for ordinal, idx := range order {
			rank[idx] = ordinal
		}
		ctx.rank = rank
	})
}

// DifficultyScore returns the ordinal (0 = easiest) of a feedback
// index in this Context's difficulty ranking.
func (ctx *Context) DifficultyScore(feedbackIdx int) int {
	ctx.buildRank()
	return ctx.rank[feedbackIdx]
}

// DifficultyBand computes the half-open ordinal-space band [lo, hi)
// for difficulty level d out of dmax equal slices (§4.4); d == dmax
// is the hardest slice and always extends to F.
func (ctx *Context) DifficultyBand(d, dmax int) (lo, hi int) {
	ctx.buildRank()
	lo = (d - 1) * ctx.F / dmax
	if d == dmax {
		hi = ctx.F
	} else {
		hi = d * ctx.F / dmax
	}
	return lo, hi
}

// AdaptiveMaker simulates a Mastermind host that re-selects its secret
// every turn, constrained to stay within the current solution space
// and a chosen difficulty band (§4.4, §9: "always re-select").
type AdaptiveMaker struct {
	ctx             *Context
	strategy        Strategy
	lo, hi          int
	previousSecret  Code
	havePrevious    bool
}

// NewAdaptiveMaker builds a maker for difficulty d of dmax equal
// ordinal-space slices.
func NewAdaptiveMaker(ctx *Context, strategy Strategy, d, dmax int) *AdaptiveMaker {
	lo, hi := ctx.DifficultyBand(d, dmax)
	return &AdaptiveMaker{ctx: ctx, strategy: strategy, lo: lo, hi: hi}
}

// Next chooses the guess to issue and the secret to score it against,
// per §4.4's per-turn algorithm:
//  1. Shuffle the recommender's tied candidate set.
//  2. For each candidate c, let V(c) be the codes in space whose
//     feedback against c has a difficulty score in [lo, hi) and that
//     are not the previous secret; pick uniformly from the first
//     non-empty V(c).
//  3. If no candidate has a non-empty V, fall back to any code in
//     space other than the previous secret, paired with the first
//     candidate.
//
// When the space has shrunk to a single code, that code is returned as
// both guess and secret: the match is one guess away from winning.
func (am *AdaptiveMaker) Next(m *Match) (guess, secret Code, err error) {
	space := m.Space()
	if space.Count() == 1 {
		var only Code
		space.ForEach(func(c int) bool { only = Code(c); return false })
		return only, only, nil
	}

	candidates, err := shuffled(am.ctx.RecommendCandidates(m, am.strategy))
	if err != nil {
		return 0, 0, err
	}

	for _, c := range candidates {
		var pool []Code
		space.ForEach(func(s int) bool {
			sc := Code(s)
			if am.havePrevious && sc == am.previousSecret {
				return true
			}
			score := am.ctx.DifficultyScore(am.ctx.Feedback(c, sc))
			if score >= am.lo && score < am.hi {
				pool = append(pool, sc)
			}
			return true
		})
		if len(pool) > 0 {
			chosen, err := randomChoice(pool)
			if err != nil {
				return 0, 0, err
			}
			am.previousSecret, am.havePrevious = chosen, true
			return c, chosen, nil
		}
	}

	// Fallback: no candidate has a non-empty band-matching pool.
	var fallback Code
	found := false
	space.ForEach(func(s int) bool {
		sc := Code(s)
		if am.havePrevious && sc == am.previousSecret {
			return true
		}
		fallback = sc
		found = true
		return false
	})
	if !found {
		// Only the previous secret remains; re-use it rather than fail.
		fallback = am.previousSecret
	}
	am.previousSecret, am.havePrevious = fallback, true
	return candidates[0], fallback, nil
}

// shuffled returns a cryptographically-random permutation of in,
// matching the uniformity the spec requires for tie-break selection
// (the same CSPRNG-backed-uniform-draw discipline dedis-tlc uses for
// its own consensus tickets).
func shuffled(in []Code) ([]Code, error) {
	out := append([]Code(nil), in...)
	for i := len(out) - 1; i > 0; i-- {
		j, err := randIntN(i + 1)
		if err != nil {
			return nil, err
		}
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func randomChoice(in []Code) (Code, error) {
	i, err := randIntN(len(in))
	if err != nil {
		return 0, err
	}
	return in[i], nil
}

func randIntN(n int) (int, error) {
	if n <= 1 {
		return 0, nil
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}

// DrawSecret draws a code uniformly from [0, M), used by the server's
// non-adaptive round setup (§4.6 step 5: "draw a secret uniformly from
// [0, M)").
func (ctx *Context) DrawSecret() (Code, error) {
	i, err := randIntN(ctx.M)
	if err != nil {
		return 0, err
	}
	return Code(i), nil
}
