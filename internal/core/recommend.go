package core

// Strategy selects the aggregator used to score a candidate guess
// against the current solution space (§4.3).
type Strategy int

const (
	// MinMax scores a guess by the size of its largest feedback
	// partition: "minimise the worst case".
	MinMax Strategy = iota
	// MinAverage scores a guess by Σ part(g,f)², equivalent to the
	// expected residual solution count: "minimise the sum".
	MinAverage
)

// partition counts, for guess g, how many codes in space fall into
// each feedback class.
func (ctx *Context) partition(g Code, space *BitSet) []int {
	part := make([]int, ctx.F)
	space.ForEach(func(s int) bool {
		part[ctx.Feedback(g, Code(s))]++
		return true
	})
	return part
}

func score(strategy Strategy, part []int, spaceSize int) int64 {
	switch strategy {
	case MinAverage:
		var total int64
		for _, p := range part {
			total += int64(p) * int64(p)
		}
		return total
	default: // MinMax
		var max int
		for _, p := range part {
			if p > max {
				max = p
			}
		}
		return int64(max)
	}
}

// Recommend implements §4.3's deterministic "min-max expected
// partition" recommender: it evaluates every code in [0, M) as a
// candidate guess (not just remaining solutions, to preserve
// optimality for eliminating guesses), and returns the one with
// minimum score, ties broken by lowest code index.
//
// Turn 0 and turn 1 (keyed by the first feedback) results are cached
// on the Context when present, since for large M the single-threaded
// cost is O(M²) per turn.
func (ctx *Context) Recommend(m *Match, strategy Strategy) Code {
	space := m.space
	if space.Count() == 1 {
		var only Code
		space.ForEach(func(c int) bool { only = Code(c); return false })
		return only
	}

	if cached, ok := ctx.cachedRecommendation(m, strategy); ok {
		return cached
	}

	best := Code(-1)
	var bestScore int64 = -1
	for g := 0; g < ctx.M; g++ {
		part := ctx.partition(Code(g), space)
		s := score(strategy, part, space.Count())
		if bestScore < 0 || s < bestScore {
			bestScore = s
			best = Code(g)
		}
	}

	ctx.storeRecommendation(m, strategy, best)
	return best
}

// RecommendCandidates returns every code attaining the minimum score,
// required by the adaptive code-maker's tie-broken random selection.
func (ctx *Context) RecommendCandidates(m *Match, strategy Strategy) []Code {
	space := m.space
	if space.Count() == 1 {
		var only Code
		space.ForEach(func(c int) bool { only = Code(c); return false })
		return []Code{only}
	}

	var bestScore int64 = -1
	scores := make([]int64, ctx.M)
	for g := 0; g < ctx.M; g++ {
		part := ctx.partition(Code(g), space)
		s := score(strategy, part, space.Count())
		scores[g] = s
		if bestScore < 0 || s < bestScore {
			bestScore = s
		}
	}
	var out []Code
	for g, s := range scores {
		if s == bestScore {
			out = append(out, Code(g))
		}
	}
	return out
}

// cachedRecommendation serves the turn-0 (empty history) and turn-1
// (keyed by the first feedback received) caches mandated by §4.3 when
// T·M is large. It is a best-effort optimisation: a cache miss simply
// falls through to full computation.
func (ctx *Context) cachedRecommendation(m *Match, strategy Strategy) (Code, bool) {
	if strategy != MinMax {
		return 0, false // caches are only maintained for the default strategy
	}
	switch len(m.Turns) {
	case 0:
		ctx.cacheMu.Lock()
		defer ctx.cacheMu.Unlock()
		if ctx.firstGuess != nil {
			return *ctx.firstGuess, true
		}
		return 0, false
	case 1:
		ctx.cacheMu.Lock()
		defer ctx.cacheMu.Unlock()
		if ctx.secondGuess == nil {
			return 0, false
		}
		if g, ok := ctx.secondGuess[m.Turns[0].Feedback]; ok {
			return g, true
		}
		return 0, false
	default:
		return 0, false
	}
}

func (ctx *Context) storeRecommendation(m *Match, strategy Strategy, g Code) {
	if strategy != MinMax {
		return
	}
	switch len(m.Turns) {
	case 0:
		ctx.cacheMu.Lock()
		if ctx.firstGuess == nil {
			v := g
			ctx.firstGuess = &v
		}
		ctx.cacheMu.Unlock()
	case 1:
		ctx.cacheMu.Lock()
		if ctx.secondGuess == nil {
			ctx.secondGuess = make(map[int]Code)
		}
		if _, ok := ctx.secondGuess[m.Turns[0].Feedback]; !ok {
			ctx.secondGuess[m.Turns[0].Feedback] = g
		}
		ctx.cacheMu.Unlock()
	}
}
