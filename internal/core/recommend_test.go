package core

import "testing"

// TestRecommendOptimality brute-force checks spec §8 invariant 5 for a
// small configuration: the returned guess must actually achieve the
// minimum score over all candidates.
func TestRecommendOptimality(t *testing.T) {
	for _, k := range []int{2, 3, 4} {
		for _, n := range []int{2, 3} {
			ctx := mustContext(t, k, n, 10)
			m := NewMatch(ctx, true)
			for _, strategy := range []Strategy{MinMax, MinAverage} {
				got := ctx.Recommend(m, strategy)

				wantScore := int64(-1)
				for g := 0; g < ctx.M; g++ {
					s := score(strategy, ctx.partition(Code(g), m.Space()), m.Space().Count())
					if wantScore < 0 || s < wantScore {
						wantScore = s
					}
				}
				gotScore := score(strategy, ctx.partition(got, m.Space()), m.Space().Count())
				if gotScore != wantScore {
					t.Errorf("k=%d n=%d strategy=%v: Recommend score = %d, want minimum %d", k, n, strategy, gotScore, wantScore)
				}
			}
		}
	}
}

// TestRecommendFirstGuessClassic checks spec §8 scenario 4: from the
// empty history the min-max recommender returns a guess of the
// classic "two colours, each twice" family, and after a (0,0)
// response the residual space has size 256.
func TestRecommendFirstGuessClassic(t *testing.T) {
	ctx := mustContext(t, 6, 4, 10)
	m := NewMatch(ctx, true)
	guess := ctx.Recommend(m, MinMax)

	digits := ctx.DecodeCode(guess)
	counts := make(map[int]int)
	for _, d := range digits {
		counts[d]++
	}
	distinctColours := 0
	twoOfEach := true
	for _, c := range counts {
		distinctColours++
		if c != 2 {
			twoOfEach = false
		}
	}
	if distinctColours != 2 || !twoOfEach {
		t.Fatalf("first guess %v (digits %v) is not of the 1122 family", guess, digits)
	}

	zeroFB := ctx.Encode(0, 0)
	m.Constrain(guess, zeroFB)
	if m.NumSolutions() != 256 {
		t.Errorf("residual solution count after (0,0) = %d, want 256", m.NumSolutions())
	}
}

func TestRecommendSingleSolutionShortCircuits(t *testing.T) {
	ctx := mustContext(t, 4, 3, 10)
	m := NewMatch(ctx, true)
	secret := Code(7 % ctx.M)
	for g := 0; g < ctx.M && m.Space().Count() > 1; g++ {
		if Code(g) == secret {
			continue
		}
		m.Constrain(Code(g), ctx.Feedback(Code(g), secret))
	}
	if m.Space().Count() != 1 {
		t.Skip("did not converge to a single solution with this guess order")
	}
	got := ctx.Recommend(m, MinMax)
	if !m.Space().Get(int(got)) {
		t.Errorf("Recommend returned %d, not the unique remaining solution", got)
	}
}
