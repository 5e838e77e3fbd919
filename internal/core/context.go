// Package core implements the combinatorial Mastermind engine: the
// immutable per-configuration Context, the feedback table, the
// per-match solution-space tracker, and the recommender / adaptive
// code-maker built on top of it.
package core

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Hard bounds from the spec's data model (§3): implementers must
// reject configurations exceeding these.
const (
	MaxColors       = 10
	MaxSlots        = 10
	MaxTurns        = 20
	MaxPracticalM   = 1_000_000
	defaultTableCap = 64 << 20 // 64 MiB, see Context.TableEnabled
)

var validate = validator.New()

// Config is the user-facing, validated configuration for a Context.
// cmd/mm-bench populates this from kong flags, the server derives it
// from its own Config, and the client from the server's rules;
// NewContext validates it before building anything, so a
// misconfigured process fails fast with a readable error instead of
// panicking deep inside the solver.
type Config struct {
	Colors        int   `validate:"required,gte=2,lte=10"`
	Slots         int   `validate:"required,gte=1,lte=10"`
	MaxGuesses    int   `validate:"required,gte=1,lte=20"`
	MaxTableBytes int64 `validate:"gte=0"`
}

// Validate checks the configuration against the spec's bounds (K ≤ 10,
// N ≤ 10, T ≤ 20, M ≤ 10^6) and returns a descriptive error on failure.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	m := 1
	for i := 0; i < c.Slots; i++ {
		m *= c.Colors
		if m > MaxPracticalM {
			return fmt.Errorf("invalid config: K^N = %d exceeds practical bound %d", m, MaxPracticalM)
		}
	}
	return nil
}

// Feedback is a (bulls, cows) pair: b exact-position matches and w
// colour-present-but-misplaced matches, scored with multiset
// semantics.
type Feedback struct {
	B, W int
}

// Context holds everything that is immutable for the lifetime of a
// given (K, N, T) configuration: the feedback enumeration, an optional
// lazily-built pairwise feedback table, and optional first/second-turn
// recommendation caches.
type Context struct {
	K, N, T int
	F       int // count of valid feedbacks
	M       int // K^N

	encode [][]int    // encode[b][w] -> feedback index, -1 if invalid
	decode []Feedback // decode[idx] -> (b, w)
	winIdx int        // feedback index for (N, 0)

	maxTableBytes int64

	tableMu    sync.RWMutex
	table      []byte // M*M bytes once built, symmetric
	tableTried bool   // true once a build attempt (success or refusal) has happened

	cacheMu      sync.Mutex
	firstGuess   *Code
	secondGuess  map[int]Code // keyed by the first turn's feedback index

	rankOnce sync.Once
	rank     []int // rank[feedbackIdx] -> ordinal, 0 = easiest
	rankErr  error
}

// Code is an integer in [0, M) interpreted as N digits base K.
type Code int

// Digit returns slot i of the code (0 ≤ i < N).
func (c Code) Digit(ctx *Context, i int) int {
	k := 1
	for j := 0; j < i; j++ {
		k *= ctx.K
	}
	return int(c/Code(k)) % ctx.K
}

// NewContext builds a Context from a validated Config. MaxTableBytes
// of 0 means use the package default cap.
func NewContext(cfg Config) (*Context, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	k, n, t := cfg.Colors, cfg.Slots, cfg.MaxGuesses

	m := 1
	for i := 0; i < n; i++ {
		m *= k
	}

	ctx := &Context{K: k, N: n, T: t, M: m}
	ctx.maxTableBytes = cfg.MaxTableBytes
	if ctx.maxTableBytes == 0 {
		ctx.maxTableBytes = defaultTableCap
	}
	ctx.buildFeedbackEnumeration()
	return ctx, nil
}

// buildFeedbackEnumeration enumerates valid (b, w) pairs in the spec's
// stable order: outer loop b = 0..N ascending, inner w = 0..N
// ascending, skipping b+w > N and the unreachable (N-1, 1) case.
func (ctx *Context) buildFeedbackEnumeration() {
	n := ctx.N
	ctx.encode = make([][]int, n+1)
	for b := range ctx.encode {
		ctx.encode[b] = make([]int, n+1)
		for w := range ctx.encode[b] {
			ctx.encode[b][w] = -1
		}
	}
	idx := 0
	for b := 0; b <= n; b++ {
		for w := 0; w <= n; w++ {
			if b+w > n {
				continue
			}
			if b == n-1 && w == 1 {
				continue
			}
			ctx.encode[b][w] = idx
			ctx.decode = append(ctx.decode, Feedback{B: b, W: w})
			idx++
		}
	}
	ctx.F = idx
	ctx.winIdx = ctx.encode[n][0]
}

// Encode returns the feedback index for (b, w), or -1 if the pair is
// not a valid feedback under this Context.
func (ctx *Context) Encode(b, w int) int {
	if b < 0 || b > ctx.N || w < 0 || w > ctx.N {
		return -1
	}
	return ctx.encode[b][w]
}

// Decode returns the (b, w) pair for a valid feedback index.
func (ctx *Context) Decode(idx int) Feedback {
	return ctx.decode[idx]
}

// WinningFeedback is the feedback index for (N, 0): every slot an
// exact match.
func (ctx *Context) WinningFeedback() int {
	return ctx.winIdx
}

// TableEnabled reports whether the pairwise feedback table has been
// (or still may be) built: it is disabled once a build attempt refuses
// due to the MaxTableBytes policy cap.
func (ctx *Context) TableEnabled() bool {
	ctx.tableMu.RLock()
	defer ctx.tableMu.RUnlock()
	return ctx.table != nil || !ctx.tableTried
}
