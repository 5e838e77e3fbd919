package core

import "testing"

func mustContext(t *testing.T, k, n, tmax int) *Context {
	t.Helper()
	ctx, err := NewContext(Config{Colors: k, Slots: n, MaxGuesses: tmax})
	if err != nil {
		t.Fatalf("NewContext(%d,%d,%d): %v", k, n, tmax, err)
	}
	return ctx
}

func TestConfigValidateBounds(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"ok", Config{Colors: 6, Slots: 4, MaxGuesses: 10}, false},
		{"colors too large", Config{Colors: 11, Slots: 4, MaxGuesses: 10}, true},
		{"slots too large", Config{Colors: 6, Slots: 11, MaxGuesses: 10}, true},
		{"guesses too large", Config{Colors: 6, Slots: 4, MaxGuesses: 21}, true},
		{"zero colors", Config{Colors: 0, Slots: 4, MaxGuesses: 10}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFeedbackEncodeDecodeBijection(t *testing.T) {
	ctx := mustContext(t, 6, 4, 10)
	seen := make(map[int]bool)
	for idx := 0; idx < ctx.F; idx++ {
		fb := ctx.Decode(idx)
		if fb.B+fb.W > ctx.N {
			t.Errorf("decode(%d) = %+v violates b+w <= N", idx, fb)
		}
		if fb.B == ctx.N-1 && fb.W == 1 {
			t.Errorf("decode(%d) = %+v is the excluded (N-1,1) case", idx, fb)
		}
		got := ctx.Encode(fb.B, fb.W)
		if got != idx {
			t.Errorf("encode(decode(%d)) = %d, want %d", idx, got, idx)
		}
		seen[idx] = true
	}
	if len(seen) != ctx.F {
		t.Errorf("expected %d distinct feedback indices, saw %d", ctx.F, len(seen))
	}
}

func TestWinningFeedbackIsAllBulls(t *testing.T) {
	ctx := mustContext(t, 6, 4, 10)
	fb := ctx.Decode(ctx.WinningFeedback())
	if fb.B != ctx.N || fb.W != 0 {
		t.Errorf("winning feedback = %+v, want {%d 0}", fb, ctx.N)
	}
}
