package core

import (
	"fmt"
	"strings"
)

// DecodeCode expands a Code into its N base-K digits, slot 0 first,
// mirroring the original implementation's mm_decoder.c.
func (ctx *Context) DecodeCode(c Code) []int {
	digits := make([]int, ctx.N)
	for i := range digits {
		digits[i] = c.Digit(ctx, i)
	}
	return digits
}

// FormatCode renders a code as a compact human-readable digit list,
// e.g. "2-1-3-5", for use by the spectator feed and cmd/mm-client
// (the interactive terminal renderer itself remains out of scope).
func (ctx *Context) FormatCode(c Code) string {
	digits := ctx.DecodeCode(c)
	parts := make([]string, len(digits))
	for i, d := range digits {
		parts[i] = fmt.Sprintf("%d", d)
	}
	return strings.Join(parts, "-")
}

// EncodeDigits is the inverse of DecodeCode.
func (ctx *Context) EncodeDigits(digits []int) Code {
	var c Code
	mult := Code(1)
	for i := 0; i < ctx.N; i++ {
		c += Code(digits[i]) * mult
		mult *= Code(ctx.K)
	}
	return c
}
