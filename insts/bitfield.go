package insts

import "golang.org/x/exp/constraints"

// X extracts the size-bit field of value that starts at bit from and
// returns it right-justified. The result is never negative; sign extension
// is left to the caller.
//
// The operand width comes from the type parameter, so a field is always
// taken from a word of a known size. from+size must not exceed that width.
func X[T constraints.Unsigned](value T, from, size uint) int64 {
	return int64((uint64(value) >> from) & (1<<size - 1))
}

// SignExtend interprets the low bits of v as a two's-complement number and
// widens it to 64 bits.
func SignExtend(v int64, bits uint) int64 {
	shift := 64 - bits
	return v << shift >> shift
}
