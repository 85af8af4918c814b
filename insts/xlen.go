package insts

import "fmt"

// XLEN is the integer register width mode of the simulated hart.
type XLEN uint8

// Supported register widths.
const (
	XLEN32  XLEN = 32
	XLEN64  XLEN = 64
	XLEN128 XLEN = 128
)

// String returns the base ISA name, e.g. "RV64".
func (x XLEN) String() string {
	return fmt.Sprintf("RV%d", uint(x))
}

// Bits returns the register width in bits.
func (x XLEN) Bits() uint {
	return uint(x)
}

// Valid reports whether x is one of the defined widths.
func (x XLEN) Valid() bool {
	return x == XLEN32 || x == XLEN64 || x == XLEN128
}

// ParseXLEN parses "32", "rv64", "RV128" and similar spellings.
func ParseXLEN(s string) (XLEN, error) {
	switch s {
	case "32", "rv32", "RV32":
		return XLEN32, nil
	case "64", "rv64", "RV64":
		return XLEN64, nil
	case "128", "rv128", "RV128":
		return XLEN128, nil
	default:
		return 0, fmt.Errorf("invalid xlen %q", s)
	}
}
