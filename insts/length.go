package insts

// MaxLength is the length of the longest reserved encoding.
const MaxLength = 26

// Length returns the encoded byte length of the instruction whose first
// halfword is lo. The remaining bytes are not needed.
//
//	xxxxxxxxxxxxxxaa  aa != 11             16-bit
//	xxxxxxxxxxxbbb11  bbb != 111           32-bit
//	xxxxxxxxxx011111                       48-bit
//	xxxxxxxxx0111111                       64-bit
//	xnnnxxxxx1111111  nnn != 111           (80+16*nnn)-bit
//	x111xxxxx1111111                       reserved for >= 192-bit
func Length(lo uint16) int {
	switch {
	case X(lo, 0, 2) != 0b11:
		return 2
	case X(lo, 2, 3) != 0b111:
		return 4
	case X(lo, 5, 1) == 0:
		return 6
	case X(lo, 6, 1) == 0:
		return 8
	case X(lo, 12, 3) != 0b111:
		return 10 + 2*int(X(lo, 12, 3))
	default:
		return MaxLength
	}
}
