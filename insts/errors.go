package insts

import (
	"errors"
	"fmt"
)

// Decode error kinds. Match them with errors.Is.
var (
	// ErrIllegalInstruction marks a pattern the architecture defines as
	// permanently invalid, such as the all-zero halfword.
	ErrIllegalInstruction = errors.New("illegal instruction")

	// ErrReservedEncoding marks a pattern reserved for future use, including
	// slots that only exist for a different XLEN.
	ErrReservedEncoding = errors.New("reserved encoding")

	// ErrUnimplemented marks a valid encoding this simulator does not model.
	ErrUnimplemented = errors.New("unimplemented instruction")

	// ErrUnsupportedLength marks an instruction longer than 32 bits.
	ErrUnsupportedLength = errors.New("unsupported instruction length")
)

// DecodeError reports why a raw instruction could not be decoded.
type DecodeError struct {
	Kind   error
	Raw    RawInstruction
	XLEN   XLEN
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%v: %s (raw=%v, %v)", e.Kind, e.Reason, e.Raw, e.XLEN)
}

// Unwrap returns the error kind.
func (e *DecodeError) Unwrap() error {
	return e.Kind
}

func illegal(raw RawInstruction, xlen XLEN, reason string) error {
	return &DecodeError{Kind: ErrIllegalInstruction, Raw: raw, XLEN: xlen, Reason: reason}
}

func reserved(raw RawInstruction, xlen XLEN, reason string) error {
	return &DecodeError{Kind: ErrReservedEncoding, Raw: raw, XLEN: xlen, Reason: reason}
}

func unimplemented(raw RawInstruction, xlen XLEN, reason string) error {
	return &DecodeError{Kind: ErrUnimplemented, Raw: raw, XLEN: xlen, Reason: reason}
}

// UnsupportedLength builds the error returned when the length detector
// reports an instruction longer than 4 bytes.
func UnsupportedLength(lo uint16, length int, xlen XLEN) error {
	return &DecodeError{
		Kind:   ErrUnsupportedLength,
		Raw:    NewRaw16(lo),
		XLEN:   xlen,
		Reason: fmt.Sprintf("%d-byte instruction", length),
	}
}
