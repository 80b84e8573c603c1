package vm

import (
	"errors"
	"fmt"
)

var ErrUnsupportedOpcode = errors.New("unsupported opcode")

// UnsupportedOpcodeError is returned by Step when no instruction matches the
// fetched word. The machine stays consistent; PC already points past the word.
type UnsupportedOpcodeError struct {
	Opcode  uint16
	Address uint16
}

func (e *UnsupportedOpcodeError) Error() string {
	return fmt.Sprintf("unsupported opcode 0x%04X at 0x%04X", e.Opcode, e.Address)
}

func (e *UnsupportedOpcodeError) Is(target error) bool {
	return target == ErrUnsupportedOpcode
}
