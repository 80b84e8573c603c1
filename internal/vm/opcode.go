package vm

import "fmt"

// Opcode is a raw instruction word split into its operand fields.
// Every 16-bit value decodes; whether an instruction accepts it is decided later.
type Opcode struct {
	Raw uint16
	X   uint8  // bits 8-11, register index
	Y   uint8  // bits 4-7, register index
	N   uint8  // bits 0-3
	NN  uint8  // bits 0-7
	NNN uint16 // bits 0-11
}

func Decode(raw uint16) Opcode {
	return Opcode{
		Raw: raw,
		X:   uint8((raw & 0x0F00) >> 8),
		Y:   uint8((raw & 0x00F0) >> 4),
		N:   uint8(raw & 0x000F),
		NN:  uint8(raw & 0x00FF),
		NNN: raw & 0x0FFF,
	}
}

func (op Opcode) String() string {
	return fmt.Sprintf("0x%04X", op.Raw)
}
