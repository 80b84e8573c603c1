package program

import (
	"fmt"
	"io"

	"github.com/kapitanov/chip8emu/internal/vm"
)

// Disassemble writes one line per instruction word as it would sit in memory:
//
//	0x0200  00E0  cls
//
// Words no instruction accepts are listed as data. A trailing odd byte is
// listed on its own.
func (p *Program) Disassemble(w io.Writer) error {
	for i := 0; i < len(p.data); i += vm.InstructionSize {
		addr := int(vm.ProgramStart) + i

		if i+1 >= len(p.data) {
			if _, err := fmt.Fprintf(w, "0x%04X  %02X    .byte 0x%02X\n", addr, p.data[i], p.data[i]); err != nil {
				return err
			}
			break
		}

		raw := uint16(p.data[i])<<8 | uint16(p.data[i+1])
		text, ok := vm.Mnemonic(raw)
		if !ok {
			text = fmt.Sprintf(".word 0x%04X", raw)
		}

		if _, err := fmt.Fprintf(w, "0x%04X  %04X  %s\n", addr, raw, text); err != nil {
			return err
		}
	}

	return nil
}
