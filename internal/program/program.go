// Package program loads CHIP-8 ROM images and places them into machine memory.
package program

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/kapitanov/chip8emu/internal/vm"
)

// MaxSize is the largest ROM accepted, in bytes.
const MaxSize = 2 * 1024

var ErrProgramTooLarge = errors.New("the program is too large to load onto memory")

// Loader receives program bytes. *vm.CPU satisfies it.
type Loader interface {
	LoadProgram(data []uint8)
}

// Program is a validated ROM image.
type Program struct {
	data []uint8
}

// New validates data and copies it. Oversized input is rejected before any
// machine state is touched.
func New(data []uint8) (*Program, error) {
	if len(data) > MaxSize {
		return nil, fmt.Errorf("%w: %d bytes, limit is %d", ErrProgramTooLarge, len(data), MaxSize)
	}

	return &Program{
		data: append([]uint8(nil), data...),
	}, nil
}

func ReadFile(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read the ROM file: %w", err)
	}

	p, err := New(data)
	if err != nil {
		return nil, fmt.Errorf("unable to load %q: %w", path, err)
	}
	return p, nil
}

func (p *Program) Size() int {
	return len(p.data)
}

// Load writes the program at vm.ProgramStart and resets PC to it.
func (p *Program) Load(dst Loader) {
	slog.Info("load program", "at", fmt.Sprintf("0x%04x", vm.ProgramStart), "n", len(p.data))
	dst.LoadProgram(p.data)
}
