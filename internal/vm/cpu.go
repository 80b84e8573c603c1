package vm

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

// Quirks select between documented CHIP-8 interpreter behaviors. The zero value
// shifts VX in place and leaves VF alone on draw.
type Quirks struct {
	// ShiftUsesVY makes 8XY6/8XYE shift VY into VX, as on the COSMAC VIP.
	ShiftUsesVY bool
	// CollisionFlag makes DXYN set VF to 1 when a lit pixel is erased, 0 otherwise.
	CollisionFlag bool
}

type Option func(*CPU)

func WithQuirks(q Quirks) Option {
	return func(c *CPU) {
		c.quirks = q
	}
}

// WithRand sets the source for CXNN. Without it the global math/rand/v2 source is used.
func WithRand(r *rand.Rand) Option {
	return func(c *CPU) {
		c.rand = r
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *CPU) {
		c.logger = l
	}
}

// CPU runs the fetch-decode-execute cycle against a State it owns.
// It is not safe for concurrent use; copy the display out between steps.
type CPU struct {
	state        State
	instructions []instruction
	quirks       Quirks
	rand         *rand.Rand
	logger       *slog.Logger
}

func New(opts ...Option) *CPU {
	c := &CPU{
		instructions: instructionSet[:],
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State exposes the machine for reading. Do not mutate it.
func (c *CPU) State() *State {
	return &c.state
}

// WriteFont copies a font bitmap to FontStart.
func (c *CPU) WriteFont(font []uint8) {
	c.state.memory.Copy(FontStart, font)
}

// LoadProgram copies data to ProgramStart and points PC at it.
// Size limits are the loader's business; data that does not fit panics.
func (c *CPU) LoadProgram(data []uint8) {
	c.state.memory.Copy(ProgramStart, data)
	c.state.pc = ProgramStart
}

// Step feeds elapsed time to the timers, then executes one instruction with
// keys as the keypad state. The only returned error is *UnsupportedOpcodeError.
func (c *CPU) Step(keys KeyInput, elapsed time.Duration) error {
	s := &c.state
	s.keys = keys
	s.delayTimer.Advance(elapsed)
	s.soundTimer.Advance(elapsed)

	addr := s.pc
	op := Decode(s.fetch())
	s.pc += InstructionSize

	instr, ok := c.lookup(op.Raw)
	if !ok {
		return &UnsupportedOpcodeError{Opcode: op.Raw, Address: addr}
	}

	if c.logger.Enabled(context.Background(), slog.LevelDebug) {
		c.logger.Debug(
			"exec",
			"pc", fmt.Sprintf("0x%04x", addr),
			"opcode", fmt.Sprintf("0x%04x", op.Raw),
			"instr", instr.name(op),
		)
	}

	instr.execute(c, op)
	return nil
}

// lookup returns the first instruction whose mask/value pair matches raw.
func (c *CPU) lookup(raw uint16) (*instruction, bool) {
	for i := range c.instructions {
		if raw&c.instructions[i].mask == c.instructions[i].value {
			return &c.instructions[i], true
		}
	}
	return nil, false
}

func (c *CPU) randomByte() uint8 {
	if c.rand != nil {
		return uint8(c.rand.IntN(256))
	}
	return uint8(rand.IntN(256))
}
