package vm

// State is everything a CHIP-8 program can observe. It is owned by a CPU and
// only mutated from inside Step; hosts read it between steps.
type State struct {
	memory    Memory               // Memory (4k)
	registers [RegisterCount]uint8 // V registers (V0-VF)

	stack []uint16 // Return addresses, unbounded

	pc    uint16 // Program counter
	index uint16 // Index register

	delayTimer Timer
	soundTimer Timer

	keys    KeyInput
	display Display
}

func (s *State) PC() uint16 {
	return s.pc
}

func (s *State) Index() uint16 {
	return s.index
}

func (s *State) Register(r uint8) uint8 {
	return s.registers[r&0x0F]
}

func (s *State) Registers() [RegisterCount]uint8 {
	return s.registers
}

func (s *State) DelayTimer() uint8 {
	return s.delayTimer.Value()
}

func (s *State) SoundTimer() uint8 {
	return s.soundTimer.Value()
}

func (s *State) StackDepth() int {
	return len(s.stack)
}

func (s *State) Keys() KeyInput {
	return s.keys
}

// ReadMemory returns the byte at addr. It panics past MaxAddress.
func (s *State) ReadMemory(addr uint16) uint8 {
	return s.memory.Read(addr)
}

// Display returns a copy of the framebuffer, safe to hand to another goroutine.
func (s *State) Display() Display {
	return s.display
}

// CurrentOpcode decodes the word at PC without executing it.
func (s *State) CurrentOpcode() Opcode {
	return Decode(s.fetch())
}

func (s *State) fetch() uint16 {
	hi := s.memory.Read(s.pc)
	lo := s.memory.Read(s.pc + 1)

	return uint16(hi)<<8 | uint16(lo) // Op code is two bytes
}

func (s *State) push(addr uint16) {
	s.stack = append(s.stack, addr)
}

func (s *State) pop() uint16 {
	if len(s.stack) == 0 {
		panic("vm: return with an empty stack")
	}

	addr := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	return addr
}

// setFlag stores the flag in VF, replacing whatever general-purpose value it held.
func (s *State) setFlag(set bool) {
	if set {
		s.registers[FlagRegister] = 1
	} else {
		s.registers[FlagRegister] = 0
	}
}
