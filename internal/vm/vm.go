package vm

const (
	MemorySize    = 4096
	RegisterCount = 16
	ScreenWidth   = 64
	ScreenHeight  = 32
	KeyCount      = 16

	MaxAddress      = uint16(0xFFF)
	FontStart       = uint16(0x050)
	FontGlyphSize   = 5
	ProgramStart    = uint16(0x200)
	InstructionSize = 2

	// FlagRegister is VF. Flag-defining instructions overwrite it after the result.
	FlagRegister = 0x0F
)

type Key uint8

const (
	Key0 = Key(iota)
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
)

// KeyInput is a snapshot of the hex keypad, indexed by Key.
type KeyInput [KeyCount]bool

// Pressed reports whether k is held. Only the low nibble of k is consulted.
func (in KeyInput) Pressed(k Key) bool {
	return in[k&0x0F]
}

// Press returns a copy of in with the given keys held down.
func (in KeyInput) Press(keys ...Key) KeyInput {
	for _, k := range keys {
		in[k&0x0F] = true
	}
	return in
}
