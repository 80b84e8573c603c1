package hal

import "github.com/kapitanov/chip8emu/internal/vm"

// Headless has no window and no keyboard. It plays back a fixed keypad state
// and quits after maxCycles reads (never, when zero).
type Headless struct {
	keys      vm.KeyInput
	maxCycles int
	cycles    int
	frames    int
	last      vm.Display
}

var _ Frontend = (*Headless)(nil)

func NewHeadless(maxCycles int, keys vm.KeyInput) *Headless {
	return &Headless{
		keys:      keys,
		maxCycles: maxCycles,
	}
}

func (h *Headless) ReadInput() (vm.KeyInput, error) {
	if h.maxCycles > 0 && h.cycles >= h.maxCycles {
		return vm.KeyInput{}, ErrQuit
	}
	h.cycles++
	return h.keys, nil
}

func (h *Headless) Draw(display vm.Display) error {
	h.frames++
	h.last = display
	return nil
}

func (h *Headless) Shutdown() {}

// Cycles is the number of inputs handed out.
func (h *Headless) Cycles() int {
	return h.cycles
}

func (h *Headless) Frames() int {
	return h.frames
}

// LastFrame is the most recent display passed to Draw.
func (h *Headless) LastFrame() vm.Display {
	return h.last
}
