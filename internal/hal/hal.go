// Package hal connects the emulator to the outside world: it draws the
// display and turns host input into keypad snapshots.
package hal

import (
	"errors"
	"sync"

	"github.com/kapitanov/chip8emu/internal/vm"
)

var (
	ErrReboot = errors.New("reboot")
	ErrQuit   = errors.New("quit")
)

// Frontend is driven from the emulation goroutine between steps.
type Frontend interface {
	// ReadInput returns the current keypad state. ErrQuit and ErrReboot
	// report user requests.
	ReadInput() (vm.KeyInput, error)
	// Draw presents a copy of the display.
	Draw(display vm.Display) error
	Shutdown()
}

// Keypad tracks held keys from down/up events. It is safe for concurrent use.
type Keypad struct {
	mu   sync.Mutex
	keys vm.KeyInput
}

func (k *Keypad) KeyDown(key vm.Key) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys[key&0x0F] = true
}

func (k *Keypad) KeyUp(key vm.Key) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys[key&0x0F] = false
}

func (k *Keypad) Snapshot() vm.KeyInput {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.keys
}

func (k *Keypad) Reset() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys = vm.KeyInput{}
}

// KeyForRune maps the left-hand block of a QWERTY keyboard onto the keypad:
//
//	Physical                Logical
//	================        =================
//	| 1 | 2 | 3 | 4 |       | 1 | 2 | 3 | C |
//	| q | w | e | r |       | 4 | 5 | 6 | D |
//	| a | s | d | f |  <=>  | 7 | 8 | 9 | E |
//	| z | x | c | v |       | A | 0 | B | F |
//	================        =================
func KeyForRune(r rune) (vm.Key, bool) {
	switch r {
	case 'x', 'X':
		return vm.Key0, true
	case '1':
		return vm.Key1, true
	case '2':
		return vm.Key2, true
	case '3':
		return vm.Key3, true
	case 'q', 'Q':
		return vm.Key4, true
	case 'w', 'W':
		return vm.Key5, true
	case 'e', 'E':
		return vm.Key6, true
	case 'a', 'A':
		return vm.Key7, true
	case 's', 'S':
		return vm.Key8, true
	case 'd', 'D':
		return vm.Key9, true
	case 'z', 'Z':
		return vm.KeyA, true
	case 'c', 'C':
		return vm.KeyB, true
	case '4':
		return vm.KeyC, true
	case 'r', 'R':
		return vm.KeyD, true
	case 'f', 'F':
		return vm.KeyE, true
	case 'v', 'V':
		return vm.KeyF, true
	default:
		return 0, false
	}
}
