package hal

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/kapitanov/chip8emu/internal/vm"
)

const (
	WindowWidth  = 1024
	WindowHeight = 512
)

// SDL renders into a window. SDL calls must stay on the thread that created
// it, so construct and drive it from the main goroutine.
type SDL struct {
	window          *sdl.Window
	renderer        *sdl.Renderer
	texture         *sdl.Texture
	backBuffer      []uint32
	backBufferPitch int
	keypad          Keypad
}

var _ Frontend = (*SDL)(nil)

// Physical positions, so the layout survives non-QWERTY keymaps.
var scancodeKeys = map[sdl.Scancode]vm.Key{
	sdl.SCANCODE_X: vm.Key0,
	sdl.SCANCODE_1: vm.Key1,
	sdl.SCANCODE_2: vm.Key2,
	sdl.SCANCODE_3: vm.Key3,
	sdl.SCANCODE_Q: vm.Key4,
	sdl.SCANCODE_W: vm.Key5,
	sdl.SCANCODE_E: vm.Key6,
	sdl.SCANCODE_A: vm.Key7,
	sdl.SCANCODE_S: vm.Key8,
	sdl.SCANCODE_D: vm.Key9,
	sdl.SCANCODE_Z: vm.KeyA,
	sdl.SCANCODE_C: vm.KeyB,
	sdl.SCANCODE_4: vm.KeyC,
	sdl.SCANCODE_R: vm.KeyD,
	sdl.SCANCODE_F: vm.KeyE,
	sdl.SCANCODE_V: vm.KeyF,
}

func NewSDL() (*SDL, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("failed to init sdl: %w", err)
	}

	window, err := sdl.CreateWindow("CHIP-8", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, WindowWidth, WindowHeight, sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("failed to create sdl window: %w", err)
	}
	slog.Debug("hal: create window")

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		_ = window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("failed to create sdl renderer: %w", err)
	}
	if err := renderer.SetLogicalSize(WindowWidth, WindowHeight); err != nil {
		_ = renderer.Destroy()
		_ = window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("failed to resize sdl renderer: %w", err)
	}
	slog.Debug("hal: create renderer")

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_ARGB8888, sdl.TEXTUREACCESS_STREAMING, vm.ScreenWidth, vm.ScreenHeight)
	if err != nil {
		_ = renderer.Destroy()
		_ = window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("failed to create sdl texture: %w", err)
	}
	slog.Debug("hal: create texture")

	return &SDL{
		window:          window,
		renderer:        renderer,
		texture:         texture,
		backBuffer:      make([]uint32, vm.ScreenWidth*vm.ScreenHeight),
		backBufferPitch: vm.ScreenWidth * int(unsafe.Sizeof(uint32(0))),
	}, nil
}

func (s *SDL) Shutdown() {
	if err := s.texture.Destroy(); err != nil {
		slog.Error("failed to destroy sdl texture", "err", err)
	}

	if err := s.renderer.Destroy(); err != nil {
		slog.Error("failed to destroy sdl renderer", "err", err)
	}

	if err := s.window.Destroy(); err != nil {
		slog.Error("failed to destroy sdl window", "err", err)
	}

	sdl.Quit()
}

func (s *SDL) ReadInput() (vm.KeyInput, error) {
	for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
		switch e := e.(type) {
		case *sdl.QuitEvent:
			slog.Debug("hal: exit requested")
			return vm.KeyInput{}, ErrQuit

		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN && e.Keysym.Scancode == sdl.SCANCODE_BACKSPACE {
				s.keypad.Reset()
				return vm.KeyInput{}, ErrReboot
			}

			key, ok := scancodeKeys[e.Keysym.Scancode]
			if !ok {
				continue
			}
			if e.Type == sdl.KEYDOWN {
				s.keypad.KeyDown(key)
			} else {
				s.keypad.KeyUp(key)
			}
		}
	}

	return s.keypad.Snapshot(), nil
}

func (s *SDL) Draw(display vm.Display) error {
	const (
		bgColor = uint32(0x000000)
		fgColor = uint32(0xbea700)
	)

	for y := range display {
		for x, lit := range display[y] {
			color := bgColor
			if lit {
				color = fgColor
			}
			s.backBuffer[x+y*vm.ScreenWidth] = color
		}
	}

	backBufferPtr := unsafe.Pointer(&s.backBuffer[0])
	if err := s.texture.Update(nil, backBufferPtr, s.backBufferPitch); err != nil {
		return fmt.Errorf("failed to update sdl texture: %w", err)
	}

	if err := s.renderer.Clear(); err != nil {
		return fmt.Errorf("failed to clear sdl renderer: %w", err)
	}

	if err := s.renderer.Copy(s.texture, nil, nil); err != nil {
		return fmt.Errorf("failed to copy sdl texture to renderer: %w", err)
	}

	s.renderer.Present()
	return nil
}
