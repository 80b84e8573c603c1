package hal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	tm "github.com/buger/goterm"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/kapitanov/chip8emu/internal/vm"
)

const (
	keyEscape    = 0x1B
	keyCtrlC     = 0x03
	keyBackspace = 0x7F
	keyCtrlH     = 0x08

	// Border plus one character per two pixel rows.
	terminalColumns = vm.ScreenWidth + 2
	terminalRows    = vm.ScreenHeight/2 + 2
)

// Terminal draws the display with half-block characters and reads the keypad
// from stdin in raw mode. Terminals report no key releases, so a press is
// held for a fixed time and then released.
type Terminal struct {
	fd       int
	oldState *term.State
	keyHold  time.Duration
	now      func() time.Time

	keypad    Keypad
	mu        sync.Mutex
	pressedAt [vm.KeyCount]time.Time
	display   vm.Display
	dirty     bool

	requests chan error

	cancel context.CancelFunc
	group  *errgroup.Group
}

var _ Frontend = (*Terminal)(nil)

func newTerminal(keyHold time.Duration) *Terminal {
	return &Terminal{
		keyHold:  keyHold,
		now:      time.Now,
		requests: make(chan error, 1),
	}
}

// NewTerminal switches stdin to raw mode and starts the render and input
// loops. renderRate is in frames per second.
func NewTerminal(renderRate int, keyHold time.Duration) (*Terminal, error) {
	stdin := int(os.Stdin.Fd())
	if !term.IsTerminal(stdin) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return nil, errors.New("terminal frontend needs an interactive terminal")
	}

	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && (w < terminalColumns || h < terminalRows) {
		slog.Warn("terminal is smaller than the display", "have", fmt.Sprintf("%dx%d", w, h), "need", fmt.Sprintf("%dx%d", terminalColumns, terminalRows))
	}

	oldState, err := term.MakeRaw(stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to set raw mode: %w", err)
	}
	slog.Debug("hal: terminal in raw mode")

	t := newTerminal(keyHold)
	t.fd = stdin
	t.oldState = oldState
	t.dirty = true

	tm.Clear()
	tm.Print("\033[?25l") // hide cursor
	tm.Flush()

	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.group, ctx = errgroup.WithContext(ctx)

	chunks := make(chan []byte)
	go readStdin(chunks)

	renderPeriod := time.Second / time.Duration(renderRate)
	t.group.Go(func() error {
		return t.renderLoop(ctx, renderPeriod)
	})
	t.group.Go(func() error {
		return t.inputLoop(ctx, chunks)
	})

	return t, nil
}

// readStdin never returns while stdin is open; a blocked read cannot be
// interrupted portably, so it is left behind on shutdown.
func readStdin(chunks chan<- []byte) {
	buf := make([]byte, 16)
	for {
		n, err := os.Stdin.Read(buf)
		if n > 0 {
			chunks <- append([]byte(nil), buf[:n]...)
		}
		if err != nil {
			close(chunks)
			return
		}
	}
}

func (t *Terminal) Shutdown() {
	t.cancel()
	if err := t.group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("terminal loop failed", "err", err)
	}

	tm.Clear()
	tm.MoveCursor(1, 1)
	tm.Print("\033[?25h") // show cursor
	tm.Flush()

	if err := term.Restore(t.fd, t.oldState); err != nil {
		slog.Error("failed to restore terminal", "err", err)
	}
	slog.Debug("hal: terminal restored")
}

func (t *Terminal) ReadInput() (vm.KeyInput, error) {
	select {
	case err := <-t.requests:
		t.keypad.Reset()
		return vm.KeyInput{}, err
	default:
	}

	now := t.now()
	t.mu.Lock()
	for k, at := range t.pressedAt {
		if !at.IsZero() && now.Sub(at) >= t.keyHold {
			t.pressedAt[k] = time.Time{}
			t.keypad.KeyUp(vm.Key(k))
		}
	}
	t.mu.Unlock()

	return t.keypad.Snapshot(), nil
}

func (t *Terminal) Draw(display vm.Display) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.display != display {
		t.display = display
		t.dirty = true
	}
	return nil
}

func (t *Terminal) inputLoop(ctx context.Context, chunks <-chan []byte) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case chunk, ok := <-chunks:
			if !ok {
				t.request(ErrQuit)
				return nil
			}
			t.handleInput(chunk)
		}
	}
}

// handleInput interprets one read from stdin. A lone ESC quits; longer
// escape sequences (arrows, function keys) are ignored.
func (t *Terminal) handleInput(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	if chunk[0] == keyEscape {
		if len(chunk) == 1 {
			slog.Info("got request to exit (esc pressed)")
			t.request(ErrQuit)
		}
		return
	}

	for _, b := range chunk {
		switch b {
		case keyCtrlC:
			t.request(ErrQuit)
			return
		case keyBackspace, keyCtrlH:
			t.request(ErrReboot)
			return
		}

		key, ok := KeyForRune(rune(b))
		if !ok {
			continue
		}

		slog.Debug("keypad button pressed", "key", fmt.Sprintf("%#x", key))
		t.mu.Lock()
		t.pressedAt[key] = t.now()
		t.mu.Unlock()
		t.keypad.KeyDown(key)
	}
}

func (t *Terminal) request(err error) {
	select {
	case t.requests <- err:
	default:
	}
}

func (t *Terminal) renderLoop(ctx context.Context, period time.Duration) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		t.mu.Lock()
		display, dirty := t.display, t.dirty
		t.dirty = false
		t.mu.Unlock()

		if !dirty {
			continue
		}

		for row, line := range RenderText(display) {
			tm.MoveCursor(1, row+1)
			tm.Print(line)
		}
		tm.Flush()
	}
}

// RenderText draws the display in a box, one character per two pixel rows.
func RenderText(display vm.Display) []string {
	lines := make([]string, 0, terminalRows)
	lines = append(lines, "┌"+strings.Repeat("─", vm.ScreenWidth)+"┐")

	var b strings.Builder
	for y := 0; y < vm.ScreenHeight; y += 2 {
		b.Reset()
		b.WriteString("│")
		for x := 0; x < vm.ScreenWidth; x++ {
			b.WriteString(halfBlock(display[y][x], display[y+1][x]))
		}
		b.WriteString("│")
		lines = append(lines, b.String())
	}

	lines = append(lines, "└"+strings.Repeat("─", vm.ScreenWidth)+"┘")
	return lines
}

func halfBlock(top, bottom bool) string {
	switch {
	case top && bottom:
		return "█"
	case top:
		return "▀"
	case bottom:
		return "▄"
	default:
		return " "
	}
}
