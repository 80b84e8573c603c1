package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kapitanov/chip8emu/internal/hal"
	"github.com/kapitanov/chip8emu/internal/program"
	"github.com/kapitanov/chip8emu/internal/vm"
	"github.com/retroenv/retrogolib/assert"
)

func words(t *testing.T, ws ...uint16) *program.Program {
	t.Helper()

	data := make([]uint8, 0, 2*len(ws))
	for _, w := range ws {
		data = append(data, uint8(w>>8), uint8(w))
	}
	p, err := program.New(data)
	assert.NoError(t, err)
	return p
}

// newTestRunner uses a clock that moves 20ms per reading and never sleeps.
func newTestRunner(fe hal.Frontend, p *program.Program) *Runner {
	r := New(fe, p, Options{CycleRate: 500, RenderRate: 60})

	clock := time.Unix(0, 0)
	r.now = func() time.Time {
		clock = clock.Add(20 * time.Millisecond)
		return clock
	}
	r.sleep = func(time.Duration) {}
	return r
}

type scriptedFrontend struct {
	script []error
	reads  int
	frames []vm.Display
}

func (f *scriptedFrontend) ReadInput() (vm.KeyInput, error) {
	if f.reads >= len(f.script) {
		return vm.KeyInput{}, hal.ErrQuit
	}
	err := f.script[f.reads]
	f.reads++
	return vm.KeyInput{}, err
}

func (f *scriptedFrontend) Draw(d vm.Display) error {
	f.frames = append(f.frames, d)
	return nil
}

func (f *scriptedFrontend) Shutdown() {}

func TestRun_DrawsAndQuits(t *testing.T) {
	p := words(t,
		0x00E0, // cls
		0xA050, // mvi 0x050 (glyph 0)
		0xD005, // sprite v0, v0, 5
		0x1206, // jmp 0x206
	)
	fe := hal.NewHeadless(10, vm.KeyInput{})

	err := newTestRunner(fe, p).Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 10, fe.Cycles())
	assert.Equal(t, 10, fe.Frames())

	frame := fe.LastFrame()
	assert.Equal(t, 14, frame.Lit())
	assert.True(t, frame.Pixel(0, 0))
}

func TestRun_UnsupportedOpcode(t *testing.T) {
	p := words(t, 0x6001, 0x0123)
	fe := hal.NewHeadless(10, vm.KeyInput{})

	err := newTestRunner(fe, p).Run(context.Background())
	assert.True(t, errors.Is(err, vm.ErrUnsupportedOpcode))

	var opErr *vm.UnsupportedOpcodeError
	assert.True(t, errors.As(err, &opErr))
	assert.Equal(t, uint16(0x202), opErr.Address)
	assert.Equal(t, 2, fe.Cycles())
}

func TestRun_Reboot(t *testing.T) {
	p := words(t, 0x7001, 0x1200)
	fe := &scriptedFrontend{script: []error{nil, nil, hal.ErrReboot, nil}}

	r := newTestRunner(fe, p)
	assert.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 2, r.boots)
	assert.Equal(t, 4, fe.reads)
}

func TestRun_ContextCancelled(t *testing.T) {
	p := words(t, 0x1200)
	fe := &scriptedFrontend{script: []error{nil, nil, nil}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, newTestRunner(fe, p).Run(ctx))
	assert.Equal(t, 0, fe.reads)
}

func TestRun_TimersFollowClock(t *testing.T) {
	p := words(t,
		0x6014, // 0x200 mov v0, 20
		0xF015, // 0x202 sdelay v0
		0xF107, // 0x204 gdelay v1
		0x3100, // 0x206 skeq v1, 0
		0x1204, // 0x208 jmp 0x204
		0xA050, // 0x20a mvi 0x050
		0xD115, // 0x20c sprite v1, v1, 5
		0x120E, // 0x20e jmp 0x20e
	)

	// The test clock moves 40ms per cycle, so 20 ticks of 17ms need
	// about nine cycles to run out.
	early := hal.NewHeadless(5, vm.KeyInput{})
	assert.NoError(t, newTestRunner(early, p).Run(context.Background()))
	frame := early.LastFrame()
	assert.Equal(t, 0, frame.Lit())

	late := hal.NewHeadless(50, vm.KeyInput{})
	assert.NoError(t, newTestRunner(late, p).Run(context.Background()))
	frame = late.LastFrame()
	assert.Equal(t, 14, frame.Lit())
}

func TestJumpsToSelf(t *testing.T) {
	tests := []struct {
		name     string
		program  []uint8
		steps    int
		expected bool
	}{
		{"self jump", []uint8{0x12, 0x00}, 1, true},
		{"get key", []uint8{0xF0, 0x0A}, 1, false},
		{"jump elsewhere", []uint8{0x12, 0x02, 0x12, 0x00}, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu := vm.New()
			cpu.LoadProgram(tt.program)

			pc := cpu.State().PC()
			for range tt.steps {
				assert.NoError(t, cpu.Step(vm.KeyInput{}, 0))
			}
			assert.Equal(t, tt.expected, jumpsToSelf(cpu.State(), pc))
		})
	}
}
