// Package runner drives a CPU in real time against a hal.Frontend.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kapitanov/chip8emu/internal/hal"
	"github.com/kapitanov/chip8emu/internal/program"
	"github.com/kapitanov/chip8emu/internal/vm"
)

type Options struct {
	CycleRate  int // instructions per second
	RenderRate int // frames per second
	Quirks     vm.Quirks
}

type Runner struct {
	frontend hal.Frontend
	program  *program.Program
	opts     Options

	now   func() time.Time
	sleep func(time.Duration)
	boots int
}

func New(frontend hal.Frontend, prog *program.Program, opts Options) *Runner {
	return &Runner{
		frontend: frontend,
		program:  prog,
		opts:     opts,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Run executes the program until the frontend quits or ctx is done, which
// both return nil. A reboot request starts the program again from a fresh
// machine. Any other failure, including an unsupported opcode, halts the
// machine and is returned.
func (r *Runner) Run(ctx context.Context) error {
	for {
		err := r.runMachine(ctx)

		if errors.Is(err, hal.ErrReboot) {
			slog.Info("reboot requested")
			continue
		}

		if errors.Is(err, hal.ErrQuit) || errors.Is(err, context.Canceled) {
			return nil
		}

		return err
	}
}

func (r *Runner) boot() *vm.CPU {
	r.boots++

	cpu := vm.New(vm.WithQuirks(r.opts.Quirks))
	cpu.WriteFont(vm.Font)
	r.program.Load(cpu)
	return cpu
}

func (r *Runner) runMachine(ctx context.Context) error {
	cpu := r.boot()

	cyclePeriod := time.Second / time.Duration(r.opts.CycleRate)
	renderPeriod := time.Second / time.Duration(r.opts.RenderRate)

	last := r.now()
	var lastFrame time.Time
	looped := false

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		keys, err := r.frontend.ReadInput()
		if err != nil {
			return err
		}

		now := r.now()
		if !looped {
			pc := cpu.State().PC()
			if err := cpu.Step(keys, now.Sub(last)); err != nil {
				slog.Error("program halted", "err", err)
				return fmt.Errorf("unable to execute program: %w", err)
			}

			// A jump to itself can never exit; stop stepping but keep the
			// frontend responsive so the user can reboot or quit.
			if jumpsToSelf(cpu.State(), pc) {
				slog.Info("program looped", "pc", fmt.Sprintf("0x%04x", pc))
				looped = true
			}
		}
		last = now

		if lastFrame.IsZero() || now.Sub(lastFrame) >= renderPeriod {
			if err := r.frontend.Draw(cpu.State().Display()); err != nil {
				return err
			}
			lastFrame = now
		}

		if wait := cyclePeriod - r.now().Sub(now); wait > 0 {
			r.sleep(wait)
		}
	}
}

func jumpsToSelf(s *vm.State, pc uint16) bool {
	if s.PC() != pc {
		return false
	}
	op := s.CurrentOpcode()
	return op.Raw&0xF000 == 0x1000 && op.NNN == pc
}
