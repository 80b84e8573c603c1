package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kapitanov/chip8emu/internal/config"
	"github.com/kapitanov/chip8emu/internal/hal"
	"github.com/kapitanov/chip8emu/internal/program"
	"github.com/kapitanov/chip8emu/internal/runner"
	"github.com/kapitanov/chip8emu/internal/vm"
)

func init() {
	// SDL must be driven from the main thread.
	runtime.LockOSThread()
}

func main() {
	cmd := &cobra.Command{
		Use:           fmt.Sprintf("%s PATH_TO_ROM_FILE", filepath.Base(os.Args[0])),
		Short:         "Run emulator",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	v := viper.New()
	cfgFile := cmd.PersistentFlags().String("config", "", "config file (default is $HOME/.chip8emu.yaml)")
	if err := config.BindFlags(cmd.Flags(), v); err != nil {
		slog.Error("fatal error", "err", err)
		os.Exit(1)
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(v, *cfgFile)
		if err != nil {
			return err
		}

		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: cfg.LogLevel(),
		})))

		p, err := program.ReadFile(args[0])
		if err != nil {
			return err
		}

		fe, err := newFrontend(cfg)
		if err != nil {
			return fmt.Errorf("unable to initialize hal: %w", err)
		}
		defer fe.Shutdown()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		r := runner.New(fe, p, runner.Options{
			CycleRate:  cfg.CycleRate,
			RenderRate: cfg.RenderRate,
			Quirks:     cfg.Quirks,
		})
		return r.Run(ctx)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "disasm PATH_TO_ROM_FILE",
		Short: "Print a listing of a ROM",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			p, err := program.ReadFile(args[0])
			if err != nil {
				return err
			}
			return p.Disassemble(os.Stdout)
		},
	})

	cmd.SetArgs(os.Args[1:])
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("fatal error", "err", err)
		os.Exit(1)
	}
}

func newFrontend(cfg config.Config) (hal.Frontend, error) {
	switch cfg.Frontend {
	case config.FrontendSDL:
		return hal.NewSDL()
	case config.FrontendHeadless:
		return hal.NewHeadless(cfg.MaxCycles, vm.KeyInput{}), nil
	default:
		return hal.NewTerminal(cfg.RenderRate, cfg.KeyHold)
	}
}
