// Package config resolves emulator settings from defaults, a config file,
// CHIP8EMU_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kapitanov/chip8emu/internal/vm"
)

const (
	FrontendSDL      = "sdl"
	FrontendTerminal = "terminal"
	FrontendHeadless = "headless"

	envPrefix  = "CHIP8EMU"
	configName = ".chip8emu"
)

// Viper keys.
const (
	keyVerbose       = "verbose"
	keyFrontend      = "frontend"
	keyCycleRate     = "cycle-rate"
	keyRenderRate    = "render-rate"
	keyKeyHold       = "key-hold"
	keyMaxCycles     = "max-cycles"
	keyShiftUsesVY   = "quirks.shift-vy"
	keyCollisionFlag = "quirks.collision-flag"
)

type Config struct {
	Verbose    bool
	Frontend   string
	CycleRate  int           // instructions per second
	RenderRate int           // frames per second
	KeyHold    time.Duration // how long a terminal key press counts as held
	MaxCycles  int           // 0 runs until quit
	Quirks     vm.Quirks
}

func Default() Config {
	return Config{
		Frontend:   FrontendTerminal,
		CycleRate:  700,
		RenderRate: 60,
		KeyHold:    500 * time.Millisecond,
	}
}

// BindFlags registers the emulator flags on fs and binds them to v.
func BindFlags(fs *pflag.FlagSet, v *viper.Viper) error {
	d := Default()

	fs.BoolP(keyVerbose, "v", d.Verbose, "enable verbose logging")
	fs.String(keyFrontend, d.Frontend, "frontend to run: sdl, terminal or headless")
	fs.Int(keyCycleRate, d.CycleRate, "instructions executed per second")
	fs.Int(keyRenderRate, d.RenderRate, "display refreshes per second")
	fs.Duration(keyKeyHold, d.KeyHold, "how long a terminal key press is held")
	fs.Int(keyMaxCycles, d.MaxCycles, "stop after this many cycles (0 = never)")
	fs.Bool("quirk-shift-vy", d.Quirks.ShiftUsesVY, "8XY6/8XYE shift VY into VX")
	fs.Bool("quirk-collision-flag", d.Quirks.CollisionFlag, "DXYN sets VF when a pixel is erased")

	bindings := map[string]string{
		keyVerbose:       keyVerbose,
		keyFrontend:      keyFrontend,
		keyCycleRate:     keyCycleRate,
		keyRenderRate:    keyRenderRate,
		keyKeyHold:       keyKeyHold,
		keyMaxCycles:     keyMaxCycles,
		keyShiftUsesVY:   "quirk-shift-vy",
		keyCollisionFlag: "quirk-collision-flag",
	}
	for key, flag := range bindings {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return fmt.Errorf("unable to bind flag %q: %w", flag, err)
		}
	}

	return nil
}

// Load reads the config file, if any, and returns the validated settings.
// An empty cfgFile searches $HOME for .chip8emu.{yaml,json,toml,...};
// not finding one there is not an error.
func Load(v *viper.Viper, cfgFile string) (Config, error) {
	d := Default()
	v.SetDefault(keyFrontend, d.Frontend)
	v.SetDefault(keyCycleRate, d.CycleRate)
	v.SetDefault(keyRenderRate, d.RenderRate)
	v.SetDefault(keyKeyHold, d.KeyHold)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return Config{}, fmt.Errorf("unable to find home directory: %w", err)
		}
		v.AddConfigPath(home)
		v.SetConfigName(configName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("unable to read config: %w", err)
		}
	} else {
		slog.Debug("using config file", "path", v.ConfigFileUsed())
	}

	cfg := Config{
		Verbose:    v.GetBool(keyVerbose),
		Frontend:   v.GetString(keyFrontend),
		CycleRate:  v.GetInt(keyCycleRate),
		RenderRate: v.GetInt(keyRenderRate),
		KeyHold:    v.GetDuration(keyKeyHold),
		MaxCycles:  v.GetInt(keyMaxCycles),
		Quirks: vm.Quirks{
			ShiftUsesVY:   v.GetBool(keyShiftUsesVY),
			CollisionFlag: v.GetBool(keyCollisionFlag),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Frontend {
	case FrontendSDL, FrontendTerminal, FrontendHeadless:
	default:
		return fmt.Errorf("unknown frontend %q", c.Frontend)
	}

	if c.CycleRate <= 0 {
		return fmt.Errorf("cycle rate must be positive, got %d", c.CycleRate)
	}
	if c.RenderRate <= 0 {
		return fmt.Errorf("render rate must be positive, got %d", c.RenderRate)
	}
	if c.KeyHold <= 0 {
		return fmt.Errorf("key hold must be positive, got %s", c.KeyHold)
	}
	if c.MaxCycles < 0 {
		return fmt.Errorf("max cycles must not be negative, got %d", c.MaxCycles)
	}

	return nil
}

// LogLevel is Debug when verbose, Info otherwise.
func (c Config) LogLevel() slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
