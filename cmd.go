package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/soocke/pixel-trigger-go/app"
	"github.com/soocke/pixel-trigger-go/config"
	"github.com/soocke/pixel-trigger-go/domain/capture"
)

var (
	configPath    string
	headless      bool
	keysFromStdin bool
	flagCfg       = config.DefaultConfig()
)

var rootCmd = &cobra.Command{
	Use:   "pixel-trigger",
	Short: "Watch the screen center for a target color and react to it",
	Long: `pixel-trigger samples a small square at the center of a monitor at a fixed rate.
When the square contains the target color it either switches a numeric setting through
an external command (level policy) or clicks / presses a key on every change (edge policy).
A global hotkey toggles sampling.`,
	SilenceUsage: true,
	RunE:         runTrigger,
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write the default configuration to --config",
	RunE: func(cmd *cobra.Command, args []string) error {
		if configPath == "" {
			return fmt.Errorf("--config is required")
		}
		cfg := config.DefaultConfig()
		applyFlags(cmd, cfg)
		if err := cfg.Save(configPath); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "wrote", configPath)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "config file (.json, .yaml, .yml or .ini)")

	local := rootCmd.Flags()
	local.BoolVar(&headless, "headless", false, "run without the status overlay")
	local.BoolVar(&keysFromStdin, "keys-from-stdin", false, "read hotkey names from stdin, one per line, instead of the keyboard hook")

	// config overrides are shared with init-config
	f := pf
	f.BoolVar(&flagCfg.Debug, "debug", flagCfg.Debug, "debug logging and periodic stats")
	f.IntVar(&flagCfg.SampleSize, "sample-size", flagCfg.SampleSize, "side of the sampled square in pixels")
	f.Float64Var(&flagCfg.FPS, "fps", flagCfg.FPS, "samples per second")
	f.IntVar(&flagCfg.Monitor, "monitor", flagCfg.Monitor, "monitor entry index, -1 picks automatically")
	f.Float64Var(&flagCfg.HueMin, "hue-min", flagCfg.HueMin, "minimum hue in degrees")
	f.Float64Var(&flagCfg.HueMax, "hue-max", flagCfg.HueMax, "maximum hue in degrees")
	f.Float64Var(&flagCfg.SatMin, "sat-min", flagCfg.SatMin, "minimum saturation 0..1")
	f.Float64Var(&flagCfg.ValMin, "val-min", flagCfg.ValMin, "minimum value 0..1")
	f.StringVar(&flagCfg.Policy, "policy", flagCfg.Policy, "level or edge")
	f.Float64Var(&flagCfg.CooldownSeconds, "cooldown", flagCfg.CooldownSeconds, "seconds between switches to the target value")
	f.IntVar(&flagCfg.TargetValue, "target-value", flagCfg.TargetValue, "value applied while the color is detected")
	f.IntVar(&flagCfg.DefaultValue, "default-value", flagCfg.DefaultValue, "value applied otherwise")
	f.StringVar(&flagCfg.CommandTemplate, "command", flagCfg.CommandTemplate, "command run to apply a value; {value} is replaced")
	f.Float64Var(&flagCfg.CommandTimeout, "command-timeout", flagCfg.CommandTimeout, "seconds before a command is killed")
	f.StringVar(&flagCfg.TargetKey, "target-key", flagCfg.TargetKey, "key pressed after applying the target value")
	f.StringVar(&flagCfg.DefaultKey, "default-key", flagCfg.DefaultKey, "key pressed after applying the default value")
	f.StringVar(&flagCfg.EdgeButton, "edge-button", flagCfg.EdgeButton, "button clicked by the edge policy")
	f.StringVar(&flagCfg.EdgeKey, "edge-key", flagCfg.EdgeKey, "key pressed by the edge policy instead of clicking")
	f.StringVar(&flagCfg.ToggleKey, "toggle-key", flagCfg.ToggleKey, "hotkey toggling sampling")
	f.StringVar(&flagCfg.TestKey, "test-key", flagCfg.TestKey, "hotkey firing the edge action once")
	f.StringVar(&flagCfg.LeftTestKey, "left-test-key", flagCfg.LeftTestKey, "hotkey firing a left click once")

	rootCmd.AddCommand(initConfigCmd)
}

// applyFlags copies only the flags given on the command line over cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	set := func(name string, apply func()) {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			apply()
		}
	}
	set("debug", func() { cfg.Debug = flagCfg.Debug })
	set("sample-size", func() { cfg.SampleSize = flagCfg.SampleSize })
	set("fps", func() { cfg.FPS = flagCfg.FPS })
	set("monitor", func() { cfg.Monitor = flagCfg.Monitor })
	set("hue-min", func() { cfg.HueMin = flagCfg.HueMin })
	set("hue-max", func() { cfg.HueMax = flagCfg.HueMax })
	set("sat-min", func() { cfg.SatMin = flagCfg.SatMin })
	set("val-min", func() { cfg.ValMin = flagCfg.ValMin })
	set("policy", func() { cfg.Policy = flagCfg.Policy })
	set("cooldown", func() { cfg.CooldownSeconds = flagCfg.CooldownSeconds })
	set("target-value", func() { cfg.TargetValue = flagCfg.TargetValue })
	set("default-value", func() { cfg.DefaultValue = flagCfg.DefaultValue })
	set("command", func() { cfg.CommandTemplate = flagCfg.CommandTemplate })
	set("command-timeout", func() { cfg.CommandTimeout = flagCfg.CommandTimeout })
	set("target-key", func() { cfg.TargetKey = flagCfg.TargetKey })
	set("default-key", func() { cfg.DefaultKey = flagCfg.DefaultKey })
	set("edge-button", func() { cfg.EdgeButton = flagCfg.EdgeButton })
	set("edge-key", func() { cfg.EdgeKey = flagCfg.EdgeKey })
	set("toggle-key", func() { cfg.ToggleKey = flagCfg.ToggleKey })
	set("test-key", func() { cfg.TestKey = flagCfg.TestKey })
	set("left-test-key", func() { cfg.LeftTestKey = flagCfg.LeftTestKey })
}

func runTrigger(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	applyFlags(cmd, cfg)

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	runID := uuid.NewString()
	logger := NewLogger(level).With("run_id", runID)

	capture.EnableDPIAwareness()

	platform := app.DefaultPlatform(nil, logger)
	if keysFromStdin {
		platform = app.DefaultPlatform(os.Stdin, logger)
		if term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintf(os.Stderr, "type a key name (%s toggles) and press Enter\n", cfg.ToggleKey)
		}
	}
	c, err := app.BuildContainer(cfg, logger, runID, platform)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var fg app.Foreground
	if cfg.Overlay && !headless {
		fg = overlayForeground(c)
	}
	logger.Info("starting", "config", configPath, "overlay", fg != nil)
	if err := app.Run(ctx, c, fg); err != nil {
		logger.Error("run failed", "error", err)
		return err
	}
	return nil
}
