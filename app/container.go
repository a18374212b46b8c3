package app

import (
	"fmt"
	"image"
	"io"
	"log/slog"
	"time"

	"github.com/soocke/pixel-trigger-go/config"
	"github.com/soocke/pixel-trigger-go/debug"
	"github.com/soocke/pixel-trigger-go/domain/action"
	"github.com/soocke/pixel-trigger-go/domain/capture"
	"github.com/soocke/pixel-trigger-go/domain/hotkey"
	"github.com/soocke/pixel-trigger-go/domain/trigger"
	"github.com/soocke/pixel-trigger-go/ui/model"
)

// Platform bundles the OS-facing pieces so tests can swap them out.
type Platform struct {
	Monitors capture.MonitorSource
	Capturer capture.Capturer
	Injector action.Injector
	Runner   action.CommandRunner
	Keys     hotkey.Source
}

// DefaultPlatform returns the real OS backends. With keys set, hotkeys are read as key
// names from that reader instead of the global keyboard hook.
func DefaultPlatform(keys io.Reader, logger *slog.Logger) Platform {
	p := Platform{
		Monitors: capture.DisplayMonitors{},
		Capturer: capture.NewScreenCapturer(),
		Injector: action.NewPlatformInjector(),
		Runner:   action.ShellRunner{},
		Keys:     hotkey.NewHookSource(),
	}
	if keys != nil {
		p.Keys = hotkey.NewLineSource(keys, logger)
	}
	return p
}

// Container assembles the services for one run.
type Container struct {
	Config   *config.Config
	Logger   *slog.Logger
	RunID    string
	Region   image.Rectangle
	Sampler  *capture.Sampler
	Executor *action.Executor
	State    *trigger.State
	Engine   *trigger.Engine
	Listener *hotkey.Listener
	Status   *model.StatusModel
	Session  *model.SessionModel
	Stats    *debug.StatsLogger
}

// BuildContainer validates cfg and constructs every component. Any error is a startup
// failure; nothing has been started yet when it returns.
func BuildContainer(cfg *config.Config, logger *slog.Logger, runID string, p Platform) (*Container, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(action.Resolver{}); err != nil {
		return nil, err
	}
	c := &Container{Config: cfg, Logger: logger, RunID: runID}

	monitors, err := p.Monitors.Monitors()
	if err != nil {
		return nil, fmt.Errorf("enumerate monitors: %w", err)
	}
	mon, err := capture.SelectMonitor(monitors, cfg.Monitor)
	if err != nil {
		return nil, err
	}
	c.Region = capture.CenterRegion(mon, cfg.SampleSize)

	policy, err := PolicyFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	bindings, err := BindingsFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	c.Sampler = capture.NewSampler(p.Capturer, logger)
	c.Executor = action.NewExecutor(action.ExecutorOptions{
		Runner:   p.Runner,
		Injector: p.Injector,
		Template: cfg.CommandTemplate,
		Timeout:  seconds(cfg.CommandTimeout),
		Logger:   logger,
	})
	c.State = trigger.NewState(policy, runID)
	c.Status = model.NewStatusModel()
	c.Session = model.NewSessionModel()
	c.Engine = trigger.NewEngine(trigger.Options{
		State:    c.State,
		Policy:   policy,
		Region:   c.Region,
		Model:    cfg.ColorModel(),
		Sampler:  c.Sampler,
		Executor: c.Executor,
		FPS:      cfg.FPS,
		Logger:   logger,
		Sinks:    []trigger.StatusSink{c.Status},
	})
	c.Listener = hotkey.NewListener(bindings, p.Keys, c.Engine, logger)
	c.Stats = &debug.StatsLogger{Interval: 2 * time.Second, Logger: logger, Sampler: c.Sampler, State: c.State}

	if logger != nil {
		logger.Info("container built",
			"monitor", mon.String(),
			"region", c.Region.String(),
			"policy", policy.Kind.String(),
			"fps", cfg.FPS,
		)
	}
	return c, nil
}

// PolicyFromConfig translates the policy fields.
func PolicyFromConfig(cfg *config.Config) (trigger.Policy, error) {
	switch cfg.Policy {
	case config.PolicyEdge:
		a, err := edgeAction(cfg)
		if err != nil {
			return trigger.Policy{}, err
		}
		return trigger.EdgeTriggered(a), nil
	case config.PolicyLevel, "":
		p := trigger.LevelTriggered(seconds(cfg.CooldownSeconds), cfg.DefaultValue, cfg.TargetValue)
		var err error
		if p.TargetKey, err = optionalKey(cfg.TargetKey); err != nil {
			return trigger.Policy{}, fmt.Errorf("target_key: %w", err)
		}
		if p.DefaultKey, err = optionalKey(cfg.DefaultKey); err != nil {
			return trigger.Policy{}, fmt.Errorf("default_key: %w", err)
		}
		// the test key uses the edge action under either policy
		if p.EdgeAction, err = edgeAction(cfg); err != nil {
			return trigger.Policy{}, err
		}
		return p, nil
	default:
		return trigger.Policy{}, fmt.Errorf("%w: unknown policy %q", config.ErrInvalidConfig, cfg.Policy)
	}
}

// BindingsFromConfig resolves the hotkeys. The toggle key is mandatory.
func BindingsFromConfig(cfg *config.Config) (hotkey.Bindings, error) {
	var b hotkey.Bindings
	var err error
	if b.Toggle, err = action.ParseKey(cfg.ToggleKey); err != nil {
		return b, fmt.Errorf("toggle_key: %w", err)
	}
	if b.Test, err = optionalKey(cfg.TestKey); err != nil {
		return b, fmt.Errorf("test_key: %w", err)
	}
	if b.LeftTest, err = optionalKey(cfg.LeftTestKey); err != nil {
		return b, fmt.Errorf("left_test_key: %w", err)
	}
	return b, nil
}

func edgeAction(cfg *config.Config) (action.Action, error) {
	if cfg.EdgeKey != "" {
		k, err := action.ParseKey(cfg.EdgeKey)
		if err != nil {
			return action.Action{}, fmt.Errorf("edge_key: %w", err)
		}
		return action.PressKey(k), nil
	}
	b, err := action.ParseButton(cfg.EdgeButton)
	if err != nil {
		return action.Action{}, fmt.Errorf("edge_button: %w", err)
	}
	return action.Click(b), nil
}

func optionalKey(name string) (action.Key, error) {
	if name == "" {
		return action.Key{}, nil
	}
	return action.ParseKey(name)
}

func seconds(s float64) time.Duration { return time.Duration(s * float64(time.Second)) }
