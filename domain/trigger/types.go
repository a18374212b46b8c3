package trigger

import (
	"fmt"
	"strings"
	"time"

	"github.com/soocke/pixel-trigger-go/domain/action"
)

// Indicator is the display-only classification of the current state. Logic never reads it.
type Indicator int

const (
	IndicatorIdle Indicator = iota
	IndicatorPending
	IndicatorActive
)

func (i Indicator) String() string {
	switch i {
	case IndicatorIdle:
		return "idle"
	case IndicatorPending:
		return "pending"
	case IndicatorActive:
		return "active"
	default:
		return "unknown"
	}
}

// PolicyKind selects the triggering policy.
type PolicyKind int

const (
	// PolicyLevel switches between two values while the region matches, with a cooldown
	// gating entry into the target value.
	PolicyLevel PolicyKind = iota
	// PolicyEdge fires one action on every change of (enabled AND matched).
	PolicyEdge
)

func (k PolicyKind) String() string {
	switch k {
	case PolicyLevel:
		return "level"
	case PolicyEdge:
		return "edge"
	default:
		return "unknown"
	}
}

// Policy parameterizes the state machine. Only the fields of the selected Kind are used.
type Policy struct {
	Kind PolicyKind

	// level
	Cooldown     time.Duration
	DefaultValue int
	TargetValue  int
	TargetKey    action.Key // pressed after switching to TargetValue, if valid
	DefaultKey   action.Key // pressed after reverting to DefaultValue, if valid

	// edge
	EdgeAction action.Action
}

// LevelTriggered builds a level policy.
func LevelTriggered(cooldown time.Duration, defaultValue, targetValue int) Policy {
	return Policy{Kind: PolicyLevel, Cooldown: cooldown, DefaultValue: defaultValue, TargetValue: targetValue}
}

// EdgeTriggered builds an edge policy firing a.
func EdgeTriggered(a action.Action) Policy {
	return Policy{Kind: PolicyEdge, EdgeAction: a}
}

// Snapshot is a consistent, read-only copy of RunState.
type Snapshot struct {
	RunID           string
	Policy          PolicyKind
	Enabled         bool
	Detected        bool
	CurrentValue    int
	HasValue        bool
	LastTrigger     time.Time
	TriggerCount    uint64
	TestCount       uint64
	LeftTestCount   uint64
	Indicator       Indicator
	Ticks           uint64
	CaptureFailures uint64
	ActionFailures  uint64
}

// StatusText formats the snapshot for the overlay.
func (s Snapshot) StatusText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Enable: %s", onOff(s.Enabled))
	switch s.Policy {
	case PolicyLevel:
		if s.HasValue {
			fmt.Fprintf(&b, "\nCurrent value: %d", s.CurrentValue)
		} else {
			b.WriteString("\nCurrent value: -")
		}
	case PolicyEdge:
		fmt.Fprintf(&b, "\nDetected: %s", yesNo(s.Detected))
		fmt.Fprintf(&b, "\nTriggers: %d", s.TriggerCount)
		fmt.Fprintf(&b, "\nTests: %d  Left tests: %d", s.TestCount, s.LeftTestCount)
	}
	return b.String()
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
