package pattern

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Refresh is the sequence step that rebuilds glyphs from free sections and
// classifies unassigned glyphs. It is not a corrector and cannot be disabled.
const Refresh = "refresh"

// DefaultSequence is the order in which correctors run.
//
// The order matters: alterations consume short stem pairs before the stem
// check drops orphan stems, stems are stable before ledgers are checked,
// slurs are processed once every symbol merge is done, and text is
// aggregated last from what is left. Steps may be disabled, never moved.
var DefaultSequence = []string{
	Refresh,
	"caesura",
	"beam-hook",
	"double-beam",
	"fermata-dot",
	"flag",
	"forte",
	"alteration",
	"stem",
	Refresh,
	"ledger",
	"articulation",
	"bass",
	"clef",
	"time",
	"slur",
	"text-border",
	"text-greedy",
	Refresh,
}

// ErrUnknownPattern is returned for a pattern name that does not exist.
var ErrUnknownPattern = errors.New("unknown pattern")

// New creates the named corrector.
func New(name string, env *Env) (Pattern, error) {
	env.normalize()
	switch name {
	case "caesura":
		return &caesuraPattern{env: env}, nil
	case "beam-hook":
		return &beamHookPattern{env: env}, nil
	case "double-beam":
		return &doubleBeamPattern{env: env}, nil
	case "fermata-dot":
		return &fermataDotPattern{env: env}, nil
	case "flag":
		return &flagPattern{env: env}, nil
	case "forte":
		return &fortePattern{env: env}, nil
	case "alteration":
		return &alterationPattern{env: env}, nil
	case "stem":
		return &stemPattern{env: env}, nil
	case "ledger":
		return &ledgerPattern{env: env}, nil
	case "articulation":
		return &articulationPattern{env: env}, nil
	case "bass":
		return &bassPattern{env: env}, nil
	case "clef":
		return &clefPattern{env: env}, nil
	case "time":
		return &timePattern{env: env}, nil
	case "slur":
		return NewSlurInspector(env), nil
	case "text-border":
		return newTextPattern(name, env, borderRegions, false), nil
	case "text-greedy":
		return newTextPattern(name, env, systemRegion, true), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPattern, name)
	}
}

// StepResult is the outcome of one sequence step.
type StepResult struct {
	Name          string        `json:"name"`
	Modifications int           `json:"modifications"`
	Error         string        `json:"error,omitempty"`
	Duration      time.Duration `json:"duration_ns"`
}

// Report is the outcome of a full sequence run on one system.
type Report struct {
	RunID  string       `json:"run_id"`
	System int          `json:"system"`
	Steps  []StepResult `json:"steps"`

	// Total counts the glyphs modified by correctors. Refresh steps are
	// reported but not counted.
	Total int `json:"total"`
}

// Checker runs the corrector sequence over one system.
type Checker struct {
	env      *Env
	sequence []string
}

// NewChecker prepares the sequence, minus the steps disabled in the
// configuration.
//
// Returns an error wrapping ErrUnknownPattern when a disabled name does not
// exist, or when a refresh step is disabled.
func NewChecker(env *Env) (*Checker, error) {
	env.normalize()

	disabled := make(map[string]bool)
	for _, name := range env.Config.Checker.Disabled {
		if name == Refresh {
			return nil, fmt.Errorf("failed to disable %q: refresh steps are mandatory", name)
		}
		if !isCorrector(name) {
			return nil, fmt.Errorf("failed to disable pattern: %w: %q", ErrUnknownPattern, name)
		}
		disabled[name] = true
	}

	c := &Checker{env: env}
	for _, name := range DefaultSequence {
		if !disabled[name] {
			c.sequence = append(c.sequence, name)
		}
	}
	return c, nil
}

func isCorrector(name string) bool {
	for _, n := range DefaultSequence {
		if n == name && n != Refresh {
			return true
		}
	}
	return false
}

// Sequence returns the step names in execution order.
func (c *Checker) Sequence() []string {
	return append([]string(nil), c.sequence...)
}

// Run executes the sequence and returns the number of glyphs modified.
func (c *Checker) Run() int {
	return c.RunWithReport().Total
}

// RunWithReport executes the sequence and details every step.
//
// A step that returns an error or panics counts as zero modifications; the
// following steps still run.
func (c *Checker) RunWithReport() Report {
	sys := c.env.System
	log := c.env.Logger
	report := Report{RunID: uuid.NewString(), System: sys.ID}

	for _, name := range c.sequence {
		start := time.Now()
		step := StepResult{Name: name}
		n, err := c.runStep(name)
		step.Duration = time.Since(start)

		switch {
		case err != nil:
			step.Error = err.Error()
			log.Warn("pattern failed", "run", report.RunID, "system", sys.ID, "pattern", name, "error", err)
		case name == Refresh:
			step.Modifications = n
		default:
			step.Modifications = n
			report.Total += n
			if n > 0 {
				log.Debug("pattern applied", "run", report.RunID, "system", sys.ID, "pattern", name, "modifications", n)
			}
		}
		report.Steps = append(report.Steps, step)
	}

	log.Info("patterns checked", "run", report.RunID, "system", sys.ID, "modifications", report.Total)
	return report
}

// runStep runs one step inside a fault boundary.
func (c *Checker) runStep(name string) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("pattern %s panicked: %v", name, r)
		}
	}()

	if name == Refresh {
		return c.env.System.Refresh(c.env.Classifier, c.env.Config.Checker.RefreshMinGrade), nil
	}
	p, err := New(name, c.env)
	if err != nil {
		return 0, err
	}
	n, err = p.Run()
	if err != nil {
		return 0, fmt.Errorf("pattern %s failed: %w", name, err)
	}
	return n, nil
}
