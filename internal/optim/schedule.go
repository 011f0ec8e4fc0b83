package optim

import (
	"fmt"
	"math"

	"github.com/eidetic-ml/eidetic/internal/errs"
)

// Schedule maps a step (or epoch) counter to a learning rate.
//
// Schedules are pure: the same counter always gives the same rate, and
// every rate is strictly positive.
type Schedule interface {
	// At returns the learning rate for counter n >= 0.
	At(n int) float64

	// Validate checks the schedule configuration.
	Validate() error
}

// Fixed is a constant learning rate.
type Fixed struct {
	Rate float64
}

// At returns the fixed rate.
func (f Fixed) At(int) float64 { return f.Rate }

// Validate checks that the rate is positive and finite.
func (f Fixed) Validate() error {
	return checkRate("optim.Fixed", "rate", f.Rate)
}

func (f Fixed) String() string { return fmt.Sprintf("fixed(%g)", f.Rate) }

// LinearDecay decreases linearly from Initial to Floor over Steps counts,
// then holds at Floor.
//
//	At(n) = Initial - (Initial - Floor) · n / Steps   for n < Steps
//	At(n) = Floor                                      for n >= Steps
//
// A decay spread over E epochs that reaches Floor in the last epoch uses
// Steps = E - 1.
type LinearDecay struct {
	Initial float64
	Floor   float64
	Steps   int
}

// At returns the rate for counter n.
func (l LinearDecay) At(n int) float64 {
	if n >= l.Steps {
		return l.Floor
	}
	if n <= 0 {
		return l.Initial
	}
	return l.Initial - (l.Initial-l.Floor)*float64(n)/float64(l.Steps)
}

// Validate checks 0 < Floor <= Initial and Steps > 0.
func (l LinearDecay) Validate() error {
	if err := checkRate("optim.LinearDecay", "initial rate", l.Initial); err != nil {
		return err
	}
	if err := checkRate("optim.LinearDecay", "floor", l.Floor); err != nil {
		return err
	}
	if l.Floor > l.Initial {
		return errs.Config("optim.LinearDecay", "floor %g exceeds initial rate %g", l.Floor, l.Initial)
	}
	if l.Steps <= 0 {
		return errs.Config("optim.LinearDecay", "steps must be positive, got %d", l.Steps)
	}
	return nil
}

func (l LinearDecay) String() string {
	return fmt.Sprintf("linear(%g → %g over %d)", l.Initial, l.Floor, l.Steps)
}

// ExponentialDecay multiplies the rate by Factor per count:
//
//	At(n) = Initial · Factor^n
//
// The rate approaches zero but never reaches it; a value that underflows
// is reported as the smallest positive float64.
type ExponentialDecay struct {
	Initial float64
	Factor  float64
}

// NewExponentialDecayBetween returns the exponential decay that starts at
// initial and reaches final at count steps-1:
//
//	Factor = (final / initial)^(1 / (steps - 1))
func NewExponentialDecayBetween(initial, final float64, steps int) (ExponentialDecay, error) {
	if err := checkRate("optim.NewExponentialDecayBetween", "initial rate", initial); err != nil {
		return ExponentialDecay{}, err
	}
	if err := checkRate("optim.NewExponentialDecayBetween", "final rate", final); err != nil {
		return ExponentialDecay{}, err
	}
	if steps < 2 {
		return ExponentialDecay{}, errs.Config("optim.NewExponentialDecayBetween", "steps must be at least 2, got %d", steps)
	}
	e := ExponentialDecay{Initial: initial, Factor: math.Pow(final/initial, 1/float64(steps-1))}
	return e, e.Validate()
}

// At returns the rate for counter n.
func (e ExponentialDecay) At(n int) float64 {
	if n < 0 {
		n = 0
	}
	rate := e.Initial * math.Pow(e.Factor, float64(n))
	if rate <= 0 {
		return math.SmallestNonzeroFloat64
	}
	return rate
}

// Validate checks Initial > 0 and 0 < Factor <= 1.
func (e ExponentialDecay) Validate() error {
	if err := checkRate("optim.ExponentialDecay", "initial rate", e.Initial); err != nil {
		return err
	}
	if !(e.Factor > 0 && e.Factor <= 1) {
		return errs.Config("optim.ExponentialDecay", "factor must be in (0, 1], got %g", e.Factor)
	}
	return nil
}

func (e ExponentialDecay) String() string {
	return fmt.Sprintf("exponential(%g × %g^n)", e.Initial, e.Factor)
}

func checkRate(op, what string, v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return errs.Config(op, "%s must be positive and finite, got %g", what, v)
	}
	return nil
}

// ScheduleConfig is the declarative form of a Schedule.
//
// Kind is one of "fixed", "linear" or "exponential". For "exponential"
// either Factor or Final must be set; with Final the factor is derived so
// the rate reaches Final at count Steps-1.
type ScheduleConfig struct {
	Kind    string  `yaml:"kind"`
	Initial float64 `yaml:"initial"`
	Final   float64 `yaml:"final,omitempty"`
	Factor  float64 `yaml:"factor,omitempty"`
	Steps   int     `yaml:"steps,omitempty"`
}

// Build returns the configured schedule.
func (c ScheduleConfig) Build() (Schedule, error) {
	var s Schedule
	switch c.Kind {
	case "", "fixed":
		s = Fixed{Rate: c.Initial}
	case "linear":
		s = LinearDecay{Initial: c.Initial, Floor: c.Final, Steps: c.Steps}
	case "exponential":
		if c.Factor == 0 && c.Final != 0 {
			return NewExponentialDecayBetween(c.Initial, c.Final, c.Steps)
		}
		s = ExponentialDecay{Initial: c.Initial, Factor: c.Factor}
	default:
		return nil, errs.Config("optim.ScheduleConfig", "unknown schedule kind %q", c.Kind)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
