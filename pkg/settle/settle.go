// Package settle drives a shard after launch: it flies freely, is stopped
// dead at a random moment, and then sits still apart from an occasional small
// impulse so the cloud of shards looks suspended rather than frozen.
//
// The machine owns no physics. Each Tick returns a Command for the caller's
// physics engine to apply.
package settle

import (
	"fmt"
	"time"

	"github.com/chazu/shatter/pkg/rng"
	"github.com/chazu/shatter/pkg/shard"
)

// State is the phase a shard is in.
type State int

const (
	Falling State = iota
	Settling
	AtRest
	Jittering
)

func (s State) String() string {
	switch s {
	case Falling:
		return "falling"
	case Settling:
		return "settling"
	case AtRest:
		return "at-rest"
	case Jittering:
		return "jittering"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Config holds the timings and jitter parameters.
type Config struct {
	StopMin         time.Duration
	StopSpread      time.Duration
	JitterDelay     time.Duration // measured from launch
	JitterChance    float64       // per tick while at rest
	JitterIntensity float64
	JitterFalloff   float64 // shards at or past this index never jitter
	JitterHold      time.Duration
}

// DefaultConfig returns timings tuned for a burst of about fifteen shards.
func DefaultConfig() Config {
	return Config{
		StopMin:         800 * time.Millisecond,
		StopSpread:      1200 * time.Millisecond,
		JitterDelay:     2 * time.Second,
		JitterChance:    0.04,
		JitterIntensity: 0.0015,
		JitterFalloff:   50,
	}
}

// Validate reports the first bad field, wrapping shard.ErrInvalidArgument.
func (c Config) Validate() error {
	switch {
	case c.StopMin < 0:
		return fmt.Errorf("%w: stop min %v is negative", shard.ErrInvalidArgument, c.StopMin)
	case c.StopSpread < 0:
		return fmt.Errorf("%w: stop spread %v is negative", shard.ErrInvalidArgument, c.StopSpread)
	case c.JitterDelay < 0:
		return fmt.Errorf("%w: jitter delay %v is negative", shard.ErrInvalidArgument, c.JitterDelay)
	case !(c.JitterChance >= 0 && c.JitterChance <= 1):
		return fmt.Errorf("%w: jitter chance %g outside [0, 1]", shard.ErrInvalidArgument, c.JitterChance)
	case !(c.JitterIntensity >= 0):
		return fmt.Errorf("%w: jitter intensity %g is negative", shard.ErrInvalidArgument, c.JitterIntensity)
	case !(c.JitterFalloff > 0):
		return fmt.Errorf("%w: jitter falloff %g must be positive", shard.ErrInvalidArgument, c.JitterFalloff)
	case c.JitterHold < 0:
		return fmt.Errorf("%w: jitter hold %v is negative", shard.ErrInvalidArgument, c.JitterHold)
	}
	return nil
}

// Command is what the physics engine should do this tick.
type Command struct {
	// Stop zeroes linear and angular velocity.
	Stop bool
	// Impulse, when non-nil, is applied at the body's center.
	Impulse *[3]float64
}

// Machine is the per-shard state machine. It is not safe for concurrent use.
type Machine struct {
	index   int
	src     rng.Source
	cfg     Config
	state   State
	elapsed time.Duration
	stopAt  time.Duration
	held    time.Duration
}

// New creates a machine for shard index, drawing its stop time from src.
func New(index int, src rng.Source, cfg Config) (*Machine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("%w: nil randomness source", shard.ErrInvalidArgument)
	}
	if index < 0 {
		return nil, fmt.Errorf("%w: index %d is negative", shard.ErrInvalidArgument, index)
	}
	stopAt := cfg.StopMin + time.Duration(src.Float64()*float64(cfg.StopSpread))
	return &Machine{index: index, src: src, cfg: cfg, stopAt: stopAt}, nil
}

func (m *Machine) State() State { return m.state }

// Elapsed is the time since launch.
func (m *Machine) Elapsed() time.Duration { return m.elapsed }

// StopTime is when the shard is stopped dead.
func (m *Machine) StopTime() time.Duration { return m.stopAt }

// Intensity is the jitter impulse scale for this shard. Lower indices sit
// nearer the center and shake harder.
func (m *Machine) Intensity() float64 {
	return m.cfg.JitterIntensity * max(0, 1-float64(m.index)/m.cfg.JitterFalloff)
}

// Tick advances the clock by dt and returns the command for this step.
func (m *Machine) Tick(dt time.Duration) Command {
	m.elapsed += dt

	switch m.state {
	case Falling:
		if m.elapsed >= m.stopAt {
			m.state = Settling
			return Command{Stop: true}
		}
	case Settling:
		if m.elapsed >= m.cfg.JitterDelay {
			m.state = AtRest
		}
	case AtRest:
		if m.src.Float64() < m.cfg.JitterChance {
			m.state = Jittering
			m.held = 0
			s := m.Intensity()
			imp := [3]float64{
				(m.src.Float64() - 0.5) * s,
				(m.src.Float64() - 0.5) * s,
				(m.src.Float64() - 0.5) * s,
			}
			return Command{Impulse: &imp}
		}
	case Jittering:
		m.held += dt
		if m.held >= m.cfg.JitterHold {
			m.state = AtRest
		}
	}
	return Command{}
}
