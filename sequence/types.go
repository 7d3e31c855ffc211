package sequence

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledtheatre/sink"
)

// DefaultQuantum is how long a fade sleeps between updates.
const DefaultQuantum = 50 * time.Millisecond

var (
	ErrInvalidDuration  = errors.New("transition duration must not be negative")
	ErrClosedTransition = errors.New("this transition cannot have targets set")
)

// Output is the brightness sink a Sequence drives. *sink.Sink satisfies it.
type Output interface {
	Channels() int
	Default() float64
	Get(channel int) (float64, error)
	Set(channel int, brightness float64) (float64, error)
}

// Target is an intended brightness on one LED.
type Target struct {
	Channel    int     `json:"channel" yaml:"channel"`
	Brightness float64 `json:"brightness" yaml:"brightness"`
}

// NewTarget validates channel against a board of n outputs and brightness
// against [0, 1].
func NewTarget(channel int, brightness float64, n int) (Target, error) {
	if err := sink.ValidateChannel(channel, n); err != nil {
		return Target{}, err
	}
	if err := sink.ValidateBrightness(brightness); err != nil {
		return Target{}, err
	}
	return Target{Channel: channel, Brightness: brightness}, nil
}

func (t Target) describe(out Output) string {
	cur, err := out.Get(t.Channel)
	if err != nil || cur == sink.Unknown {
		return fmt.Sprintf("LED#%d [Current: Unknown, Target: %04.3f]", t.Channel, t.Brightness)
	}
	return fmt.Sprintf("LED#%d [Current: %04.3f, Target: %04.3f]", t.Channel, cur, t.Brightness)
}

// Option configures a Sequence.
type Option func(*Sequence)

// WithClock replaces the wall clock, e.g. with a VirtualClock.
func WithClock(c Clock) Option {
	return func(s *Sequence) { s.clock = c }
}

// WithQuantum sets the sleep between fade updates. Non-positive values keep
// DefaultQuantum.
func WithQuantum(d time.Duration) Option {
	return func(s *Sequence) {
		if d > 0 {
			s.quantum = d
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Sequence) { s.logger = l }
}

func defaults(s *Sequence) {
	s.clock = WallClock{}
	s.quantum = DefaultQuantum
	s.logger = log.Logger
}
