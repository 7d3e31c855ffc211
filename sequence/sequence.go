package sequence

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Sequence is an ordered list of Transitions run one after another.
type Sequence struct {
	out     Output
	clock   Clock
	quantum time.Duration
	logger  zerolog.Logger

	transitions []*Transition
}

// New creates an empty Sequence driving out.
func New(out Output, opts ...Option) *Sequence {
	s := &Sequence{out: out}
	defaults(s)
	for _, o := range opts {
		o(s)
	}
	return s
}

// AddTransition appends an open Transition and returns it so targets can be
// added. Leave duration at 0 for an instantaneous change.
func (s *Sequence) AddTransition(d time.Duration) (*Transition, error) {
	tr, err := newTransition(s, d, false)
	if err != nil {
		return nil, err
	}
	s.transitions = append(s.transitions, tr)
	return tr, nil
}

// AddPause appends a pause that rejects targets.
func (s *Sequence) AddPause(d time.Duration) error {
	tr, err := newTransition(s, d, true)
	if err != nil {
		return err
	}
	s.transitions = append(s.transitions, tr)
	return nil
}

// AddSnap appends a zero-duration Transition.
func (s *Sequence) AddSnap() *Transition {
	tr, _ := s.AddTransition(0)
	return tr
}

// AddLED targets channel on the most recent Transition, creating a snap
// first when the Sequence is empty.
func (s *Sequence) AddLED(channel int, brightness float64) error {
	return s.AddLEDs([]int{channel}, brightness)
}

// AddLEDs applies the same brightness to each channel on the most recent
// Transition.
func (s *Sequence) AddLEDs(channels []int, brightness float64) error {
	tr := s.Last()
	if tr == nil {
		tr = s.AddSnap()
	}
	for _, ch := range channels {
		if err := tr.AddTarget(ch, brightness); err != nil {
			return err
		}
	}
	return nil
}

// Last returns the most recently added Transition, or nil.
func (s *Sequence) Last() *Transition {
	if len(s.transitions) == 0 {
		return nil
	}
	return s.transitions[len(s.transitions)-1]
}

func (s *Sequence) Transitions() []*Transition {
	return append([]*Transition(nil), s.transitions...)
}

func (s *Sequence) Len() int { return len(s.transitions) }

// Duration is the nominal length of one pass.
func (s *Sequence) Duration() time.Duration {
	var total time.Duration
	for _, tr := range s.transitions {
		total += tr.duration
	}
	return total
}

// Execute runs every Transition in order, repeat times. Values below 1 run
// the Sequence once.
func (s *Sequence) Execute(ctx context.Context, repeat int) error {
	if repeat < 1 {
		repeat = 1
	}
	for pass := 0; pass < repeat; pass++ {
		if repeat > 1 {
			s.logger.Debug().Int("pass", pass+1).Int("of", repeat).Msg("sequence pass")
		}
		for _, tr := range s.transitions {
			if err := tr.Execute(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Sequence) String() string {
	var b strings.Builder
	b.WriteString("Sequence:\n")
	for _, tr := range s.transitions {
		b.WriteString("    ")
		b.WriteString(tr.String())
		b.WriteString("\n")
	}
	return b.String()
}
