package sequence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/coreman2200/ledtheatre/sink"
)

// Transition is a set of LEDs moving to target brightnesses over a duration.
// A Transition without targets is a pause. A zero duration is a snap.
type Transition struct {
	seq      *Sequence
	duration time.Duration
	ease     Ease
	targets  []Target
	closed   bool
}

func newTransition(seq *Sequence, d time.Duration, closed bool) (*Transition, error) {
	if d < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDuration, d)
	}
	return &Transition{seq: seq, duration: d, ease: Linear, closed: closed}, nil
}

// AddTarget adds an LED target. Duplicate channels are kept; the last one
// wins on every update.
func (tr *Transition) AddTarget(channel int, brightness float64) error {
	if tr.closed {
		return ErrClosedTransition
	}
	t, err := NewTarget(channel, brightness, tr.seq.out.Channels())
	if err != nil {
		return err
	}
	tr.targets = append(tr.targets, t)
	return nil
}

// SetEase changes the progress curve of the fade.
func (tr *Transition) SetEase(e Ease) { tr.ease = e }

func (tr *Transition) Duration() time.Duration { return tr.duration }
func (tr *Transition) Closed() bool            { return tr.closed }
func (tr *Transition) Ease() Ease              { return tr.ease }

func (tr *Transition) Targets() []Target {
	return append([]Target(nil), tr.targets...)
}

// Execute runs the fade on the calling goroutine until every target reached
// its brightness, or sleeps for the duration when there are no targets.
func (tr *Transition) Execute(ctx context.Context) error {
	s := tr.seq
	s.logger.Info().Msgf("Executing %s", tr)

	if len(tr.targets) == 0 {
		return s.clock.Sleep(ctx, tr.duration)
	}

	// Start points are captured once; later changes made by this loop must not
	// move them.
	dflt := s.out.Default()
	start := make([]float64, len(tr.targets))
	for i, t := range tr.targets {
		cur, err := s.out.Get(t.Channel)
		if err != nil {
			return err
		}
		if cur == sink.Unknown {
			cur = dflt
		}
		start[i] = cur
	}

	began := s.clock.Now()
	for {
		elapsed := s.clock.Now().Sub(began)
		fraction := 1.0
		if elapsed < tr.duration {
			fraction = float64(elapsed) / float64(tr.duration)
		}
		if tr.duration > 0 {
			s.logger.Debug().Msgf("  Complete: %02.0f%%", fraction*100)
		}

		for i, t := range tr.targets {
			v := t.Brightness
			if fraction < 1 {
				v = clamp01(interpolate(start[i], t.Brightness, tr.ease.Apply(fraction)))
			}
			if _, err := s.out.Set(t.Channel, v); err != nil {
				return err
			}
		}

		if fraction >= 1 {
			return nil
		}
		if err := s.clock.Sleep(ctx, s.quantum); err != nil {
			return err
		}
	}
}

// Kind is "pause", "snap" or "transition".
func (tr *Transition) Kind() string {
	switch {
	case len(tr.targets) == 0:
		return "pause"
	case tr.duration == 0:
		return "snap"
	default:
		return "transition"
	}
}

func (tr *Transition) String() string {
	secs := tr.duration.Seconds()
	if len(tr.targets) == 0 {
		return fmt.Sprintf("Pause [Duration: %gs]", secs)
	}
	parts := make([]string, len(tr.targets))
	for i, t := range tr.targets {
		parts[i] = t.describe(tr.seq.out)
	}
	if tr.duration == 0 {
		return "Snap: " + strings.Join(parts, ", ")
	}
	return fmt.Sprintf("Transition [Duration: %gs, %s]", secs, strings.Join(parts, ", "))
}
