package sequence

import "time"

// Pattern names understood by Program steps of kind "pattern".
type Pattern string

const (
	Chase Pattern = "chase"
	Sweep Pattern = "sweep"
)

// Fill returns a one-snap Sequence setting every channel in channels to
// brightness, e.g. a quick "all on" / "all off".
func Fill(out Output, channels []int, brightness float64, opts ...Option) (*Sequence, error) {
	return NewBuilder(out, opts...).LEDs(channels, brightness).Sequence()
}

// AddChase appends one transition per channel of a chase across the first
// count channels: channel i goes dark while i+1 goes to half and i+2 to full.
func (s *Sequence) AddChase(count int, step time.Duration) error {
	if count <= 0 || count > s.out.Channels() {
		count = s.out.Channels()
	}
	for i := 0; i < count; i++ {
		tr, err := s.AddTransition(step)
		if err != nil {
			return err
		}
		for _, t := range []Target{
			{Channel: i, Brightness: 0},
			{Channel: (i + 1) % count, Brightness: 0.5},
			{Channel: (i + 2) % count, Brightness: 1},
		} {
			if err := tr.AddTarget(t.Channel, t.Brightness); err != nil {
				return err
			}
		}
	}
	return nil
}

// AddSweep lights each of the first count channels alone in turn, holding
// each for step, then switches everything off. Useful for checking wiring.
func (s *Sequence) AddSweep(count int, step time.Duration) error {
	if count <= 0 || count > s.out.Channels() {
		count = s.out.Channels()
	}
	for i := 0; i < count; i++ {
		tr := s.AddSnap()
		if i > 0 {
			if err := tr.AddTarget(i-1, 0); err != nil {
				return err
			}
		}
		if err := tr.AddTarget(i, 1); err != nil {
			return err
		}
		if err := s.AddPause(step); err != nil {
			return err
		}
	}
	return s.AddSnap().AddTarget(count-1, 0)
}
