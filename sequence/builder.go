package sequence

import "time"

// Builder offers the chained form of the Sequence API. The first error stops
// further building and is returned by Sequence.
//
//	seq, err := sequence.NewBuilder(out).
//		LEDs(all, 0).
//		Transition(500 * time.Millisecond).LED(0, 1).
//		Sleep(time.Second).
//		Snap().LEDs(all, 1).
//		Sequence()
type Builder struct {
	seq *Sequence
	err error
}

func NewBuilder(out Output, opts ...Option) *Builder {
	return &Builder{seq: New(out, opts...)}
}

func (b *Builder) Transition(d time.Duration) *Builder {
	if b.err == nil {
		_, b.err = b.seq.AddTransition(d)
	}
	return b
}

func (b *Builder) Sleep(d time.Duration) *Builder {
	if b.err == nil {
		b.err = b.seq.AddPause(d)
	}
	return b
}

func (b *Builder) Snap() *Builder {
	if b.err == nil {
		b.seq.AddSnap()
	}
	return b
}

func (b *Builder) LED(channel int, brightness float64) *Builder {
	if b.err == nil {
		b.err = b.seq.AddLED(channel, brightness)
	}
	return b
}

func (b *Builder) LEDs(channels []int, brightness float64) *Builder {
	if b.err == nil {
		b.err = b.seq.AddLEDs(channels, brightness)
	}
	return b
}

// Ease sets the curve of the most recent Transition.
func (b *Builder) Ease(e Ease) *Builder {
	if b.err == nil {
		if tr := b.seq.Last(); tr != nil {
			tr.SetEase(e)
		}
	}
	return b
}

func (b *Builder) Err() error { return b.err }

func (b *Builder) Sequence() (*Sequence, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.seq, nil
}
