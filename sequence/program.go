package sequence

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ProgramVersion is the only program format understood.
const ProgramVersion = "seq.v1"

// StepKind selects what a program step appends to the Sequence.
type StepKind string

const (
	// StepLEDs adds targets to the most recent transition.
	StepLEDs       StepKind = "leds"
	StepTransition StepKind = "transition"
	StepSnap       StepKind = "snap"
	StepSleep      StepKind = "sleep"
	StepPattern    StepKind = "pattern"
)

// LEDs sets several channels to one brightness.
type LEDs struct {
	Channels   []int   `yaml:"channels" json:"channels"`
	Brightness float64 `yaml:"brightness" json:"brightness"`
}

// Step is one entry of a Program.
type Step struct {
	Kind      StepKind `yaml:"kind" json:"kind"`
	DurationS float64  `yaml:"durationS,omitempty" json:"durationS,omitempty"`
	Ease      string   `yaml:"ease,omitempty" json:"ease,omitempty"` // "linear","smooth","cubic"
	LEDs      []LEDs   `yaml:"leds,omitempty" json:"leds,omitempty"`
	Pattern   Pattern  `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Count     int      `yaml:"count,omitempty" json:"count,omitempty"` // channels used by a pattern
}

// ErrUnusedField is returned for step fields the step's kind has no use for.
var ErrUnusedField = errors.New("field does not apply to this step kind")

// Program is a Sequence described as data. Both YAML and JSON are accepted.
type Program struct {
	Version string `yaml:"version" json:"version"` // e.g., "seq.v1"
	Repeat  int    `yaml:"repeat,omitempty" json:"repeat,omitempty"`
	Steps   []Step `yaml:"steps" json:"steps"`
}

// LoadProgram reads a program file.
func LoadProgram(path string) (Program, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Program{}, err
	}
	p, err := ParseProgram(b)
	if err != nil {
		return Program{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ParseProgram decodes a YAML or JSON program and checks its version.
func ParseProgram(data []byte) (Program, error) {
	var p Program
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return Program{}, errors.New("program is empty")
		}
		return Program{}, err
	}
	if p.Version != "" && p.Version != ProgramVersion {
		return Program{}, fmt.Errorf("unsupported program version %q", p.Version)
	}
	if len(p.Steps) == 0 {
		return Program{}, errors.New("program has no steps")
	}
	return p, nil
}

// Build turns the program into a Sequence driving out.
func (p Program) Build(out Output, opts ...Option) (*Sequence, error) {
	s := New(out, opts...)
	for i, st := range p.Steps {
		if err := st.apply(s); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, st.Kind, err)
		}
	}
	return s, nil
}

func (st Step) apply(s *Sequence) error {
	if err := st.check(); err != nil {
		return err
	}
	d, err := seconds(st.DurationS)
	if err != nil {
		return err
	}
	switch st.Kind {
	case StepLEDs, "":
		return st.addLEDs(s)
	case StepTransition:
		tr, err := s.AddTransition(d)
		if err != nil {
			return err
		}
		e, err := ParseEase(st.Ease)
		if err != nil {
			return err
		}
		tr.SetEase(e)
		return st.addLEDs(s)
	case StepSnap:
		s.AddSnap()
		return st.addLEDs(s)
	case StepSleep:
		if err := s.AddPause(d); err != nil {
			return err
		}
		if len(st.LEDs) > 0 {
			return ErrClosedTransition
		}
		return nil
	case StepPattern:
		switch st.Pattern {
		case Chase:
			return s.AddChase(st.Count, d)
		case Sweep:
			return s.AddSweep(st.Count, d)
		}
		return fmt.Errorf("unknown pattern %q", st.Pattern)
	}
	return fmt.Errorf("unknown step kind %q", st.Kind)
}

func (st Step) check() error {
	var unused []string
	if st.Ease != "" && st.Kind != StepTransition {
		unused = append(unused, "ease")
	}
	switch st.Kind {
	case StepTransition, StepSleep, StepPattern:
	default:
		if st.DurationS != 0 {
			unused = append(unused, "durationS")
		}
	}
	if st.Kind == StepPattern {
		if len(st.LEDs) > 0 {
			unused = append(unused, "leds")
		}
	} else {
		if st.Pattern != "" {
			unused = append(unused, "pattern")
		}
		if st.Count != 0 {
			unused = append(unused, "count")
		}
	}
	if len(unused) > 0 {
		return fmt.Errorf("%w: %s", ErrUnusedField, strings.Join(unused, ", "))
	}
	return nil
}

func (st Step) addLEDs(s *Sequence) error {
	for _, l := range st.LEDs {
		if err := s.AddLEDs(l.Channels, l.Brightness); err != nil {
			return err
		}
	}
	return nil
}

func seconds(s float64) (time.Duration, error) {
	if math.IsNaN(s) || s < 0 {
		return 0, fmt.Errorf("%w: %vs", ErrInvalidDuration, s)
	}
	if s >= float64(math.MaxInt64)/float64(time.Second) {
		return 0, fmt.Errorf("%w: %vs is too long", ErrInvalidDuration, s)
	}
	return time.Duration(s * float64(time.Second)), nil
}
