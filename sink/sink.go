package sink

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio"
)

const (
	// DefaultChannels is the number of PWM outputs on a PCA9685 board.
	DefaultChannels = 16
	// MaxDuty is the duty value sent for full brightness (12-bit PWM).
	MaxDuty gpio.Duty = 4095
	// Unknown is returned by Get for channels that were never set.
	Unknown = -1.0
)

var (
	ErrOutOfRange        = errors.New("channel out of range")
	ErrInvalidBrightness = errors.New("brightness must be between 0.0 and 1.0")
)

// Driver is the hardware collaborator receiving duty cycle commands.
// *pca9685.Dev from periph.io satisfies it.
type Driver interface {
	SetPwm(channel int, on, off gpio.Duty) error
}

// Change describes one brightness update that reached the output.
type Change struct {
	Channel    int       `json:"channel"`
	Previous   float64   `json:"previous"`
	Brightness float64   `json:"brightness"`
	On         gpio.Duty `json:"on"`
	Off        gpio.Duty `json:"off"`
}

// Sink holds the last-known brightness of every channel and forwards changes
// to its driver.
type Sink struct {
	mu        sync.Mutex
	levels    []float64
	drv       Driver
	pullUp    bool
	dflt      float64
	warned    bool
	logger    zerolog.Logger
	observers []func(Change)
	pending   []Change
	draining  bool
}

// New creates a sink with the given channel count in simulation mode.
// Call Init to attach a driver.
func New(channels int) *Sink {
	if channels <= 0 {
		channels = DefaultChannels
	}
	s := &Sink{
		levels: make([]float64, channels),
		logger: log.Logger,
	}
	for i := range s.levels {
		s.levels[i] = Unknown
	}
	return s
}

// Init (re)configures the driver and polarity. A nil driver keeps the sink in
// simulation mode. The simulation warning is re-armed.
func (s *Sink) Init(drv Driver, pullUp bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drv = drv
	s.pullUp = pullUp
	s.dflt = 0
	if pullUp {
		s.dflt = 1
	}
	s.warned = false
}

// SetLogger replaces the logger used for change and simulation messages.
func (s *Sink) SetLogger(l zerolog.Logger) {
	s.mu.Lock()
	s.logger = l
	s.mu.Unlock()
}

// OnChange registers fn to be called after every applied change. Changes are
// delivered one at a time in the order they were applied, without the sink's
// lock held, possibly from the goroutine of a concurrent Set.
func (s *Sink) OnChange(fn func(Change)) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

func (s *Sink) Channels() int { return len(s.levels) }

// Default is the brightness assumed for channels that were never set.
func (s *Sink) Default() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dflt
}

func (s *Sink) PullUp() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pullUp
}

// Simulated reports whether no driver is attached.
func (s *Sink) Simulated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drv == nil
}

// Snapshot returns a copy of all channel levels.
func (s *Sink) Snapshot() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]float64, len(s.levels))
	copy(out, s.levels)
	return out
}

// Get returns the last brightness set on channel, or Unknown.
func (s *Sink) Get(channel int) (float64, error) {
	if err := ValidateChannel(channel, len(s.levels)); err != nil {
		return Unknown, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.levels[channel], nil
}

// Set applies brightness to channel and returns the previous value. The
// driver is only called when the value changes.
func (s *Sink) Set(channel int, brightness float64) (float64, error) {
	if err := ValidateChannel(channel, len(s.levels)); err != nil {
		return Unknown, err
	}
	if err := ValidateBrightness(brightness); err != nil {
		return Unknown, err
	}

	s.mu.Lock()
	prev := s.levels[channel]
	if brightness == prev {
		s.mu.Unlock()
		return prev, nil
	}
	on, off := Duty(brightness, s.pullUp)
	s.logger.Debug().Int("led", channel).Float64("brightness", brightness).Msg("setting LED")
	if s.drv != nil {
		if err := s.drv.SetPwm(channel, on, off); err != nil {
			s.mu.Unlock()
			return prev, fmt.Errorf("set LED#%d: %w", channel, err)
		}
	} else if !s.warned {
		s.warned = true
		s.logger.Warn().Msg("ledtheatre has not been initialised with a PWM driver - simulating LED brightness changes")
	}
	s.levels[channel] = brightness
	s.pending = append(s.pending, Change{Channel: channel, Previous: prev, Brightness: brightness, On: on, Off: off})
	s.drain()
	return prev, nil
}

// drain delivers pending changes to the observers and releases s.mu. Only one
// goroutine drains at a time; others leave their changes queued for it.
func (s *Sink) drain() {
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	for len(s.pending) > 0 {
		batch, observers := s.pending, s.observers
		s.pending = nil
		s.mu.Unlock()
		for _, c := range batch {
			for _, fn := range observers {
				fn(c)
			}
		}
		s.mu.Lock()
	}
	s.draining = false
	s.mu.Unlock()
}

// Duty maps brightness onto the (on, off) pair sent to the PWM. Exactly one of
// them carries the scaled value.
func Duty(brightness float64, pullUp bool) (on, off gpio.Duty) {
	d := gpio.Duty(math.Round(brightness * float64(MaxDuty)))
	if pullUp {
		return d, 0
	}
	return 0, d
}

// ValidateChannel checks channel against a board of n outputs.
func ValidateChannel(channel, n int) error {
	if channel < 0 || channel >= n {
		return fmt.Errorf("%w: LED#%d is not between 0 and %d", ErrOutOfRange, channel, n-1)
	}
	return nil
}

func ValidateBrightness(brightness float64) error {
	if math.IsNaN(brightness) || brightness < 0 || brightness > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidBrightness, brightness)
	}
	return nil
}
