package driver

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/pca9685"
	"periph.io/x/host/v3"

	"github.com/coreman2200/ledtheatre/sink"
)

// DefaultAddr is the PCA9685 address with no solder jumpers set.
const DefaultAddr uint16 = 0x40

// PCA9685 drives a PCA9685 16-channel PWM board over I²C.
type PCA9685 struct {
	mu   sync.Mutex
	dev  sink.Driver
	bus  i2c.BusCloser
	name string
}

// OpenPCA9685 initialises the host, opens the I²C bus (empty name picks the
// first one) and configures the board. freq of 0 keeps the board default.
func OpenPCA9685(busName string, addr uint16, freq physic.Frequency) (*PCA9685, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", busName, err)
	}
	return newPCA9685(bus, addr, freq)
}

// newPCA9685 configures the board on an open bus and takes ownership of it;
// the bus is closed on failure.
func newPCA9685(bus i2c.BusCloser, addr uint16, freq physic.Frequency) (*PCA9685, error) {
	if addr == 0 {
		addr = DefaultAddr
	}
	dev, err := pca9685.NewI2C(bus, addr)
	if err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("pca9685 at %#x: %w", addr, err)
	}
	if freq > 0 {
		if err := dev.SetPwmFreq(freq); err != nil {
			_ = bus.Close()
			return nil, fmt.Errorf("pca9685 set frequency %s: %w", freq, err)
		}
	}
	log.Info().Str("bus", bus.String()).Str("addr", fmt.Sprintf("%#x", addr)).Msg("PCA9685 ready")
	return &PCA9685{dev: dev, bus: bus, name: fmt.Sprintf("pca9685(%s,%#x)", bus, addr)}, nil
}

// NewPCA9685 wraps an already configured device, e.g. one opened on a test bus.
func NewPCA9685(dev sink.Driver) *PCA9685 {
	return &PCA9685{dev: dev, name: "pca9685"}
}

func (p *PCA9685) SetPwm(channel int, on, off gpio.Duty) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dev == nil {
		return fmt.Errorf("%s: closed", p.name)
	}
	return p.dev.SetPwm(channel, on, off)
}

// Close releases the bus. Outputs keep their last duty; switch LEDs off
// through the sink first so polarity is respected.
func (p *PCA9685) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dev = nil
	if p.bus == nil {
		return nil
	}
	err := p.bus.Close()
	p.bus = nil
	return err
}

func (p *PCA9685) String() string { return p.name }
