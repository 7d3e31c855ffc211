package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/ledtheatre/sink"
)

type I2C struct {
	Bus    string `yaml:"bus"`     // e.g. "" for the first bus, "/dev/i2c-1" or "1"
	Addr   uint16 `yaml:"addr"`    // PCA9685 address, 0x40 by default
	FreqHz int    `yaml:"freq_hz"` // PWM frequency, 0 keeps the board default
}

type Config struct {
	Driver    string `yaml:"driver"`   // "pca9685" | "screen" | "sim"
	PullUp    bool   `yaml:"pull_up"`  // LED anode on VCC, PWM pin sinks current
	Channels  int    `yaml:"channels"` // addressable PWM outputs
	QuantumMs int    `yaml:"quantum_ms"`
	LogLevel  string `yaml:"log_level"`
	// MonitorAddr enables the websocket monitor when set, e.g. ":8080".
	MonitorAddr string `yaml:"monitor_addr,omitempty"`

	I2C I2C `yaml:"i2c"`
}

// Default returns the settings used when no file is present.
func Default() *Config {
	return &Config{
		Driver:    "sim",
		Channels:  16,
		QuantumMs: 50,
		LogLevel:  "info",
		I2C:       I2C{Addr: 0x40},
	}
}

// Load reads path on top of Default.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func (c *Config) Validate() error {
	switch c.Driver {
	case "pca9685", "screen", "sim":
	default:
		return fmt.Errorf("unknown driver %q", c.Driver)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("channels must be positive, got %d", c.Channels)
	}
	if c.Driver == "pca9685" && c.Channels > sink.DefaultChannels {
		return fmt.Errorf("pca9685 has %d outputs, got channels %d", sink.DefaultChannels, c.Channels)
	}
	if c.QuantumMs < 0 {
		return fmt.Errorf("quantum_ms must not be negative, got %d", c.QuantumMs)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func (c *Config) Quantum() time.Duration {
	return time.Duration(c.QuantumMs) * time.Millisecond
}

func (c *Config) Level() zerolog.Level {
	l, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return l
}

func (c *Config) PWMFrequency() physic.Frequency {
	return physic.Frequency(c.I2C.FreqHz) * physic.Hertz
}
