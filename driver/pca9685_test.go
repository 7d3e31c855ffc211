package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/ledtheatre/sink"
)

// Register traffic of pca9685.NewI2C: clear all outputs, totem pole, wake
// with auto-increment, then 50Hz (prescale 122).
func boardInit() []i2ctest.IO {
	return []i2ctest.IO{
		{Addr: DefaultAddr, W: []byte{0xFA, 0, 0, 0, 0}},
		{Addr: DefaultAddr, W: []byte{0x01, 0x04}},
		{Addr: DefaultAddr, W: []byte{0x00, 0x01}},
		{Addr: DefaultAddr, W: []byte{0x00}, R: []byte{0x11}},
		{Addr: DefaultAddr, W: []byte{0x00, 0x21}},
		{Addr: DefaultAddr, W: []byte{0x00}, R: []byte{0x21}},
		{Addr: DefaultAddr, W: []byte{0x00, 0x31}},
		{Addr: DefaultAddr, W: []byte{0xFE, 122}},
		{Addr: DefaultAddr, W: []byte{0x00, 0x21}},
		{Addr: DefaultAddr, W: []byte{0x00, 0xA1}},
	}
}

func TestPCA9685SourceDrive(t *testing.T) {
	bus := &i2ctest.Playback{Ops: append(boardInit(),
		// 1kHz: prescale 6
		i2ctest.IO{Addr: DefaultAddr, W: []byte{0x00}, R: []byte{0x21}},
		i2ctest.IO{Addr: DefaultAddr, W: []byte{0x00, 0x31}},
		i2ctest.IO{Addr: DefaultAddr, W: []byte{0xFE, 6}},
		i2ctest.IO{Addr: DefaultAddr, W: []byte{0x00, 0x21}},
		i2ctest.IO{Addr: DefaultAddr, W: []byte{0x00, 0xA1}},
		// LED0 on=0 off=0x800
		i2ctest.IO{Addr: DefaultAddr, W: []byte{0x06, 0x00, 0x00, 0x00, 0x08}},
	)}
	p, err := newPCA9685(bus, 0, physic.KiloHertz)
	require.NoError(t, err)
	assert.Equal(t, "pca9685(playback,0x40)", p.String())

	out := sink.New(sink.DefaultChannels)
	out.Init(p, false)
	_, err = out.Set(0, 0.5)
	require.NoError(t, err)

	require.NoError(t, p.Close())
}

func TestPCA9685PullUp(t *testing.T) {
	bus := &i2ctest.Playback{Ops: append(boardInit(),
		// LED3 on=0xFFF off=0
		i2ctest.IO{Addr: DefaultAddr, W: []byte{0x12, 0xFF, 0x0F, 0x00, 0x00}},
	)}
	p, err := newPCA9685(bus, DefaultAddr, 0)
	require.NoError(t, err)

	out := sink.New(sink.DefaultChannels)
	out.Init(p, true)
	_, err = out.Set(3, 1)
	require.NoError(t, err)

	// The board has no output 16; nothing reaches the bus.
	assert.Error(t, p.SetPwm(16, 0, 1))

	require.NoError(t, p.Close())
	assert.Error(t, p.SetPwm(3, 0, 0))
}

func TestPCA9685InitFailure(t *testing.T) {
	bus := &i2ctest.Playback{DontPanic: true}
	_, err := newPCA9685(bus, DefaultAddr, 0)
	assert.Error(t, err)
}
