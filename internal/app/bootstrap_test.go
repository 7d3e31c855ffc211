package app

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/ledtheatre/config"
	"github.com/coreman2200/ledtheatre/driver/fake"
	"github.com/coreman2200/ledtheatre/sink"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func stubPCA9685(t *testing.T, drv sink.Driver, err error) *bool {
	t.Helper()
	closed := new(bool)
	prev := openPCA9685
	openPCA9685 = func(*config.Config) (sink.Driver, io.Closer, error) {
		if err != nil {
			return nil, nil, err
		}
		return drv, closerFunc(func() error { *closed = true; return nil }), nil
	}
	t.Cleanup(func() { openPCA9685 = prev })
	return closed
}

func TestInitCoreSim(t *testing.T) {
	c, err := InitCore(config.Default())
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, "sim", c.Driver)
	assert.True(t, c.Sink.Simulated())
	assert.Nil(t, c.Hub)
	assert.Equal(t, 16, c.Sink.Channels())
}

func TestInitCorePCA9685(t *testing.T) {
	rec := &fake.Driver{}
	closed := stubPCA9685(t, rec, nil)
	cfg := config.Default()
	cfg.Driver = "pca9685"
	cfg.PullUp = true
	c, err := InitCore(cfg)
	require.NoError(t, err)

	assert.Equal(t, "pca9685", c.Driver)
	assert.False(t, c.Sink.Simulated())
	assert.Equal(t, 1.0, c.Sink.Default())

	require.NoError(t, c.Blackout(context.Background()))
	assert.Equal(t, 16, rec.Count())

	require.NoError(t, c.Close())
	assert.True(t, *closed)
}

func TestInitCoreFallsBackToSim(t *testing.T) {
	stubPCA9685(t, nil, errors.New("no i2c bus"))
	cfg := config.Default()
	cfg.Driver = "pca9685"
	c, err := InitCore(cfg)
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, "sim", c.Driver)
	assert.True(t, c.Sink.Simulated())
}

func TestInitCoreWithMonitor(t *testing.T) {
	cfg := config.Default()
	cfg.MonitorAddr = "127.0.0.1:0"
	c, err := InitCore(cfg)
	require.NoError(t, err)
	require.NotNil(t, c.Hub)
	assert.NoError(t, c.Close())
}

func TestInitCoreRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Channels = -1
	_, err := InitCore(cfg)
	assert.Error(t, err)

	rec := &fake.Driver{}
	stubPCA9685(t, rec, nil)
	cfg = config.Default()
	cfg.Driver = "pca9685"
	cfg.Channels = 32
	_, err = InitCore(cfg)
	assert.Error(t, err)
	assert.Zero(t, rec.Count())
}
