package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledtheatre/config"
	"github.com/coreman2200/ledtheatre/driver"
	"github.com/coreman2200/ledtheatre/internal/monitor"
	"github.com/coreman2200/ledtheatre/sequence"
	"github.com/coreman2200/ledtheatre/sink"
)

// Core is the wired runtime: sink, its driver and the optional monitor.
type Core struct {
	Cfg    *config.Config
	Sink   *sink.Sink
	Hub    *monitor.Hub
	Driver string // driver actually in use

	closer io.Closer
	srv    *http.Server
}

// opener lets tests replace hardware access.
var openPCA9685 = func(cfg *config.Config) (sink.Driver, io.Closer, error) {
	d, err := driver.OpenPCA9685(cfg.I2C.Bus, cfg.I2C.Addr, cfg.PWMFrequency())
	if err != nil {
		return nil, nil, err
	}
	return d, d, nil
}

// InitCore selects the driver named in cfg, falling back to simulation when
// the hardware cannot be opened, and starts the monitor when configured.
func InitCore(cfg *config.Config) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Core{Cfg: cfg, Sink: sink.New(cfg.Channels), Driver: cfg.Driver}

	var drv sink.Driver
	switch cfg.Driver {
	case "pca9685":
		d, closer, err := openPCA9685(cfg)
		if err != nil {
			log.Warn().Err(err).
				Str("driver", "pca9685").
				Str("bus", cfg.I2C.Bus).
				Msg("PCA9685 init failed; falling back to SIM")
			c.Driver = "sim"
		} else {
			drv, c.closer = d, closer
		}
	case "screen":
		drv = driver.NewScreen(cfg.Channels)
	}
	c.Sink.Init(drv, cfg.PullUp)

	if cfg.MonitorAddr != "" {
		c.Hub = monitor.New(c.Sink, c.Driver)
		mux := http.NewServeMux()
		c.Hub.Routes(mux)
		c.srv = &http.Server{
			Addr:         cfg.MonitorAddr,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			log.Info().Str("addr", cfg.MonitorAddr).Str("driver", c.Driver).Msg("monitor starting")
			if err := c.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("monitor stopped")
			}
		}()
	}
	return c, nil
}

// Options are the sequence options derived from the config.
func (c *Core) Options() []sequence.Option {
	return []sequence.Option{
		sequence.WithQuantum(c.Cfg.Quantum()),
		sequence.WithLogger(log.Logger),
	}
}

// Blackout switches every channel off, honouring polarity.
func (c *Core) Blackout(ctx context.Context) error {
	all := make([]int, c.Sink.Channels())
	for i := range all {
		all[i] = i
	}
	off, err := sequence.Fill(c.Sink, all, 0, c.Options()...)
	if err != nil {
		return err
	}
	return off.Execute(ctx, 1)
}

func (c *Core) Close() error {
	var errs []error
	if c.Hub != nil {
		c.Hub.Close()
	}
	if c.srv != nil {
		errs = append(errs, c.srv.Close())
	}
	if c.closer != nil {
		if err := c.closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close driver: %w", err))
		}
	}
	return errors.Join(errs...)
}
