package driver

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/extra/devices/screen"

	"github.com/coreman2200/ledtheatre/sink"
)

type drawer interface {
	Bounds() image.Rectangle
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
}

var _ drawer = (*screen.Dev)(nil)

// Screen previews channel levels as a strip of grey pixels on the terminal,
// one pixel per channel.
type Screen struct {
	mu     sync.Mutex
	d      drawer
	levels []gpio.Duty
}

func NewScreen(channels int) *Screen {
	if channels <= 0 {
		channels = sink.DefaultChannels
	}
	return newScreen(screen.New(channels), channels)
}

func newScreen(d drawer, channels int) *Screen {
	return &Screen{d: d, levels: make([]gpio.Duty, channels)}
}

// SetPwm redraws the strip. Exactly one of on/off carries the duty, whichever
// polarity the sink uses.
func (s *Screen) SetPwm(channel int, on, off gpio.Duty) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if channel < 0 || channel >= len(s.levels) {
		return fmt.Errorf("screen: channel %d out of range", channel)
	}
	level := on
	if off > level {
		level = off
	}
	s.levels[channel] = level
	return s.d.Draw(s.d.Bounds(), s.image(), image.Point{})
}

func (s *Screen) image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, len(s.levels), 1))
	for i, l := range s.levels {
		img.SetGray(i, 0, color.Gray{Y: uint8(int(l) * 255 / int(sink.MaxDuty))})
	}
	return img
}
