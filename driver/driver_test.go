package driver

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/ledtheatre/driver/fake"
	"github.com/coreman2200/ledtheatre/sink"
)

type recordingDrawer struct {
	frames []*image.Gray
	err    error
}

func (d *recordingDrawer) Bounds() image.Rectangle { return image.Rect(0, 0, 4, 1) }

func (d *recordingDrawer) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	if d.err != nil {
		return d.err
	}
	d.frames = append(d.frames, src.(*image.Gray))
	return nil
}

func TestScreenDrawsLevels(t *testing.T) {
	d := &recordingDrawer{}
	s := newScreen(d, 4)

	require.NoError(t, s.SetPwm(1, 0, 4095))
	require.NoError(t, s.SetPwm(3, 4095, 0))
	require.NoError(t, s.SetPwm(2, 0, 2048))

	require.Len(t, d.frames, 3)
	last := d.frames[2]
	assert.Equal(t, color.Gray{Y: 0}, last.GrayAt(0, 0))
	assert.Equal(t, color.Gray{Y: 255}, last.GrayAt(1, 0))
	assert.Equal(t, color.Gray{Y: 127}, last.GrayAt(2, 0))
	assert.Equal(t, color.Gray{Y: 255}, last.GrayAt(3, 0))

	assert.Error(t, s.SetPwm(4, 0, 1))
	d.err = errors.New("tty closed")
	assert.Error(t, s.SetPwm(0, 0, 1))
}

func TestNewScreenDrawsOnTerminal(t *testing.T) {
	s := NewScreen(4)
	require.NoError(t, s.SetPwm(0, 0, 4095))
	assert.Error(t, s.SetPwm(4, 0, 1))
}

func TestScreenAsSinkDriver(t *testing.T) {
	d := &recordingDrawer{}
	out := sink.New(4)
	out.Init(newScreen(d, 4), true)
	_, err := out.Set(0, 1)
	require.NoError(t, err)
	assert.Equal(t, color.Gray{Y: 255}, d.frames[0].GrayAt(0, 0))
}

func TestPCA9685Forwards(t *testing.T) {
	rec := &fake.Driver{}
	p := NewPCA9685(rec)
	require.NoError(t, p.SetPwm(7, 0, 1234))
	assert.Equal(t, []fake.Call{{Channel: 7, On: 0, Off: 1234}}, rec.Calls())
	assert.Equal(t, "pca9685", p.String())

	require.NoError(t, p.Close())
	assert.Error(t, p.SetPwm(7, 0, 1))
	assert.NoError(t, p.Close())
}
