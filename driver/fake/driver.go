package fake

import (
	"fmt"
	"io"
	"sync"

	"periph.io/x/conn/v3/gpio"
)

// Call is one SetPwm invocation.
type Call struct {
	Channel int
	On, Off gpio.Duty
}

// Driver records every duty command and optionally prints a compact line per
// command, useful for headless tests and dry runs.
type Driver struct {
	Out io.Writer
	// Err, when set, is returned from SetPwm and the call is not recorded.
	Err error

	mu    sync.Mutex
	calls []Call
}

func (d *Driver) SetPwm(channel int, on, off gpio.Duty) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	d.calls = append(d.calls, Call{Channel: channel, On: on, Off: off})
	if d.Out != nil {
		fmt.Fprintf(d.Out, "[pwm %04d] LED#%d on=%d off=%d\n", len(d.calls), channel, on, off)
	}
	return nil
}

// Calls returns a copy of the recorded commands.
func (d *Driver) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Call(nil), d.calls...)
}

// Count is the number of recorded commands.
func (d *Driver) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

// Channel returns the recorded commands for one channel, in order.
func (d *Driver) Channel(ch int) []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []Call
	for _, c := range d.calls {
		if c.Channel == ch {
			out = append(out, c)
		}
	}
	return out
}

func (d *Driver) Reset() {
	d.mu.Lock()
	d.calls = nil
	d.mu.Unlock()
}
