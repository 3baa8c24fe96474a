package input

import (
	"errors"
)

const (
	BUTTON_DEVICE = "/dev/input/event2"
	ACCEL_DEVICE  = "/dev/input/event0"
)

var (
	ERR_WOULD_BLOCK = errors.New("no data available on non-blocking stream")
)

// Stream is a packet oriented event source. Non-blocking streams return ERR_WOULD_BLOCK (or a
// short read) instead of waiting for data.
type Stream interface {
	Read(p []byte) (n int, err error)
	Close() error
	Blocking() bool
	Name() string
}

// Wiimote is the pair of event streams of one controller.
type Wiimote struct {
	Buttons *ButtonDecoder
	Accel   *AccelDecoder
}

// OpenWiimote opens the button stream non-blocking and the accelerometer stream blocking.
func OpenWiimote(buttonPath, accelPath string) (w *Wiimote, err error) {
	buttons, err := OpenStream(buttonPath, false)
	if err != nil {
		return
	}

	accel, err := OpenStream(accelPath, true)
	if err != nil {
		buttons.Close()
		return
	}

	return NewWiimote(buttons, accel), nil
}

func NewWiimote(buttons, accel Stream) *Wiimote {
	return &Wiimote{
		Buttons: NewButtonDecoder(buttons),
		Accel:   NewAccelDecoder(accel),
	}
}

func (w *Wiimote) Close() error {
	aerr := w.Accel.Close()
	berr := w.Buttons.Close()
	if aerr != nil {
		return aerr
	}
	return berr
}
