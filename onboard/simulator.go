package onboard

import (
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/CodedInternet/wiiarm/onboard/input"
)

const (
	ACCEL_DELTA    = 25
	ACCEL_LIMIT    = 500
	ACCEL_INTERVAL = time.Second / 100

	PRESS_INTERVAL = time.Second
	PRESS_QUEUE    = 16
)

// the driver reports X, Y and Z then a sync packet with code 0
var simulatedAxes = []input.Axis{input.AXIS_X, input.AXIS_Y, input.AXIS_Z, input.AXIS_NONE}

// SimulatedAccel is a blocking accelerometer stream that drifts randomly.
type SimulatedAccel struct {
	lock     sync.Mutex
	values   [3]int16
	next     int
	interval time.Duration
	closed   chan struct{}
	once     sync.Once
}

func NewSimulatedAccel(interval time.Duration) *SimulatedAccel {
	return &SimulatedAccel{
		interval: interval,
		closed:   make(chan struct{}),
	}
}

func (s *SimulatedAccel) Read(p []byte) (int, error) {
	select {
	case <-s.closed:
		return 0, io.EOF
	case <-time.After(s.interval):
	}

	s.lock.Lock()
	axis := simulatedAxes[s.next]
	s.next = (s.next + 1) % len(simulatedAxes)

	var ev input.AccelEvent
	ev.Axis = axis
	if axis != input.AXIS_NONE {
		i := int(axis - input.AXIS_X)
		s.values[i] = drift(s.values[i])
		ev.Value = s.values[i]
	}
	s.lock.Unlock()

	return copy(p, input.AccelPacket(ev)), nil
}

func drift(val int16) int16 {
	v := int(val) + rand.Intn(ACCEL_DELTA*2+1) - ACCEL_DELTA
	if v > ACCEL_LIMIT {
		v = ACCEL_LIMIT
	}
	if v < -ACCEL_LIMIT {
		v = -ACCEL_LIMIT
	}
	return int16(v)
}

func (s *SimulatedAccel) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

func (s *SimulatedAccel) Blocking() bool { return true }
func (s *SimulatedAccel) Name() string   { return "sim:accel" }

// SimulatedButtons is a non-blocking button stream. Presses are queued with Press, and
// optionally generated at random by Update.
type SimulatedButtons struct {
	queue  chan []byte
	closed chan struct{}
	once   sync.Once
}

func NewSimulatedButtons() *SimulatedButtons {
	return &SimulatedButtons{
		queue:  make(chan []byte, PRESS_QUEUE),
		closed: make(chan struct{}),
	}
}

// Press queues a button report. It never blocks; reports beyond the queue are dropped, as the
// kernel does when nobody reads the device.
func (s *SimulatedButtons) Press(ev input.ButtonEvent) {
	select {
	case s.queue <- input.ButtonPacket(ev):
	default:
	}
}

func (s *SimulatedButtons) Read(p []byte) (int, error) {
	select {
	case <-s.closed:
		return 0, io.EOF
	case pkt := <-s.queue:
		return copy(p, pkt), nil
	default:
		return 0, input.ERR_WOULD_BLOCK
	}
}

// Update presses a random joint button every interval until the stream is closed.
func (s *SimulatedButtons) Update(interval time.Duration) {
	buttons := make([]input.Button, 0, len(jointButtons))
	for b := range jointButtons {
		buttons = append(buttons, b)
	}

	for {
		select {
		case <-s.closed:
			return
		case <-time.After(interval):
			s.Press(input.ButtonEvent{Code: buttons[rand.Intn(len(buttons))], Value: 1})
		}
	}
}

func (s *SimulatedButtons) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

func (s *SimulatedButtons) Blocking() bool { return false }
func (s *SimulatedButtons) Name() string   { return "sim:buttons" }

// NewSimulatedWiimote returns a controller backed by simulated streams, plus the button
// stream so callers can press keys on it.
func NewSimulatedWiimote(autoPress bool) (*input.Wiimote, *SimulatedButtons) {
	buttons := NewSimulatedButtons()
	if autoPress {
		go buttons.Update(PRESS_INTERVAL)
	}

	return input.NewWiimote(buttons, NewSimulatedAccel(ACCEL_INTERVAL)), buttons
}
