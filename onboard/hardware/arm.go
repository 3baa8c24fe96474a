package hardware

import (
	"context"
	"sync"
)

// Servo is one joint of the arm. It remembers the last angle commanded to it; there is no
// position feedback from the hardware.
type Servo struct {
	Channel
	window RegisterWindow

	motion sync.Mutex // held for the whole of a motion
	state  sync.Mutex // guards everything below
	angle  int
	gen    uint64
	cancel context.CancelFunc
}

// Write stores a raw value in the servo register.
func (s *Servo) Write(value uint32) error {
	return s.window.Write32(s.Offset, value)
}

// Angle returns the last commanded angle in degrees.
func (s *Servo) Angle() int {
	s.state.Lock()
	defer s.state.Unlock()

	return s.angle
}

func (s *Servo) SetAngle(angle int) {
	s.state.Lock()
	s.angle = angle
	s.state.Unlock()
}

// Claim takes exclusive ownership of the servo for one motion. Any motion still in flight is
// cancelled and Claim waits for it to give the servo up. The returned context is cancelled
// when ctx is, or when a later Claim supersedes this one. release must always be called.
func (s *Servo) Claim(ctx context.Context) (mctx context.Context, release func()) {
	s.state.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	mctx, cancel := context.WithCancel(ctx)
	s.gen++
	gen := s.gen
	s.cancel = cancel
	s.state.Unlock()

	s.motion.Lock()

	release = func() {
		s.motion.Unlock()

		s.state.Lock()
		if s.gen == gen {
			s.cancel = nil
		}
		s.state.Unlock()
		cancel()
	}
	return
}

// Arm owns the register window and the servos behind it. There is exactly one per process
// and it is handed to whatever needs to move a joint.
type Arm struct {
	window RegisterWindow
	table  ChannelTable
	servos [NUM_CHANNELS]*Servo
}

// NewArm wraps an open window. The last commanded angle of every servo starts at its home
// angle; nothing is written until a profiler moves it.
func NewArm(window RegisterWindow, table ChannelTable) *Arm {
	a := &Arm{
		window: window,
		table:  table,
	}

	for i, c := range table {
		a.servos[i] = &Servo{
			Channel: c,
			window:  window,
			angle:   c.Home,
		}
	}

	return a
}

// Servo looks up a joint by its 1 based channel id.
func (a *Arm) Servo(id int) (*Servo, error) {
	if _, err := a.table.Lookup(id); err != nil {
		return nil, err
	}

	return a.servos[id-1], nil
}

func (a *Arm) Servos() []*Servo {
	return a.servos[:]
}

func (a *Arm) Channels() ChannelTable {
	return a.table
}

// Angles returns the last commanded angle of every joint, in channel order.
func (a *Arm) Angles() (angles [NUM_CHANNELS]int) {
	for i, s := range a.servos {
		angles[i] = s.Angle()
	}
	return
}

func (a *Arm) Window() RegisterWindow {
	return a.window
}

// Close releases the register window. The arm must not be used afterwards.
func (a *Arm) Close() error {
	return a.window.Close()
}
