package onboard

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/CodedInternet/wiiarm/onboard/hardware"
	"github.com/CodedInternet/wiiarm/onboard/input"
	"github.com/CodedInternet/wiiarm/onboard/motion"
)

const (
	// tilt to angle mapping: angle += magnitude * 18 / 1000 + 150
	TILT_GAIN_NUM = 18
	TILT_GAIN_DEN = 1000
	TILT_CENTER   = 150

	// consecutive accelerometer failures before the loop gives up
	ACCEL_MAX_FAILURES = 5
)

var (
	ERR_SESSION_RUNNING = errors.New("teleoperation is already running")
)

// joint selected while each button is held
var jointButtons = map[input.Button]int{
	input.BUTTON_A:    1,
	input.BUTTON_B:    2,
	input.BUTTON_ONE:  3,
	input.BUTTON_TWO:  4,
	input.BUTTON_DOWN: 5,
}

type ButtonSource interface {
	Poll() (input.ButtonEvent, input.ReadStatus, error)
}

type AccelSource interface {
	Next() (input.AccelEvent, input.ReadStatus, error)
}

// TargetAngle applies one accelerometer reading to the last commanded angle. The mapping
// accumulates: every qualifying reading moves the joint on from where it was sent last.
func TargetAngle(prev int, magnitude int16) int {
	return prev + (int(magnitude)*TILT_GAIN_NUM/TILT_GAIN_DEN + TILT_CENTER)
}

// Iteration records what one pass of the control loop saw and did.
type Iteration struct {
	Accel     input.AccelEvent
	Button    input.ButtonEvent
	Channel   int // 0 when no joint was selected
	Committed bool
	Target    int
}

// Teleop drives the arm from a Wii remote. Holding A, B, 1, 2 or DOWN selects a joint and
// tilting along X moves it. Pressing HOME ends the session.
type Teleop struct {
	Accel   AccelSource
	Buttons ButtonSource
	Arm     *hardware.Arm
	Motion  motion.Profiler
	Speed   int
	Log     *log.Logger

	accelFailures int
}

func NewTeleop(m *Manipulator, wiimote *input.Wiimote, speed int, logger *log.Logger) *Teleop {
	return &Teleop{
		Accel:   wiimote.Accel,
		Buttons: wiimote.Buttons,
		Arm:     m.Arm,
		Motion:  m.Motion,
		Speed:   speed,
		Log:     logger,
	}
}

// Run loops until HOME is seen, ctx is cancelled or a motion fails. Reaching HOME is a clean
// exit and returns nil.
func (t *Teleop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		it, err := t.Step(ctx)
		if err != nil {
			return err
		}

		if it.Button.Code == input.BUTTON_HOME {
			return nil
		}
	}
}

// Step runs one pass: wait for an accelerometer packet, poll the buttons, pick the joint and
// commit a move if the reading qualifies.
func (t *Teleop) Step(ctx context.Context) (it Iteration, err error) {
	accel, status, rerr := t.Accel.Next()
	if status == input.PacketFailed {
		t.accelFailures++
		t.logf("accelerometer: %v", rerr)
		if t.accelFailures >= ACCEL_MAX_FAILURES {
			return it, rerr
		}
	} else {
		t.accelFailures = 0
	}
	it.Accel = accel

	button, status, rerr := t.Buttons.Poll()
	if status == input.PacketFailed {
		t.logf("buttons: %v", rerr)
	}
	it.Button = button

	channel, selected := jointButtons[button.Code]
	if selected {
		it.Channel = channel
	}
	if !selected || accel.Axis != input.AXIS_X {
		return
	}

	servo, err := t.Arm.Servo(channel)
	if err != nil {
		return
	}

	prev := servo.Angle()
	it.Target = TargetAngle(prev, accel.Value)

	err = t.Motion.Move(ctx, motion.Command{
		Channel: channel,
		From:    prev,
		To:      it.Target,
		Speed:   t.Speed,
	})
	it.Committed = err == nil
	return
}

func (t *Teleop) logf(format string, args ...interface{}) {
	if t.Log != nil {
		t.Log.Printf(format, args...)
	}
}

// Session runs one Teleop at a time in the background.
type Session struct {
	lock   sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Start runs t until HOME, ctx or Stop ends it. finish is called from the session goroutine
// with the loop's error (nil for HOME or Stop) before the session counts as finished.
func (s *Session) Start(ctx context.Context, t *Teleop, finish func(err error)) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.running() {
		return ERR_SESSION_RUNNING
	}

	tctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel, s.done, s.err = cancel, done, nil

	go func() {
		defer close(done)
		defer cancel()

		err := t.Run(tctx)
		if errors.Is(err, context.Canceled) || err == motion.ERR_MOTION_ABORTED {
			err = nil
		}
		if finish != nil {
			finish(err)
		}

		s.lock.Lock()
		s.err = err
		s.lock.Unlock()
	}()
	return nil
}

func (s *Session) running() bool {
	if s.done == nil {
		return false
	}

	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

func (s *Session) Running() bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.running()
}

// Stop cancels the running loop and waits for it, finish included, to return. Once Stop
// returns the session no longer touches the arm.
func (s *Session) Stop() error {
	s.lock.Lock()
	cancel, done := s.cancel, s.done
	s.lock.Unlock()

	if done == nil {
		return nil
	}
	cancel()
	<-done

	s.lock.Lock()
	defer s.lock.Unlock()
	return s.err
}
