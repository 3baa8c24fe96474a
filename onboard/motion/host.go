package motion

import (
	"context"
	"fmt"
	"math/bits"
	"time"

	deverr "github.com/CodedInternet/wiiarm/onboard/errors"
	"github.com/CodedInternet/wiiarm/onboard/hardware"
)

const (
	DUTY_SCALE  = 10
	DUTY_OFFSET = 600
)

// Duty converts an angle in degrees into the servo pulse width value.
func Duty(angle int) int {
	return DUTY_SCALE*angle + DUTY_OFFSET
}

// AngleOf is the inverse of Duty, truncated to whole degrees.
func AngleOf(duty int) int {
	return (duty - DUTY_OFFSET) / DUTY_SCALE
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Ramp is the duty cycle sequence of one host timed move. Steps are worked out on demand so
// the length of a move costs time, not memory.
//
// The number of periods is |to-from| * stepRate / speed. Step i carries
// Duty(from) + i*(Duty(to)-Duty(from))/steps and the last step is exactly Duty(to). A move
// that changes angle always has at least two steps and never more steps than duty units,
// so the sequence starts at Duty(from) and is strictly monotonic. When there are fewer
// steps than periods each step is held for Stretch quanta, keeping the move as long as
// |to-from| / speed.
type Ramp struct {
	start, end int
	span, sign int
	steps      int
	periods    int
}

func NewRamp(from, to, speed, stepRate int) (r Ramp, err error) {
	if speed <= 0 {
		return r, deverr.MotionError{Reason: fmt.Sprintf("speed %d must be positive", speed)}
	}
	if stepRate <= 0 {
		return r, deverr.MotionError{Reason: fmt.Sprintf("step rate %d must be positive", stepRate)}
	}
	if from == to {
		return
	}

	r.start, r.end = Duty(from), Duty(to)
	r.span = abs(r.end - r.start)
	r.sign = 1
	if r.end < r.start {
		r.sign = -1
	}

	r.periods = abs(to-from) * stepRate / speed
	r.steps = r.periods
	if r.steps < 2 {
		r.steps = 2
	}
	if r.steps > r.span {
		r.steps = r.span
	}
	return
}

// Len is the number of register writes in the ramp, zero for a move to the same angle.
func (r Ramp) Len() int {
	return r.steps
}

// Step returns the duty cycle of step i, 0 <= i < Len.
func (r Ramp) Step(i int) int {
	if i >= r.steps-1 {
		return r.end
	}

	// i*span can overflow for absurd angles, the quotient never does since i < steps
	hi, lo := bits.Mul64(uint64(i), uint64(r.span))
	q, _ := bits.Div64(hi, lo, uint64(r.steps))
	return r.start + r.sign*int(q)
}

// Stretch is how many quanta each step is held for, never less than one.
func (r Ramp) Stretch() float64 {
	if r.steps == 0 || r.periods <= r.steps {
		return 1
	}
	return float64(r.periods) / float64(r.steps)
}

// Profile returns every duty cycle value of a host timed move, one per step.
func Profile(from, to, speed, stepRate int) (steps []int, err error) {
	r, err := NewRamp(from, to, speed, stepRate)
	if err != nil || r.Len() == 0 {
		return
	}

	steps = make([]int, r.Len())
	for i := range steps {
		steps[i] = r.Step(i)
	}
	return
}

// HostTimed ramps a joint by writing every step itself and waiting Quantum between steps.
// A Quantum of zero writes the steps back to back.
type HostTimed struct {
	Arm      *hardware.Arm
	StepRate int
	Quantum  time.Duration
}

// Move blocks until the ramp is complete. It returns ERR_MOTION_ABORTED if ctx is cancelled
// or another motion on the same joint supersedes it; the joint then keeps the angle of the
// last step written.
func (h *HostTimed) Move(ctx context.Context, cmd Command) (err error) {
	if err = cmd.Validate(); err != nil {
		return
	}
	servo, err := h.Arm.Servo(cmd.Channel)
	if err != nil {
		return
	}

	ramp, err := NewRamp(cmd.From, cmd.To, cmd.Speed, h.StepRate)
	if err != nil {
		if me, ok := err.(deverr.MotionError); ok {
			me.Channel = cmd.Channel
			err = me
		}
		return
	}
	if ramp.Len() == 0 {
		return nil
	}

	mctx, release := servo.Claim(ctx)
	defer release()

	wait := time.Duration(float64(h.Quantum) * ramp.Stretch())
	for i := 0; i < ramp.Len(); i++ {
		if mctx.Err() != nil {
			if i > 0 {
				servo.SetAngle(AngleOf(ramp.Step(i - 1)))
			}
			return ERR_MOTION_ABORTED
		}

		if err = servo.Write(uint32(ramp.Step(i))); err != nil {
			return
		}

		if wait > 0 {
			select {
			case <-mctx.Done():
			case <-time.After(wait):
			}
		}
	}

	servo.SetAngle(cmd.To)
	return nil
}

// Snap writes the duty cycle for angle in a single store.
func (h *HostTimed) Snap(ctx context.Context, channel, angle, _ int) (err error) {
	servo, err := h.Arm.Servo(channel)
	if err != nil {
		return
	}

	mctx, release := servo.Claim(ctx)
	defer release()
	if mctx.Err() != nil {
		return ERR_MOTION_ABORTED
	}

	if err = servo.Write(uint32(Duty(angle))); err != nil {
		return
	}
	servo.SetAngle(angle)
	return
}
