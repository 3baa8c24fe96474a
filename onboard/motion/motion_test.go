package motion

import (
	"context"
	"testing"
	"time"

	deverr "github.com/CodedInternet/wiiarm/onboard/errors"
	"github.com/CodedInternet/wiiarm/onboard/hardware"
	. "github.com/smartystreets/goconvey/convey"
)

func newTestArm() (*hardware.SimulatedWindow, *hardware.Arm) {
	w := hardware.NewSimulatedWindow(hardware.REG_WINDOW_LEN)
	return w, hardware.NewArm(w, hardware.DefaultChannels)
}

func strictlyMonotonic(steps []int, rising bool) bool {
	for i := 1; i < len(steps); i++ {
		if rising && steps[i] <= steps[i-1] {
			return false
		}
		if !rising && steps[i] >= steps[i-1] {
			return false
		}
	}
	return true
}

func TestProfile(t *testing.T) {
	Convey("duty cycle is linear in the angle", t, func() {
		So(Duty(0), ShouldEqual, 600)
		So(Duty(10), ShouldEqual, 700)
		So(Duty(180), ShouldEqual, 2400)
		So(AngleOf(Duty(123)), ShouldEqual, 123)
	})

	Convey("10 to 100 degrees at 36 deg/s", t, func() {
		steps, err := Profile(10, 100, 36, DEFAULT_STEP_RATE)
		So(err, ShouldBeNil)
		So(steps, ShouldHaveLength, 125)
		So(steps[0], ShouldEqual, 700)
		So(steps[124], ShouldEqual, 1600)
		So(steps[1], ShouldEqual, 707)
		So(strictlyMonotonic(steps, true), ShouldBeTrue)
	})

	Convey("every changing move starts and ends exactly", t, func() {
		for _, from := range []int{0, 17, 90, 150, 180} {
			for _, to := range []int{0, 3, 91, 149, 180, 250} {
				for _, speed := range []int{1, 7, 36, 90, 1000} {
					if from == to {
						continue
					}
					steps, err := Profile(from, to, speed, DEFAULT_STEP_RATE)
					So(err, ShouldBeNil)
					So(steps, ShouldNotBeEmpty)
					So(steps[0], ShouldEqual, Duty(from))
					So(steps[len(steps)-1], ShouldEqual, Duty(to))
					So(strictlyMonotonic(steps, to > from), ShouldBeTrue)
				}
			}
		}
	})

	Convey("a move to the same angle has no steps", t, func() {
		for _, speed := range []int{1, 50, 255} {
			steps, err := Profile(42, 42, speed, DEFAULT_STEP_RATE)
			So(err, ShouldBeNil)
			So(steps, ShouldBeEmpty)
		}
	})

	Convey("slow moves hold each step for longer", t, func() {
		r, err := NewRamp(0, 90, 1, DEFAULT_STEP_RATE)
		So(err, ShouldBeNil)
		So(r.Len(), ShouldEqual, 900)
		So(r.Stretch(), ShouldEqual, 5)

		r, _ = NewRamp(10, 100, 36, DEFAULT_STEP_RATE)
		So(r.Stretch(), ShouldEqual, 1)
	})

	Convey("out of range targets are worked out without building the sequence", t, func() {
		r, err := NewRamp(0, 1000000000, 1, DEFAULT_STEP_RATE)
		So(err, ShouldBeNil)
		So(r.Len(), ShouldEqual, 10000000000)
		So(r.Step(0), ShouldEqual, Duty(0))
		So(r.Step(r.Len()/2), ShouldEqual, Duty(0)+5000000000)
		So(r.Step(r.Len()-2), ShouldBeLessThan, r.Step(r.Len()-1))
		So(r.Step(r.Len()-1), ShouldEqual, Duty(1000000000))
	})

	Convey("non positive speed is rejected", t, func() {
		for _, speed := range []int{0, -1, -90} {
			steps, err := Profile(10, 100, speed, DEFAULT_STEP_RATE)
			So(err, ShouldHaveSameTypeAs, deverr.MotionError{})
			So(steps, ShouldBeNil)
		}

		_, err := Profile(10, 100, 10, 0)
		So(err, ShouldHaveSameTypeAs, deverr.MotionError{})
	})
}

func TestHostTimed(t *testing.T) {
	Convey("host timed moves write every step", t, func() {
		w, arm := newTestArm()
		h := &HostTimed{Arm: arm, StepRate: DEFAULT_STEP_RATE}

		err := h.Move(context.Background(), Command{Channel: 2, From: 10, To: 100, Speed: 36})
		So(err, ShouldBeNil)

		writes := w.WritesAt(0x104)
		So(writes, ShouldHaveLength, 125)
		So(writes[0], ShouldEqual, 700)
		So(writes[124], ShouldEqual, 1600)
		So(w.Writes(), ShouldHaveLength, 125)

		s, _ := arm.Servo(2)
		So(s.Angle(), ShouldEqual, 100)

		Convey("no-op moves write nothing", func() {
			w.Reset()
			err := h.Move(context.Background(), Command{Channel: 2, From: 100, To: 100, Speed: 5})
			So(err, ShouldBeNil)
			So(w.Writes(), ShouldBeEmpty)
		})

		Convey("invalid commands never touch a register", func() {
			w.Reset()
			err := h.Move(context.Background(), Command{Channel: 2, From: 10, To: 100, Speed: 0})
			So(err, ShouldResemble, deverr.MotionError{Channel: 2, Reason: "speed 0 must be positive"})

			err = h.Move(context.Background(), Command{Channel: 9, From: 10, To: 100, Speed: 10})
			So(err, ShouldResemble, deverr.ChannelError{ID: 9})
			So(w.Writes(), ShouldBeEmpty)
		})

		Convey("snap writes the duty once", func() {
			w.Reset()
			So(h.Snap(context.Background(), 5, 150, 100), ShouldBeNil)
			So(w.Writes(), ShouldResemble, []hardware.RegisterWrite{{Offset: 0x110, Value: 2100}})
		})
	})

	Convey("the quantum paces the ramp", t, func() {
		_, arm := newTestArm()
		h := &HostTimed{Arm: arm, StepRate: DEFAULT_STEP_RATE, Quantum: 2 * time.Millisecond}

		start := time.Now()
		// 10 steps
		So(h.Move(context.Background(), Command{Channel: 1, From: 0, To: 10, Speed: 50}), ShouldBeNil)
		So(time.Since(start), ShouldBeGreaterThanOrEqualTo, 20*time.Millisecond)
	})

	Convey("slow ramps keep their duration", t, func() {
		_, arm := newTestArm()
		h := &HostTimed{Arm: arm, StepRate: DEFAULT_STEP_RATE, Quantum: time.Millisecond}

		start := time.Now()
		// 50 periods squeezed into 10 steps of 5ms
		So(h.Move(context.Background(), Command{Channel: 1, From: 0, To: 1, Speed: 1}), ShouldBeNil)
		So(time.Since(start), ShouldBeGreaterThanOrEqualTo, 50*time.Millisecond)
	})

	Convey("ramps can be aborted", t, func() {
		w, arm := newTestArm()
		h := &HostTimed{Arm: arm, StepRate: DEFAULT_STEP_RATE, Quantum: time.Millisecond}

		Convey("by cancelling the context", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
			defer cancel()

			// 9000 steps, roughly 9 seconds
			err := h.Move(ctx, Command{Channel: 4, From: 0, To: 180, Speed: 1})
			So(err, ShouldEqual, ERR_MOTION_ABORTED)

			writes := w.WritesAt(0x10C)
			So(len(writes), ShouldBeLessThan, 9000)
			s, _ := arm.Servo(4)
			So(s.Angle(), ShouldEqual, AngleOf(int(writes[len(writes)-1])))
		})

		Convey("even when the target is absurdly far away", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
			defer cancel()

			err := h.Move(ctx, Command{Channel: 1, From: 0, To: 1000000000, Speed: 1})
			So(err, ShouldEqual, ERR_MOTION_ABORTED)
			So(w.WritesAt(0x100), ShouldNotBeEmpty)
		})

		Convey("before the first step when the context is already done", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			So(h.Move(ctx, Command{Channel: 1, From: 0, To: 90, Speed: 10}), ShouldEqual, ERR_MOTION_ABORTED)
			So(h.Snap(ctx, 1, 90, 10), ShouldEqual, ERR_MOTION_ABORTED)
			So(w.Writes(), ShouldBeEmpty)
			s, _ := arm.Servo(1)
			So(s.Angle(), ShouldEqual, hardware.DEFAULT_HOME)
		})

		Convey("by a newer move on the same joint", func() {
			result := make(chan error)
			go func() {
				result <- h.Move(context.Background(), Command{Channel: 3, From: 0, To: 180, Speed: 1})
			}()
			time.Sleep(5 * time.Millisecond)

			d := &DeviceTimed{Arm: arm}
			So(d.Move(context.Background(), Command{Channel: 3, From: 0, To: 90, Speed: 20}), ShouldBeNil)
			So(<-result, ShouldEqual, ERR_MOTION_ABORTED)

			writes := w.WritesAt(0x108)
			So(writes[len(writes)-1], ShouldEqual, Pack(90, 20))
			s, _ := arm.Servo(3)
			So(s.Angle(), ShouldEqual, 90)
		})
	})
}

func TestDeviceTimed(t *testing.T) {
	Convey("packing puts position low and speed above it", t, func() {
		So(Pack(150, 100), ShouldEqual, uint32(100<<8|150))
		So(Pack(0x1FF, 10), ShouldEqual, uint32(10<<8|0xFF))
		So(Pack(180, 255)&0xFFFF0000, ShouldEqual, 0)
	})

	Convey("device timed moves are a single write", t, func() {
		w, arm := newTestArm()
		d := &DeviceTimed{Arm: arm}

		So(d.Move(context.Background(), Command{Channel: 1, From: 150, To: 60, Speed: 10}), ShouldBeNil)
		So(w.Writes(), ShouldResemble, []hardware.RegisterWrite{{Offset: 0x100, Value: Pack(60, 10)}})

		s, _ := arm.Servo(1)
		So(s.Angle(), ShouldEqual, 60)

		Convey("a done context writes nothing", func() {
			w.Reset()
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			So(d.Move(ctx, Command{Channel: 1, From: 60, To: 90, Speed: 10}), ShouldEqual, ERR_MOTION_ABORTED)
			So(w.Writes(), ShouldBeEmpty)
			So(s.Angle(), ShouldEqual, 60)
		})

		Convey("bad speeds are rejected before writing", func() {
			w.Reset()
			for _, speed := range []int{0, -3, 256} {
				err := d.Move(context.Background(), Command{Channel: 1, From: 60, To: 90, Speed: speed})
				So(err, ShouldHaveSameTypeAs, deverr.MotionError{})
			}
			So(w.Writes(), ShouldBeEmpty)
		})
	})
}

func TestNew(t *testing.T) {
	Convey("strategies are chosen by name", t, func() {
		_, arm := newTestArm()

		p, err := New(STRATEGY_HOST, arm, 25, DEFAULT_QUANTUM)
		So(err, ShouldBeNil)
		So(p, ShouldHaveSameTypeAs, &HostTimed{})
		So(p.(*HostTimed).StepRate, ShouldEqual, 25)

		p, err = New(STRATEGY_DEVICE, arm, 0, 0)
		So(err, ShouldBeNil)
		So(p, ShouldHaveSameTypeAs, &DeviceTimed{})

		_, err = New("telepathic", arm, 0, 0)
		So(err, ShouldNotBeNil)
	})
}
