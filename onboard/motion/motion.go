// Package motion turns a joint move (from, to, speed) into register writes, either as a
// host timed ramp of duty cycle values or as one packed command ramped by the FPGA.
package motion

import (
	"context"
	"errors"
	"fmt"
	"time"

	deverr "github.com/CodedInternet/wiiarm/onboard/errors"
	"github.com/CodedInternet/wiiarm/onboard/hardware"
)

const (
	STRATEGY_HOST   = "host"
	STRATEGY_DEVICE = "device"

	// host timed defaults: 50 steps per second, one step every 20ms
	DEFAULT_STEP_RATE = 50
	DEFAULT_QUANTUM   = 20 * time.Millisecond
)

var (
	ERR_MOTION_ABORTED = errors.New("motion has been aborted")
)

// Command moves one joint from one angle to another at Speed degrees per second.
type Command struct {
	Channel  int
	From, To int // degrees
	Speed    int
}

// Validate rejects commands that must never reach a register.
func (c Command) Validate() error {
	if c.Speed <= 0 {
		return deverr.MotionError{Channel: c.Channel, Reason: fmt.Sprintf("speed %d must be positive", c.Speed)}
	}
	return nil
}

// Profiler executes commands against an arm. Move runs a command, Snap sends a joint
// straight to an angle without ramping on the host.
type Profiler interface {
	Move(ctx context.Context, cmd Command) error
	Snap(ctx context.Context, channel, angle, speed int) error
}

// New builds the profiler named by strategy.
func New(strategy string, arm *hardware.Arm, stepRate int, quantum time.Duration) (Profiler, error) {
	switch strategy {
	case STRATEGY_HOST:
		return &HostTimed{
			Arm:      arm,
			StepRate: stepRate,
			Quantum:  quantum,
		}, nil
	case STRATEGY_DEVICE:
		return &DeviceTimed{Arm: arm}, nil
	default:
		return nil, fmt.Errorf("unknown motion strategy '%s'", strategy)
	}
}
