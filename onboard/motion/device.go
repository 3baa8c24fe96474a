package motion

import (
	"context"
	"fmt"

	deverr "github.com/CodedInternet/wiiarm/onboard/errors"
	"github.com/CodedInternet/wiiarm/onboard/hardware"
)

const MAX_DEVICE_SPEED = 0xFF

// Pack builds the register value for a hardware ramp.
//
//	bits 0..7   position
//	bits 8..15  speed
//	bits 16..31 zero
func Pack(position, speed int) uint32 {
	return uint32(speed&0xFF)<<8 | uint32(position&0xFF)
}

// DeviceTimed hands the whole ramp to the FPGA with one store and returns immediately.
type DeviceTimed struct {
	Arm *hardware.Arm
}

func (d *DeviceTimed) Move(ctx context.Context, cmd Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return d.Snap(ctx, cmd.Channel, cmd.To, cmd.Speed)
}

// Snap writes the packed command. It also cancels any host ramp still running on the joint.
// Nothing is written once ctx is done.
func (d *DeviceTimed) Snap(ctx context.Context, channel, angle, speed int) (err error) {
	if speed <= 0 || speed > MAX_DEVICE_SPEED {
		return deverr.MotionError{Channel: channel, Reason: fmt.Sprintf("speed %d outside 1..%d", speed, MAX_DEVICE_SPEED)}
	}
	servo, err := d.Arm.Servo(channel)
	if err != nil {
		return
	}

	mctx, release := servo.Claim(ctx)
	defer release()
	if mctx.Err() != nil {
		return ERR_MOTION_ABORTED
	}

	if err = servo.Write(Pack(angle, speed)); err != nil {
		return
	}
	servo.SetAngle(angle)
	return
}
