package errors

import (
	"fmt"
)

// MappingError is returned when the register window cannot be mapped. It is fatal for the
// servo path and is never retried.
type MappingError struct {
	Base   uint32
	Length int
	Err    error
}

func (err MappingError) Error() string {
	return fmt.Sprintf("unable to map register window 0x%08x+%d: %v", err.Base, err.Length, err.Err)
}

func (err MappingError) Unwrap() error {
	return err.Err
}

// DeviceOpenError is returned when one of the controller event files cannot be opened.
type DeviceOpenError struct {
	Path string
	Err  error
}

func (err DeviceOpenError) Error() string {
	return fmt.Sprintf("could not open event file '%s': %v", err.Path, err.Err)
}

func (err DeviceOpenError) Unwrap() error {
	return err.Err
}

// ReadError covers every read failure that is not the expected would-block condition.
type ReadError struct {
	Path string
	N    int // bytes actually read
	Want int // packet size
	Err  error
}

func (err ReadError) Error() string {
	if err.Err == nil {
		return fmt.Sprintf("short read on %s: got %d of %d bytes", err.Path, err.N, err.Want)
	}
	return fmt.Sprintf("read on %s failed after %d of %d bytes: %v", err.Path, err.N, err.Want, err.Err)
}

func (err ReadError) Unwrap() error {
	return err.Err
}

type ChannelError struct {
	ID   int
	Name string
}

func (err ChannelError) Error() string {
	if len(err.Name) != 0 {
		return fmt.Sprintf("no such servo channel %s", err.Name)
	}
	return fmt.Sprintf("no such servo channel %d", err.ID)
}

// MotionError rejects a motion command before any register is touched.
type MotionError struct {
	Channel int
	Reason  string
}

func (err MotionError) Error() string {
	if len(err.Reason) == 0 {
		err.Reason = "unknown"
	}

	return fmt.Sprintf("invalid motion for channel %d: %s", err.Channel, err.Reason)
}

type ConfigVersionError struct {
	Version    string
	Constraint string
}

func (err ConfigVersionError) Error() string {
	return fmt.Sprintf("unable to use config version %s - require %s", err.Version, err.Constraint)
}
