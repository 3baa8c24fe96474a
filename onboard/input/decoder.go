// Package input decodes Wii remote button and accelerometer packets read from the Linux
// event devices created by the wiimote driver.
package input

import (
	"errors"

	deverr "github.com/CodedInternet/wiiarm/onboard/errors"
)

const (
	BUTTON_PKT_SIZE  = 32
	BUTTON_CODE_BYTE = 10
	BUTTON_VAL_BYTE  = 12

	ACCEL_PKT_SIZE  = 16
	ACCEL_CODE_BYTE = 10
	ACCEL_VAL_H     = 13
	ACCEL_VAL_L     = 12
)

// ReadStatus tells apart the three ways a packet read can end.
type ReadStatus int

const (
	PacketComplete   ReadStatus = iota // a whole packet was decoded
	PacketWouldBlock                   // non-blocking stream had no full packet yet
	PacketFailed                       // the stream is broken, see the accompanying error
)

func (s ReadStatus) String() string {
	switch s {
	case PacketComplete:
		return "complete"
	case PacketWouldBlock:
		return "would-block"
	case PacketFailed:
		return "failed"
	}
	return "unknown"
}

// readPacket fills buf with one read. A short read on a non-blocking stream is the normal
// "nothing new" case, anything else short of a full packet is a ReadError.
func readPacket(s Stream, buf []byte) (ReadStatus, error) {
	n, err := s.Read(buf)
	if n == len(buf) {
		return PacketComplete, nil
	}
	if n < 0 {
		n = 0
	}

	if !s.Blocking() && (err == nil || errors.Is(err, ERR_WOULD_BLOCK)) {
		return PacketWouldBlock, nil
	}

	return PacketFailed, deverr.ReadError{
		Path: s.Name(),
		N:    n,
		Want: len(buf),
		Err:  err,
	}
}

// DecodeButton extracts the key from a full button packet.
func DecodeButton(pkt []byte) (ev ButtonEvent) {
	ev.Code = buttonCodes[pkt[BUTTON_CODE_BYTE]]
	ev.Value = pkt[BUTTON_VAL_BYTE]
	return
}

// DecodeAccel extracts the axis and signed magnitude from a full accelerometer packet.
func DecodeAccel(pkt []byte) (ev AccelEvent) {
	ev.Axis = Axis(pkt[ACCEL_CODE_BYTE])
	if ev.Axis != AXIS_NONE {
		ev.Value = int16(uint16(pkt[ACCEL_VAL_H])<<8 | uint16(pkt[ACCEL_VAL_L]))
	}
	return
}

// ButtonDecoder polls the button stream. It is meant to sit on a non-blocking stream and
// never wait for input.
type ButtonDecoder struct {
	stream Stream
	buf    [BUTTON_PKT_SIZE]byte
}

func NewButtonDecoder(s Stream) *ButtonDecoder {
	return &ButtonDecoder{stream: s}
}

// Poll returns the next button event, or a BUTTON_NONE event when there was nothing new or
// the read failed.
func (d *ButtonDecoder) Poll() (ev ButtonEvent, status ReadStatus, err error) {
	status, err = readPacket(d.stream, d.buf[:])
	if status == PacketComplete {
		ev = DecodeButton(d.buf[:])
	}
	return
}

func (d *ButtonDecoder) Close() error {
	return d.stream.Close()
}

// AccelDecoder reads the accelerometer stream. On a blocking stream Next waits for the next
// packet, which is what paces the teleoperation loop.
type AccelDecoder struct {
	stream Stream
	buf    [ACCEL_PKT_SIZE]byte
}

func NewAccelDecoder(s Stream) *AccelDecoder {
	return &AccelDecoder{stream: s}
}

func (d *AccelDecoder) Next() (ev AccelEvent, status ReadStatus, err error) {
	status, err = readPacket(d.stream, d.buf[:])
	if status == PacketComplete {
		ev = DecodeAccel(d.buf[:])
	}
	return
}

func (d *AccelDecoder) Close() error {
	return d.stream.Close()
}
