package input

import (
	"fmt"
)

// Button is a decoded Wii remote key.
type Button uint8

const (
	BUTTON_NONE Button = iota
	BUTTON_UP
	BUTTON_DOWN
	BUTTON_LEFT
	BUTTON_RIGHT
	BUTTON_A
	BUTTON_PLUS
	BUTTON_MINUS
	BUTTON_HOME
	BUTTON_ONE
	BUTTON_TWO
	BUTTON_B
)

var buttonNames = [...]string{
	BUTTON_NONE:  "NONE",
	BUTTON_UP:    "UP",
	BUTTON_DOWN:  "DOWN",
	BUTTON_LEFT:  "LEFT",
	BUTTON_RIGHT: "RIGHT",
	BUTTON_A:     "A",
	BUTTON_PLUS:  "PLUS",
	BUTTON_MINUS: "MINUS",
	BUTTON_HOME:  "HOME",
	BUTTON_ONE:   "ONE",
	BUTTON_TWO:   "TWO",
	BUTTON_B:     "B",
}

func (b Button) String() string {
	if int(b) < len(buttonNames) {
		return buttonNames[b]
	}
	return fmt.Sprintf("Button(%d)", uint8(b))
}

// low byte of the key code reported by the wiimote driver
var buttonCodes = map[byte]Button{
	0x30: BUTTON_A,
	0x31: BUTTON_B,
	0x01: BUTTON_ONE,
	0x02: BUTTON_TWO,
	0x6C: BUTTON_DOWN,
	0x3C: BUTTON_HOME,
	0x67: BUTTON_UP,
	0x69: BUTTON_LEFT,
	0x6A: BUTTON_RIGHT,
	0x97: BUTTON_PLUS,
	0x9C: BUTTON_MINUS,
}

// ButtonEvent is one key report. Code is BUTTON_NONE when nothing new arrived or the key
// is not one we know.
type ButtonEvent struct {
	Code  Button
	Value byte // 1 pressed, 0 released, 2 autorepeat
}

// Axis identifies the accelerometer axis of an AccelEvent.
type Axis uint8

const (
	AXIS_NONE Axis = 0 // packet carried no acceleration update
	AXIS_X    Axis = 3
	AXIS_Y    Axis = 4
	AXIS_Z    Axis = 5
)

func (a Axis) String() string {
	switch a {
	case AXIS_NONE:
		return "NONE"
	case AXIS_X:
		return "X"
	case AXIS_Y:
		return "Y"
	case AXIS_Z:
		return "Z"
	}
	return fmt.Sprintf("Axis(%d)", uint8(a))
}

// AccelEvent is one accelerometer report. Value is only meaningful when Axis is not
// AXIS_NONE.
type AccelEvent struct {
	Axis  Axis
	Value int16
}
