package hardware

import (
	"errors"
)

const (
	// physical address of the servo register block on the FPGA bridge. The window is one
	// page, the servo registers start 0x100 into it.
	REG_BASE_ADDRESS = 0x400D0000
	REG_WINDOW_LEN   = 0x1000
	REG_WIDTH        = 4
)

var (
	ERR_BAD_OFFSET    = errors.New("register offset outside window or not 32-bit aligned")
	ERR_WINDOW_CLOSED = errors.New("register window is closed")
)

// RegisterWindow is an offset addressed view onto the hardware registers. Writes are plain
// 32-bit stores: no read-modify-write, no masking and no readback.
type RegisterWindow interface {
	Write32(offset, value uint32) error
	Read32(offset uint32) (uint32, error)
	Close() error
}

func checkOffset(offset uint32, length int) error {
	if offset%REG_WIDTH != 0 || int(offset)+REG_WIDTH > length {
		return ERR_BAD_OFFSET
	}
	return nil
}
