//go:build !linux

package hardware

import (
	"fmt"
	"runtime"

	deverr "github.com/CodedInternet/wiiarm/onboard/errors"
)

const MEM_DEVICE = "/dev/mem"

type MemWindow struct{}

func OpenMemWindow(path string, base uint32, length int) (*MemWindow, error) {
	return nil, deverr.MappingError{
		Base:   base,
		Length: length,
		Err:    fmt.Errorf("physical memory mapping is not supported on %s", runtime.GOOS),
	}
}

func (w *MemWindow) Write32(offset, value uint32) error  { return ERR_WINDOW_CLOSED }
func (w *MemWindow) Read32(offset uint32) (uint32, error) { return 0, ERR_WINDOW_CLOSED }
func (w *MemWindow) Close() error                         { return ERR_WINDOW_CLOSED }
