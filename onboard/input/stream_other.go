//go:build !linux

package input

import (
	"fmt"
	"runtime"

	deverr "github.com/CodedInternet/wiiarm/onboard/errors"
)

type DeviceStream struct{}

func OpenStream(path string, blocking bool) (*DeviceStream, error) {
	return nil, deverr.DeviceOpenError{
		Path: path,
		Err:  fmt.Errorf("event devices are not supported on %s", runtime.GOOS),
	}
}

func (s *DeviceStream) Read(p []byte) (int, error) { return 0, ERR_WOULD_BLOCK }
func (s *DeviceStream) Close() error               { return nil }
func (s *DeviceStream) Blocking() bool             { return false }
func (s *DeviceStream) Name() string               { return "" }
