package input

import (
	deverr "github.com/CodedInternet/wiiarm/onboard/errors"
	"golang.org/x/sys/unix"
)

// DeviceStream reads an event device through its raw descriptor. os.File would park
// non-blocking descriptors on the runtime poller and turn them back into blocking reads.
type DeviceStream struct {
	fd       int
	path     string
	blocking bool
}

func OpenStream(path string, blocking bool) (*DeviceStream, error) {
	flags := unix.O_RDONLY | unix.O_CLOEXEC
	if !blocking {
		flags |= unix.O_NONBLOCK
	}

	fd, err := unix.Open(path, flags, 0)
	if err != nil {
		return nil, deverr.DeviceOpenError{Path: path, Err: err}
	}

	return &DeviceStream{
		fd:       fd,
		path:     path,
		blocking: blocking,
	}, nil
}

func (s *DeviceStream) Read(p []byte) (n int, err error) {
	for {
		n, err = unix.Read(s.fd, p)
		if err != unix.EINTR {
			break
		}
	}
	if n < 0 {
		n = 0
	}
	if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
		err = ERR_WOULD_BLOCK
	}
	return
}

func (s *DeviceStream) Close() error {
	return unix.Close(s.fd)
}

func (s *DeviceStream) Blocking() bool {
	return s.blocking
}

func (s *DeviceStream) Name() string {
	return s.path
}
