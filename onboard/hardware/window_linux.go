package hardware

import (
	"sync"
	"sync/atomic"
	"unsafe"

	deverr "github.com/CodedInternet/wiiarm/onboard/errors"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const MEM_DEVICE = "/dev/mem"

// MemWindow maps a slice of physical memory through /dev/mem. Stores from several
// goroutines may run together; Close waits for them and unmaps.
type MemWindow struct {
	lock sync.RWMutex // write lock held only to unmap
	fd   int
	base uint32
	mem  []byte
}

func OpenMemWindow(path string, base uint32, length int) (w *MemWindow, err error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_SYNC, 0)
	if err != nil {
		return nil, deverr.MappingError{Base: base, Length: length, Err: errors.Wrapf(err, "open %s", path)}
	}

	mem, err := unix.Mmap(fd, int64(base), length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, deverr.MappingError{Base: base, Length: length, Err: errors.Wrap(err, "mmap")}
	}

	w = &MemWindow{
		fd:   fd,
		base: base,
		mem:  mem,
	}
	return
}

func (w *MemWindow) Write32(offset, value uint32) error {
	w.lock.RLock()
	defer w.lock.RUnlock()

	if w.mem == nil {
		return ERR_WINDOW_CLOSED
	}
	if err := checkOffset(offset, len(w.mem)); err != nil {
		return err
	}

	// a single aligned store, the compiler may not split or elide it
	atomic.StoreUint32((*uint32)(unsafe.Pointer(&w.mem[offset])), value)
	return nil
}

func (w *MemWindow) Read32(offset uint32) (uint32, error) {
	w.lock.RLock()
	defer w.lock.RUnlock()

	if w.mem == nil {
		return 0, ERR_WINDOW_CLOSED
	}
	if err := checkOffset(offset, len(w.mem)); err != nil {
		return 0, err
	}

	return atomic.LoadUint32((*uint32)(unsafe.Pointer(&w.mem[offset]))), nil
}

func (w *MemWindow) Close() (err error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	if w.mem == nil {
		return ERR_WINDOW_CLOSED
	}

	err = unix.Munmap(w.mem)
	w.mem = nil
	if cerr := unix.Close(w.fd); err == nil {
		err = cerr
	}
	return
}
