package hardware

import (
	"sync"
)

// RegisterWrite is one store seen by a SimulatedWindow.
type RegisterWrite struct {
	Offset, Value uint32
}

// SimulatedWindow is a memory backed RegisterWindow used by the simulator and by tests.
// Every store is recorded in order.
type SimulatedWindow struct {
	lock   sync.Mutex
	mem    []byte
	writes []RegisterWrite
	closed bool
}

func NewSimulatedWindow(length int) *SimulatedWindow {
	return &SimulatedWindow{
		mem: make([]byte, length),
	}
}

func (w *SimulatedWindow) Write32(offset, value uint32) error {
	w.lock.Lock()
	defer w.lock.Unlock()

	if w.closed {
		return ERR_WINDOW_CLOSED
	}
	if err := checkOffset(offset, len(w.mem)); err != nil {
		return err
	}

	nativeEndian.PutUint32(w.mem[offset:], value)
	w.writes = append(w.writes, RegisterWrite{offset, value})
	return nil
}

func (w *SimulatedWindow) Read32(offset uint32) (uint32, error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	if w.closed {
		return 0, ERR_WINDOW_CLOSED
	}
	if err := checkOffset(offset, len(w.mem)); err != nil {
		return 0, err
	}

	return nativeEndian.Uint32(w.mem[offset:]), nil
}

func (w *SimulatedWindow) Close() error {
	w.lock.Lock()
	defer w.lock.Unlock()

	if w.closed {
		return ERR_WINDOW_CLOSED
	}
	w.closed = true
	return nil
}

// Writes returns a copy of the stores recorded so far.
func (w *SimulatedWindow) Writes() []RegisterWrite {
	w.lock.Lock()
	defer w.lock.Unlock()

	out := make([]RegisterWrite, len(w.writes))
	copy(out, w.writes)
	return out
}

// WritesAt returns the values stored at offset, oldest first.
func (w *SimulatedWindow) WritesAt(offset uint32) (values []uint32) {
	for _, wr := range w.Writes() {
		if wr.Offset == offset {
			values = append(values, wr.Value)
		}
	}
	return
}

func (w *SimulatedWindow) Reset() {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.writes = nil
}
