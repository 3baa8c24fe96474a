package hardware

import (
	"io/ioutil"
	"os"
	"sync"
	"testing"

	deverr "github.com/CodedInternet/wiiarm/onboard/errors"
	. "github.com/smartystreets/goconvey/convey"
)

// a plain file stands in for /dev/mem, mapped from offset 0
func tempRegisters(t *testing.T) string {
	f, err := ioutil.TempFile("", "registers")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err = f.Truncate(REG_WINDOW_LEN); err != nil {
		t.Fatal(err)
	}
	return f.Name()
}

func TestMemWindow(t *testing.T) {
	Convey("a mapped window", t, func() {
		path := tempRegisters(t)
		defer os.Remove(path)

		w, err := OpenMemWindow(path, 0, REG_WINDOW_LEN)
		So(err, ShouldBeNil)

		Convey("reaches every channel register", func() {
			for _, c := range DefaultChannels {
				So(w.Write32(c.Offset, uint32(c.ID)), ShouldBeNil)
				v, err := w.Read32(c.Offset)
				So(err, ShouldBeNil)
				So(v, ShouldEqual, c.ID)
			}
			So(w.Close(), ShouldBeNil)
		})

		Convey("stores through to the backing memory", func() {
			So(w.Write32(0x104, 0x01020304), ShouldBeNil)
			So(w.Close(), ShouldBeNil)

			raw, err := ioutil.ReadFile(path)
			So(err, ShouldBeNil)
			So(nativeEndian.Uint32(raw[0x104:]), ShouldEqual, 0x01020304)
		})

		Convey("rejects bad offsets", func() {
			So(w.Write32(0x102, 1), ShouldEqual, ERR_BAD_OFFSET)
			So(w.Write32(REG_WINDOW_LEN, 1), ShouldEqual, ERR_BAD_OFFSET)
			So(w.Close(), ShouldBeNil)
		})

		Convey("can be closed while stores are in flight", func() {
			var wg sync.WaitGroup
			for _, c := range DefaultChannels {
				wg.Add(1)
				go func(offset uint32) {
					defer wg.Done()
					for i := uint32(0); i < 1000; i++ {
						if err := w.Write32(offset, i); err == ERR_WINDOW_CLOSED {
							return
						}
					}
				}(c.Offset)
			}

			So(w.Close(), ShouldBeNil)
			wg.Wait()
			So(w.Write32(0x100, 1), ShouldEqual, ERR_WINDOW_CLOSED)
			So(w.Close(), ShouldEqual, ERR_WINDOW_CLOSED)
		})
	})

	Convey("a missing device is a mapping error", t, func() {
		_, err := OpenMemWindow("/nonexistent/mem", REG_BASE_ADDRESS, REG_WINDOW_LEN)
		So(err, ShouldHaveSameTypeAs, deverr.MappingError{})
	})
}
