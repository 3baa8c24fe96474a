package hardware

import (
	"encoding/binary"
)

// the FPGA bridge and every supported host are little endian
var nativeEndian = binary.LittleEndian
