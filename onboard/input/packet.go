package input

// Code returns the raw key code the driver reports for b.
func (b Button) Code() (code byte, ok bool) {
	for c, button := range buttonCodes {
		if button == b {
			return c, true
		}
	}
	return 0, false
}

// ButtonPacket builds a raw button packet as the driver would deliver it. Unknown buttons
// produce a packet with a zero code.
func ButtonPacket(ev ButtonEvent) []byte {
	pkt := make([]byte, BUTTON_PKT_SIZE)
	pkt[BUTTON_CODE_BYTE], _ = ev.Code.Code()
	pkt[BUTTON_VAL_BYTE] = ev.Value
	return pkt
}

// AccelPacket builds a raw accelerometer packet.
func AccelPacket(ev AccelEvent) []byte {
	pkt := make([]byte, ACCEL_PKT_SIZE)
	pkt[ACCEL_CODE_BYTE] = byte(ev.Axis)
	pkt[ACCEL_VAL_H] = byte(uint16(ev.Value) >> 8)
	pkt[ACCEL_VAL_L] = byte(ev.Value)
	return pkt
}
