package protocol

// CRC16 is the frame checksum: CRC-16/MCRF4XX (reflected CCITT, seed 0xFFFF,
// no final xor), as the host computes it.
func CRC16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc = crc16Update(crc, b)
	}
	return crc
}

func crc16Update(crc uint16, b byte) uint16 {
	b ^= byte(crc)
	b ^= b << 4
	x := uint16(b)
	return (x<<8 | crc>>8) ^ x>>4 ^ x<<3
}
