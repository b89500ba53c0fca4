// Package protocol implements the Klipper-style framing shared by the
// firmware and the host tool.
//
// A frame is: length | sequence | payload | crc16 (big endian) | 0x7E.
// The payload is a series of VLQ-encoded command IDs and arguments.
package protocol

// Version of the wire protocol implementation
const Version = "0.1.0"

// Frame layout
const (
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 64
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E
	MessageDest        = 0x10
	MessageSeqMask     = 0x0F

	// MessageMax is the size of the firmware output buffer, which may hold
	// several frames between flushes.
	MessageMax = 512
)

// Message is one decoded frame
type Message struct {
	Length   uint8
	Sequence uint8
	Payload  []byte // Frame data without header/trailer
	CRC      uint16
}

// nextSequence advances a sequence number within the 0x10-0x1F window
func nextSequence(seq uint8) uint8 {
	return ((seq + 1) & MessageSeqMask) | MessageDest
}
