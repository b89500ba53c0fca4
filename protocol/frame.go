package protocol

import "errors"

var (
	// ErrFrameIncomplete means more bytes are needed before the frame can be judged
	ErrFrameIncomplete = errors.New("incomplete frame")
	// ErrFrameInvalid means the bytes at the cursor are not a valid frame;
	// the reader must resynchronize on the next sync byte
	ErrFrameInvalid = errors.New("invalid frame")
)

// ScanFrame decodes the frame at the start of data.
// It returns the message and the number of bytes the frame occupies. The
// payload aliases data.
func ScanFrame(data []byte) (Message, int, error) {
	if len(data) < MessageLengthMin {
		return Message{}, 0, ErrFrameIncomplete
	}

	msgLen := int(data[MessagePositionLen])
	if msgLen < MessageLengthMin || msgLen > MessageLengthMax {
		return Message{}, 0, ErrFrameInvalid
	}
	if len(data) < msgLen {
		return Message{}, 0, ErrFrameIncomplete
	}
	if data[msgLen-MessageTrailerSync] != MessageValueSync {
		return Message{}, 0, ErrFrameInvalid
	}

	frameCRC := uint16(data[msgLen-MessageTrailerCRC])<<8 |
		uint16(data[msgLen-MessageTrailerCRC+1])
	if frameCRC != CRC16(data[:msgLen-MessageTrailerSize]) {
		return Message{}, 0, ErrFrameInvalid
	}

	return Message{
		Length:   uint8(msgLen),
		Sequence: data[MessagePositionSeq],
		Payload:  data[MessageHeaderSize : msgLen-MessageTrailerSize],
		CRC:      frameCRC,
	}, msgLen, nil
}

// AppendFrame appends a complete frame carrying payload to out
func AppendFrame(out []byte, seq uint8, payload []byte) ([]byte, error) {
	msgLen := MessageHeaderSize + len(payload) + MessageTrailerSize
	if msgLen > MessageLengthMax {
		return out, errors.New("message too long: " + itoa(msgLen) + " bytes")
	}

	start := len(out)
	out = append(out, uint8(msgLen), seq)
	out = append(out, payload...)
	crc := CRC16(out[start:])
	return append(out, uint8(crc>>8), uint8(crc), MessageValueSync), nil
}

// skipToSync drops bytes up to and including the next sync byte.
// found is false if data holds no sync byte at all.
func skipToSync(data []byte) (rest []byte, found bool) {
	for i, b := range data {
		if b == MessageValueSync {
			return data[i+1:], true
		}
	}
	return nil, false
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[pos:])
}
