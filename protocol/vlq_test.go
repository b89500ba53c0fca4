package protocol

import (
	"bytes"
	"testing"
)

func TestVLQKnownEncodings(t *testing.T) {
	testCases := []struct {
		value   int32
		encoded []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{95, []byte{0x5F}},
		{96, []byte{0x80, 0x60}},
		{-1, []byte{0x7F}},
		{-32, []byte{0x60}},
		{-33, []byte{0xFF, 0x5F}},
		{1000, []byte{0x87, 0x68}},
	}

	for _, tc := range testCases {
		output := NewScratchOutput()
		EncodeVLQInt(output, tc.value)
		if got := output.Result(); !bytes.Equal(got, tc.encoded) {
			t.Errorf("EncodeVLQInt(%d) = %x, expected %x", tc.value, got, tc.encoded)
		}

		data := append([]byte(nil), tc.encoded...)
		decoded, err := DecodeVLQInt(&data)
		if err != nil {
			t.Errorf("DecodeVLQInt(%x) failed: %v", tc.encoded, err)
			continue
		}
		if decoded != tc.value {
			t.Errorf("DecodeVLQInt(%x) = %d, expected %d", tc.encoded, decoded, tc.value)
		}
		if len(data) != 0 {
			t.Errorf("DecodeVLQInt(%x) left %d bytes", tc.encoded, len(data))
		}
	}
}

func TestVLQUintFullRange(t *testing.T) {
	for _, expected := range []uint32{0, 127, 128, 65535, 1000000, 0xFFFFFFFF} {
		output := NewScratchOutput()
		EncodeVLQUint(output, expected)
		data := output.Result()

		decoded, err := DecodeVLQUint(&data)
		if err != nil {
			t.Errorf("Failed to decode VLQ for value %d: %v", expected, err)
			continue
		}
		if decoded != expected {
			t.Errorf("VLQ mismatch: expected %d, got %d", expected, decoded)
		}
	}
}

func TestVLQSequentialDecode(t *testing.T) {
	output := NewScratchOutput()
	EncodeVLQUint(output, 1)
	EncodeVLQUint(output, 7)
	EncodeVLQString(output, "ser0_tx")
	EncodeVLQUint(output, 300)
	data := output.Result()

	bank, _ := DecodeVLQUint(&data)
	sink, _ := DecodeVLQUint(&data)
	name, err := DecodeVLQString(&data)
	if err != nil {
		t.Fatalf("DecodeVLQString failed: %v", err)
	}
	last, _ := DecodeVLQUint(&data)

	if bank != 1 || sink != 7 || name != "ser0_tx" || last != 300 {
		t.Errorf("Got %d %d %q %d", bank, sink, name, last)
	}
	if len(data) != 0 {
		t.Errorf("Expected all bytes consumed, %d left", len(data))
	}
}

func TestVLQBufferTooSmall(t *testing.T) {
	data := []byte{0x80} // Continuation byte but no following byte
	if _, err := DecodeVLQInt(&data); err != ErrBufferTooSmall {
		t.Errorf("Expected ErrBufferTooSmall, got %v", err)
	}
	if len(data) != 1 {
		t.Errorf("Failed decode must not consume input, %d bytes left", len(data))
	}

	empty := []byte{}
	if _, err := DecodeVLQInt(&empty); err != ErrBufferTooSmall {
		t.Errorf("Expected ErrBufferTooSmall for empty input, got %v", err)
	}

	short := []byte{0x05, 0x01, 0x02}
	if _, err := DecodeVLQBytes(&short); err != ErrBufferTooSmall {
		t.Errorf("Expected ErrBufferTooSmall for truncated bytes, got %v", err)
	}
}

func TestVLQOverlong(t *testing.T) {
	data := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x00}
	if _, err := DecodeVLQInt(&data); err != ErrInvalidVLQ {
		t.Errorf("Expected ErrInvalidVLQ, got %v", err)
	}
}
