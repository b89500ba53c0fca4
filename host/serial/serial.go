// Package serial opens the UART link to the board.
package serial

import (
	"io"
	"time"
)

// Port is a serial connection to the firmware
type Port interface {
	io.ReadWriteCloser

	// Flush discards data buffered by the driver
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	Baud int

	// ReadTimeout bounds each Read; zero blocks until data arrives
	ReadTimeout time.Duration
}

// DefaultConfig returns the configuration the firmware console UART uses
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100 * time.Millisecond,
	}
}
