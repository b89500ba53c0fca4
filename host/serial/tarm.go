package serial

import (
	"github.com/pkg/errors"
	"github.com/tarm/serial"
)

// tarmPort is a Port backed by the OS serial driver
type tarmPort struct {
	*serial.Port
	device string
}

// Open opens the device described by cfg
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, errors.New("serial config cannot be nil")
	}

	p, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open serial port %s", cfg.Device)
	}

	return &tarmPort{Port: p, device: cfg.Device}, nil
}

// Close releases the device
func (p *tarmPort) Close() error {
	return errors.Wrapf(p.Port.Close(), "failed to close serial port %s", p.device)
}
