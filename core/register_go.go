//go:build !tinygo

package core

// register8 is one byte of ordinary memory standing in for a pinmux register
// on the host (tests and simulation).
type register8 struct {
	reg uint8
}

// Set stores a value in the register
func (r *register8) Set(value uint8) {
	r.reg = value
}

// Get returns the last value stored in the register
func (r *register8) Get() uint8 {
	return r.reg
}
