//go:build tinygo

package core

import (
	"runtime/volatile"
	"unsafe"
)

// register8 is a memory-mapped pinmux register; every Set is one volatile store.
type register8 = volatile.Register8

// PinSinksAt overlays the pin sink bank on its memory-mapped base address.
// Call it once per hardware block.
func PinSinksAt(base uintptr) *PinSinks {
	return (*PinSinks)(unsafe.Pointer(base))
}

// BlockSinksAt overlays the block sink bank on its memory-mapped base address.
func BlockSinksAt(base uintptr) *BlockSinks {
	return (*BlockSinks)(unsafe.Pointer(base))
}
