//go:build tinygo && sonata

package main

import (
	"runtime/volatile"
	"unsafe"
)

// UART register block, one per serial port
type uartRegs struct {
	intrState   volatile.Register32
	intrEnable  volatile.Register32
	intrTest    volatile.Register32
	alertTest   volatile.Register32
	ctrl        volatile.Register32
	status      volatile.Register32
	rdata       volatile.Register32
	wdata       volatile.Register32
	fifoCtrl    volatile.Register32
	fifoStatus  volatile.Register32
	ovrd        volatile.Register32
	val         volatile.Register32
	timeoutCtrl volatile.Register32
}

const (
	uartCtrlTx       = 1 << 0
	uartCtrlRx       = 1 << 1
	uartCtrlNcoShift = 16

	uartStatusTxFull  = 1 << 0
	uartStatusRxEmpty = 1 << 5

	uartFifoCtrlRxReset = 1 << 0
	uartFifoCtrlTxReset = 1 << 1
)

type uart struct {
	regs *uartRegs
}

func uartAt(base uintptr) uart {
	return uart{regs: (*uartRegs)(unsafe.Pointer(base))}
}

// Configure enables both directions at baud and clears the FIFOs
func (u uart) Configure(baud uint32) {
	nco := uint32((uint64(baud) << 20) / sysClockHz)
	u.regs.intrEnable.Set(0)
	u.regs.fifoCtrl.Set(uartFifoCtrlRxReset | uartFifoCtrlTxReset)
	u.regs.ctrl.Set(nco<<uartCtrlNcoShift | uartCtrlTx | uartCtrlRx)
}

// Buffered reports whether a received byte is waiting
func (u uart) Buffered() bool {
	return u.regs.status.Get()&uartStatusRxEmpty == 0
}

// ReadByte returns the next received byte; call only when Buffered
func (u uart) ReadByte() byte {
	return byte(u.regs.rdata.Get())
}

// Write blocks until every byte is queued for transmission
func (u uart) Write(data []byte) {
	for _, b := range data {
		for u.regs.status.Get()&uartStatusTxFull != 0 {
		}
		u.regs.wdata.Set(uint32(b))
	}
}

func (u uart) WriteString(s string) {
	for i := 0; i < len(s); i++ {
		for u.regs.status.Get()&uartStatusTxFull != 0 {
		}
		u.regs.wdata.Set(uint32(s[i]))
	}
}
