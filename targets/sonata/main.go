//go:build tinygo && sonata

// Firmware for the Sonata board. Built with a TinyGo target definition
// that sets the "sonata" build tag.
package main

import (
	"muxer/core"
	"muxer/protocol"
)

// Board memory map
const (
	sysClockHz = 40_000_000

	pinmuxPinsBase   uintptr = 0x8000_5000
	pinmuxBlocksBase uintptr = 0x8000_5800

	uart0Base uintptr = 0x8010_0000 // host link
	uart1Base uintptr = 0x8010_1000 // debug console

	hostBaud = 115200
)

var (
	host         uart
	inputBuffer  *protocol.FifoBuffer
	outputBuffer *protocol.ScratchOutput
	transport    *protocol.Transport

	msgerrors uint32
)

func main() {
	mux := &core.Pinmux{
		Pins:   core.PinSinksAt(pinmuxPinsBase),
		Blocks: core.BlockSinksAt(pinmuxBlocksBase),
	}
	core.SetPinmux(mux)

	host = uartAt(uart0Base)
	host.Configure(hostBaud)

	console := uartAt(uart1Base)
	console.Configure(hostBaud)
	core.SetDebugWriter(func(msg string) {
		console.WriteString(msg)
		console.WriteString("\r\n")
	})

	// Both UARTs are reached through the default routes
	if err := mux.ApplyDefaultRoutes(); err != nil {
		core.DebugPrintln("[BOOT] default routes: " + err.Error())
	}

	core.InitCoreCommands()
	core.InitPinmuxCommands()

	// Build and cache dictionary after all commands registered
	core.GetGlobalDictionary().BuildDictionary()

	inputBuffer = protocol.NewFifoBuffer(256)
	outputBuffer = protocol.NewScratchOutput()

	transport = protocol.NewTransport(outputBuffer, handleCommand)
	transport.SetResetCallback(func() {
		// Clear buffers on host reset
		inputBuffer.Reset()
		outputBuffer.Reset()

		core.ResetFirmwareState()
	})
	// ACKs go out before the next command is read
	transport.SetFlushCallback(flush)
	core.SetGlobalTransport(transport)

	for {
		func() {
			defer func() {
				if r := recover(); r != nil {
					msgerrors++
					inputBuffer.Reset()
					outputBuffer.Reset()
				}
			}()

			readHost()
			if inputBuffer.Available() > 0 {
				transport.Receive(inputBuffer)
			}
			flush()
		}()
	}
}

// readHost moves received bytes into the input FIFO while it has room
func readHost() {
	var b [1]byte
	for inputBuffer.Free() > 0 && host.Buffered() {
		b[0] = host.ReadByte()
		inputBuffer.Write(b[:])
	}
}

// flush sends everything encoded since the last flush
func flush() {
	if data := outputBuffer.Result(); len(data) > 0 {
		host.Write(data)
		outputBuffer.Reset()
	}
}

func handleCommand(cmdID uint16, data *[]byte) error {
	err := core.DispatchCommand(cmdID, data)
	if err != nil {
		msgerrors++
		core.DebugPrintln("[CMD] id=" + utoa(uint32(cmdID)) + " failed: " + err.Error())
	}
	return err
}

func utoa(n uint32) string {
	if n == 0 {
		return "0"
	}
	var buf [10]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[pos:])
}
