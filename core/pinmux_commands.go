// Pinmux host commands
// Lets the host route sinks at runtime. Sinks are addressed by bank and
// index; the index tables are published in the dictionary enumerations.
package core

import "muxer/protocol"

// Bank numbers used on the wire
const (
	BankPins   = 0
	BankBlocks = 1
)

// InitPinmuxCommands registers the pinmux commands, responses and sink
// enumerations with the global registry and dictionary.
func InitPinmuxCommands() {
	RegisterCommand("pinmux_select", "bank=%c sink=%c source=%c", handlePinmuxSelect)
	RegisterCommand("pinmux_disable", "bank=%c sink=%c", handlePinmuxDisable)
	RegisterCommand("pinmux_default", "bank=%c sink=%c", handlePinmuxDefault)
	RegisterCommand("pinmux_disable_all", "", handlePinmuxDisableAll)

	RegisterResponse("pinmux_result", "bank=%c sink=%c source=%c ok=%c")

	RegisterEnumeration("pinmux_pin_sink", PinSinkNames())
	RegisterEnumeration("pinmux_block_sink", BlockSinkNames())
	RegisterConstant("PINMUX_PIN_SINKS", NumPinSinks)
	RegisterConstant("PINMUX_BLOCK_SINKS", NumBlockSinks)
}

// handlePinmuxSelect routes a source to a sink
// Format: pinmux_select bank=%c sink=%c source=%c
func handlePinmuxSelect(data *[]byte) error {
	bank, sink, err := decodeSinkArgs(data)
	if err != nil {
		return err
	}
	source, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return err
	}
	if err := checkSink(bank, sink); err != nil {
		return err
	}

	ok := false
	// Source 0 disconnects the sink, which stays allowed during shutdown
	if IsShutdown() && source != 0 {
		DebugPrintln("[PINMUX] select refused during shutdown")
	} else if source <= 0xFF {
		mux := MustPinmux()
		switch bank {
		case BankPins:
			ok = mux.Pins.Get(PinSink(sink)).Select(uint8(source))
		case BankBlocks:
			ok = mux.Blocks.Get(BlockSink(sink)).Select(uint8(source))
		}
	}

	sendPinmuxResult(bank, sink, source, ok)
	return nil
}

// handlePinmuxDisable disconnects a sink
// Format: pinmux_disable bank=%c sink=%c
func handlePinmuxDisable(data *[]byte) error {
	bank, sink, err := decodeSinkArgs(data)
	if err != nil {
		return err
	}
	if err := checkSink(bank, sink); err != nil {
		return err
	}

	mux := MustPinmux()
	switch bank {
	case BankPins:
		mux.Pins.Get(PinSink(sink)).Disable()
	case BankBlocks:
		mux.Blocks.Get(BlockSink(sink)).Disable()
	}

	sendPinmuxResult(bank, sink, 0, true)
	return nil
}

// handlePinmuxDefault routes the default source to a sink
// Format: pinmux_default bank=%c sink=%c
func handlePinmuxDefault(data *[]byte) error {
	bank, sink, err := decodeSinkArgs(data)
	if err != nil {
		return err
	}
	if err := checkSink(bank, sink); err != nil {
		return err
	}

	if IsShutdown() {
		DebugPrintln("[PINMUX] default refused during shutdown")
		sendPinmuxResult(bank, sink, 1, false)
		return nil
	}

	mux := MustPinmux()
	switch bank {
	case BankPins:
		mux.Pins.Get(PinSink(sink)).Default()
	case BankBlocks:
		mux.Blocks.Get(BlockSink(sink)).Default()
	}

	sendPinmuxResult(bank, sink, 1, true)
	return nil
}

func handlePinmuxDisableAll(data *[]byte) error {
	MustPinmux().DisableAll()
	return nil
}

func decodeSinkArgs(data *[]byte) (bank, sink uint32, err error) {
	bank, err = protocol.DecodeVLQUint(data)
	if err != nil {
		return 0, 0, err
	}
	sink, err = protocol.DecodeVLQUint(data)
	if err != nil {
		return 0, 0, err
	}
	return bank, sink, nil
}

// checkSink rejects indices outside the closed sink tables before any
// handle is minted.
func checkSink(bank, sink uint32) error {
	switch bank {
	case BankPins:
		if sink >= NumPinSinks {
			return ErrUnknownSink
		}
	case BankBlocks:
		if sink >= NumBlockSinks {
			return ErrUnknownSink
		}
	default:
		return ErrUnknownBank
	}
	return nil
}

func sendPinmuxResult(bank, sink, source uint32, ok bool) {
	SendResponse("pinmux_result", func(output protocol.OutputBuffer) {
		protocol.EncodeVLQUint(output, bank)
		protocol.EncodeVLQUint(output, sink)
		protocol.EncodeVLQUint(output, source)
		protocol.EncodeVLQUint(output, boolToUint(ok))
	})
}
