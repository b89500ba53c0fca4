package mcu

import (
	"strconv"
	"strings"

	level "github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"

	"muxer/config"
	"muxer/core"
)

// Bank selects one of the two sink tables
type Bank uint8

// Wire values of the bank argument
const (
	BankPins   Bank = core.BankPins
	BankBlocks Bank = core.BankBlocks
)

// ParseBank accepts "pins"/"pin" and "blocks"/"block"
func ParseBank(s string) (Bank, error) {
	switch strings.ToLower(s) {
	case "pins", "pin":
		return BankPins, nil
	case "blocks", "block":
		return BankBlocks, nil
	}
	return 0, errors.Wrapf(core.ErrUnknownBank, "%q", s)
}

func (b Bank) String() string {
	if b == BankBlocks {
		return "blocks"
	}
	return "pins"
}

// enumeration names the dictionary enumeration listing the bank's sinks
func (b Bank) enumeration() string {
	if b == BankBlocks {
		return "pinmux_block_sink"
	}
	return "pinmux_pin_sink"
}

// Result is the firmware's answer to a pinmux command
type Result struct {
	Bank   Bank
	Sink   string
	Source uint32
	OK     bool
}

// SinkIndex resolves a sink name through the dictionary enumerations
func (m *MCU) SinkIndex(bank Bank, sink string) (uint32, error) {
	if m.dictionary == nil {
		return 0, errors.New("dictionary not loaded")
	}
	idx, ok := m.dictionary.EnumerationValue(bank.enumeration(), sink)
	if !ok {
		return 0, errors.Wrapf(core.ErrUnknownSink, "%s sink %q", bank, sink)
	}
	return uint32(idx), nil
}

// SinkNames lists the sinks of a bank in register order
func (m *MCU) SinkNames(bank Bank) []string {
	if m.dictionary == nil {
		return nil
	}
	return m.dictionary.EnumerationNames(bank.enumeration())
}

// Select routes source to a sink. A source the sink does not have is
// reported through Result.OK, not as an error.
func (m *MCU) Select(bank Bank, sink string, source uint8) (Result, error) {
	return m.pinmuxQuery("pinmux_select", bank, sink, uint32(source))
}

// Disable disconnects a sink
func (m *MCU) Disable(bank Bank, sink string) (Result, error) {
	return m.pinmuxQuery("pinmux_disable", bank, sink)
}

// Default routes the hardware default source to a sink
func (m *MCU) Default(bank Bank, sink string) (Result, error) {
	return m.pinmuxQuery("pinmux_default", bank, sink)
}

// DisableAll disconnects every sink of both banks
func (m *MCU) DisableAll() error {
	return m.SendCommand("pinmux_disable_all")
}

func (m *MCU) pinmuxQuery(cmd string, bank Bank, sink string, extra ...uint32) (Result, error) {
	idx, err := m.SinkIndex(bank, sink)
	if err != nil {
		return Result{}, err
	}

	args := append([]uint32{uint32(bank), idx}, extra...)
	resp, err := m.Query(cmd, args, "pinmux_result")
	if err != nil {
		return Result{}, err
	}

	if Bank(resp.Fields["bank"]) != bank || resp.Fields["sink"] != idx {
		return Result{}, errors.Errorf("%s: result for bank=%d sink=%d, expected %s %s",
			cmd, resp.Fields["bank"], resp.Fields["sink"], bank, sink)
	}

	result := Result{
		Bank:   bank,
		Sink:   sink,
		Source: resp.Fields["source"],
		OK:     resp.Fields["ok"] != 0,
	}
	mcuPinmuxResultsTotal.WithLabelValues(cmd, strconv.FormatBool(result.OK)).Inc()
	m.logger.Log("event", "pinmux.result", "command", cmd, "bank", bank, "sink", sink,
		"source", result.Source, "ok", result.OK)
	return result, nil
}

// ApplyRoute selects every source of a route, pins first. The route is
// validated against the local sink tables before anything is sent.
func (m *MCU) ApplyRoute(r core.Route) error {
	if err := r.Validate(); err != nil {
		return err
	}

	for _, sel := range r.Pins {
		if err := m.selectChecked(r.Name, BankPins, sel.Sink.String(), sel.Source); err != nil {
			return err
		}
	}
	for _, sel := range r.Blocks {
		if err := m.selectChecked(r.Name, BankBlocks, sel.Sink.String(), sel.Source); err != nil {
			return err
		}
	}
	return nil
}

func (m *MCU) selectChecked(route string, bank Bank, sink string, source uint8) error {
	result, err := m.Select(bank, sink, source)
	if err != nil {
		return errors.Wrapf(err, "route %s", route)
	}
	if !result.OK {
		return errors.Errorf("route %s: firmware refused %s sink %s source %d", route, bank, sink, source)
	}
	return nil
}

// ApplyConfig applies every route of a board configuration
func (m *MCU) ApplyConfig(cfg *config.BoardConfig) error {
	routes, err := cfg.ResolveRoutes()
	if err != nil {
		return err
	}

	if cfg.DisableUnlisted {
		if err := m.DisableAll(); err != nil {
			return err
		}
	}
	for _, route := range routes {
		if err := m.ApplyRoute(route); err != nil {
			return err
		}
		level.Info(m.logger).Log("event", "route.applied", "route", route.Name)
	}
	return nil
}
