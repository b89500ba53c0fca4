package main

import (
	"bytes"
	"strings"
	"testing"

	. "github.com/onsi/gomega"

	"muxer/host/mcu"
	"muxer/host/mcu/mcutest"
)

func newTestMCU(t *testing.T) *mcu.MCU {
	g := NewWithT(t)

	m := mcu.NewMCU(nil)
	m.Attach(mcutest.NewFirmware())
	t.Cleanup(func() { m.Close() })

	g.Expect(m.RetrieveDictionary()).To(Succeed())
	return m
}

func TestShell(t *testing.T) {
	g := NewWithT(t)
	m := newTestMCU(t)

	input := strings.Join([]string{
		`select pins pmod0_1 3`,
		`select "blocks" 'uart_3_rx' 2`,
		`default blocks spi_0_cipo`,
		`disable pins ser0_tx`,
		`select pins nowhere 1`,
		`select pins ser0_tx`,
		`select pins ser0_tx 300`,
		`select pins "unterminated`,
		``,
		`sinks blocks`,
		`apply uart0 i2c0`,
		`send finalize_config 0x10`,
		`status`,
		`frobnicate`,
		`quit`,
		`status`,
	}, "\n")

	var out bytes.Buffer
	g.Expect(runShell(m, strings.NewReader(input), &out)).To(Succeed())

	output := out.String()
	g.Expect(output).To(ContainSubstring("pins pmod0_1 source=3 ok"))
	g.Expect(output).To(ContainSubstring("blocks uart_3_rx source=2 refused"))
	g.Expect(output).To(ContainSubstring("blocks spi_0_cipo source=1 ok"))
	g.Expect(output).To(ContainSubstring("pins ser0_tx source=0 ok"))
	g.Expect(output).To(ContainSubstring(`pins sink "nowhere": unknown pinmux sink`))
	g.Expect(output).To(ContainSubstring("usage: select BANK SINK SOURCE"))
	g.Expect(output).To(ContainSubstring(`invalid source "300"`))
	g.Expect(output).To(ContainSubstring("[21] gpio_3_ios_3"))
	g.Expect(output).To(ContainSubstring("route uart0 applied"))
	g.Expect(output).To(ContainSubstring("route i2c0 applied"))
	g.Expect(output).To(ContainSubstring("configured=true crc=16 shutdown=false"))
	g.Expect(output).To(ContainSubstring(`unknown command "frobnicate"`))

	// Nothing runs after quit
	g.Expect(strings.Count(output, "configured=")).To(Equal(1))
}

func TestShellEmergencyStop(t *testing.T) {
	g := NewWithT(t)
	m := newTestMCU(t)

	var out bytes.Buffer
	input := "estop\nselect pins ser0_tx 1\napply uart0\nstatus\n"
	g.Expect(runShell(m, strings.NewReader(input), &out)).To(Succeed())

	output := out.String()
	g.Expect(output).To(ContainSubstring("pins ser0_tx source=1 refused"))
	g.Expect(output).To(ContainSubstring("firmware refused"))
	g.Expect(output).To(ContainSubstring("shutdown=true"))
}
