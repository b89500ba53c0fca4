package mcu_test

import (
	"bytes"

	"github.com/pkg/errors"

	"muxer/config"
	"muxer/core"
	"muxer/host/mcu"
	"muxer/host/mcu/mcutest"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("MCU", func() {
	var (
		firmware *mcutest.Firmware
		m        *mcu.MCU
	)

	BeforeEach(func() {
		firmware = mcutest.NewFirmware()
		m = mcu.NewMCU(logger)
		m.Attach(firmware)
	})

	AfterEach(func() {
		Expect(m.Close()).To(Succeed())
	})

	Context("before the dictionary is retrieved", func() {
		It("refuses commands", func() {
			Expect(m.SendCommand("get_config")).To(MatchError(ContainSubstring("dictionary not loaded")))
			_, err := m.Select(mcu.BankPins, "ser0_tx", 1)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("with the dictionary", func() {
		BeforeEach(func() {
			Expect(m.RetrieveDictionary()).To(Succeed())
		})

		Describe("RetrieveDictionary()", func() {
			It("transfers the whole dictionary", func() {
				Expect(bytes.Equal(m.GetDictionaryRaw(), core.GetGlobalDictionary().Generate())).To(BeTrue())
				Expect(m.GetDictionary().Version).To(Equal("muxer-0.1.0"))
			})

			It("indexes commands by name", func() {
				format, ok := m.GetDictionary().Command("pinmux_select")
				Expect(ok).To(BeTrue())
				Expect(format.Params).To(Equal([]string{"bank", "sink", "source"}))
			})

			It("lists sinks in register order", func() {
				names := m.SinkNames(mcu.BankPins)
				Expect(names).To(Equal(core.PinSinkNames()))
				Expect(m.SinkNames(mcu.BankBlocks)).To(Equal(core.BlockSinkNames()))
			})

			It("prints a summary", func() {
				var buf bytes.Buffer
				m.PrintDictionary(&buf)
				Expect(buf.String()).To(ContainSubstring("pinmux_select bank=%c sink=%c source=%c"))
				Expect(buf.String()).To(ContainSubstring("pinmux_pin_sink: 43 values"))
			})
		})

		Describe("Select()", func() {
			It("routes a source the sink has", func() {
				result, err := m.Select(mcu.BankPins, "pmod0_1", 3)
				Expect(err).NotTo(HaveOccurred())
				Expect(result).To(Equal(mcu.Result{Bank: mcu.BankPins, Sink: "pmod0_1", Source: 3, OK: true}))
			})

			It("reports a source the sink does not have", func() {
				result, err := m.Select(mcu.BankBlocks, "uart_3_rx", 2)
				Expect(err).NotTo(HaveOccurred())
				Expect(result.OK).To(BeFalse())
			})

			It("rejects unknown sinks without sending anything", func() {
				before := firmware.Writes()
				_, err := m.Select(mcu.BankBlocks, "ser0_tx", 1)
				Expect(errors.Is(err, core.ErrUnknownSink)).To(BeTrue())
				Expect(firmware.Writes()).To(Equal(before))
			})
		})

		Describe("Disable() and Default()", func() {
			It("always succeed", func() {
				result, err := m.Disable(mcu.BankBlocks, "spi_2_cipo")
				Expect(err).NotTo(HaveOccurred())
				Expect(result.OK).To(BeTrue())
				Expect(result.Source).To(BeEquivalentTo(0))

				result, err = m.Default(mcu.BankBlocks, "spi_2_cipo")
				Expect(err).NotTo(HaveOccurred())
				Expect(result.OK).To(BeTrue())
				Expect(result.Source).To(BeEquivalentTo(1))
			})
		})

		Describe("ApplyConfig()", func() {
			It("applies the default board configuration", func() {
				Expect(m.ApplyConfig(config.DefaultSonataConfig())).To(Succeed())

				cfg, err := m.GetConfig()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.IsShutdown).To(BeFalse())
			})

			It("rejects invalid routes before sending them", func() {
				before := firmware.Writes()
				route := core.Route{Name: "wide", Pins: []core.PinSelection{{Sink: core.PinMb2, Source: 4}}}
				Expect(errors.Is(m.ApplyRoute(route), core.ErrSourceOutOfRange)).To(BeTrue())
				Expect(firmware.Writes()).To(Equal(before))
			})
		})

		Describe("EmergencyStop()", func() {
			BeforeEach(func() {
				Expect(m.EmergencyStop()).To(Succeed())
			})

			It("shuts the firmware down", func() {
				cfg, err := m.GetConfig()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.IsShutdown).To(BeTrue())
			})

			It("makes the firmware refuse selections", func() {
				result, err := m.Select(mcu.BankPins, "ser0_tx", 1)
				Expect(err).NotTo(HaveOccurred())
				Expect(result.OK).To(BeFalse())

				route, err := config.DefaultSonataConfig().Route("uart0")
				Expect(err).NotTo(HaveOccurred())
				Expect(m.ApplyRoute(route)).To(MatchError(ContainSubstring("firmware refused")))
			})
		})

		Describe("SendCommand()", func() {
			It("checks the argument count", func() {
				Expect(m.SendCommand("set_debug")).To(MatchError(ContainSubstring("takes 1 arguments")))
			})

			It("rejects unknown commands", func() {
				Expect(m.SendCommand("reboot")).To(MatchError(ContainSubstring("unknown command")))
			})

			It("configures the firmware", func() {
				Expect(m.SendCommand("finalize_config", 1234)).To(Succeed())

				cfg, err := m.GetConfig()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg).To(Equal(mcu.Config{IsConfig: true, CRC: 1234}))
			})
		})
	})
})

var _ = Describe("ParseBank()", func() {
	It("accepts both spellings", func() {
		for _, s := range []string{"pins", "pin", "PINS"} {
			Expect(mcu.ParseBank(s)).To(Equal(mcu.BankPins))
		}
		Expect(mcu.ParseBank("block")).To(Equal(mcu.BankBlocks))
	})

	It("rejects anything else", func() {
		_, err := mcu.ParseBank("gpio")
		Expect(errors.Is(err, core.ErrUnknownBank)).To(BeTrue())
	})
})
