package config_test

import (
	"github.com/pkg/errors"

	"muxer/config"
	"muxer/core"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("BoardConfig", func() {
	var (
		cfg *config.BoardConfig
		err error
		raw string
	)

	JustBeforeEach(func() {
		cfg, err = config.LoadConfig([]byte(raw))
	})

	Describe("LoadConfig()", func() {
		Context("with routes", func() {
			BeforeEach(func() {
				raw = `{
					"routes": {
						"pmod": {"pins": {"pmod0_2": 3, "pmod0_1": 2}},
						"gpio": {"blocks": {"gpio_3_ios_0": 2}}
					}
				}`
			})

			It("applies defaults", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Name).To(Equal("default"))
				Expect(cfg.DisableUnlisted).To(BeFalse())
			})

			It("resolves routes sorted by name", func() {
				Expect(cfg.RouteNames()).To(Equal([]string{"gpio", "pmod"}))

				routes, err := cfg.ResolveRoutes()
				Expect(err).NotTo(HaveOccurred())
				Expect(routes).To(Equal([]core.Route{
					{
						Name:   "gpio",
						Blocks: []core.BlockSelection{{Sink: core.BlockGpio3Ios0, Source: 2}},
					},
					{
						Name: "pmod",
						Pins: []core.PinSelection{
							{Sink: core.PinPmod0_1, Source: 2},
							{Sink: core.PinPmod0_2, Source: 3},
						},
					},
				}))
			})
		})

		Context("without routes", func() {
			BeforeEach(func() {
				raw = `{"name": "bare"}`
			})

			It("keeps the name and an empty route set", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Name).To(Equal("bare"))
				Expect(cfg.Routes).NotTo(BeNil())

				routes, err := cfg.ResolveRoutes()
				Expect(err).NotTo(HaveOccurred())
				Expect(routes).To(BeEmpty())
			})
		})

		Context("with malformed JSON", func() {
			BeforeEach(func() {
				raw = `{"routes": [}`
			})

			It("fails", func() {
				Expect(err).To(MatchError(ContainSubstring("failed to parse board config")))
			})
		})
	})

	Describe("Route()", func() {
		BeforeEach(func() {
			raw = `{"routes": {
				"typo": {"pins": {"ser9_tx": 1}},
				"wide": {"blocks": {"uart_4_rx": 3}}
			}}`
		})

		It("rejects unknown sink names", func() {
			_, err := cfg.Route("typo")
			Expect(errors.Is(err, core.ErrUnknownSink)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring(`"ser9_tx"`))
		})

		It("rejects sources the sink does not have", func() {
			_, err := cfg.Route("wide")
			Expect(errors.Is(err, core.ErrSourceOutOfRange)).To(BeTrue())
		})

		It("rejects unconfigured routes", func() {
			_, err := cfg.Route("missing")
			Expect(err).To(MatchError(ContainSubstring("not configured")))
		})

		It("fails the whole configuration", func() {
			_, err := cfg.ResolveRoutes()
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Apply()", func() {
		var mux *core.Pinmux

		BeforeEach(func() {
			raw = `{"routes": {"uart0": {"pins": {"ser0_tx": 1}, "blocks": {"uart_0_rx": 3}}}}`
			mux = core.NewPinmux()
		})

		It("writes every route", func() {
			Expect(cfg.Apply(mux)).To(Succeed())
		})

		Context("when one route is invalid", func() {
			JustBeforeEach(func() {
				cfg.Routes["broken"] = config.RouteConfig{Pins: map[string]uint8{"mb2": 5}}
			})

			It("fails before writing", func() {
				err := cfg.Apply(mux)
				Expect(errors.Is(err, core.ErrSourceOutOfRange)).To(BeTrue())
			})
		})
	})
})

var _ = Describe("DefaultSonataConfig()", func() {
	It("resolves every route", func() {
		routes, err := config.DefaultSonataConfig().ResolveRoutes()
		Expect(err).NotTo(HaveOccurred())
		Expect(routes).To(HaveLen(6))
	})

	It("matches the firmware's default routes", func() {
		routes, err := config.DefaultSonataConfig().ResolveRoutes()
		Expect(err).NotTo(HaveOccurred())

		defaults := core.DefaultRoutes()
		Expect(routes).To(HaveLen(len(defaults)))
		for i, r := range routes {
			Expect(r.Name).To(Equal(defaults[i].Name))
			Expect(r.Pins).To(ConsistOf(defaults[i].Pins))
			Expect(r.Blocks).To(ConsistOf(defaults[i].Blocks))
		}
	})

	It("routes no pin twice", func() {
		routes, _ := config.DefaultSonataConfig().ResolveRoutes()

		seen := map[core.PinSink]string{}
		for _, r := range routes {
			for _, sel := range r.Pins {
				Expect(seen).NotTo(HaveKey(sel.Sink), "pin %s routed twice", sel.Sink)
				seen[sel.Sink] = r.Name
			}
		}
	})
})
