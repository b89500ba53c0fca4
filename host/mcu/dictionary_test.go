package mcu_test

import (
	"muxer/host/mcu"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseDictionary()", func() {
	var (
		dict *mcu.Dictionary
		err  error
		raw  string
	)

	JustBeforeEach(func() {
		dict, err = mcu.ParseDictionary([]byte(raw))
	})

	Context("with a valid dictionary", func() {
		BeforeEach(func() {
			raw = `{
				"version": "v1",
				"commands": {"identify offset=%u count=%c": 1, "emergency_stop": 3},
				"responses": {"identify_response offset=%u data=%*s": 0},
				"enumerations": {"sinks": {"b": 1, "a": 0, "c": 2}}
			}`
		})

		It("indexes commands and responses", func() {
			Expect(err).NotTo(HaveOccurred())

			format, ok := dict.Command("identify")
			Expect(ok).To(BeTrue())
			Expect(format).To(Equal(mcu.MessageFormat{
				ID:     1,
				Name:   "identify",
				Params: []string{"offset", "count"},
				Types:  []string{"%u", "%c"},
			}))

			format, ok = dict.ResponseByID(0)
			Expect(ok).To(BeTrue())
			Expect(format.Name).To(Equal("identify_response"))

			Expect(dict.CommandNames()).To(Equal([]string{"emergency_stop", "identify"}))
		})

		It("resolves enumerations", func() {
			Expect(dict.EnumerationNames("sinks")).To(Equal([]string{"a", "b", "c"}))

			idx, ok := dict.EnumerationValue("sinks", "c")
			Expect(ok).To(BeTrue())
			Expect(idx).To(Equal(2))

			_, ok = dict.EnumerationValue("other", "c")
			Expect(ok).To(BeFalse())
		})
	})

	Context("with a malformed parameter", func() {
		BeforeEach(func() {
			raw = `{"commands": {"broken arg": 2}}`
		})

		It("fails", func() {
			Expect(err).To(MatchError(ContainSubstring("malformed parameter")))
		})
	})

	Context("with invalid JSON", func() {
		BeforeEach(func() {
			raw = `{"commands": `
		})

		It("fails", func() {
			Expect(err).To(MatchError(ContainSubstring("failed to unmarshal dictionary")))
		})
	})
})
