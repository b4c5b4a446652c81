package intent_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"mnemo/internal/intent"
)

var _ = Describe("Classifier", func() {
	var c *intent.Classifier

	BeforeEach(func() {
		c = intent.New()
	})

	DescribeTable("remember",
		func(msg, key, value string) {
			Expect(c.Classify(msg)).To(Equal(intent.Intent{Kind: intent.KindRemember, Key: key, Value: value}))
		},
		Entry("bare", "my color is blue", "color", "blue"),
		Entry("with remember", "Remember my favorite color is teal", "favorite color", "teal"),
		Entry("with remember that", "please remember that my city is Porto", "city", "Porto"),
		Entry("equals sign", "my pin = 1234", "pin", "1234"),
		Entry("surrounding whitespace", "  my dog is Rex  ", "dog", "Rex"),
		Entry("shortest key", "my password is my secret", "password", "my secret"),
	)

	DescribeTable("recall",
		func(msg, key string) {
			Expect(c.Classify(msg)).To(Equal(intent.Intent{Kind: intent.KindRecall, Key: key}))
		},
		Entry("what is", "what is my color?", "color"),
		Entry("what's", "What's my favorite color", "favorite color"),
		Entry("typographic apostrophe", "what’s my city?", "city"),
		Entry("when is", "when is my birthday ?", "birthday"),
	)

	DescribeTable("chat",
		func(msg string) {
			Expect(c.Classify(msg).Kind).To(Equal(intent.KindChat))
		},
		Entry("question", "how tall is the Eiffel tower?"),
		Entry("no copula", "my dog barks"),
		Entry("someone else's fact", "what is your name"),
		Entry("empty", ""),
	)

	It("checks remember before recall", func() {
		in := c.Classify("my question is what is my name?")
		Expect(in.Kind).To(Equal(intent.KindRemember))
		Expect(in.Key).To(Equal("question"))
		Expect(in.Value).To(Equal("what is my name?"))
	})

	It("names kinds", func() {
		Expect(intent.KindRemember.String()).To(Equal("remember"))
		Expect(intent.KindRecall.String()).To(Equal("recall"))
		Expect(intent.KindChat.String()).To(Equal("chat"))
	})
})
