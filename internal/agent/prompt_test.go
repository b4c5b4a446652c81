package agent_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"mnemo/internal/agent"
)

var _ = Describe("BuildPrompt", func() {
	It("omits the fact line when there are no facts", func() {
		Expect(agent.BuildPrompt(nil, "hello")).To(Equal("User said: hello\nRespond helpfully and briefly."))
	})

	It("lists facts in key order", func() {
		prompt := agent.BuildPrompt(map[string]string{"name": "Ana", "city": "Porto"}, "plan my weekend")
		Expect(prompt).To(Equal("(User facts: city=Porto; name=Ana)\nUser said: plan my weekend\nRespond helpfully and briefly."))
	})
})
