package agent_test

import (
	"context"
	"errors"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"mnemo/internal/agent"
	"mnemo/internal/history"
	"mnemo/internal/llm"
	"mnemo/internal/memory"
)

type stubGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.reply, g.err
}

type brokenStore struct {
	memory.Store
}

func (brokenStore) Remember(context.Context, string, string, string) error {
	return errors.New("disk full")
}

func (brokenStore) Recall(context.Context, string, string) (string, bool, error) {
	return "", false, errors.New("disk gone")
}

func (brokenStore) List(context.Context, string) (map[string]string, error) {
	return nil, errors.New("disk gone")
}

type brokenLog struct{}

func (brokenLog) Append(context.Context, history.Event) error {
	return errors.New("read-only")
}

var _ = Describe("ChatRunner", func() {
	var (
		ctx    context.Context
		store  memory.Store
		log    *history.Log
		gen    *stubGenerator
		runner *agent.ChatRunner
	)

	BeforeEach(func() {
		ctx = context.Background()
		dir := GinkgoT().TempDir()

		var err error
		store, err = memory.NewFileStore(filepath.Join(dir, "memory.json"))
		Expect(err).NotTo(HaveOccurred())
		log = history.Open(filepath.Join(dir, "conversations.jsonl"))
		gen = &stubGenerator{reply: "Sure thing."}
		runner = agent.NewChatRunner(store, log, agent.WithGenerator(gen))
	})

	transcript := func(userID string) []history.Event {
		events, err := log.Export(ctx, userID)
		Expect(err).NotTo(HaveOccurred())
		return events
	}

	It("nudges on an empty message without logging", func() {
		reply, err := runner.Run(ctx, "u1", "   ")
		Expect(err).NotTo(HaveOccurred())
		Expect(reply).To(Equal(agent.Reply{Kind: agent.ReplyPrompt, Text: "Tell me something and I’ll try to help."}))
		Expect(transcript("u1")).To(BeEmpty())
	})

	It("remembers a fact and acknowledges it", func() {
		reply, err := runner.Run(ctx, "u1", "Remember my Favorite Color is  blue ")
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.Kind).To(Equal(agent.ReplyAck))
		Expect(reply.Text).To(Equal("I’ll remember your Favorite Color is blue."))

		v, ok, err := store.Recall(ctx, "u1", "favorite color")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("blue"))
	})

	It("recalls a remembered fact", func() {
		_, err := runner.Run(ctx, "u1", "my city is Porto")
		Expect(err).NotTo(HaveOccurred())

		reply, err := runner.Run(ctx, "u1", "what's my City?")
		Expect(err).NotTo(HaveOccurred())
		Expect(reply).To(Equal(agent.Reply{Kind: agent.ReplyFound, Text: "You told me your City is Porto."}))
	})

	It("explains how to teach an unknown fact", func() {
		reply, err := runner.Run(ctx, "u1", "what is my shoe size?")
		Expect(err).NotTo(HaveOccurred())
		Expect(reply).To(Equal(agent.Reply{
			Kind: agent.ReplyNotFound,
			Text: "I don’t have your shoe size yet. You can say: “remember my shoe size is …”.",
		}))
	})

	It("does not leak facts between users", func() {
		_, err := runner.Run(ctx, "u1", "my city is Porto")
		Expect(err).NotTo(HaveOccurred())

		reply, err := runner.Run(ctx, "u2", "what is my city")
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.Kind).To(Equal(agent.ReplyNotFound))
	})

	It("sends general chat to the generator with the user's facts", func() {
		_, err := runner.Run(ctx, "u1", "my name is Ana")
		Expect(err).NotTo(HaveOccurred())

		reply, err := runner.Run(ctx, "u1", "suggest a dinner")
		Expect(err).NotTo(HaveOccurred())
		Expect(reply).To(Equal(agent.Reply{Kind: agent.ReplyGenerated, Text: "Sure thing."}))
		Expect(gen.prompts).To(Equal([]string{"(User facts: name=Ana)\nUser said: suggest a dinner\nRespond helpfully and briefly."}))
	})

	It("falls back deterministically when the generator is unavailable", func() {
		gen.err = llm.ErrUnavailable

		reply, err := runner.Run(ctx, "u1", "  hello there ")
		Expect(err).NotTo(HaveOccurred())
		Expect(reply).To(Equal(agent.Reply{Kind: agent.ReplyFallback, Text: "Got it. hello there"}))
	})

	It("falls back without a generator", func() {
		runner = agent.NewChatRunner(store, log)

		reply, err := runner.Run(ctx, "u1", "hello")
		Expect(err).NotTo(HaveOccurred())
		Expect(reply).To(Equal(agent.Reply{Kind: agent.ReplyFallback, Text: "Got it. hello"}))
	})

	It("logs the user turn before the assistant turn", func() {
		_, err := runner.Run(ctx, "u1", "my dog is Rex")
		Expect(err).NotTo(HaveOccurred())

		events := transcript("u1")
		Expect(events).To(HaveLen(2))
		Expect(events[0].Role).To(Equal(history.RoleUser))
		Expect(events[0].Message).To(Equal("my dog is Rex"))
		Expect(events[1].Role).To(Equal(history.RoleAssistant))
		Expect(events[1].Message).To(Equal("I’ll remember your dog is Rex."))
	})

	Context("when storage fails", func() {
		BeforeEach(func() {
			runner = agent.NewChatRunner(brokenStore{}, log, agent.WithGenerator(gen))
		})

		It("apologizes for a failed write", func() {
			reply, err := runner.Run(ctx, "u1", "my dog is Rex")
			Expect(err).NotTo(HaveOccurred())
			Expect(reply).To(Equal(agent.Reply{Kind: agent.ReplyError, Text: "Sorry, I couldn't save that right now."}))
		})

		It("treats a failed read as not found", func() {
			reply, err := runner.Run(ctx, "u1", "what is my dog")
			Expect(err).NotTo(HaveOccurred())
			Expect(reply.Kind).To(Equal(agent.ReplyNotFound))
		})

		It("still generates without facts", func() {
			reply, err := runner.Run(ctx, "u1", "hi")
			Expect(err).NotTo(HaveOccurred())
			Expect(reply.Kind).To(Equal(agent.ReplyGenerated))
			Expect(gen.prompts).To(Equal([]string{"User said: hi\nRespond helpfully and briefly."}))
		})
	})

	It("ignores history failures", func() {
		runner = agent.NewChatRunner(store, brokenLog{})

		reply, err := runner.Run(ctx, "u1", "my dog is Rex")
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.Kind).To(Equal(agent.ReplyAck))
	})

	It("returns the context error when cancelled on entry", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := runner.Run(cctx, "u1", "hello")
		Expect(err).To(MatchError(context.Canceled))
		Expect(transcript("u1")).To(BeEmpty())
	})
})
