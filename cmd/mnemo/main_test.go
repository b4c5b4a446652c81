package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("mnemo", func() {
	var baseArgs []string

	BeforeEach(func() {
		dir := GinkgoT().TempDir()
		cfgPath := filepath.Join(dir, "config.toml")
		Expect(os.WriteFile(cfgPath, []byte("providers = []\n"), 0o644)).To(Succeed())

		baseArgs = []string{
			"--config", cfgPath,
			"--memory-path", filepath.Join(dir, "memory.json"),
			"--history-path", filepath.Join(dir, "conversations.jsonl"),
		}
	})

	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		cmd := newRootCmd()
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetIn(strings.NewReader(""))
		cmd.SetArgs(append(append([]string{}, baseArgs...), args...))
		err := cmd.ExecuteContext(context.Background())
		return out.String(), err
	}

	It("remembers facts across commands", func() {
		out, err := run("chat", "--user", "u1", "my color is blue")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("I’ll remember your color is blue.\n"))

		out, err = run("chat", "--user", "u1", "what is my color?")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("You told me your color is blue.\n"))

		out, err = run("facts", "list", "--user", "u1")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("color = blue\n"))
	})

	It("forgets facts", func() {
		_, err := run("chat", "--user", "u1", "my color is blue")
		Expect(err).NotTo(HaveOccurred())

		_, err = run("facts", "forget", "--user", "u1")
		Expect(err).NotTo(HaveOccurred())

		out, err := run("facts", "list", "--user", "u1")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(BeEmpty())
	})

	It("shows, exports and clears history", func() {
		_, err := run("chat", "--user", "u1", "hello")
		Expect(err).NotTo(HaveOccurred())

		out, err := run("history", "--user", "u1")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("user      hello"))
		Expect(out).To(ContainSubstring("assistant Got it. hello"))

		out, err = run("export", "--user", "u1")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring(`"user_id": "u1"`))

		out, err = run("clear", "--user", "u1")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("removed 2 events\n"))

		out, err = run("history", "--user", "u1")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(BeEmpty())
	})

	It("reads messages from stdin", func() {
		var out bytes.Buffer
		cmd := newRootCmd()
		cmd.SetOut(&out)
		cmd.SetIn(strings.NewReader("my dog is Rex\nwhat is my dog\n"))
		cmd.SetArgs(append(append([]string{}, baseArgs...), "chat", "--user", "u2"))
		Expect(cmd.ExecuteContext(context.Background())).To(Succeed())

		Expect(out.String()).To(ContainSubstring("I’ll remember your dog is Rex."))
		Expect(out.String()).To(ContainSubstring("You told me your dog is Rex."))
	})
})
