package prompt_test

import (
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/petalhealth/petal/pkg/prompt"
)

func TestPrompt(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Prompt Suite")
}

var _ = Describe("Compose", func() {
	It("embeds context and question in chat mode", func() {
		out := prompt.Compose("inositol improves ovulation", "does inositol help?", prompt.ModeChat)
		Expect(out).To(ContainSubstring("Context:\ninositol improves ovulation"))
		Expect(out).To(ContainSubstring("User Question:\ndoes inositol help?"))
		Expect(out).To(ContainSubstring("warm"))
	})

	It("embeds context and lab data in upload mode", func() {
		out := prompt.Compose("context passage", `{"testosterone": "high"}`, prompt.ModeUpload)
		Expect(out).To(ContainSubstring("Lab Report (JSON):\n{\"testosterone\": \"high\"}"))
		Expect(out).To(ContainSubstring("firm, medically-reasonable"))
		Expect(out).NotTo(ContainSubstring("User Question:"))
	})

	It("defaults unknown modes to chat", func() {
		out := prompt.Compose("ctx", "q", prompt.Mode("mystery"))
		Expect(out).To(ContainSubstring("User Question:"))
	})

	It("never truncates oversized context", func() {
		big := strings.Repeat("long passage text. ", 5000)
		out := prompt.Compose(big, "q", prompt.ModeChat)
		Expect(out).To(ContainSubstring(big))
	})
})
