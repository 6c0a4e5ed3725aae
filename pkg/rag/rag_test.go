package rag_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/petalhealth/petal/pkg/chunker"
	"github.com/petalhealth/petal/pkg/convo"
	"github.com/petalhealth/petal/pkg/history/local"
	"github.com/petalhealth/petal/pkg/ingest"
	"github.com/petalhealth/petal/pkg/llm"
	"github.com/petalhealth/petal/pkg/logger"
	"github.com/petalhealth/petal/pkg/prompt"
	"github.com/petalhealth/petal/pkg/rag"
	"github.com/petalhealth/petal/pkg/retriever"
	testutils "github.com/petalhealth/petal/pkg/utils/test"
	"github.com/petalhealth/petal/pkg/vector/memory"
)

func TestRAG(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "RAG Suite")
}

var _ = Describe("Engine", func() {
	var (
		embedder *testutils.MockEmbedder
		chat     *testutils.MockChatClient
		engine   *rag.Engine
		ctx      context.Context
	)

	BeforeEach(func() {
		log := logger.New(logger.WithWriter(io.Discard))
		embedder = testutils.NewMockEmbedder()
		chat = testutils.NewMockChatClient("Inositol supports ovulation and insulin sensitivity.")

		driver := memory.NewDriver()
		loader := ingest.NewLoader(log)
		r := retriever.New(chunker.New(500, 100), embedder, driver, loader, log)

		dir := GinkgoT().TempDir()
		Expect(os.WriteFile(
			filepath.Join(dir, "inositol.txt"),
			[]byte("Myo-inositol improves ovulation rates in PCOS."),
			0o600,
		)).To(Succeed())
		_, err := r.IndexCorpus(context.Background(), dir, false)
		Expect(err).NotTo(HaveOccurred())

		compactor := convo.NewCompactor(local.NewDriver(), convo.DefaultRecallPolicy(), log)
		engine = rag.New(r, compactor, chat, log)
		ctx = context.Background()
	})

	It("returns a cleaned reply with citations", func() {
		chat.Reply = "Inositol helps.Â "

		answer, err := engine.Answer(ctx, "u1", "does inositol help?", prompt.ModeChat)
		Expect(err).NotTo(HaveOccurred())
		Expect(answer.Reply).To(Equal("Inositol helps."))
		Expect(answer.Citations).To(HaveLen(1))
		Expect(answer.Citations[0].Source).To(ContainSubstring("inositol.txt"))
	})

	It("embeds retrieved passage text in the prompt", func() {
		_, err := engine.Answer(ctx, "u1", "does inositol help?", prompt.ModeChat)
		Expect(err).NotTo(HaveOccurred())

		Expect(chat.Requests).To(HaveLen(1))
		last := chat.Requests[0][len(chat.Requests[0])-1]
		Expect(last.Role).To(Equal(llm.RoleUser))
		Expect(last.Content).To(ContainSubstring("Myo-inositol improves ovulation rates"))
		Expect(last.Content).To(ContainSubstring("does inositol help?"))
	})

	It("prefixes the minimal system prompt for non-recall queries", func() {
		_, err := engine.Answer(ctx, "u1", "does inositol help?", prompt.ModeChat)
		Expect(err).NotTo(HaveOccurred())

		messages := chat.Requests[0]
		Expect(messages).To(HaveLen(2))
		Expect(messages[0].Role).To(Equal(llm.RoleSystem))
		Expect(messages[0].Content).To(Equal(convo.DefaultSystemPrompt))
	})

	It("aborts the request when retrieval fails", func() {
		embedder.FailOn = "doomed query"

		_, err := engine.Answer(ctx, "u1", "doomed query", prompt.ModeChat)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("retrieving passages"))
		Expect(chat.Requests).To(BeEmpty())
	})

	It("aborts the request when completion fails", func() {
		chat.Fail = true

		_, err := engine.Answer(ctx, "u1", "does inositol help?", prompt.ModeChat)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("completing prompt"))
	})
})
