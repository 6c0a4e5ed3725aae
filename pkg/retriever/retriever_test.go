package retriever_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/petalhealth/petal/pkg/chunker"
	"github.com/petalhealth/petal/pkg/ingest"
	"github.com/petalhealth/petal/pkg/logger"
	"github.com/petalhealth/petal/pkg/retriever"
	testutils "github.com/petalhealth/petal/pkg/utils/test"
	"github.com/petalhealth/petal/pkg/vector"
	"github.com/petalhealth/petal/pkg/vector/memory"
)

func TestRetriever(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Retriever Suite")
}

var _ = Describe("Retriever", func() {
	var (
		embedder *testutils.MockEmbedder
		driver   *memory.Driver
		r        *retriever.Retriever
		ctx      context.Context
		dir      string
	)

	BeforeEach(func() {
		log := logger.New(logger.WithWriter(io.Discard))
		embedder = testutils.NewMockEmbedder()
		driver = memory.NewDriver()
		r = retriever.New(chunker.New(500, 100), embedder, driver, ingest.NewLoader(log), log)
		ctx = context.Background()
		dir = GinkgoT().TempDir()
	})

	write := func(name, content string) {
		Expect(os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600)).To(Succeed())
	}

	Describe("IndexCorpus", func() {
		It("indexes chunks from every supported file", func() {
			write("inositol.txt", "Myo-inositol improves ovulation rates in PCOS.")
			write("exercise.txt", "Resistance training improves insulin sensitivity.")

			stats, err := r.IndexCorpus(ctx, dir, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Documents).To(Equal(2))
			Expect(stats.Chunks).To(Equal(2))
		})

		It("skips corrupt files without aborting the run", func() {
			write("broken.pdf", "not really a pdf")
			write("valid.txt", "Spearmint tea may reduce androgens.")

			stats, err := r.IndexCorpus(ctx, dir, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Documents).To(Equal(1))
			Expect(stats.Skipped).To(Equal(1))

			results, err := r.Retrieve(ctx, "androgens", 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).NotTo(BeEmpty())
		})

		It("duplicates entries when re-run without rebuild", func() {
			write("doc.txt", "Vitamin D deficiency is prevalent in PCOS.")

			_, err := r.IndexCorpus(ctx, dir, false)
			Expect(err).NotTo(HaveOccurred())
			_, err = r.IndexCorpus(ctx, dir, false)
			Expect(err).NotTo(HaveOccurred())

			results, err := r.Retrieve(ctx, "vitamin D", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
		})

		It("starts fresh on rebuild", func() {
			write("doc.txt", "Vitamin D deficiency is prevalent in PCOS.")

			_, err := r.IndexCorpus(ctx, dir, false)
			Expect(err).NotTo(HaveOccurred())
			_, err = r.IndexCorpus(ctx, dir, true)
			Expect(err).NotTo(HaveOccurred())

			results, err := r.Retrieve(ctx, "vitamin D", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
		})
	})

	Describe("Retrieve", func() {
		It("returns passages from multiple sources for a shared term", func() {
			write("a.txt", "PCOS affects insulin and androgen levels.")
			write("b.txt", "Insulin resistance drives many PCOS symptoms.")

			_, err := r.IndexCorpus(ctx, dir, false)
			Expect(err).NotTo(HaveOccurred())

			results, err := r.Retrieve(ctx, "insulin", 5)
			Expect(err).NotTo(HaveOccurred())

			sources := map[string]bool{}
			for _, res := range results {
				sources[res.Passage.Metadata.Source] = true
			}
			Expect(sources).To(HaveLen(2))
		})

		It("fails the request when embedding fails", func() {
			embedder.FailOn = "bad query"
			_, err := r.Retrieve(ctx, "bad query", 5)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("embedding query"))
		})

		It("is deterministic for repeated identical queries", func() {
			write("a.txt", "PCOS affects insulin and androgen levels.")
			write("b.txt", "Insulin resistance drives many PCOS symptoms.")
			_, err := r.IndexCorpus(ctx, dir, false)
			Expect(err).NotTo(HaveOccurred())

			first, err := r.Retrieve(ctx, "insulin", 5)
			Expect(err).NotTo(HaveOccurred())
			second, err := r.Retrieve(ctx, "insulin", 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))
		})
	})

	Describe("Deduplicate", func() {
		passage := func(source, page string) vector.Passage {
			return vector.Passage{
				Text:     "text from " + source,
				Metadata: vector.Metadata{Source: source, Page: page},
			}
		}

		It("keeps first occurrence per (source, page) key", func() {
			in := []vector.Passage{
				passage("a.txt", "1"),
				passage("a.txt", "1"),
				passage("a.txt", "2"),
				passage("b.txt", "1"),
			}
			out := retriever.Deduplicate(in)
			Expect(out).To(HaveLen(3))
			Expect(out[0]).To(Equal(in[0]))
			Expect(out[1]).To(Equal(in[2]))
			Expect(out[2]).To(Equal(in[3]))
		})

		It("is idempotent", func() {
			in := []vector.Passage{
				passage("a.txt", "1"),
				passage("a.txt", "1"),
				passage("b.txt", ""),
			}
			once := retriever.Deduplicate(in)
			twice := retriever.Deduplicate(once)
			Expect(twice).To(Equal(once))
		})

		It("never grows the input", func() {
			in := []vector.Passage{passage("a.txt", "1")}
			Expect(len(retriever.Deduplicate(in))).To(BeNumerically("<=", len(in)))
		})
	})

	Describe("Citations", func() {
		It("fills defaults for missing metadata and trims snippets", func() {
			long := make([]byte, 0, 400)
			for i := 0; i < 400; i++ {
				long = append(long, 'x')
			}
			citations := retriever.Citations([]vector.Passage{
				{Text: string(long), Metadata: vector.Metadata{}},
			})
			Expect(citations).To(HaveLen(1))
			Expect(citations[0].Page).To(Equal("N/A"))
			Expect(citations[0].Title).To(Equal("Untitled"))
			Expect(citations[0].Source).To(Equal("Unknown"))
			Expect(len(citations[0].Snippet)).To(Equal(300))
		})

		It("deduplicates before rendering", func() {
			citations := retriever.Citations([]vector.Passage{
				{Text: "one", Metadata: vector.Metadata{Source: "a.txt", Page: "1"}},
				{Text: "two", Metadata: vector.Metadata{Source: "a.txt", Page: "1"}},
			})
			Expect(citations).To(HaveLen(1))
			Expect(citations[0].Snippet).To(Equal("one"))
		})
	})
})
