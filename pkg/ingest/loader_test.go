package ingest_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/petalhealth/petal/pkg/ingest"
	"github.com/petalhealth/petal/pkg/logger"
)

func TestIngest(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Ingest Suite")
}

var _ = Describe("Loader", func() {
	var (
		loader *ingest.Loader
		dir    string
	)

	BeforeEach(func() {
		loader = ingest.NewLoader(logger.New(logger.WithWriter(io.Discard)))
		dir = GinkgoT().TempDir()
	})

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())
		return path
	}

	Describe("LoadFile", func() {
		It("loads a plain text file", func() {
			path := write("diet.txt", "Low glycemic diets help regulate cycles.")
			doc, err := loader.LoadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.Text).To(Equal("Low glycemic diets help regulate cycles."))
			Expect(doc.Title).To(Equal("diet"))
			Expect(doc.Path).To(Equal(path))
		})

		It("rejects unsupported extensions", func() {
			path := write("notes.docx", "ignored")
			_, err := loader.LoadFile(path)
			Expect(err).To(MatchError(ingest.ErrUnsupported))
		})

		It("rejects empty files", func() {
			path := write("empty.txt", "   ")
			_, err := loader.LoadFile(path)
			Expect(err).To(HaveOccurred())
		})

		It("fails on a corrupt pdf", func() {
			path := write("broken.pdf", "this is not a pdf")
			_, err := loader.LoadFile(path)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("LoadDir", func() {
		It("skips corrupt files and keeps loading the rest", func() {
			write("broken.pdf", "this is not a pdf")
			write("valid.txt", "Spearmint tea may reduce androgens.")

			docs, skipped, err := loader.LoadDir(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(1))
			Expect(docs[0].Title).To(Equal("valid"))
			Expect(skipped).To(Equal(1))
		})

		It("ignores unsupported files without counting them as errors", func() {
			write("notes.docx", "ignored")
			write("valid.txt", "Vitamin D deficiency is prevalent.")

			docs, skipped, err := loader.LoadDir(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(1))
			Expect(skipped).To(BeZero())
		})

		It("walks nested directories", func() {
			sub := filepath.Join(dir, "nested")
			Expect(os.MkdirAll(sub, 0o755)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(sub, "deep.md"), []byte("Sleep quality affects cortisol."), 0o600)).To(Succeed())

			docs, _, err := loader.LoadDir(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(1))
		})
	})
})
