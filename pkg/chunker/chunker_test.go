package chunker_test

import (
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/petalhealth/petal/pkg/chunker"
)

func TestChunker(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Chunker Suite")
}

var _ = Describe("Chunker", func() {
	Describe("Split", func() {
		It("returns nil for empty text", func() {
			c := chunker.New(500, 100)
			Expect(c.Split("")).To(BeNil())
			Expect(c.Split("   \n\t ")).To(BeNil())
		})

		It("emits a single short text as one chunk", func() {
			c := chunker.New(500, 100)
			chunks := c.Split("Insulin resistance is common in PCOS.")
			Expect(chunks).To(HaveLen(1))
			Expect(chunks[0]).To(Equal("Insulin resistance is common in PCOS."))
		})

		It("never truncates an oversized sentence", func() {
			long := "This single sentence is far longer than the target size and must be emitted whole because size is a soft target."
			c := chunker.New(20, 0)
			chunks := c.Split(long)
			Expect(chunks).To(HaveLen(1))
			Expect(chunks[0]).To(Equal(long))
		})

		It("closes a chunk before reaching the target size", func() {
			text := "One sentence here. Another sentence there. A third follows. And a fourth one."
			c := chunker.New(40, 0)
			chunks := c.Split(text)
			Expect(len(chunks)).To(BeNumerically(">", 1))
		})

		It("loses no sentence content", func() {
			text := "Myo-inositol improves ovulation rates. Spearmint tea may reduce androgens. " +
				"Resistance training improves insulin sensitivity. Vitamin D deficiency is prevalent. " +
				"Low glycemic diets help regulate cycles. Sleep quality affects cortisol."
			c := chunker.New(80, 0)
			chunks := c.Split(text)

			for _, sentence := range []string{
				"Myo-inositol improves ovulation rates.",
				"Spearmint tea may reduce androgens.",
				"Resistance training improves insulin sensitivity.",
				"Vitamin D deficiency is prevalent.",
				"Low glycemic diets help regulate cycles.",
				"Sleep quality affects cortisol.",
			} {
				found := false
				for _, chunk := range chunks {
					if strings.Contains(chunk, sentence) {
						found = true
						break
					}
				}
				Expect(found).To(BeTrue(), "sentence %q missing from all chunks", sentence)
			}
		})

		It("prepends the full previous base chunk to each subsequent chunk", func() {
			text := "Alpha one. Beta two. Gamma three. Delta four. Epsilon five. Zeta six."
			c := chunker.New(25, 0)
			chunks := c.Split(text)
			Expect(len(chunks)).To(BeNumerically(">", 1))

			// Each chunk after the first starts with the base content that
			// closed the previous chunk. Recover base chunks by stripping the
			// overlap prefix and verify containment.
			bases := make([]string, len(chunks))
			bases[0] = chunks[0]
			for i := 1; i < len(chunks); i++ {
				Expect(strings.HasPrefix(chunks[i], bases[i-1]+" ")).To(BeTrue(),
					"chunk %d does not begin with previous base chunk", i)
				bases[i] = strings.TrimPrefix(chunks[i], bases[i-1]+" ")
			}
		})

		It("applies defaults for non-positive parameters", func() {
			c := chunker.New(0, -1)
			Expect(c.TargetSize).To(Equal(chunker.DefaultTargetSize))
			Expect(c.Overlap).To(Equal(chunker.DefaultOverlap))
		})

		It("keeps a trailing fragment without terminal punctuation", func() {
			c := chunker.New(500, 100)
			chunks := c.Split("A full sentence. And a dangling fragment")
			Expect(chunks).To(HaveLen(1))
			Expect(chunks[0]).To(ContainSubstring("And a dangling fragment"))
		})
	})
})
