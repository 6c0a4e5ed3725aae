package memory_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/petalhealth/petal/pkg/vector"
	"github.com/petalhealth/petal/pkg/vector/memory"
)

func TestMemoryDriver(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Memory Vector Driver Suite")
}

var _ = Describe("Driver", func() {
	var (
		driver *memory.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		driver = memory.NewDriver()
		ctx = context.Background()
		Expect(driver.EnsureCollection(ctx, 3)).To(Succeed())
	})

	entry := func(id string, vec []float32, source string) vector.Entry {
		return vector.Entry{
			ID:     id,
			Vector: vec,
			Passage: vector.Passage{
				Text:     "passage " + id,
				Metadata: vector.Metadata{Source: source},
			},
		}
	}

	Describe("Upsert", func() {
		It("rejects vectors of the wrong dimension", func() {
			err := driver.Upsert(ctx, []vector.Entry{entry("a", []float32{1, 0}, "doc")})
			Expect(err).To(MatchError(vector.ErrDimensionMismatch))
		})

		It("replaces entries with the same ID", func() {
			Expect(driver.Upsert(ctx, []vector.Entry{entry("a", []float32{1, 0, 0}, "old")})).To(Succeed())
			Expect(driver.Upsert(ctx, []vector.Entry{entry("a", []float32{1, 0, 0}, "new")})).To(Succeed())

			results, err := driver.Search(ctx, []float32{1, 0, 0}, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].Passage.Metadata.Source).To(Equal("new"))
		})
	})

	Describe("Search", func() {
		BeforeEach(func() {
			Expect(driver.Upsert(ctx, []vector.Entry{
				entry("a", []float32{1, 0, 0}, "a.txt"),
				entry("b", []float32{0, 1, 0}, "b.txt"),
				entry("c", []float32{0.9, 0.1, 0}, "c.txt"),
			})).To(Succeed())
		})

		It("orders results by descending similarity", func() {
			results, err := driver.Search(ctx, []float32{1, 0, 0}, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(3))
			Expect(results[0].Passage.Metadata.Source).To(Equal("a.txt"))
			Expect(results[1].Passage.Metadata.Source).To(Equal("c.txt"))
			Expect(results[0].Score).To(BeNumerically(">=", results[1].Score))
			Expect(results[1].Score).To(BeNumerically(">=", results[2].Score))
		})

		It("caps results at the limit", func() {
			results, err := driver.Search(ctx, []float32{1, 0, 0}, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
		})

		It("breaks score ties by insertion order", func() {
			Expect(driver.Recreate(ctx, 3)).To(Succeed())
			Expect(driver.Upsert(ctx, []vector.Entry{
				entry("first", []float32{1, 0, 0}, "first.txt"),
				entry("second", []float32{1, 0, 0}, "second.txt"),
			})).To(Succeed())

			results, err := driver.Search(ctx, []float32{1, 0, 0}, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(results[0].Passage.Metadata.Source).To(Equal("first.txt"))
			Expect(results[1].Passage.Metadata.Source).To(Equal("second.txt"))
		})
	})

	Describe("Recreate", func() {
		It("drops all stored entries", func() {
			Expect(driver.Upsert(ctx, []vector.Entry{entry("a", []float32{1, 0, 0}, "a.txt")})).To(Succeed())
			Expect(driver.Recreate(ctx, 3)).To(Succeed())

			results, err := driver.Search(ctx, []float32{1, 0, 0}, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(BeEmpty())
		})
	})
})
