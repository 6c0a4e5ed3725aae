package local_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/petalhealth/petal/pkg/history"
	"github.com/petalhealth/petal/pkg/history/local"
)

func TestLocalHistory(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Local History Suite")
}

var _ = Describe("Driver", func() {
	var (
		driver *local.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		driver = local.NewDriver()
		ctx = context.Background()
	})

	It("assigns monotonically increasing ids", func() {
		first, err := driver.Append(ctx, "u1", history.Turn{Role: "user", Content: "hi"})
		Expect(err).NotTo(HaveOccurred())
		second, err := driver.Append(ctx, "u1", history.Turn{Role: "assistant", Content: "hello"})
		Expect(err).NotTo(HaveOccurred())
		Expect(second).To(BeNumerically(">", first))
	})

	It("returns recent turns oldest-first", func() {
		for _, content := range []string{"one", "two", "three"} {
			_, err := driver.Append(ctx, "u1", history.Turn{Role: "user", Content: content})
			Expect(err).NotTo(HaveOccurred())
		}

		turns, err := driver.Recent(ctx, "u1", 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(turns).To(HaveLen(2))
		Expect(turns[0].Content).To(Equal("two"))
		Expect(turns[1].Content).To(Equal("three"))
	})

	It("returns everything when fewer turns exist than requested", func() {
		_, err := driver.Append(ctx, "u1", history.Turn{Role: "user", Content: "only"})
		Expect(err).NotTo(HaveOccurred())

		turns, err := driver.Recent(ctx, "u1", 50)
		Expect(err).NotTo(HaveOccurred())
		Expect(turns).To(HaveLen(1))
	})

	It("isolates users from each other", func() {
		_, err := driver.Append(ctx, "u1", history.Turn{Role: "user", Content: "mine"})
		Expect(err).NotTo(HaveOccurred())

		turns, err := driver.Recent(ctx, "u2", 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(turns).To(BeEmpty())
	})

	It("sets a creation timestamp when none is provided", func() {
		_, err := driver.Append(ctx, "u1", history.Turn{Role: "user", Content: "hi"})
		Expect(err).NotTo(HaveOccurred())

		turns, err := driver.Recent(ctx, "u1", 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(turns[0].CreatedAt).NotTo(BeZero())
	})
})
