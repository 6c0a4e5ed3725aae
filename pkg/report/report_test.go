package report_test

import (
	"context"
	"errors"
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
	"github.com/petalhealth/petal/pkg/rag"
	"github.com/petalhealth/petal/pkg/report"
	"github.com/petalhealth/petal/pkg/retriever"
	testutils "github.com/petalhealth/petal/pkg/utils/test"
	"github.com/petalhealth/petal/pkg/vector/memory"
)

func TestReport(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Report Suite")
}

const extraction = `{
	"report_values": {"Testosterone (ng/dL)": "82 ng/dL"},
	"medical_findings": {
		"Elevated androgens": {
			"detail": "Testosterone above the reference range.",
			"reason": "Testosterone (ng/dL): 82 ng/dL"
		}
	}
}`

var _ = Describe("Agent", func() {
	var (
		extractor *testutils.MockChatClient
		generator *testutils.MockChatClient
		agent     *report.Agent
		ctx       context.Context
		dir       string
	)

	BeforeEach(func() {
		log := logger.New(logger.WithWriter(io.Discard))
		loader := ingest.NewLoader(log)

		extractor = testutils.NewMockChatClient(extraction)
		generator = testutils.NewMockChatClient("Try resistance training three times a week.")

		r := retriever.New(chunker.New(500, 100), testutils.NewMockEmbedder(), memory.NewDriver(), loader, log)
		compactor := convo.NewCompactor(local.NewDriver(), convo.DefaultRecallPolicy(), log)
		engine := rag.New(r, compactor, generator, log)

		agent = report.NewAgent(loader, extractor, engine, log)
		ctx = context.Background()
		dir = GinkgoT().TempDir()
	})

	writeReport := func(content string) string {
		path := filepath.Join(dir, "labs.txt")
		Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())
		return path
	}

	Describe("ParseReport", func() {
		It("extracts text from a supported file", func() {
			path := writeReport("Testosterone (ng/dL): 82")
			text, err := agent.ParseReport(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("Testosterone (ng/dL): 82"))
		})

		It("rejects unsupported file types", func() {
			path := filepath.Join(dir, "labs.docx")
			Expect(os.WriteFile(path, []byte("x"), 0o600)).To(Succeed())

			_, err := agent.ParseReport(path)
			Expect(err).To(MatchError(ingest.ErrUnsupported))
		})
	})

	Describe("ExtractMedicalInfo", func() {
		It("parses structured values and findings", func() {
			info, err := agent.ExtractMedicalInfo(ctx, "Testosterone (ng/dL): 82")
			Expect(err).NotTo(HaveOccurred())
			Expect(info.ReportValues).To(HaveKeyWithValue("Testosterone (ng/dL)", "82 ng/dL"))
			Expect(info.MedicalFindings).To(HaveKey("Elevated androgens"))
		})

		It("accepts fenced JSON output", func() {
			extractor.Reply = "```json\n" + extraction + "\n```"
			info, err := agent.ExtractMedicalInfo(ctx, "report")
			Expect(err).NotTo(HaveOccurred())
			Expect(info.ReportValues).NotTo(BeEmpty())
		})

		It("surfaces unparseable output with the raw completion attached", func() {
			extractor.Reply = "I could not find any lab values."

			_, err := agent.ExtractMedicalInfo(ctx, "report")
			Expect(err).To(HaveOccurred())

			var malformed *llm.MalformedOutputError
			Expect(errors.As(err, &malformed)).To(BeTrue())
			Expect(malformed.Raw).To(Equal("I could not find any lab values."))
		})
	})

	Describe("Run", func() {
		It("produces advice and structured data for a report", func() {
			path := writeReport("Testosterone (ng/dL): 82")

			result, err := agent.Run(ctx, "u1", path)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.MedicalInfo.ReportValues).To(HaveLen(1))
			Expect(result.Advice).To(Equal("Try resistance training three times a week."))

			// The generation request embeds the extracted data, not the raw file.
			last := generator.Requests[0][len(generator.Requests[0])-1]
			Expect(last.Content).To(ContainSubstring("Elevated androgens"))
			Expect(last.Content).To(ContainSubstring("Lab Report (JSON):"))
		})

		It("aborts when extraction fails", func() {
			path := writeReport("Testosterone (ng/dL): 82")
			extractor.Fail = true

			_, err := agent.Run(ctx, "u1", path)
			Expect(err).To(HaveOccurred())
			Expect(generator.Requests).To(BeEmpty())
		})
	})
})
