// Package report analyzes uploaded lab reports: it extracts structured
// medical data with the generation client, then asks the answer pipeline for
// grounded lifestyle guidance in document mode.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/petalhealth/petal/pkg/ingest"
	"github.com/petalhealth/petal/pkg/llm"
	"github.com/petalhealth/petal/pkg/prompt"
	"github.com/petalhealth/petal/pkg/rag"
	"github.com/petalhealth/petal/pkg/retriever"
)

const extractionPrompt = `You are a medical assistant. Extract two things from the following lab report:

1) report_values: a dictionary mapping *every* analyte or test name exactly as it appears (including any parentheses/units) to its value (including units). Do NOT omit any - capture all lines of the form "Name: value" or "Name (units): value".

2) medical_findings: a dictionary where each key is a short finding summary, and each value is an object with:
   - detail: the clinical meaning,
   - reason: exactly which report_values drove that conclusion.

Output ONLY valid JSON, no commentary. Follow this schema:

{
  "report_values": {
    "<Test Name 1>": "<value1>",
    "<Test Name 2>": "<value2>"
  },
  "medical_findings": {
    "<Finding summary 1>": {
      "detail": "<detailed explanation>",
      "reason": "<specific value(s) supporting this>"
    }
  }
}

Here's the report:
%s`

const adviceRequest = `Here is some extracted medical data:

%s

Can you please suggest:
1. An exercise routine,
2. A diet plan, and
3. Supplement/medicine recommendations?

Respond with warmth and clarity.`

// Finding is one interpreted result from a lab report.
type Finding struct {
	Detail string `json:"detail"`
	Reason string `json:"reason"`
}

// MedicalInfo is the structured extraction of a lab report.
type MedicalInfo struct {
	ReportValues    map[string]string  `json:"report_values"`
	MedicalFindings map[string]Finding `json:"medical_findings"`
}

// Result is the full output of analyzing one report.
type Result struct {
	MedicalInfo *MedicalInfo         `json:"json_data"`
	Advice      string               `json:"gpt_response"`
	Citations   []retriever.Citation `json:"docs"`
}

// Agent runs the report analysis pipeline.
type Agent struct {
	loader *ingest.Loader
	chat   llm.ChatClient
	engine *rag.Engine
	logger *slog.Logger
}

// NewAgent creates a report agent.
func NewAgent(loader *ingest.Loader, chat llm.ChatClient, engine *rag.Engine, logger *slog.Logger) *Agent {
	return &Agent{loader: loader, chat: chat, engine: engine, logger: logger}
}

// ParseReport extracts plain text from an uploaded report file.
func (a *Agent) ParseReport(path string) (string, error) {
	doc, err := a.loader.LoadFile(path)
	if err != nil {
		return "", fmt.Errorf("parsing report %s: %w", path, err)
	}
	return doc.Text, nil
}

// ExtractMedicalInfo asks the generation client for a structured extraction
// of the report text. Unparseable output surfaces as a
// llm.MalformedOutputError with the raw completion attached.
func (a *Agent) ExtractMedicalInfo(ctx context.Context, reportText string) (*MedicalInfo, error) {
	raw, err := a.chat.Complete(ctx, []llm.Message{
		llm.User(fmt.Sprintf(extractionPrompt, reportText)),
	})
	if err != nil {
		return nil, fmt.Errorf("extracting medical info: %w", err)
	}

	var info MedicalInfo
	if err := llm.ExtractJSON(raw, &info); err != nil {
		return nil, fmt.Errorf("extracting medical info: %w", err)
	}
	return &info, nil
}

// Run analyzes a report end to end: parse the file, extract structured data,
// then request grounded guidance through the answer pipeline in upload mode.
func (a *Agent) Run(ctx context.Context, userID, path string) (*Result, error) {
	text, err := a.ParseReport(path)
	if err != nil {
		return nil, err
	}

	// 1 token is roughly 4 characters.
	a.logger.Debug("parsed report", "path", path, "approx_tokens", len(text)/4)

	info, err := a.ExtractMedicalInfo(ctx, text)
	if err != nil {
		return nil, err
	}

	encoded, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding medical info: %w", err)
	}

	answer, err := a.engine.Answer(ctx, userID, fmt.Sprintf(adviceRequest, encoded), prompt.ModeUpload)
	if err != nil {
		return nil, fmt.Errorf("generating health plan: %w", err)
	}

	return &Result{
		MedicalInfo: info,
		Advice:      answer.Reply,
		Citations:   answer.Citations,
	}, nil
}
