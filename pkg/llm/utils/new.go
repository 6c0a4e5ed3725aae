// Package llmutils is the chat client utility package
package llmutils

import (
	"fmt"

	"github.com/petalhealth/petal/pkg/llm"
	"github.com/petalhealth/petal/pkg/llm/ollama"
	"github.com/petalhealth/petal/pkg/llm/openai"
)

type NewChatClientOpts struct {
	ProviderType string
	TargetURL    string
	APIKey       string
	Model        string
	Temperature  float64
}

func NewChatClient(o *NewChatClientOpts) (llm.ChatClient, error) {
	switch o.ProviderType {
	case "openai":
		return openai.NewClient(openai.ClientConfig{
			BaseURL:     o.TargetURL,
			APIKey:      o.APIKey,
			Model:       o.Model,
			Temperature: o.Temperature,
		})
	case "ollama":
		return ollama.NewClient(ollama.ClientConfig{
			BaseURL: o.TargetURL,
			Model:   o.Model,
		})
	default:
		return nil, fmt.Errorf("unsupported chat provider: %s", o.ProviderType)
	}
}
