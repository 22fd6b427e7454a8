package config

import (
	"context"
	"fmt"

	"github.com/yoockh/journai/internal/providers/llm"
)

// OpenProvider builds the completion provider selected by LLM_PROVIDER.
func OpenProvider(ctx context.Context, c *Config) (llm.Provider, error) {
	switch c.LLMProvider {
	case ProviderVertex:
		return llm.NewVertexGemini(ctx, c.GCPProject, c.GCPLocation, c.LLMModel)
	case ProviderGemini:
		return llm.NewGenAI(ctx, llm.GenAIConfig{
			APIKey:   c.GeminiAPIKey,
			Project:  c.GCPProject,
			Location: c.GCPLocation,
			Model:    c.LLMModel,
		})
	case ProviderMock:
		return llm.NewMock(), nil
	}
	return nil, fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
}
