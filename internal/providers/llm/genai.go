package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GenAI uses the unified Google Gen AI SDK. With an API key it targets the
// Gemini API, otherwise Vertex AI for the given project.
type GenAI struct {
	client    *genai.Client
	modelName string
}

type GenAIConfig struct {
	APIKey   string
	Project  string
	Location string
	Model    string
}

func NewGenAI(ctx context.Context, cfg GenAIConfig) (*GenAI, error) {
	cc := &genai.ClientConfig{}
	if cfg.APIKey != "" {
		cc.APIKey = cfg.APIKey
		cc.Backend = genai.BackendGeminiAPI
	} else {
		if cfg.Project == "" || cfg.Location == "" {
			return nil, fmt.Errorf("genai: project and location are required without an API key")
		}
		cc.Project = cfg.Project
		cc.Location = cfg.Location
		cc.Backend = genai.BackendVertexAI
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GenAI{client: client, modelName: model}, nil
}

// Close is a no-op; the genai client holds no closable resources.
func (g *GenAI) Close() error { return nil }

func (g *GenAI) Generate(ctx context.Context, system string, history []Turn, message string) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, t := range history {
		role := genai.Role(genai.RoleUser)
		if t.Role == RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))

	temp := ChatTemperature
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: ChatMaxOutputTokens,
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("genai generate content: %w", err)
	}
	return res.Text(), nil
}

func (g *GenAI) GenerateOnce(ctx context.Context, prompt string) (string, error) {
	temp := OneShotTemperature
	res, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: OneShotMaxOutputTokens,
	})
	if err != nil {
		return "", fmt.Errorf("genai generate content: %w", err)
	}
	return res.Text(), nil
}
