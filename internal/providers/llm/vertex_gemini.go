package llm

import (
	"context"
	"strings"

	vertexgenai "cloud.google.com/go/vertexai/genai"
)

// VertexGemini talks to Gemini through the Vertex AI SDK.
type VertexGemini struct {
	client    *vertexgenai.Client
	modelName string
}

func NewVertexGemini(ctx context.Context, projectID, location, modelName string) (*VertexGemini, error) {
	c, err := vertexgenai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}
	return &VertexGemini{client: c, modelName: modelName}, nil
}

func (v *VertexGemini) Close() error { return v.client.Close() }

func (v *VertexGemini) Generate(ctx context.Context, system string, history []Turn, message string) (string, error) {
	m := v.client.GenerativeModel(v.modelName)
	m.SetTemperature(ChatTemperature)
	m.SetMaxOutputTokens(ChatMaxOutputTokens)
	if system != "" {
		m.SystemInstruction = &vertexgenai.Content{Parts: []vertexgenai.Part{vertexgenai.Text(system)}}
	}

	cs := m.StartChat()
	cs.History = make([]*vertexgenai.Content, 0, len(history))
	for _, t := range history {
		cs.History = append(cs.History, &vertexgenai.Content{
			Role:  string(t.Role),
			Parts: []vertexgenai.Part{vertexgenai.Text(t.Text)},
		})
	}

	resp, err := cs.SendMessage(ctx, vertexgenai.Text(message))
	if err != nil {
		return "", err
	}
	return responseText(resp), nil
}

func (v *VertexGemini) GenerateOnce(ctx context.Context, prompt string) (string, error) {
	m := v.client.GenerativeModel(v.modelName)
	m.SetTemperature(OneShotTemperature)
	m.SetMaxOutputTokens(OneShotMaxOutputTokens)

	resp, err := m.GenerateContent(ctx, vertexgenai.Text(prompt))
	if err != nil {
		return "", err
	}
	return responseText(resp), nil
}

// responseText joins the text parts of the first candidate. Blank output is
// returned as "" and left for the caller to judge.
func responseText(resp *vertexgenai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		var b strings.Builder
		for _, part := range cand.Content.Parts {
			if t, ok := part.(vertexgenai.Text); ok {
				b.WriteString(string(t))
			}
		}
		return b.String()
	}
	return ""
}
