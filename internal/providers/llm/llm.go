// Package llm is the completion service boundary. Providers return raw text;
// retry and acceptance rules live in the services layer.
package llm

import "context"

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one prior exchange entry sent as chat history.
type Turn struct {
	Role Role
	Text string
}

type Provider interface {
	// Generate sends message on top of history under the given system instruction.
	Generate(ctx context.Context, system string, history []Turn, message string) (string, error)
	// GenerateOnce is a single prompt without history or system instruction.
	GenerateOnce(ctx context.Context, prompt string) (string, error)
	Close() error
}

// Sampling settings shared by the real providers.
const (
	ChatTemperature     float32 = 0.8
	ChatMaxOutputTokens int32   = 500

	OneShotTemperature     float32 = 0.7
	OneShotMaxOutputTokens int32   = 1024
)
