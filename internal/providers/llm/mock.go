package llm

import (
	"context"
	"strings"
	"sync"
)

// Reply is one scripted provider result.
type Reply struct {
	Text string
	Err  error
}

// Call records what a provider was asked. Prompt is set for GenerateOnce.
type Call struct {
	System  string
	History []Turn
	Message string
	Prompt  string
}

// Mock replays scripted replies in order. Once the script runs out it falls
// back to canned output so a local server stays usable without credentials.
type Mock struct {
	mu     sync.Mutex
	script []Reply
	calls  []Call
}

func NewMock(script ...Reply) *Mock {
	return &Mock{script: script}
}

// Push appends replies to the script.
func (m *Mock) Push(r ...Reply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, r...)
}

func (m *Mock) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *Mock) Close() error { return nil }

func (m *Mock) Generate(ctx context.Context, system string, history []Turn, message string) (string, error) {
	h := make([]Turn, len(history))
	copy(h, history)
	return m.next(ctx, Call{System: system, History: h, Message: message}, func() string {
		return "It sounds like there is a lot on your mind. What feels most important about that right now?"
	})
}

func (m *Mock) GenerateOnce(ctx context.Context, prompt string) (string, error) {
	return m.next(ctx, Call{Prompt: prompt}, func() string {
		if strings.Contains(prompt, `"noticed"`) {
			return `{"noticed":["You wrote regularly this week"],"focus":["Keep a few minutes each evening for reflection"]}`
		}
		return "What stands out to you most when you look back on that?"
	})
}

func (m *Mock) next(ctx context.Context, c Call, fallback func() string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
	if len(m.script) == 0 {
		return fallback(), nil
	}
	r := m.script[0]
	m.script = m.script[1:]
	return r.Text, r.Err
}
