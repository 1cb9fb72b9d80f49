// Package llm abstracts a function-calling chat model behind a small
// conversation interface.
package llm

import (
	"context"

	"github.com/edibez/cryptochat/internal/tools"
)

// Model starts conversations that can request tool calls.
type Model interface {
	StartConversation(ctx context.Context) (Conversation, error)
}

// Conversation is one model chat. It keeps its own history.
type Conversation interface {
	// SendTurn sends user text and returns the model reply.
	SendTurn(ctx context.Context, text string) (Turn, error)
	// SendToolResult returns a tool result to the model and yields its final text.
	SendToolResult(ctx context.Context, name string, result any) (string, error)
}

// Turn is a model reply. ToolCall is set when the model asked for a function;
// only the first requested call is kept.
type Turn struct {
	Text     string
	ToolCall *tools.Call
}
