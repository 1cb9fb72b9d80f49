package llm

import (
	"context"
	"fmt"

	"github.com/edibez/cryptochat/internal/tools"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Gemini is a Model backed by the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
	logger *zap.Logger
}

var _ Model = (*Gemini)(nil)

// NewGemini creates a Gemini model declaring every tool.
func NewGemini(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gemini{
		client: client,
		model:  model,
		config: &genai.GenerateContentConfig{
			Tools: FunctionTools(tools.Declarations()),
		},
		logger: logger,
	}, nil
}

// FunctionTools converts tool declarations to Gemini function declarations.
func FunctionTools(decls []tools.Declaration) []*genai.Tool {
	fns := make([]*genai.FunctionDeclaration, 0, len(decls))
	for _, d := range decls {
		params := &genai.Schema{
			Type:       genai.TypeObject,
			Properties: make(map[string]*genai.Schema, len(d.Params)),
			Required:   append([]string{}, d.Required...),
		}
		for _, p := range d.Params {
			params.Properties[p.Name] = &genai.Schema{
				Type:        schemaType(p.Type),
				Description: p.Description,
			}
		}
		fns = append(fns, &genai.FunctionDeclaration{
			Name:        d.Name(),
			Description: d.Description,
			Parameters:  params,
		})
	}
	return []*genai.Tool{{FunctionDeclarations: fns}}
}

func schemaType(t tools.ParamType) genai.Type {
	switch t {
	case tools.Number:
		return genai.TypeNumber
	default:
		return genai.TypeString
	}
}

func (g *Gemini) StartConversation(ctx context.Context) (Conversation, error) {
	chat, err := g.client.Chats.Create(ctx, g.model, g.config, nil)
	if err != nil {
		return nil, fmt.Errorf("start gemini chat: %w", err)
	}
	return &geminiConversation{chat: chat, logger: g.logger}, nil
}

type geminiConversation struct {
	chat   *genai.Chat
	logger *zap.Logger
}

func (c *geminiConversation) SendTurn(ctx context.Context, text string) (Turn, error) {
	resp, err := c.chat.SendMessage(ctx, genai.Part{Text: text})
	if err != nil {
		return Turn{}, fmt.Errorf("gemini send message: %w", err)
	}
	turn := turnFromResponse(resp)
	if turn.ToolCall != nil {
		c.logger.Debug("model requested function",
			zap.String("function", turn.ToolCall.Name),
			zap.Any("args", turn.ToolCall.Args),
		)
	}
	return turn, nil
}

func (c *geminiConversation) SendToolResult(ctx context.Context, name string, result any) (string, error) {
	content, err := EncodeToolResult(result)
	if err != nil {
		return "", fmt.Errorf("encode %s result: %w", name, err)
	}
	resp, err := c.chat.SendMessage(ctx, genai.Part{
		FunctionResponse: &genai.FunctionResponse{
			Name: name,
			Response: map[string]any{
				"name":    name,
				"content": content,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("gemini send function response: %w", err)
	}
	return resp.Text(), nil
}

func turnFromResponse(resp *genai.GenerateContentResponse) Turn {
	if resp == nil {
		return Turn{}
	}
	if calls := resp.FunctionCalls(); len(calls) > 0 {
		return Turn{ToolCall: &tools.Call{Name: calls[0].Name, Args: calls[0].Args}}
	}
	return Turn{Text: resp.Text()}
}
