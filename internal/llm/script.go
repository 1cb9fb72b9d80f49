package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// Script is a deterministic Model for tests and local runs. Each
// conversation replays the same turn and final text.
type Script struct {
	Reply     Turn
	Final     string
	StartErr  error
	TurnErr   error
	ResultErr error

	mu      sync.Mutex
	started int
	turns   []string
	results []ToolResult
}

// ToolResult is a tool result captured by Script.
type ToolResult struct {
	Name    string
	Content string
}

var _ Model = (*Script)(nil)

func (s *Script) StartConversation(context.Context) (Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.StartErr != nil {
		return nil, s.StartErr
	}
	s.started++
	return &scriptConversation{script: s}, nil
}

// Started returns the number of conversations started.
func (s *Script) Started() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Turns returns the user texts received.
func (s *Script) Turns() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.turns...)
}

// Results returns the tool results received.
func (s *Script) Results() []ToolResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ToolResult(nil), s.results...)
}

type scriptConversation struct {
	script *Script
	turned bool
}

func (c *scriptConversation) SendTurn(_ context.Context, text string) (Turn, error) {
	s := c.script
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, text)
	if s.TurnErr != nil {
		return Turn{}, s.TurnErr
	}
	c.turned = true
	return s.Reply, nil
}

func (c *scriptConversation) SendToolResult(_ context.Context, name string, result any) (string, error) {
	if !c.turned {
		return "", errors.New("tool result sent before first turn")
	}
	content, err := EncodeToolResult(result)
	if err != nil {
		return "", err
	}

	s := c.script
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, ToolResult{Name: name, Content: content})
	if s.ResultErr != nil {
		return "", s.ResultErr
	}
	return s.Final, nil
}

// EncodeToolResult wraps a result as {"result": ...} JSON text.
func EncodeToolResult(result any) (string, error) {
	raw, err := json.Marshal(struct {
		Result any `json:"result"`
	}{result})
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
