// Package chat turns one user message into a model conversation with at most
// one tool call.
package chat

import (
	"context"
	"errors"

	"github.com/edibez/cryptochat/internal/llm"
	"github.com/edibez/cryptochat/internal/market"
	"github.com/edibez/cryptochat/internal/portfolio"
	"github.com/edibez/cryptochat/internal/tools"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Response types.
const (
	TypeText  = "text"
	TypeChart = "chart"
)

// GenericErrorMessage is reported for failures that are not a known kind.
const GenericErrorMessage = "An internal server error occurred."

// ErrBadRequest is returned when the message is missing.
var ErrBadRequest = errors.New("Message is required.")

// Request is one chat turn from the caller.
type Request struct {
	Message   string
	SessionID string
}

// Response is what the caller receives for a chat turn.
type Response struct {
	Type      string `json:"type"`
	Content   any    `json:"content"`
	SessionID string `json:"sessionId"`
}

// Recorder observes dispatched tool calls.
type Recorder interface {
	ToolCall(tool, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ToolCall(string, string) {}

// Orchestrator runs the chat state machine.
type Orchestrator struct {
	model     llm.Model
	registry  *tools.Registry
	recorder  Recorder
	logger    *zap.Logger
	sessionID func() string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRecorder sets the tool call recorder.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithLogger sets the orchestrator logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithSessionIDs overrides session id generation.
func WithSessionIDs(gen func() string) Option {
	return func(o *Orchestrator) { o.sessionID = gen }
}

// NewOrchestrator creates an orchestrator over a model and tool registry.
func NewOrchestrator(model llm.Model, registry *tools.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		model:     model,
		registry:  registry,
		recorder:  nopRecorder{},
		logger:    zap.NewNop(),
		sessionID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Handle processes one message. The chart tool result goes straight back to
// the caller; every other tool result is narrated by a second model turn.
func (o *Orchestrator) Handle(ctx context.Context, req Request) (*Response, error) {
	if req.Message == "" {
		return nil, ErrBadRequest
	}
	session := req.SessionID
	if session == "" {
		session = o.sessionID()
	}
	logger := o.logger.With(zap.String("session", session))

	conv, err := o.model.StartConversation(ctx)
	if err != nil {
		return nil, err
	}
	turn, err := conv.SendTurn(ctx, req.Message)
	if err != nil {
		return nil, err
	}
	if turn.ToolCall == nil {
		return &Response{Type: TypeText, Content: turn.Text, SessionID: session}, nil
	}

	call := *turn.ToolCall
	logger.Info("model wants to call function",
		zap.String("function", call.Name),
		zap.Any("args", call.Args),
	)

	id, args, err := o.registry.Resolve(call)
	if err != nil {
		o.recorder.ToolCall(call.Name, "rejected")
		logger.Warn("rejected function call", zap.String("function", call.Name), zap.Error(err))
		return nil, err
	}

	result, err := o.registry.Run(ctx, id, session, args)
	if err != nil {
		o.recorder.ToolCall(id.String(), "error")
		logger.Error("error executing function", zap.String("function", id.String()), zap.Error(err))
		return nil, err
	}
	o.recorder.ToolCall(id.String(), "ok")

	if id == tools.Get7DayChartData {
		return &Response{Type: TypeChart, Content: result, SessionID: session}, nil
	}

	final, err := conv.SendToolResult(ctx, id.String(), result)
	if err != nil {
		return nil, err
	}
	return &Response{Type: TypeText, Content: final, SessionID: session}, nil
}

var publicErrors = []error{
	market.ErrUnsupportedCoin,
	market.ErrUpstream,
	tools.ErrNotImplemented,
	tools.ErrMissingArgument,
	tools.ErrInvalidArgument,
	portfolio.ErrInvalidAmount,
}

// PublicMessage returns the message a caller may see for err.
func PublicMessage(err error) string {
	for _, known := range publicErrors {
		if errors.Is(err, known) {
			return err.Error()
		}
	}
	return GenericErrorMessage
}
