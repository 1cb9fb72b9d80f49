package types

// ChatRequest is the body of POST /api/chat and of each websocket frame.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId,omitempty"`
}

// PriceResponse is returned by GET /price/:symbol
type PriceResponse struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// ErrorResponse standard error format
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"ts"`
}
