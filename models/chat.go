package models

// Exchange is one user/assistant turn kept for conversational continuity.
type Exchange struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// ChatRequest is the transport payload for the /chat endpoint. The loosely
// typed user_info object is bound into a UserProfile at the boundary.
type ChatRequest struct {
	UserInfo UserProfile `json:"user_info"`
	Message  string      `json:"message" binding:"required"`
	History  []Exchange  `json:"history"`
	Language string      `json:"language"`
}

// RetrieveRequest is the transport payload for the /retrieve endpoint.
type RetrieveRequest struct {
	UserInfo UserProfile `json:"user_info"`
	Query    string      `json:"query" binding:"required"`
	K        int         `json:"k"`
}

// Answer statuses returned by the orchestrator.
const (
	StatusAnswered = "answered"
	StatusError    = "error"
)

// AnswerResult is the structured outcome of one answer request. On error the
// Reason field carries a machine-readable cause and Answer stays empty.
type AnswerResult struct {
	Status      string   `json:"status"`
	Reason      string   `json:"reason,omitempty"`
	Answer      string   `json:"answer,omitempty"`
	Sources     []string `json:"sources"`
	ContextUsed bool     `json:"context_used"`
}
