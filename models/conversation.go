package models

import (
	"errors"
	"fmt"
)

// Mode selects the prompt structure and retrieval policy for one analyze request.
type Mode string

const (
	ModeDraft           Mode = "draft"
	ModePolish          Mode = "polish"
	ModeSelectionPolish Mode = "selection_polish"
	ModeChatDoc         Mode = "chat_doc"
	ModeRiskScore       Mode = "risk_score"
)

// AllModes lists every supported mode, used for boundary validation.
var AllModes = []Mode{ModeDraft, ModePolish, ModeSelectionPolish, ModeChatDoc, ModeRiskScore}

// Valid reports whether m is one of the closed set of modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeDraft, ModePolish, ModeSelectionPolish, ModeChatDoc, ModeRiskScore:
		return true
	}
	return false
}

// UsesCorpus reports whether the mode consumes retrieved law/case context.
func (m Mode) UsesCorpus() bool {
	return m == ModeDraft || m == ModePolish
}

// UsesMemory reports whether the mode consumes per-user memory context.
func (m Mode) UsesMemory() bool {
	return m == ModeDraft || m == ModePolish || m == ModeSelectionPolish
}

// Streaming reports whether the mode produces a token stream. risk_score is
// the only mode returning a single structured result.
func (m Mode) Streaming() bool {
	return m != ModeRiskScore
}

// ChatMessage is one turn of the conversation between the user and the model.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

var (
	ErrInvalidMode      = errors.New("unknown analyze mode")
	ErrEmptyMessages    = errors.New("messages must not be empty")
	ErrMissingSelection = errors.New("selection is required for selection_polish mode")
)

// AnalyzeRequest is the request body of POST /api/analyze.
type AnalyzeRequest struct {
	Mode       Mode          `json:"mode"`
	Messages   []ChatMessage `json:"messages"`
	CurrentDoc string        `json:"current_doc"`
	Selection  string        `json:"selection"`
	UserID     string        `json:"user_id"`
}

// Validate rejects malformed requests before they reach the prompt composer.
func (r *AnalyzeRequest) Validate() error {
	if r.Mode == "" {
		r.Mode = ModeDraft
	}
	if !r.Mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, r.Mode)
	}
	if r.Mode == ModeSelectionPolish {
		if r.Selection == "" {
			return ErrMissingSelection
		}
		return nil
	}
	if len(r.Messages) == 0 {
		return ErrEmptyMessages
	}
	return nil
}

// QueryText returns the text that drives retrieval for this request: the
// selection when it carries the intent, otherwise the last message.
func (r *AnalyzeRequest) QueryText() string {
	if r.Mode == ModeSelectionPolish {
		return r.Selection
	}
	if len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[len(r.Messages)-1].Content
}

// ComposedPrompt is the fully assembled generation input: one system
// instruction plus a trimmed message list. Derived fresh per request.
type ComposedPrompt struct {
	SystemInstruction string
	Messages          []ChatMessage
}
