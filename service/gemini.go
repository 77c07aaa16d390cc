package service

import (
	"context"
	"fmt"
	"strings"

	"lawlens-backend/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
)

const (
	defaultGenerationModel = "gemini-2.0-flash"
	maxOutputTokens        = 2500
)

// GeminiGenerator implements Generator on top of the Gemini SDK. The client
// handle is initialized once at startup and shared across requests.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a generator for the given model name, falling
// back to the default model when empty.
func NewGeminiGenerator(client *genai.Client, model string) *GeminiGenerator {
	if model == "" {
		model = defaultGenerationModel
	}
	return &GeminiGenerator{client: client, model: model}
}

// Complete performs a one-shot generation and returns the concatenated text.
func (g *GeminiGenerator) Complete(ctx context.Context, prompt models.ComposedPrompt, temperature float32) (string, error) {
	chat, last := g.prepareChat(prompt, temperature)

	resp, err := chat.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("generation returned no content")
	}
	return text, nil
}

// Stream opens a token stream and forwards each non-empty fragment to emit in
// arrival order. A non-nil error from emit aborts the stream.
func (g *GeminiGenerator) Stream(ctx context.Context, prompt models.ComposedPrompt, temperature float32, emit func(string) error) error {
	chat, last := g.prepareChat(prompt, temperature)

	it := chat.SendMessageStream(ctx, genai.Text(last))
	for {
		resp, err := it.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return fmt.Errorf("generation stream failed: %w", err)
		}
		if fragment := responseText(resp); fragment != "" {
			if err := emit(fragment); err != nil {
				return err
			}
		}
	}
}

// prepareChat builds a chat session carrying the system instruction and all
// but the final message as history, returning the final message to send.
func (g *GeminiGenerator) prepareChat(prompt models.ComposedPrompt, temperature float32) (*genai.ChatSession, string) {
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(temperature)
	model.SetMaxOutputTokens(maxOutputTokens)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(prompt.SystemInstruction)},
	}

	messages := prompt.Messages
	last := ""
	if len(messages) > 0 {
		last = messages[len(messages)-1].Content
		messages = messages[:len(messages)-1]
	}

	chat := model.StartChat()
	for _, m := range messages {
		role := "user"
		if m.Role == models.RoleAssistant {
			role = "model"
		}
		chat.History = append(chat.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}
	return chat, last
}

// responseText concatenates the text parts of all candidates, skipping empty
// parts the way partially blocked responses produce them.
func responseText(resp *genai.GenerateContentResponse) string {
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				builder.WriteString(string(text))
			}
		}
	}
	return builder.String()
}
