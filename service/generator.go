package service

import (
	"context"
	"fmt"
	"log"

	"lawlens-backend/models"
)

// Generator is the external generation capability: a one-shot completion and
// a streaming form that forwards fragments through emit. A non-nil error from
// emit must stop the stream.
type Generator interface {
	Complete(ctx context.Context, prompt models.ComposedPrompt, temperature float32) (string, error)
	Stream(ctx context.Context, prompt models.ComposedPrompt, temperature float32, emit func(fragment string) error) error
}

// RetrievalStats summarizes what retrieval produced for one request. Only
// counts are surfaced to the user, never content.
type RetrievalStats struct {
	CorpusHits    int
	MemoryApplied bool
}

// TemperatureFor maps a mode to its sampling temperature: low for legal
// precision work, higher for free drafting.
func TemperatureFor(mode models.Mode) float32 {
	switch mode {
	case models.ModeRiskScore:
		return 0.2
	case models.ModeChatDoc:
		return 0.3
	case models.ModeSelectionPolish:
		return 0.4
	case models.ModePolish:
		return 0.5
	default:
		return 0.7
	}
}

// GenerationOrchestrator drives generation calls and shields callers from
// collaborator failures: every outcome arrives inside the response channel.
type GenerationOrchestrator struct {
	generator Generator
}

// NewGenerationOrchestrator creates a new generation orchestrator.
func NewGenerationOrchestrator(generator Generator) *GenerationOrchestrator {
	return &GenerationOrchestrator{generator: generator}
}

// Stream runs a streaming generation. The returned channel carries first a
// delimited status fragment, then token fragments in arrival order, and is
// always closed by the producer. Any setup or mid-stream failure is reported
// as exactly one final error fragment; nothing propagates past this boundary.
// Cancelling ctx stops the underlying generation request.
func (o *GenerationOrchestrator) Stream(ctx context.Context, mode models.Mode, prompt models.ComposedPrompt, stats RetrievalStats) <-chan string {
	out := make(chan string)

	go func() {
		defer close(out)

		if !send(ctx, out, statusFragment(stats)) {
			return
		}

		err := o.generator.Stream(ctx, prompt, TemperatureFor(mode), func(fragment string) error {
			if fragment == "" {
				return nil
			}
			if !send(ctx, out, fragment) {
				return ctx.Err()
			}
			return nil
		})
		if err != nil && ctx.Err() == nil {
			log.Printf("Warning: generation stream failed: %v", err)
			send(ctx, out, errorFragment(err))
		}
	}()

	return out
}

// RiskScore runs the non-streaming risk_score generation and sanitizes the
// output. A generation failure yields the safe-default scorecard rather than
// an error: the caller always receives a well-formed result.
func (o *GenerationOrchestrator) RiskScore(ctx context.Context, prompt models.ComposedPrompt) models.RiskScore {
	raw, err := o.generator.Complete(ctx, prompt, TemperatureFor(models.ModeRiskScore))
	if err != nil {
		log.Printf("Warning: risk score generation failed: %v", err)
		return safeRiskScore("风险评估服务暂时不可用，请稍后重试。")
	}
	return ParseRiskScore(raw)
}

// send delivers a fragment unless the consumer has gone away.
func send(ctx context.Context, out chan<- string, fragment string) bool {
	select {
	case out <- fragment:
		return true
	case <-ctx.Done():
		return false
	}
}

// statusFragment is cosmetic telemetry, delimited by data-role so the editor
// can render it apart from the generated content.
func statusFragment(stats RetrievalStats) string {
	memoryNote := ""
	if stats.MemoryApplied {
		memoryNote = "，已应用您的偏好设置"
	}
	return fmt.Sprintf(`<p data-role="status">已检索相关法律依据 %d 条%s</p>`, stats.CorpusHits, memoryNote)
}

func errorFragment(err error) string {
	return fmt.Sprintf("<p style='color:red'>[System Error: %v]</p>", err)
}
