package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"lawlens-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	fragments []string
	streamErr error

	completion  string
	completeErr error

	gotTemperature float32
}

func (f *fakeGenerator) Complete(ctx context.Context, prompt models.ComposedPrompt, temperature float32) (string, error) {
	f.gotTemperature = temperature
	if f.completeErr != nil {
		return "", f.completeErr
	}
	return f.completion, nil
}

func (f *fakeGenerator) Stream(ctx context.Context, prompt models.ComposedPrompt, temperature float32, emit func(string) error) error {
	f.gotTemperature = temperature
	for _, fragment := range f.fragments {
		if err := emit(fragment); err != nil {
			return err
		}
	}
	return f.streamErr
}

// endlessGenerator emits until emit reports the consumer is gone, then
// records the terminating error on done.
type endlessGenerator struct {
	done chan error
}

func (g *endlessGenerator) Complete(ctx context.Context, prompt models.ComposedPrompt, temperature float32) (string, error) {
	return "", errors.New("not used")
}

func (g *endlessGenerator) Stream(ctx context.Context, prompt models.ComposedPrompt, temperature float32, emit func(string) error) error {
	for {
		if err := emit("<p>片段</p>"); err != nil {
			g.done <- err
			return err
		}
	}
}

func collect(ch <-chan string) []string {
	var out []string
	for fragment := range ch {
		out = append(out, fragment)
	}
	return out
}

func TestOrchestratorStream(t *testing.T) {
	prompt := models.ComposedPrompt{SystemInstruction: "sys"}

	t.Run("status fragment comes first", func(t *testing.T) {
		gen := &fakeGenerator{fragments: []string{"<p>第一段</p>", "<p>第二段</p>"}}
		o := NewGenerationOrchestrator(gen)

		got := collect(o.Stream(context.Background(), models.ModeDraft, prompt, RetrievalStats{CorpusHits: 3}))

		require.Len(t, got, 3)
		assert.Equal(t, `<p data-role="status">已检索相关法律依据 3 条</p>`, got[0])
		assert.Equal(t, "<p>第一段</p>", got[1])
		assert.Equal(t, "<p>第二段</p>", got[2])
	})

	t.Run("status mentions applied memory", func(t *testing.T) {
		gen := &fakeGenerator{}
		o := NewGenerationOrchestrator(gen)

		got := collect(o.Stream(context.Background(), models.ModeDraft, prompt, RetrievalStats{CorpusHits: 1, MemoryApplied: true}))

		require.NotEmpty(t, got)
		assert.Contains(t, got[0], "已应用您的偏好设置")
	})

	t.Run("failure yields one terminal error fragment", func(t *testing.T) {
		gen := &fakeGenerator{
			fragments: []string{"<p>部分内容</p>"},
			streamErr: errors.New("quota exceeded"),
		}
		o := NewGenerationOrchestrator(gen)

		got := collect(o.Stream(context.Background(), models.ModeDraft, prompt, RetrievalStats{}))

		require.Len(t, got, 3)
		last := got[len(got)-1]
		assert.True(t, strings.HasPrefix(last, "<p style='color:red'>[System Error:"), last)
		assert.Contains(t, last, "quota exceeded")
	})

	t.Run("channel always closes", func(t *testing.T) {
		gen := &fakeGenerator{streamErr: errors.New("boom")}
		o := NewGenerationOrchestrator(gen)

		ch := o.Stream(context.Background(), models.ModeDraft, prompt, RetrievalStats{})
		collect(ch)

		_, open := <-ch
		assert.False(t, open)
	})

	t.Run("empty fragments are dropped", func(t *testing.T) {
		gen := &fakeGenerator{fragments: []string{"", "<p>有内容</p>", ""}}
		o := NewGenerationOrchestrator(gen)

		got := collect(o.Stream(context.Background(), models.ModeDraft, prompt, RetrievalStats{}))
		require.Len(t, got, 2)
		assert.Equal(t, "<p>有内容</p>", got[1])
	})

	t.Run("consumer cancellation stops the producer", func(t *testing.T) {
		gen := &endlessGenerator{done: make(chan error, 1)}
		o := NewGenerationOrchestrator(gen)

		ctx, cancel := context.WithCancel(context.Background())
		ch := o.Stream(ctx, models.ModeDraft, prompt, RetrievalStats{})

		// Consume the status fragment and one token, then walk away.
		<-ch
		<-ch
		cancel()

		// The producer must unblock and close the channel; whatever drains
		// out is regular content, never an error fragment.
		for fragment := range ch {
			assert.NotContains(t, fragment, "System Error")
		}

		select {
		case err := <-gen.done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(time.Second):
			t.Fatal("generation was not stopped by cancellation")
		}
	})

	t.Run("mode selects temperature", func(t *testing.T) {
		gen := &fakeGenerator{}
		o := NewGenerationOrchestrator(gen)

		collect(o.Stream(context.Background(), models.ModePolish, prompt, RetrievalStats{}))
		assert.Equal(t, float32(0.5), gen.gotTemperature)
	})
}

func TestOrchestratorRiskScore(t *testing.T) {
	prompt := models.ComposedPrompt{SystemInstruction: "sys"}

	t.Run("parses model output", func(t *testing.T) {
		gen := &fakeGenerator{completion: `{"total_score": 65, "summary": "中等风险", "dimensions": []}`}
		o := NewGenerationOrchestrator(gen)

		score := o.RiskScore(context.Background(), prompt)

		assert.Equal(t, 65, score.TotalScore)
		assert.Equal(t, float32(0.2), gen.gotTemperature)
	})

	t.Run("generation failure yields safe default", func(t *testing.T) {
		gen := &fakeGenerator{completeErr: errors.New("api down")}
		o := NewGenerationOrchestrator(gen)

		score := o.RiskScore(context.Background(), prompt)

		assert.Equal(t, 0, score.TotalScore)
		assert.NotEmpty(t, score.Summary)
		assert.Empty(t, score.Dimensions)
	})
}

func TestTemperatureFor(t *testing.T) {
	assert.Equal(t, float32(0.7), TemperatureFor(models.ModeDraft))
	assert.Equal(t, float32(0.5), TemperatureFor(models.ModePolish))
	assert.Equal(t, float32(0.4), TemperatureFor(models.ModeSelectionPolish))
	assert.Equal(t, float32(0.3), TemperatureFor(models.ModeChatDoc))
	assert.Equal(t, float32(0.2), TemperatureFor(models.ModeRiskScore))
}
