package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeRequestValidate(t *testing.T) {
	t.Run("empty mode defaults to draft", func(t *testing.T) {
		req := AnalyzeRequest{
			Messages: []ChatMessage{{Role: RoleUser, Content: "起草"}},
		}

		require.NoError(t, req.Validate())
		assert.Equal(t, ModeDraft, req.Mode)
	})

	t.Run("unknown mode rejected", func(t *testing.T) {
		req := AnalyzeRequest{
			Mode:     Mode("translate"),
			Messages: []ChatMessage{{Role: RoleUser, Content: "x"}},
		}

		assert.ErrorIs(t, req.Validate(), ErrInvalidMode)
	})

	t.Run("selection_polish requires selection", func(t *testing.T) {
		req := AnalyzeRequest{Mode: ModeSelectionPolish}
		assert.ErrorIs(t, req.Validate(), ErrMissingSelection)

		req.Selection = "选中文字"
		assert.NoError(t, req.Validate())
	})

	t.Run("selection_polish does not require messages", func(t *testing.T) {
		req := AnalyzeRequest{Mode: ModeSelectionPolish, Selection: "选中文字"}
		assert.NoError(t, req.Validate())
	})

	t.Run("other modes require messages", func(t *testing.T) {
		for _, mode := range []Mode{ModeDraft, ModePolish, ModeChatDoc, ModeRiskScore} {
			req := AnalyzeRequest{Mode: mode}
			assert.ErrorIs(t, req.Validate(), ErrEmptyMessages, string(mode))
		}
	})
}

func TestAnalyzeRequestQueryText(t *testing.T) {
	t.Run("selection drives selection_polish", func(t *testing.T) {
		req := AnalyzeRequest{
			Mode:      ModeSelectionPolish,
			Selection: "选中文字",
			Messages:  []ChatMessage{{Role: RoleUser, Content: "别的"}},
		}
		assert.Equal(t, "选中文字", req.QueryText())
	})

	t.Run("last message drives other modes", func(t *testing.T) {
		req := AnalyzeRequest{
			Mode: ModeDraft,
			Messages: []ChatMessage{
				{Role: RoleUser, Content: "第一条消息"},
				{Role: RoleUser, Content: "最后一条消息"},
			},
		}
		assert.Equal(t, "最后一条消息", req.QueryText())
	})

	t.Run("no messages yields empty", func(t *testing.T) {
		req := AnalyzeRequest{Mode: ModeDraft}
		assert.Equal(t, "", req.QueryText())
	})
}

func TestModePolicies(t *testing.T) {
	assert.True(t, ModeDraft.UsesCorpus())
	assert.True(t, ModePolish.UsesCorpus())
	assert.False(t, ModeSelectionPolish.UsesCorpus())
	assert.False(t, ModeChatDoc.UsesCorpus())
	assert.False(t, ModeRiskScore.UsesCorpus())

	assert.True(t, ModeDraft.UsesMemory())
	assert.True(t, ModeSelectionPolish.UsesMemory())
	assert.False(t, ModeChatDoc.UsesMemory())

	for _, mode := range AllModes {
		assert.Equal(t, mode != ModeRiskScore, mode.Streaming(), string(mode))
	}
}
