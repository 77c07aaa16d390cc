package service

import (
	"encoding/json"
	"log"
	"strings"

	"lawlens-backend/models"
)

// unparseableSummary explains the safe-default scorecard substituted when the
// model output cannot be recovered into JSON.
const unparseableSummary = "风险评估结果解析失败，请重新发起评估。"

// ParseRiskScore extracts a RiskScore from raw model output. The generation
// service is not guaranteed to emit bare JSON even when instructed to, so
// this tries a direct parse, then the interior of a fenced block, and finally
// substitutes the safe default instead of surfacing a parse failure.
func ParseRiskScore(raw string) models.RiskScore {
	if score, ok := tryParseRiskScore(raw); ok {
		return score
	}

	if inner, ok := fencedInterior(raw); ok {
		if score, ok := tryParseRiskScore(inner); ok {
			return score
		}
	}

	log.Printf("Warning: unparseable risk score output (%d bytes), substituting safe default", len(raw))
	return safeRiskScore(unparseableSummary)
}

func tryParseRiskScore(s string) (models.RiskScore, bool) {
	var score models.RiskScore
	dec := json.NewDecoder(strings.NewReader(strings.TrimSpace(s)))
	if err := dec.Decode(&score); err != nil {
		return models.RiskScore{}, false
	}
	return clampRiskScore(score), true
}

// fencedInterior returns the content between the first pair of ``` fences,
// tolerating a language tag after the opening fence.
func fencedInterior(s string) (string, bool) {
	start := strings.Index(s, "```")
	if start == -1 {
		return "", false
	}
	rest := s[start+3:]
	if newline := strings.IndexByte(rest, '\n'); newline != -1 {
		// Drop a language tag like "json" on the opening fence line.
		firstLine := strings.TrimSpace(rest[:newline])
		if len(firstLine) <= 10 && !strings.ContainsAny(firstLine, "{}") {
			rest = rest[newline+1:]
		}
	}
	end := strings.Index(rest, "```")
	if end == -1 {
		return "", false
	}
	return rest[:end], true
}

// clampRiskScore bounds every score to [0,100] and fills default full marks.
func clampRiskScore(score models.RiskScore) models.RiskScore {
	score.TotalScore = clamp(score.TotalScore, 0, 100)
	for i := range score.Dimensions {
		score.Dimensions[i].Score = clamp(score.Dimensions[i].Score, 0, 100)
		if score.Dimensions[i].FullMark == 0 {
			score.Dimensions[i].FullMark = 100
		}
	}
	if score.Dimensions == nil {
		score.Dimensions = []models.RiskDimension{}
	}
	return score
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// safeRiskScore is the well-formed fallback result: zero score, explanatory
// summary, no dimensions.
func safeRiskScore(summary string) models.RiskScore {
	return models.RiskScore{
		TotalScore: 0,
		Summary:    summary,
		Dimensions: []models.RiskDimension{},
	}
}
