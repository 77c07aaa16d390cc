package service

import (
	"fmt"
	"iter"
	"regexp"
	"strings"
)

// clausePattern matches statute clause labels like 第一条 or 第一千零八十七条.
var clausePattern = regexp.MustCompile(`第[零一二三四五六七八九十百千]+条`)

// Chunk splits text into consecutive windows of chunkSize runes advancing by
// chunkSize-overlap. The final window may be shorter. Splits can fall
// mid-sentence; uniform window cost is the point, statute-aware splitting is
// SplitClauses. The sequence is lazy and restartable; empty text yields an
// empty sequence.
func Chunk(text string, chunkSize, overlap int) iter.Seq[string] {
	if chunkSize <= 0 || overlap < 0 || overlap >= chunkSize {
		panic(fmt.Sprintf("invalid chunking parameters: size=%d overlap=%d", chunkSize, overlap))
	}
	return func(yield func(string) bool) {
		runes := []rune(text)
		stride := chunkSize - overlap
		for start := 0; start < len(runes); start += stride {
			end := start + chunkSize
			if end > len(runes) {
				end = len(runes)
			}
			if !yield(string(runes[start:end])) {
				return
			}
		}
	}
}

// ChunkAll collects the windows of Chunk into a slice.
func ChunkAll(text string, chunkSize, overlap int) []string {
	var chunks []string
	for c := range Chunk(text, chunkSize, overlap) {
		chunks = append(chunks, c)
	}
	return chunks
}

// SplitClauses splits statute text on clause labels (第X条), pairing each
// label with the body that follows it, in original order. Text before the
// first label is dropped; labels with empty bodies are skipped.
func SplitClauses(text string) []string {
	locs := clausePattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	var clauses []string
	for i, loc := range locs {
		label := text[loc[0]:loc[1]]
		bodyEnd := len(text)
		if i+1 < len(locs) {
			bodyEnd = locs[i+1][0]
		}
		body := strings.TrimSpace(text[loc[1]:bodyEnd])
		if body == "" {
			continue
		}
		clauses = append(clauses, label+" "+body)
	}
	return clauses
}
