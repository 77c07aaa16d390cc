package service

import (
	"context"
	"errors"
	"sync"

	"lawlens-backend/models"
)

// AnalyzeService coordinates retrieval, prompt composition and generation for
// one analyze request. Client handles are injected once and shared read-only
// across concurrent requests.
type AnalyzeService struct {
	retriever    *CorpusRetriever
	memory       *MemoryStore
	orchestrator *GenerationOrchestrator
	corpusCfg    RetrievalConfig
}

// AnalyzeServiceOption is a functional option for AnalyzeService
type AnalyzeServiceOption func(*AnalyzeService)

// WithCorpusRetriever sets the corpus retriever
func WithCorpusRetriever(retriever *CorpusRetriever) AnalyzeServiceOption {
	return func(s *AnalyzeService) {
		s.retriever = retriever
	}
}

// WithMemoryStore sets the memory store
func WithMemoryStore(memory *MemoryStore) AnalyzeServiceOption {
	return func(s *AnalyzeService) {
		s.memory = memory
	}
}

// WithGenerationOrchestrator sets the generation orchestrator
func WithGenerationOrchestrator(orchestrator *GenerationOrchestrator) AnalyzeServiceOption {
	return func(s *AnalyzeService) {
		s.orchestrator = orchestrator
	}
}

// WithCorpusRetrievalConfig overrides the corpus retrieval tuning
func WithCorpusRetrievalConfig(cfg RetrievalConfig) AnalyzeServiceOption {
	return func(s *AnalyzeService) {
		s.corpusCfg = cfg
	}
}

// NewAnalyzeService creates a new analyze service
func NewAnalyzeService(opts ...AnalyzeServiceOption) *AnalyzeService {
	s := &AnalyzeService{corpusCfg: DefaultCorpusRetrieval}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze handles every streaming mode: it resolves context, composes the
// prompt and returns the fragment stream. Use RiskScore for risk_score mode.
func (s *AnalyzeService) Analyze(ctx context.Context, req models.AnalyzeRequest) (<-chan string, error) {
	if s.orchestrator == nil {
		return nil, errors.New("generation orchestrator not set")
	}
	if !req.Mode.Streaming() {
		return nil, errors.New("risk_score mode does not stream")
	}

	corpus, memory := s.resolveContext(ctx, req)

	prompt := Compose(req, corpus, memory)
	stats := RetrievalStats{
		CorpusHits:    len(corpus),
		MemoryApplied: memory != "",
	}
	return s.orchestrator.Stream(ctx, req.Mode, prompt, stats), nil
}

// RiskScore handles the structured-output mode. No retrieval runs: the score
// is grounded in the submitted document alone.
func (s *AnalyzeService) RiskScore(ctx context.Context, req models.AnalyzeRequest) (models.RiskScore, error) {
	if s.orchestrator == nil {
		return models.RiskScore{}, errors.New("generation orchestrator not set")
	}
	prompt := Compose(req, nil, "")
	return s.orchestrator.RiskScore(ctx, prompt), nil
}

// resolveContext runs corpus and memory retrieval concurrently and joins
// before composition. Both paths are best-effort; either may come back empty.
func (s *AnalyzeService) resolveContext(ctx context.Context, req models.AnalyzeRequest) ([]models.RetrievedContext, string) {
	queryText := req.QueryText()

	var (
		wg     sync.WaitGroup
		corpus []models.RetrievedContext
		memory string
	)

	if req.Mode.UsesCorpus() && s.retriever != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			corpus = s.retriever.Retrieve(ctx, queryText, s.corpusCfg)
		}()
	}

	if req.Mode.UsesMemory() && req.UserID != "" && s.memory != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			memory = s.memory.Retrieve(ctx, req.UserID, queryText)
		}()
	}

	wg.Wait()
	return corpus, memory
}
