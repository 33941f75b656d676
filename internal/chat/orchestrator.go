package chat

import (
	"context"

	"hmo-chatbot-backend/internal/ai"
	"hmo-chatbot-backend/internal/logger"
	"hmo-chatbot-backend/internal/retriever"
	"hmo-chatbot-backend/models"
)

// Orchestrator combines retrieved knowledge-base chunks into a grounded
// prompt and delegates answer generation to the completion provider. It is
// stateless across calls; all failures come back as structured results and
// never escape its boundary.
type Orchestrator struct {
	retriever     *retriever.Retriever
	completer     ai.CompletionProvider
	topK          int
	minRelevance  float64
	contextBudget int
}

func NewOrchestrator(r *retriever.Retriever, completer ai.CompletionProvider, topK int, minRelevance float64, contextBudget int) *Orchestrator {
	if topK < 1 {
		topK = 5
	}
	return &Orchestrator{
		retriever:     r,
		completer:     completer,
		topK:          topK,
		minRelevance:  minRelevance,
		contextBudget: contextBudget,
	}
}

// Answer resolves one question. Chunks scoring below the relevance
// threshold are not used as context: the completion still runs on the bare
// question, instructed not to present unsupported claims as sourced, and
// the result is marked context_used=false.
func (o *Orchestrator) Answer(ctx context.Context, query string, profile models.UserProfile, history []models.Exchange, language string) models.AnswerResult {
	results, err := o.retriever.Retrieve(ctx, query, profile, o.topK)
	if err != nil {
		logger.Error("Retrieval failed", "error", err)
		return models.AnswerResult{
			Status:  models.StatusError,
			Reason:  "retrieval_failed",
			Sources: []string{},
		}
	}

	relevant := results[:0:len(results)]
	for _, res := range results {
		if res.Score >= o.minRelevance {
			relevant = append(relevant, res)
		}
	}

	contextBlock, sources := buildContext(relevant, o.contextBudget)
	contextUsed := contextBlock != ""

	prompt := buildPrompt(query, profile, contextBlock, history, language)

	answer, err := o.completer.Complete(ctx, prompt, language)
	if err != nil {
		logger.Error("Completion failed", "error", err, "context_used", contextUsed)
		return models.AnswerResult{
			Status:  models.StatusError,
			Reason:  "completion_failed",
			Sources: []string{},
		}
	}

	return models.AnswerResult{
		Status:      models.StatusAnswered,
		Answer:      answer,
		Sources:     sources,
		ContextUsed: contextUsed,
	}
}

// buildContext assembles the grounding block from retrieved chunks, capped
// by a word budget, and collects source files deduplicated in rank order.
func buildContext(results []retriever.Result, budget int) (string, []string) {
	var parts []string
	sources := []string{}
	seen := make(map[string]struct{})
	words := 0

	for _, res := range results {
		chunkWords := countWords(res.Chunk.Text)
		if words+chunkWords > budget && len(parts) > 0 {
			break
		}
		parts = append(parts, res.Chunk.Text)
		words += chunkWords

		if _, ok := seen[res.Chunk.SourceFile]; !ok {
			seen[res.Chunk.SourceFile] = struct{}{}
			sources = append(sources, res.Chunk.SourceFile)
		}
	}

	return joinContext(parts), sources
}
