package retriever

import (
	"context"
	"sort"
	"strings"

	"hmo-chatbot-backend/internal/ai"
	"hmo-chatbot-backend/internal/index"
	"hmo-chatbot-backend/internal/logger"
	"hmo-chatbot-backend/models"
)

// Result pairs a chunk with its similarity score for one query.
type Result struct {
	Chunk *models.Chunk
	Score float64
}

// Retriever performs profile-aware similarity search over the vector index.
// It holds only immutable state and is safe for concurrent queries.
type Retriever struct {
	embedder ai.EmbeddingProvider
	index    *index.Index
}

func New(embedder ai.EmbeddingProvider, idx *index.Index) *Retriever {
	return &Retriever{embedder: embedder, index: idx}
}

// Retrieve embeds the query, filters candidate chunks by profile
// eligibility, and returns up to k results ordered by descending cosine
// similarity with ties broken by ascending chunk id.
//
// Unconfirmed profiles skip eligibility filtering entirely: during
// onboarding the user sees the broader default set. An empty index yields
// an empty result, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, profile models.UserProfile, k int) ([]Result, error) {
	if k < 1 {
		k = 1
	}

	vectors, err := r.embedder.EmbedBatch(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	queryVec := vectors[0]

	chunks := r.index.All()
	results := make([]Result, 0, len(chunks))
	for i := range chunks {
		chunk := &chunks[i]
		if profile.Confirmed && !chunk.AppliesTo(profile.HMO, profile.MembershipTier) {
			continue
		}
		results = append(results, Result{
			Chunk: chunk,
			Score: index.Cosine(queryVec, chunk.Vector),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})

	if len(results) > k {
		results = results[:k]
	}

	logTopMatches(query, profile, results)
	return results, nil
}

// logTopMatches records a preview of the best matches for debugging and
// retrieval-quality verification.
func logTopMatches(query string, profile models.UserProfile, results []Result) {
	n := len(results)
	if n > 3 {
		n = 3
	}
	for rank := 0; rank < n; rank++ {
		preview := strings.ReplaceAll(results[rank].Chunk.Text, "\n", " ")
		if len([]rune(preview)) > 60 {
			preview = string([]rune(preview)[:60]) + "..."
		}
		logger.Debug("Retrieval match",
			"query", query,
			"hmo", profile.HMO,
			"tier", profile.MembershipTier,
			"confirmed", profile.Confirmed,
			"rank", rank+1,
			"score", results[rank].Score,
			"chunk_id", results[rank].Chunk.ID,
			"source_file", results[rank].Chunk.SourceFile,
			"preview", preview,
		)
	}
}
