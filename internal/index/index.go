package index

import (
	"errors"
	"fmt"

	"hmo-chatbot-backend/models"
)

// Index-build failures. Both indicate an ingestion bug and are never
// retried; startup should fail loudly instead of serving a broken corpus.
var (
	ErrDimensionMismatch = errors.New("chunk vector dimension mismatch")
	ErrDuplicateChunkID  = errors.New("duplicate chunk id")
)

// Index holds every chunk of the knowledge base in memory. It is immutable
// after Build and therefore safe for concurrent reads without locking;
// refreshes rebuild the whole index.
type Index struct {
	chunks    []models.Chunk
	dimension int
}

// Stats summarizes the index for health and introspection endpoints.
type Stats struct {
	ChunkCount         int            `json:"chunk_count"`
	CategoryCounts     map[string]int `json:"category_counts"`
	HMOCounts          map[string]int `json:"hmo_counts"`
	TierCounts         map[string]int `json:"tier_counts"`
	EmbeddingDimension int            `json:"embedding_dimension"`
}

// Build validates and indexes the given chunks. Every vector must have the
// expected dimension and every id must be unique.
func Build(chunks []models.Chunk, dimension int) (*Index, error) {
	seen := make(map[int]struct{}, len(chunks))
	for i := range chunks {
		if len(chunks[i].Vector) != dimension {
			return nil, fmt.Errorf("%w: chunk %d has dimension %d, want %d",
				ErrDimensionMismatch, chunks[i].ID, len(chunks[i].Vector), dimension)
		}
		if _, dup := seen[chunks[i].ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateChunkID, chunks[i].ID)
		}
		seen[chunks[i].ID] = struct{}{}
	}

	indexed := make([]models.Chunk, len(chunks))
	copy(indexed, chunks)

	return &Index{chunks: indexed, dimension: dimension}, nil
}

// All returns the indexed chunks. Callers must treat the slice as read-only.
func (ix *Index) All() []models.Chunk { return ix.chunks }

// Len returns the number of indexed chunks.
func (ix *Index) Len() int { return len(ix.chunks) }

// Dimension returns the embedding dimensionality D.
func (ix *Index) Dimension() int { return ix.dimension }

// Stats counts chunks per category, HMO and tier. Chunks without
// eligibility tags apply to everyone and are counted for every HMO and tier.
func (ix *Index) Stats() Stats {
	stats := Stats{
		ChunkCount:         len(ix.chunks),
		CategoryCounts:     make(map[string]int),
		HMOCounts:          make(map[string]int),
		TierCounts:         make(map[string]int),
		EmbeddingDimension: ix.dimension,
	}

	for i := range ix.chunks {
		chunk := &ix.chunks[i]
		stats.CategoryCounts[string(chunk.Category)]++

		if len(chunk.Eligibility) == 0 {
			for _, hmo := range models.KnownHMOs {
				stats.HMOCounts[hmo]++
			}
			for _, tier := range models.KnownTiers {
				stats.TierCounts[tier]++
			}
			continue
		}

		hmos := make(map[string]struct{})
		tiers := make(map[string]struct{})
		for _, tag := range chunk.Eligibility {
			hmos[tag.HMO] = struct{}{}
			tiers[tag.Tier] = struct{}{}
		}
		for hmo := range hmos {
			stats.HMOCounts[hmo]++
		}
		for tier := range tiers {
			stats.TierCounts[tier]++
		}
	}

	return stats
}
