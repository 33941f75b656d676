package kb

import (
	"context"
	"fmt"

	"hmo-chatbot-backend/internal/ai"
	"hmo-chatbot-backend/internal/logger"
	"hmo-chatbot-backend/models"
)

// Ingestor runs the startup pipeline: load documents, chunk sections, embed
// chunk texts. The result feeds a wholesale index rebuild; nothing is
// patched incrementally.
type Ingestor struct {
	chunker  *Chunker
	embedder ai.EmbeddingProvider
}

func NewIngestor(chunker *Chunker, embedder ai.EmbeddingProvider) *Ingestor {
	return &Ingestor{chunker: chunker, embedder: embedder}
}

// Ingest builds the full chunk set for the knowledge base under dir.
// Chunk IDs are sequential in document order, which fixes the retrieval
// tie-break order. Per-section problems come back as diagnostics; a missing
// directory or an embedding failure aborts the whole ingestion.
func (ing *Ingestor) Ingest(ctx context.Context, dir string) ([]models.Chunk, []Diagnostic, error) {
	sections, diags, err := LoadDirectory(dir)
	if err != nil {
		return nil, nil, err
	}
	for _, d := range diags {
		logger.Warn("Skipped knowledge-base section",
			"file", d.SourceFile, "section", d.Section, "reason", d.Reason)
	}

	var chunks []models.Chunk
	for _, section := range sections {
		chunks = append(chunks, ing.chunker.Split(section)...)
	}
	for i := range chunks {
		chunks[i].ID = i
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}

	vectors, err := ing.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, diags, fmt.Errorf("embedding knowledge base: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, diags, fmt.Errorf("embedding knowledge base: got %d vectors for %d chunks",
			len(vectors), len(chunks))
	}
	for i := range chunks {
		chunks[i].Vector = vectors[i]
	}

	logger.Info("Knowledge base ingested",
		"sections", len(sections), "chunks", len(chunks), "skipped", len(diags))

	return chunks, diags, nil
}
