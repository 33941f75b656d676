package kb

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"hmo-chatbot-backend/internal/ai"
)

func TestIngestEndToEnd(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "alternative_services.html"), []byte(sampleHTML), 0o644); err != nil {
		t.Fatal(err)
	}

	ing := NewIngestor(NewChunker(200, 500), ai.NewMockEmbedder(8))
	chunks, diags, err := ing.Ingest(context.Background(), dir)
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if len(chunks) == 0 {
		t.Fatal("no chunks produced")
	}
	if len(diags) == 0 {
		t.Error("expected diagnostics for the five missing files")
	}

	for i, ch := range chunks {
		if ch.ID != i {
			t.Errorf("chunk %d has id %d, want sequential ids", i, ch.ID)
		}
		if len(ch.Vector) != 8 {
			t.Errorf("chunk %d vector has dimension %d, want 8", i, len(ch.Vector))
		}
		if ch.SourceFile != "alternative_services.html" {
			t.Errorf("chunk %d has source %q", i, ch.SourceFile)
		}
	}
}

func TestIngestMissingDirectory(t *testing.T) {
	ing := NewIngestor(NewChunker(200, 500), ai.NewMockEmbedder(8))
	_, _, err := ing.Ingest(context.Background(), filepath.Join(t.TempDir(), "absent"))
	if !errors.Is(err, ErrMissingKnowledgeBase) {
		t.Fatalf("expected ErrMissingKnowledgeBase, got %v", err)
	}
}

type failingEmbedder struct{}

func (failingEmbedder) Dimension() int { return 8 }

func (failingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, ai.ErrProviderUnavailable
}

func TestIngestEmbeddingFailureAborts(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "alternative_services.html"), []byte(sampleHTML), 0o644); err != nil {
		t.Fatal(err)
	}

	ing := NewIngestor(NewChunker(200, 500), failingEmbedder{})
	_, _, err := ing.Ingest(context.Background(), dir)
	if !errors.Is(err, ai.ErrProviderUnavailable) {
		t.Fatalf("expected provider error, got %v", err)
	}
}
