package retriever

import (
	"context"
	"testing"

	"hmo-chatbot-backend/internal/index"
	"hmo-chatbot-backend/models"
)

// fixedEmbedder returns the same vector for every text, letting tests pick
// the query direction explicitly.
type fixedEmbedder struct {
	vector []float32
}

func (f fixedEmbedder) Dimension() int { return len(f.vector) }

func (f fixedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func buildIndex(t *testing.T, chunks []models.Chunk, dim int) *index.Index {
	t.Helper()
	ix, err := index.Build(chunks, dim)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return ix
}

func confirmedProfile(hmo, tier string) models.UserProfile {
	return models.UserProfile{HMO: hmo, MembershipTier: tier, Confirmed: true}
}

func TestRetrieveRanksBySimilarity(t *testing.T) {
	chunks := []models.Chunk{
		{ID: 0, Text: "טיפולי שיניים", SourceFile: "dentel_services.html",
			Category: models.CategoryDental, Vector: []float32{1, 0, 0}},
	}
	for i := 1; i < 10; i++ {
		chunks = append(chunks, models.Chunk{
			ID: i, Text: "מעקב הריון", SourceFile: "pragrency_services.html",
			Category: models.CategoryPregnancy, Vector: []float32{0, 1, 0},
		})
	}

	r := New(fixedEmbedder{vector: []float32{1, 0, 0}}, buildIndex(t, chunks, 3))
	results, err := r.Retrieve(context.Background(), "שיניים", models.UserProfile{}, 3)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Chunk.Category != models.CategoryDental {
		t.Errorf("top result is %s, want dental", results[0].Chunk.Category)
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("scores not descending: %v then %v", results[0].Score, results[1].Score)
	}
}

func TestRetrieveFiltersByEligibility(t *testing.T) {
	maccabiGold := []models.EligibilityTag{{HMO: models.HMOMaccabi, Tier: models.TierGold}}
	clalitBronze := []models.EligibilityTag{{HMO: models.HMOClalit, Tier: models.TierBronze}}

	chunks := []models.Chunk{
		{ID: 0, Text: "a", SourceFile: "f.html", Vector: []float32{1, 0}, Eligibility: maccabiGold},
		{ID: 1, Text: "b", SourceFile: "f.html", Vector: []float32{1, 0}, Eligibility: clalitBronze},
		{ID: 2, Text: "c", SourceFile: "f.html", Vector: []float32{1, 0}, Eligibility: clalitBronze},
		{ID: 3, Text: "d", SourceFile: "f.html", Vector: []float32{1, 0}}, // untagged
	}

	r := New(fixedEmbedder{vector: []float32{1, 0}}, buildIndex(t, chunks, 2))

	// Fewer eligible chunks than k: return exactly the eligible ones.
	results, err := r.Retrieve(context.Background(),
		"query", confirmedProfile(models.HMOMaccabi, models.TierGold), 5)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (tagged maccabi/gold + untagged)", len(results))
	}
	for _, res := range results {
		if !res.Chunk.AppliesTo(models.HMOMaccabi, models.TierGold) {
			t.Errorf("ineligible chunk %d returned", res.Chunk.ID)
		}
	}
}

func TestRetrieveUnconfirmedProfileBypassesFilter(t *testing.T) {
	chunks := []models.Chunk{
		{ID: 0, Text: "a", SourceFile: "f.html", Vector: []float32{1, 0},
			Eligibility: []models.EligibilityTag{{HMO: models.HMOMaccabi, Tier: models.TierGold}}},
		{ID: 1, Text: "b", SourceFile: "f.html", Vector: []float32{1, 0},
			Eligibility: []models.EligibilityTag{{HMO: models.HMOClalit, Tier: models.TierBronze}}},
	}

	r := New(fixedEmbedder{vector: []float32{1, 0}}, buildIndex(t, chunks, 2))
	unconfirmed := models.UserProfile{HMO: models.HMOMaccabi, MembershipTier: models.TierGold, Confirmed: false}

	results, err := r.Retrieve(context.Background(), "query", unconfirmed, 5)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("unconfirmed profile got %d results, want all 2", len(results))
	}
}

func TestRetrieveTieBreakByAscendingID(t *testing.T) {
	chunks := []models.Chunk{
		{ID: 4, Text: "a", SourceFile: "f.html", Vector: []float32{1, 0}},
		{ID: 1, Text: "b", SourceFile: "f.html", Vector: []float32{1, 0}},
		{ID: 9, Text: "c", SourceFile: "f.html", Vector: []float32{1, 0}},
	}

	r := New(fixedEmbedder{vector: []float32{1, 0}}, buildIndex(t, chunks, 2))
	results, err := r.Retrieve(context.Background(), "query", models.UserProfile{}, 3)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}

	want := []int{1, 4, 9}
	for i, res := range results {
		if res.Chunk.ID != want[i] {
			t.Errorf("rank %d has id %d, want %d", i, res.Chunk.ID, want[i])
		}
	}
}

func TestRetrieveEmptyIndex(t *testing.T) {
	r := New(fixedEmbedder{vector: []float32{1, 0}}, buildIndex(t, nil, 2))
	results, err := r.Retrieve(context.Background(), "query", models.UserProfile{}, 5)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("empty index returned %d results", len(results))
	}
}
