package kb

import (
	"strings"
	"testing"

	"hmo-chatbot-backend/models"
)

func section(text string) Section {
	return Section{
		Text:       text,
		SourceFile: "dentel_services.html",
		Category:   models.CategoryDental,
	}
}

// sentenceOfLen builds a sentence of exactly n characters ending in a period.
func sentenceOfLen(n int) string {
	return strings.Repeat("a", n-1) + "."
}

func TestChunkBoundsRespected(t *testing.T) {
	c := NewChunker(200, 500)

	var sentences []string
	for i := 0; i < 20; i++ {
		sentences = append(sentences, sentenceOfLen(100))
	}
	text := strings.Join(sentences, " ")

	chunks := c.Split(section(text))
	if len(chunks) == 0 {
		t.Fatal("no chunks produced")
	}
	for i, ch := range chunks {
		n := len([]rune(ch.Text))
		if n > 500 {
			t.Errorf("chunk %d exceeds max length: %d", i, n)
		}
	}
}

func TestShortSectionBecomesSingleChunk(t *testing.T) {
	c := NewChunker(200, 500)

	text := strings.Repeat("b", 50)
	chunks := c.Split(section(text))
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Text != text {
		t.Errorf("chunk text changed: %q", chunks[0].Text)
	}
}

func TestLongSectionSplitsIntoMultipleChunks(t *testing.T) {
	// Ingestion scenario: a 50-char section yields one chunk; a 2000-char
	// section with maxLength=500 yields at least four.
	c := NewChunker(200, 500)

	short := c.Split(section(strings.Repeat("x", 50)))
	if len(short) != 1 {
		t.Errorf("short section: got %d chunks, want 1", len(short))
	}

	var sentences []string
	for i := 0; i < 20; i++ {
		sentences = append(sentences, sentenceOfLen(100))
	}
	long := c.Split(section(strings.Join(sentences, " "))) // 2000+ chars
	if len(long) < 4 {
		t.Errorf("long section: got %d chunks, want >= 4", len(long))
	}
}

func TestOversizedSentenceStandsAlone(t *testing.T) {
	c := NewChunker(50, 100)

	big := sentenceOfLen(250) // single sentence, no terminators inside
	chunks := c.Split(section(big))
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if len([]rune(chunks[0].Text)) != 250 {
		t.Errorf("oversized sentence was split: len=%d", len([]rune(chunks[0].Text)))
	}
}

func TestTinyFragmentsMergeWithNeighbor(t *testing.T) {
	c := NewChunker(100, 300)

	// Two tiny paragraphs should merge rather than stand alone.
	text := "קצר מאוד.\n\nגם זה קצר."
	chunks := c.Split(section(text))
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1 merged chunk", len(chunks))
	}
	if !strings.Contains(chunks[0].Text, "קצר מאוד.") || !strings.Contains(chunks[0].Text, "גם זה קצר.") {
		t.Errorf("merged chunk missing content: %q", chunks[0].Text)
	}
}

func TestMergeNeverExceedsMax(t *testing.T) {
	c := NewChunker(200, 250)

	text := strings.Repeat("c", 240) + "\n\n" + strings.Repeat("d", 240)
	chunks := c.Split(section(text))
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2 (merge would exceed max)", len(chunks))
	}
}

func TestEmptyAndWhitespaceDiscarded(t *testing.T) {
	c := NewChunker(200, 500)

	for _, text := range []string{"", "   ", "\n\n\t\n  \n"} {
		if chunks := c.Split(section(text)); len(chunks) != 0 {
			t.Errorf("whitespace input %q produced %d chunks", text, len(chunks))
		}
	}
}

func TestChunkingDeterministic(t *testing.T) {
	c := NewChunker(200, 500)

	var sentences []string
	for i := 0; i < 15; i++ {
		sentences = append(sentences, sentenceOfLen(90))
	}
	text := strings.Join(sentences, " ") + "\n\nפסקה נוספת עם תוכן קצר."

	first := c.Split(section(text))
	second := c.Split(section(text))
	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Text != second[i].Text {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestMetadataCarriedOntoChunks(t *testing.T) {
	c := NewChunker(200, 500)

	sec := Section{
		Text:       "טיפול שיניים לילדים ללא עלות עד גיל 18.",
		SourceFile: "dentel_services.html",
		Category:   models.CategoryDental,
		Eligibility: []models.EligibilityTag{
			{HMO: models.HMOMaccabi, Tier: models.TierGold},
		},
	}

	chunks := c.Split(sec)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	ch := chunks[0]
	if ch.SourceFile != sec.SourceFile || ch.Category != sec.Category {
		t.Errorf("metadata not carried: %+v", ch)
	}
	if len(ch.Eligibility) != 1 || ch.Eligibility[0].HMO != models.HMOMaccabi {
		t.Errorf("eligibility not carried: %+v", ch.Eligibility)
	}
	if ch.ID != 0 || ch.Vector != nil {
		t.Errorf("chunker must not assign ids or vectors: %+v", ch)
	}
}
