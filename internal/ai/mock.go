package ai

import "context"

// MockEmbedder returns zero vectors deterministically. It never opens a
// network connection, which keeps offline runs and tests hermetic.
type MockEmbedder struct {
	dimension int
}

func NewMockEmbedder(dimension int) *MockEmbedder {
	return &MockEmbedder{dimension: dimension}
}

func (m *MockEmbedder) Dimension() int { return m.dimension }

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, m.dimension)
	}
	return out, nil
}

// MockCompleter returns a fixed bilingual notice instead of calling an LLM.
type MockCompleter struct{}

func NewMockCompleter() *MockCompleter { return &MockCompleter{} }

func (m *MockCompleter) Complete(ctx context.Context, prompt, language string) (string, error) {
	if language == "en" {
		return "The assistant is running in offline mode; no generated answer is available.", nil
	}
	return "העוזר פועל במצב לא מקוון; אין תשובה שנוצרה על ידי מודל.", nil
}
