package kb

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"hmo-chatbot-backend/models"
)

// Chunker splits section text into bounded-size chunks. Splitting prefers
// paragraph boundaries, then sentence boundaries; a single sentence longer
// than the maximum stands alone rather than being cut mid-sentence.
// The same input always yields the same chunk boundaries.
type Chunker struct {
	minSize     int
	maxSize     int
	sentenceRe  *regexp.Regexp
	paragraphRe *regexp.Regexp
}

// NewChunker creates a chunker with the given size bounds in characters
// (runes, so Hebrew text is measured correctly).
func NewChunker(minSize, maxSize int) *Chunker {
	return &Chunker{
		minSize:     minSize,
		maxSize:     maxSize,
		sentenceRe:  regexp.MustCompile(`[^.!?]+[.!?]*`),
		paragraphRe: regexp.MustCompile(`\n\s*\n+`),
	}
}

// Split chunks one section, carrying its category, source file and
// eligibility tags onto every produced chunk. IDs and vectors are assigned
// later by the ingestion pipeline.
func (c *Chunker) Split(section Section) []models.Chunk {
	fragments := c.merge(c.fragments(section.Text))

	chunks := make([]models.Chunk, 0, len(fragments))
	for _, text := range fragments {
		chunks = append(chunks, models.Chunk{
			Text:        text,
			SourceFile:  section.SourceFile,
			Category:    section.Category,
			Eligibility: section.Eligibility,
		})
	}
	return chunks
}

// fragments splits text into normalized pieces no longer than maxSize,
// except for single sentences that alone exceed it.
func (c *Chunker) fragments(text string) []string {
	var out []string

	for _, paragraph := range c.paragraphRe.Split(text, -1) {
		paragraph = normalizeWhitespace(paragraph)
		if paragraph == "" {
			continue
		}
		if runeLen(paragraph) <= c.maxSize {
			out = append(out, paragraph)
			continue
		}
		out = append(out, c.packSentences(c.splitSentences(paragraph))...)
	}

	return out
}

// packSentences greedily joins sentences into fragments of at most maxSize
// characters. Oversized sentences are emitted as-is.
func (c *Chunker) packSentences(sentences []string) []string {
	var out []string
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if curLen > 0 {
			out = append(out, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, sentence := range sentences {
		n := runeLen(sentence)
		if n > c.maxSize {
			flush()
			out = append(out, sentence)
			continue
		}
		if curLen > 0 && curLen+1+n > c.maxSize {
			flush()
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(sentence)
		curLen += n
	}
	flush()

	return out
}

// merge joins consecutive fragments when either side is below minSize and
// the combined fragment still fits within maxSize. This avoids
// pathologically tiny chunks without ever exceeding the bound.
func (c *Chunker) merge(fragments []string) []string {
	var out []string
	for _, fragment := range fragments {
		if len(out) > 0 {
			last := out[len(out)-1]
			if (runeLen(last) < c.minSize || runeLen(fragment) < c.minSize) &&
				runeLen(last)+2+runeLen(fragment) <= c.maxSize {
				out[len(out)-1] = last + "\n\n" + fragment
				continue
			}
		}
		out = append(out, fragment)
	}
	return out
}

// splitSentences breaks a paragraph on line and sentence-terminator
// boundaries. List items (one per line) are treated as sentences.
func (c *Chunker) splitSentences(paragraph string) []string {
	var out []string
	for _, line := range strings.Split(paragraph, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, s := range c.sentenceRe.FindAllString(line, -1) {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// normalizeWhitespace trims lines, collapses internal space runs and drops
// blank lines, preserving line structure for lists.
func normalizeWhitespace(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		lines = append(lines, strings.Join(fields, " "))
	}
	return strings.Join(lines, "\n")
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
