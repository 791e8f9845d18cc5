package orchestration

import "strings"

// sentenceBuffer segments streamed response text into complete sentences so
// synthesis can start before the full response has arrived. A sentence ends
// at '.', '!' or '?' followed by whitespace; the trailing fragment is held
// until Flush.
type sentenceBuffer struct {
	pending strings.Builder
}

func newSentenceBuffer() *sentenceBuffer {
	return &sentenceBuffer{}
}

// AddChunk appends streamed text and returns any sentences completed by it,
// in order.
func (b *sentenceBuffer) AddChunk(chunk string) []string {
	b.pending.WriteString(chunk)
	text := b.pending.String()

	var sentences []string
	start := 0
	for i := 0; i < len(text)-1; i++ {
		if !isSentenceTerminator(text[i]) {
			continue
		}
		if !isWhitespace(text[i+1]) {
			continue
		}
		sentence := strings.TrimSpace(text[start : i+1])
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = i + 1
	}

	b.pending.Reset()
	b.pending.WriteString(text[start:])
	return sentences
}

// Flush returns the remaining fragment, if any, and empties the buffer.
// Text without terminal punctuation is delivered here once the response is
// complete.
func (b *sentenceBuffer) Flush() (string, bool) {
	remainder := strings.TrimSpace(b.pending.String())
	b.pending.Reset()
	if remainder == "" {
		return "", false
	}
	return remainder, true
}

func isSentenceTerminator(c byte) bool {
	return c == '.' || c == '!' || c == '?'
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
