package service

import (
	"strings"
	"unicode/utf8"
)

// splitSeparators are tried in order when looking for a chunk boundary:
// paragraph break, line break, sentence end, word break, then a hard cut.
var splitSeparators = []string{"\n\n", "\n", ". ", " "}

// TextSplitter cuts source text into overlapping chunks of roughly chunkSize
// bytes, preferring natural boundaries over mid-word cuts.
type TextSplitter struct {
	chunkSize    int
	chunkOverlap int
}

// NewTextSplitter creates a splitter. Overlap must be smaller than the chunk
// size; callers configure 1000/200 for case text and 800/150 for legal text.
func NewTextSplitter(chunkSize, chunkOverlap int) *TextSplitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 5
	}
	return &TextSplitter{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// Split returns the ordered chunk texts for the input. Consecutive chunks
// share chunkOverlap bytes of context so retrieval never loses a fact to a
// boundary.
func (s *TextSplitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + s.chunkSize
		if end >= len(text) {
			if chunk := strings.TrimSpace(text[start:]); chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		cut := findCut(text, start, end)
		if chunk := strings.TrimSpace(text[start:cut]); chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := runeBoundaryBefore(text, cut-s.chunkOverlap)
		if next <= start {
			next = cut
		}
		start = next
	}

	return chunks
}

// findCut picks the latest natural boundary inside the window, falling back
// to a hard cut at the window end. Hard cuts back off to a rune boundary so
// multi-byte text never splits mid-rune.
func findCut(text string, start, end int) int {
	window := text[start:end]
	for _, sep := range splitSeparators {
		if idx := strings.LastIndex(window, sep); idx > 0 {
			return start + idx + len(sep)
		}
	}
	return runeBoundaryBefore(text, end)
}

// runeBoundaryBefore returns the largest offset <= i that starts a rune.
func runeBoundaryBefore(text string, i int) int {
	for i > 0 && i < len(text) && !utf8.RuneStart(text[i]) {
		i--
	}
	return i
}
