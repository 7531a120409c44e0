package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitShortTextIsSingleChunk(t *testing.T) {
	s := NewTextSplitter(1000, 200)
	chunks := s.Split("A short case description.")
	require.Len(t, chunks, 1)
	assert.Equal(t, "A short case description.", chunks[0])
}

func TestSplitEmptyText(t *testing.T) {
	s := NewTextSplitter(1000, 200)
	assert.Nil(t, s.Split(""))
	assert.Nil(t, s.Split("   \n  "))
}

func TestSplitProducesOverlappingChunks(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("The witness described the events of that evening in detail. ")
	}

	s := NewTextSplitter(200, 50)
	chunks := s.Split(b.String())
	require.Greater(t, len(chunks), 1)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 200)
		assert.NotEmpty(t, chunk)
	}

	// Consecutive chunks share text from the overlap region.
	for i := 1; i < len(chunks); i++ {
		head := chunks[i][:20]
		assert.Contains(t, chunks[i-1], head, "chunk %d does not overlap its predecessor", i)
	}
}

func TestSplitPrefersParagraphBoundaries(t *testing.T) {
	text := strings.Repeat("a", 80) + "\n\n" + strings.Repeat("b", 80)
	s := NewTextSplitter(100, 10)
	chunks := s.Split(text)

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, strings.Repeat("a", 80), chunks[0])
}

func TestSplitHardCutRespectsRuneBoundaries(t *testing.T) {
	// No separators at all, so every cut is a hard cut through
	// multi-byte text.
	text := strings.Repeat("裁判所の記録によれば被告人は現場にいた", 40)
	s := NewTextSplitter(100, 20)

	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)
	for i, chunk := range chunks {
		assert.True(t, utf8.ValidString(chunk), "chunk %d is not valid UTF-8", i)
	}
}

func TestSplitterGuardsBadOverlap(t *testing.T) {
	s := NewTextSplitter(100, 500)
	chunks := s.Split(strings.Repeat("word ", 100))
	assert.NotEmpty(t, chunks)
}
