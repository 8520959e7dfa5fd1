package services

import "strings"

// GPTChunkSize is the target chunk length in characters for cleanup calls.
const GPTChunkSize = 2000

// SplitChunks splits text into word-boundary-safe chunks of at most size
// characters, collapsing runs of whitespace to single spaces.
//
// Words are never split; a single word longer than size gets its own chunk.
// Chunk order matches word order, so rejoining the chunks reproduces the
// text up to whitespace normalization.
func SplitChunks(text string, size int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	var b strings.Builder

	for _, word := range words {
		if b.Len() == 0 {
			b.WriteString(word)
			continue
		}
		if b.Len()+1+len(word) > size {
			chunks = append(chunks, b.String())
			b.Reset()
			b.WriteString(word)
			continue
		}
		b.WriteByte(' ')
		b.WriteString(word)
	}

	return append(chunks, b.String())
}
