package services

import (
	"strings"
	"testing"
)

func TestSplitChunks(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		size       int
		wantChunks int
	}{
		{
			name:       "empty text",
			text:       "",
			size:       100,
			wantChunks: 0,
		},
		{
			name:       "whitespace only",
			text:       "   \n\t  ",
			size:       100,
			wantChunks: 0,
		},
		{
			name:       "short text fits one chunk",
			text:       "hello world",
			size:       100,
			wantChunks: 1,
		},
		{
			name:       "exact boundary",
			text:       "aaaa bbbb",
			size:       9,
			wantChunks: 1,
		},
		{
			name:       "one past boundary",
			text:       "aaaa bbbb",
			size:       8,
			wantChunks: 2,
		},
		{
			name:       "word longer than size gets its own chunk",
			text:       "tiny " + strings.Repeat("x", 50) + " tiny",
			size:       10,
			wantChunks: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitChunks(tt.text, tt.size)

			if len(chunks) != tt.wantChunks {
				t.Fatalf("expected %d chunks, got %d: %q", tt.wantChunks, len(chunks), chunks)
			}

			for i, chunk := range chunks {
				if len(strings.Fields(chunk)) > 1 && len(chunk) > tt.size {
					t.Errorf("chunk %d exceeds size %d: %d chars", i, tt.size, len(chunk))
				}
				if strings.HasPrefix(chunk, " ") || strings.HasSuffix(chunk, " ") {
					t.Errorf("chunk %d has boundary whitespace: %q", i, chunk)
				}
			}
		})
	}

	t.Run("rejoining chunks reproduces the text", func(t *testing.T) {
		text := "the quick brown fox jumps over the lazy dog " + strings.Repeat("again and again ", 100)
		chunks := SplitChunks(text, 64)

		want := strings.Join(strings.Fields(text), " ")
		got := strings.Join(chunks, " ")
		if got != want {
			t.Errorf("rejoined chunks do not match normalized input")
		}
	})

	t.Run("5000 characters at default size yields 3 chunks", func(t *testing.T) {
		// 500 ten-character words including separators is 5000 characters.
		word := strings.Repeat("a", 9)
		words := make([]string, 500)
		for i := range words {
			words[i] = word
		}
		text := strings.Join(words, " ")

		chunks := SplitChunks(text, GPTChunkSize)
		if len(chunks) != 3 {
			t.Errorf("expected 3 chunks for %d chars, got %d", len(text), len(chunks))
		}

		// Words must never be split across chunks.
		for i, chunk := range chunks {
			for _, w := range strings.Fields(chunk) {
				if len(w) != 9 {
					t.Errorf("chunk %d split a word: %q", i, w)
				}
			}
		}
	})
}
