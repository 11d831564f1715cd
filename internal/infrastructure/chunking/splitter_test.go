package chunking

import (
	"strings"
	"testing"
)

func TestSplitChunkCountMatchesFormula(t *testing.T) {
	tests := []struct {
		name      string
		length    int
		chunkSize int
		overlap   int
		want      int
	}{
		{name: "fits in one chunk", length: 500, chunkSize: 1000, overlap: 200, want: 1},
		{name: "exact chunk size", length: 1000, chunkSize: 1000, overlap: 200, want: 1},
		{name: "one over", length: 1001, chunkSize: 1000, overlap: 200, want: 2},
		{name: "two full windows", length: 1800, chunkSize: 1000, overlap: 200, want: 2},
		{name: "three windows", length: 2400, chunkSize: 1000, overlap: 200, want: 3},
		{name: "small windows", length: 95, chunkSize: 10, overlap: 3, want: 14},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSplitter(tc.chunkSize, tc.overlap)
			text := strings.Repeat("x", tc.length)
			got := len(s.Split(text))

			// ceil((L-O)/(S-O)) for L > S, else 1
			want := 1
			if tc.length > tc.chunkSize {
				step := tc.chunkSize - tc.overlap
				want = (tc.length - tc.overlap + step - 1) / step
			}
			if want != tc.want {
				t.Fatalf("test case is inconsistent with formula: want %d, formula %d", tc.want, want)
			}
			if got != want {
				t.Fatalf("Split() produced %d chunks, want %d", got, want)
			}
		})
	}
}

func TestSplitReconstructsOriginal(t *testing.T) {
	s := NewSplitter(100, 25)
	var b strings.Builder
	for i := 0; i < 1237; i++ {
		b.WriteRune(rune('a' + i%26))
	}
	text := b.String()

	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	var rebuilt strings.Builder
	for i, chunk := range chunks {
		runes := []rune(chunk)
		if i == 0 {
			rebuilt.WriteString(chunk)
			continue
		}
		rebuilt.WriteString(string(runes[s.Overlap:]))
	}
	if rebuilt.String() != text {
		t.Fatalf("overlap-stripped concatenation does not reconstruct input")
	}
}

func TestSplitOverlapSharedBetweenNeighbours(t *testing.T) {
	s := NewSplitter(10, 4)
	text := "abcdefghijklmnopqrstuvwxyz"
	chunks := s.Split(text)

	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		curr := []rune(chunks[i])
		tail := string(prev[len(prev)-s.Overlap:])
		head := string(curr[:s.Overlap])
		if tail != head {
			t.Fatalf("chunk %d head %q does not match previous tail %q", i, head, tail)
		}
	}
}

func TestSplitEmptyText(t *testing.T) {
	s := NewSplitter(1000, 200)
	if got := s.Split(""); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}

func TestNewSplitterNormalizesBadOverlap(t *testing.T) {
	s := NewSplitter(100, 150)
	if s.Overlap >= s.ChunkSize {
		t.Fatalf("overlap %d not normalized below chunk size %d", s.Overlap, s.ChunkSize)
	}
}
