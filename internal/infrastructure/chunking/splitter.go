package chunking

type Splitter struct {
	ChunkSize int
	Overlap   int
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 5
	}
	return &Splitter{
		ChunkSize: chunkSize,
		Overlap:   overlap,
	}
}

// Split cuts text into fixed-size windows with a fixed overlap between
// consecutive windows. Windows are kept verbatim so that concatenating the
// chunks, dropping the leading Overlap runes of every chunk after the first,
// reconstructs the input exactly. For input length L > ChunkSize the chunk
// count is ceil((L-Overlap)/(ChunkSize-Overlap)); shorter inputs yield one
// chunk.
func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := s.ChunkSize - s.Overlap
	if step <= 0 {
		step = s.ChunkSize
	}

	out := make([]string, 0, (len(runes)+step-1)/step)
	for start := 0; ; start += step {
		end := start + s.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}
