package flatindex

import (
	"context"
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/hydroflow/hydroflow/internal/core/domain"
)

const blobName = "index.gob"

// Entry is one indexed chunk. Exported for gob encoding; the on-disk blob is
// opaque to everything but this package.
type Entry struct {
	ID       string
	Vector   []float32
	Text     string
	Metadata domain.ChunkMetadata
}

type persisted struct {
	Dimension int
	Entries   []Entry
}

// Index is a brute-force cosine-similarity index persisted as a single gob
// blob under a directory. Merges follow a load-modify-save cycle guarded by
// an in-process mutex only; concurrent processes can still lose updates.
type Index struct {
	dir string

	mu     sync.Mutex
	loaded bool
	data   persisted
}

func New(dir string) *Index {
	return &Index{dir: dir}
}

func (x *Index) Merge(_ context.Context, chunks []string, vectors [][]float32, metadata []domain.ChunkMetadata) error {
	if len(chunks) != len(vectors) || len(chunks) != len(metadata) {
		return domain.WrapError(domain.ErrIndex, "merge chunks",
			fmt.Errorf("chunks/vectors/metadata mismatch: %d/%d/%d", len(chunks), len(vectors), len(metadata)))
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if err := x.ensureLoaded(); err != nil {
		return err
	}

	for i, v := range vectors {
		if len(v) == 0 {
			return domain.WrapError(domain.ErrIndex, "merge chunks", fmt.Errorf("empty vector at position %d", i))
		}
		if x.data.Dimension == 0 {
			x.data.Dimension = len(v)
		}
		if len(v) != x.data.Dimension {
			return domain.WrapError(domain.ErrIndex, "merge chunks",
				fmt.Errorf("vector dimension %d does not match index dimension %d", len(v), x.data.Dimension))
		}
	}

	for i := range chunks {
		x.data.Entries = append(x.data.Entries, Entry{
			ID:       uuid.NewString(),
			Vector:   vectors[i],
			Text:     chunks[i],
			Metadata: metadata[i],
		})
	}

	return x.save()
}

func (x *Index) Search(_ context.Context, queryVector []float32, topK int) ([]domain.RetrievedChunk, error) {
	if topK <= 0 {
		topK = 3
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if err := x.ensureLoaded(); err != nil {
		return nil, err
	}

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, 0, len(x.data.Entries))
	for i, e := range x.data.Entries {
		scores = append(scores, scored{idx: i, score: cosine(queryVector, e.Vector)})
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	if topK > len(scores) {
		topK = len(scores)
	}
	out := make([]domain.RetrievedChunk, 0, topK)
	for _, s := range scores[:topK] {
		e := x.data.Entries[s.idx]
		out = append(out, domain.RetrievedChunk{
			Text:     e.Text,
			Score:    s.score,
			Metadata: e.Metadata,
		})
	}
	return out, nil
}

func (x *Index) Size() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	if err := x.ensureLoaded(); err != nil {
		return 0
	}
	return len(x.data.Entries)
}

func (x *Index) ensureLoaded() error {
	if x.loaded {
		return nil
	}

	f, err := os.Open(filepath.Join(x.dir, blobName))
	if err != nil {
		if os.IsNotExist(err) {
			x.loaded = true
			return nil
		}
		return domain.WrapError(domain.ErrIndex, "open index blob", err)
	}
	defer f.Close()

	var data persisted
	if err := gob.NewDecoder(f).Decode(&data); err != nil {
		return domain.WrapError(domain.ErrIndex, "decode index blob", err)
	}
	x.data = data
	x.loaded = true
	return nil
}

// save rewrites the whole blob. Deliberately not atomic: the pipeline has no
// partial-write protection and a crashed save leaves a corrupt index.
func (x *Index) save() error {
	if err := os.MkdirAll(x.dir, 0o755); err != nil {
		return domain.WrapError(domain.ErrIndex, "create index dir", err)
	}
	f, err := os.Create(filepath.Join(x.dir, blobName))
	if err != nil {
		return domain.WrapError(domain.ErrIndex, "create index blob", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(x.data); err != nil {
		return domain.WrapError(domain.ErrIndex, "encode index blob", err)
	}
	return nil
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
