package domain

// QueryRequest is a knowledge-base question plus optional structured context
// that gets embedded into the generation prompt.
type QueryRequest struct {
	Query       string           `json:"query"`
	TopK        int              `json:"top_k,omitempty"`
	UseCase     string           `json:"use_case,omitempty"`
	WaterParams *WaterParameters `json:"water_params,omitempty"`
}

type RetrievedChunk struct {
	Text     string        `json:"text"`
	Score    float64       `json:"score"`
	Metadata ChunkMetadata `json:"metadata"`
}

type Answer struct {
	Text    string           `json:"answer"`
	Sources []ChunkMetadata  `json:"sources"`
	Chunks  []RetrievedChunk `json:"relevant_chunks,omitempty"`
}

// IndexSummary reports the outcome of a knowledge-base initialization run.
type IndexSummary struct {
	DocumentCount   int    `json:"document_count"`
	ChunkCount      int    `json:"chunk_count"`
	VectorStorePath string `json:"vector_store_path"`
}
