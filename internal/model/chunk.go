package model

// ChunkMetadata describes the source document of a retrieved chunk.
type ChunkMetadata struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	SourceURL  string `json:"source_url"`
	UploadedAt string `json:"uploaded_at,omitempty"`
}

// RetrievedChunk is a scored passage returned by the retrieval service.
// Chunks arrive pre-sorted by descending score and that order is preserved
// through every transformation.
type RetrievedChunk struct {
	Text       string        `json:"text"`
	Score      float64       `json:"score"`
	DocumentID string        `json:"document_id"`
	Metadata   ChunkMetadata `json:"metadata"`
}
