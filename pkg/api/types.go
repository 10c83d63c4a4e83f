package api

import "time"

// ObjectExt is the fixed extension appended to an image identifier to form
// its blob object name. Blob names are always derived, never stored, so the
// vector row and the blob can never drift to different names.
const ObjectExt = ".jpg"

// ObjectName derives the blob object name for an image identifier.
func ObjectName(id string) string {
	return id + ObjectExt
}

// ImageRecord is the unit of storage: a stable identifier paired with its
// embedding vector. The blob location is derived via ObjectName.
type ImageRecord struct {
	ID        string    `json:"id"`
	Embedding []float32 `json:"embedding"`
	CreatedAt time.Time `json:"created_at"`
}

// IngestResult is returned after a fully committed ingestion (blob and
// vector row both durable).
type IngestResult struct {
	ID         string `json:"id"`
	ObjectName string `json:"object_name"`
}

// SearchResult is a single ranked match for a similarity query.
type SearchResult struct {
	ID         string  `json:"id"`
	Distance   float64 `json:"distance"`
	ObjectName string  `json:"object_name"`
}

// SearchResponse wraps the ranked matches for JSON serialization.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// Stats reports diagnostic information about the index.
type Stats struct {
	Count   int64  `json:"count"`
	Index   string `json:"index"`
	Storage string `json:"storage"`
}
