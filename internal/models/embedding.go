// ABOUTME: Embedding models for vector storage and semantic search
// ABOUTME: Defines EmbeddingRecord, metadata, filters, and search results
package models

import "time"

// EmbeddingMetadata is the metadata stored alongside each vector.
// MessageID resolves to ConversationTurn.ID.
type EmbeddingMetadata struct {
	MessageID    int64  `json:"message_id"`
	UserID       int64  `json:"user_id"`
	TopicSummary string `json:"topic_summary"`
}

// EmbeddingRecord is one stored vector with its metadata
type EmbeddingRecord struct {
	Metadata  EmbeddingMetadata `json:"metadata"`
	Vector    []float64         `json:"vector"`
	CreatedAt time.Time         `json:"created_at"`
}

// MetadataFilter restricts an index search to matching records.
// Zero-valued fields are unrestricted.
type MetadataFilter struct {
	UserID int64
}

// VectorSearchResult is one similarity match from the embedding index
type VectorSearchResult struct {
	Metadata        EmbeddingMetadata `json:"metadata"`
	SimilarityScore float64           `json:"similarity_score"`
}
