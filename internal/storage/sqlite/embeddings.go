// ABOUTME: Embedding index operations for SQLite
// ABOUTME: Implements vector storage as BLOB and filtered cosine similarity search
package sqlite

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/jvsazevedo/open-finance-buddy/internal/models"
)

// DefaultDimension is the vector dimension for OpenAI text-embedding-3-small
const DefaultDimension = 1536

// EmbeddingIndex handles embedding persistence and similarity search
type EmbeddingIndex struct {
	db        *DB
	dimension int
}

// NewEmbeddingIndex creates an EmbeddingIndex expecting DefaultDimension vectors
func NewEmbeddingIndex(db *DB) *EmbeddingIndex {
	return NewEmbeddingIndexWithDimension(db, DefaultDimension)
}

// NewEmbeddingIndexWithDimension creates an EmbeddingIndex with a custom
// vector dimension (for testing and alternative embedding models)
func NewEmbeddingIndexWithDimension(db *DB, dimension int) *EmbeddingIndex {
	return &EmbeddingIndex{db: db, dimension: dimension}
}

// Upsert stores one vector record keyed by message id. The index is
// append-only in practice; upsert semantics only guard against replayed
// writes for the same message.
func (ix *EmbeddingIndex) Upsert(messageID int64, vector []float64, meta models.EmbeddingMetadata) error {
	if len(vector) != ix.dimension {
		return fmt.Errorf("invalid embedding dimension: expected %d, got %d", ix.dimension, len(vector))
	}

	_, err := ix.db.Exec(`
		INSERT INTO embeddings (message_id, user_id, topic_summary, vector, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(message_id) DO UPDATE SET
			user_id = excluded.user_id,
			topic_summary = excluded.topic_summary,
			vector = excluded.vector
	`, messageID, meta.UserID, meta.TopicSummary, vectorToBlob(vector), time.Now().UTC())

	return err
}

// GetByMessageID retrieves an embedding record, nil when absent
func (ix *EmbeddingIndex) GetByMessageID(messageID int64) (*models.EmbeddingRecord, error) {
	var (
		rec   models.EmbeddingRecord
		topic sql.NullString
		blob  []byte
	)

	err := ix.db.QueryRow(`
		SELECT message_id, user_id, topic_summary, vector, created_at
		FROM embeddings
		WHERE message_id = ?
	`, messageID).Scan(&rec.Metadata.MessageID, &rec.Metadata.UserID, &topic, &blob, &rec.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if topic.Valid {
		rec.Metadata.TopicSummary = topic.String
	}
	rec.Vector = blobToVector(blob)

	return &rec, nil
}

// Search returns up to k records nearest to queryVector by cosine
// similarity, restricted to records matching the filter. Results are
// ordered by score descending with ties broken by ascending message id,
// so identical inputs always yield identical output.
func (ix *EmbeddingIndex) Search(queryVector []float64, k int, filter models.MetadataFilter) ([]models.VectorSearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	query := `
		SELECT message_id, user_id, topic_summary, vector
		FROM embeddings
	`
	var args []interface{}
	if filter.UserID != 0 {
		query += " WHERE user_id = ?"
		args = append(args, filter.UserID)
	}

	rows, err := ix.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []models.VectorSearchResult

	for rows.Next() {
		var (
			meta  models.EmbeddingMetadata
			topic sql.NullString
			blob  []byte
		)

		if err := rows.Scan(&meta.MessageID, &meta.UserID, &topic, &blob); err != nil {
			return nil, err
		}
		if topic.Valid {
			meta.TopicSummary = topic.String
		}

		results = append(results, models.VectorSearchResult{
			Metadata:        meta,
			SimilarityScore: CosineSimilarity(queryVector, blobToVector(blob)),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].SimilarityScore != results[j].SimilarityScore {
			return results[i].SimilarityScore > results[j].SimilarityScore
		}
		return results[i].Metadata.MessageID < results[j].Metadata.MessageID
	})

	if len(results) > k {
		results = results[:k]
	}

	return results, nil
}

// MissingMessageIDs returns ids of conversation rows that have no index
// entry. Used by the reconciliation pass to surface half-written turns.
func (ix *EmbeddingIndex) MissingMessageIDs() ([]int64, error) {
	rows, err := ix.db.Query(`
		SELECT c.id
		FROM conversations c
		LEFT JOIN embeddings e ON e.message_id = c.id
		WHERE e.message_id IS NULL
		ORDER BY c.id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// vectorToBlob converts a float64 slice to binary blob
func vectorToBlob(vector []float64) []byte {
	blob := make([]byte, len(vector)*8)
	for i, v := range vector {
		binary.LittleEndian.PutUint64(blob[i*8:], math.Float64bits(v))
	}
	return blob
}

// blobToVector converts a binary blob to float64 slice
func blobToVector(blob []byte) []float64 {
	count := len(blob) / 8
	vector := make([]float64, count)
	for i := 0; i < count; i++ {
		bits := binary.LittleEndian.Uint64(blob[i*8:])
		vector[i] = math.Float64frombits(bits)
	}
	return vector
}

// CosineSimilarity calculates cosine similarity between two vectors
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
