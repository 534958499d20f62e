package domain

import "time"

// ChunkRecord is one retrieval unit emitted by the chunker. Its JSON form is
// the JSONL artifact line; optional fields are omitted when empty.
type ChunkRecord struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Text         string `json:"text"`
	Source       string `json:"source"`
	Category     string `json:"category"`
	ArticleID    string `json:"article_id,omitempty"`
	ArticleTitle string `json:"article_title,omitempty"`
	SubChunk     int    `json:"sub_chunk,omitempty"`
}

// IndexedChunk is a ChunkRecord stored in the vector index.
type IndexedChunk struct {
	ChunkRecord
	Seq       int
	Embedding []float32
	IndexedAt time.Time
}

// SearchResult is a chunk returned by similarity search with its score.
type SearchResult struct {
	Chunk ChunkRecord
	Score float64
}

// SearchQuery holds the parameters of a similarity search.
type SearchQuery struct {
	Query    string
	Category string
	Source   string
	Limit    int
}
