package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloo-solutions/lexcorpus/internal/domain"
	"github.com/cloo-solutions/lexcorpus/internal/pagination"
	"github.com/cloo-solutions/lexcorpus/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

const (
	chunkInsertColumns = `id, source, category, title, text, article_id, article_title, sub_chunk, seq, embedding, indexed_at`
	// embeddings are written but never read back
	chunkColumns = `id, source, category, title, text, article_id, article_title, sub_chunk, seq, indexed_at`
)

// ChunkRepository handles persistence of indexed chunks and vector search.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

func NewChunkRepositoryWithTx(tx pgx.Tx) *ChunkRepository {
	return &ChunkRepository{db: tx}
}

// ReplaceSource deletes every chunk of source and inserts chunks. Run it in a
// transaction so readers never see a half-loaded source. An id already held
// by another source fails with ErrChunkIDConflict.
func (r *ChunkRepository) ReplaceSource(ctx context.Context, source string, chunks []domain.IndexedChunk) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM chunks WHERE source = $1`, source); err != nil {
		return err
	}

	if len(chunks) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, c := range chunks {
		indexedAt := c.IndexedAt
		if indexedAt.IsZero() {
			indexedAt = time.Now().UTC()
		}
		batch.Queue(
			`INSERT INTO chunks (`+chunkInsertColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			 ON CONFLICT (id) DO NOTHING`,
			c.ID,
			source,
			c.Category,
			c.Title,
			c.Text,
			nullableString(c.ArticleID),
			nullableString(c.ArticleTitle),
			nullableInt(c.SubChunk),
			c.Seq,
			pgvector.NewVector(c.Embedding),
			indexedAt,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	for i := range chunks {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return fmt.Errorf("failed to insert chunk %s: %w", chunks[i].ID, err)
		}
		// rows of this source were deleted above, so a conflict means the id
		// is owned by another source or repeated in this artifact
		if tag.RowsAffected() == 0 {
			results.Close()
			return fmt.Errorf("%w: %s", domain.ErrChunkIDConflict, chunks[i].ID)
		}
	}
	return results.Close()
}

func (r *ChunkRepository) SearchByEmbedding(ctx context.Context, embedding []float32, filters service.ChunkFilters, limit int) ([]*domain.SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}

	args := []any{pgvector.NewVector(embedding)}
	var where []string
	if filters.Category != "" {
		args = append(args, filters.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if filters.Source != "" {
		args = append(args, filters.Source)
		where = append(where, fmt.Sprintf("source = $%d", len(args)))
	}

	query := `
		SELECT ` + chunkColumns + `,
		       1.0 / (1.0 + (embedding <=> $1)) AS score
		FROM chunks`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY embedding <=> $1 LIMIT $%d", len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]*domain.SearchResult, 0)
	for rows.Next() {
		var result domain.SearchResult
		chunk, err := scanChunk(rows, &result.Score)
		if err != nil {
			return nil, err
		}
		result.Chunk = chunk.ChunkRecord
		results = append(results, &result)
	}

	return results, rows.Err()
}

func (r *ChunkRepository) GetByID(ctx context.Context, id string) (*domain.IndexedChunk, error) {
	row := r.db.QueryRow(ctx, `SELECT `+chunkColumns+` FROM chunks WHERE id = $1`, id)
	chunk, err := scanChunk(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrChunkNotFound
		}
		return nil, err
	}
	return chunk, nil
}

// ListBySource returns chunks of source in artifact order, after cursor.
func (r *ChunkRepository) ListBySource(ctx context.Context, source string, cursor *pagination.Cursor, limit int) (*service.ChunkPageResult, error) {
	if limit <= 0 {
		limit = 50
	}

	after := -1
	if cursor != nil {
		after = cursor.LastSeq
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+chunkColumns+`
		 FROM chunks
		 WHERE source = $1 AND seq > $2
		 ORDER BY seq ASC
		 LIMIT $3`,
		source, after, limit+1,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*domain.IndexedChunk, 0, limit)
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	page := &service.ChunkPageResult{}
	if len(items) > limit {
		page.HasMore = true
		items = items[:limit]
	}
	page.Items = items
	if page.HasMore {
		page.NextCursor = pagination.CreateNextCursor(items, limit,
			func(c *domain.IndexedChunk) string { return c.ID },
			func(c *domain.IndexedChunk) int { return c.Seq },
		)
	}
	return page, nil
}

// scanChunk reads the chunkColumns of one row, followed by extra destinations.
func scanChunk(row pgx.Row, extra ...any) (*domain.IndexedChunk, error) {
	var c domain.IndexedChunk
	var articleID, articleTitle pgtype.Text
	var subChunk pgtype.Int4

	dest := []any{
		&c.ID, &c.Source, &c.Category, &c.Title, &c.Text,
		&articleID, &articleTitle, &subChunk, &c.Seq, &c.IndexedAt,
	}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if articleID.Valid {
		c.ArticleID = articleID.String
	}
	if articleTitle.Valid {
		c.ArticleTitle = articleTitle.String
	}
	if subChunk.Valid {
		c.SubChunk = int(subChunk.Int32)
	}
	return &c, nil
}
