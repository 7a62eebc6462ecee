package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE EXTENSION IF NOT EXISTS vector;
CREATE TABLE IF NOT EXISTS company_docs (
    id BIGSERIAL PRIMARY KEY,
    source TEXT NOT NULL,
    content TEXT NOT NULL,
    embedding vector
);
`

// PostgresStore implements DocumentStore on Postgres with pgvector ordering.
type PostgresStore struct {
	DB *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("connect to Postgres: %w", err)
	}
	return &PostgresStore{DB: db}, nil
}

// CreateSchema ensures the pgvector extension and the docs table exist.
func (ps *PostgresStore) CreateSchema(ctx context.Context) error {
	if ps == nil || ps.DB == nil {
		return nil
	}
	_, err := ps.DB.Exec(ctx, postgresSchema)
	if err != nil {
		return fmt.Errorf("apply docs schema: %w", err)
	}
	return nil
}

func (ps *PostgresStore) Add(ctx context.Context, source, content string, embedding []float32) error {
	if ps == nil || ps.DB == nil {
		return nil
	}
	_, err := ps.DB.Exec(ctx, `
        INSERT INTO company_docs (source, content, embedding)
        VALUES ($1, $2, $3::vector);
    `, source, content, vectorLiteral(embedding))
	return err
}

func (ps *PostgresStore) Search(ctx context.Context, queryEmbedding []float32, limit int) ([]Scored, error) {
	if ps == nil || ps.DB == nil {
		return nil, nil
	}
	rows, err := ps.DB.Query(ctx, `
        SELECT id, source, content, (embedding <-> $1::vector) AS distance
        FROM company_docs
        ORDER BY embedding <-> $1::vector
        LIMIT $2;
    `, vectorLiteral(queryEmbedding), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Scored
	for rows.Next() {
		var doc Scored
		var distance float64
		if err := rows.Scan(&doc.ID, &doc.Source, &doc.Content, &distance); err != nil {
			return nil, err
		}
		// Smaller distance means closer; invert so callers can sort descending.
		doc.Score = -distance
		results = append(results, doc)
	}
	return results, rows.Err()
}

func (ps *PostgresStore) Count(ctx context.Context) (int, error) {
	if ps == nil || ps.DB == nil {
		return 0, nil
	}
	var n int
	if err := ps.DB.QueryRow(ctx, `SELECT COUNT(*) FROM company_docs;`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Close releases the underlying connection pool.
func (ps *PostgresStore) Close() {
	if ps != nil && ps.DB != nil {
		ps.DB.Close()
	}
}

func vectorLiteral(embedding []float32) string {
	payload, _ := json.Marshal(embedding)
	return fmt.Sprintf("[%s]", strings.Trim(string(payload), "[]"))
}

var _ DocumentStore = (*PostgresStore)(nil)
