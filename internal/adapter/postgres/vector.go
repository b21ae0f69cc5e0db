package postgres

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pgvector/pgvector-go"
)

// The vector type is not registered on pool connections, so embeddings
// travel as their text form: params are cast with $n::vector and columns are
// read back as embedding::text.

// VectorParam converts an embedding into a query parameter. An empty
// embedding becomes NULL.
func VectorParam(v []float32) any {
	if len(v) == 0 {
		return nil
	}
	return pgvector.NewVector(v)
}

// ParseVector decodes a text-encoded vector column. NULL yields nil.
func ParseVector(t pgtype.Text) ([]float32, error) {
	if !t.Valid {
		return nil, nil
	}
	var v pgvector.Vector
	if err := v.Scan(t.String); err != nil {
		return nil, fmt.Errorf("parse vector: %w", err)
	}
	return v.Slice(), nil
}
