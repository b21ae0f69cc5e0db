// Package retrieval finds historically processed dumps similar to a new one.
package retrieval

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/heartmarshall/mindump-backend/internal/domain"
)

// DefaultLimit is how many neighbours are returned when the caller asks
// for zero or fewer.
const DefaultLimit = 3

type dumpRepo interface {
	FindSimilar(ctx context.Context, userID uuid.UUID, embedding []float32, limit int, exclude ...uuid.UUID) ([]domain.SimilarDump, error)
}

// Retriever returns nearest-neighbour dumps by cosine similarity.
type Retriever struct {
	dumps dumpRepo
}

func NewRetriever(dumps dumpRepo) *Retriever {
	return &Retriever{dumps: dumps}
}

// FindSimilar returns up to limit of the user's dumps closest to embedding,
// most similar first. Dumps listed in exclude are never returned. An empty
// embedding yields an empty result.
func (r *Retriever) FindSimilar(ctx context.Context, userID uuid.UUID, embedding []float32, limit int, exclude ...uuid.UUID) ([]domain.SimilarDump, error) {
	if len(embedding) == 0 {
		return []domain.SimilarDump{}, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	similar, err := r.dumps.FindSimilar(ctx, userID, embedding, limit, exclude...)
	if err != nil {
		return nil, fmt.Errorf("find similar dumps: %w", err)
	}
	return similar, nil
}

// Texts projects similar dumps onto the context strings handed to the
// extractor, preserving order.
func Texts(similar []domain.SimilarDump) []string {
	out := make([]string, 0, len(similar))
	for _, s := range similar {
		if s.Text != "" {
			out = append(out, s.Text)
		}
	}
	return out
}
