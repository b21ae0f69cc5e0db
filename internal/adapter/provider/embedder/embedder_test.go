package embedder

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type embedderMock struct {
	mu                 sync.Mutex
	EmbedDocumentsFunc func(ctx context.Context, texts []string) ([][]float32, error)
	calls              [][]string
}

func (m *embedderMock) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.calls = append(m.calls, texts)
	m.mu.Unlock()
	return m.EmbedDocumentsFunc(ctx, texts)
}

func (m *embedderMock) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	v, err := m.EmbedDocuments(ctx, []string{text})
	if err != nil || len(v) == 0 {
		return nil, err
	}
	return v[0], nil
}

func TestEmbedder_Embed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		dims    int
		vectors [][]float32
		err     error
		want    []float32
		wantErr error
	}{
		{name: "ok", text: " dentist tuesday ", dims: 3, vectors: [][]float32{{0.1, 0.2, 0.3}}, want: []float32{0.1, 0.2, 0.3}},
		{name: "blank input", text: "   ", dims: 3, wantErr: ErrEmptyInput},
		{name: "no vectors", text: "x", dims: 3, vectors: nil, wantErr: ErrEmptyVector},
		{name: "empty vector", text: "x", dims: 3, vectors: [][]float32{{}}, wantErr: ErrEmptyVector},
		{name: "provider error", text: "x", dims: 3, err: errors.New("503")},
		{name: "wrong dims", text: "x", dims: 4, vectors: [][]float32{{0.1, 0.2, 0.3}}},
		{name: "dims unchecked when zero", text: "x", dims: 0, vectors: [][]float32{{1}}, want: []float32{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mock := &embedderMock{EmbedDocumentsFunc: func(_ context.Context, texts []string) ([][]float32, error) {
				return tt.vectors, tt.err
			}}
			e := newEmbedder(mock, tt.dims, 0, slog.New(slog.DiscardHandler))

			got, err := e.Embed(context.Background(), tt.text)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.want == nil:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestEmbedder_Embed_TrimsText(t *testing.T) {
	t.Parallel()

	mock := &embedderMock{EmbedDocumentsFunc: func(context.Context, []string) ([][]float32, error) {
		return [][]float32{{1, 2}}, nil
	}}
	e := newEmbedder(mock, 2, 5, slog.New(slog.DiscardHandler))

	_, err := e.Embed(context.Background(), "\n pick up Mia \n")
	require.NoError(t, err)
	require.Len(t, mock.calls, 1)
	assert.Equal(t, []string{"pick up Mia"}, mock.calls[0])
}

func TestEmbedder_Embed_CancelledContext(t *testing.T) {
	t.Parallel()

	mock := &embedderMock{EmbedDocumentsFunc: func(context.Context, []string) ([][]float32, error) {
		return [][]float32{{1}}, nil
	}}
	e := newEmbedder(mock, 1, 0.001, slog.New(slog.DiscardHandler))

	// Consume the only token so the next Wait blocks.
	_, err := e.Embed(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Embed(ctx, "second")
	assert.Error(t, err)
}
