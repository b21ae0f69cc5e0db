// Package media resolves dump media references into bytes. References are
// either Azure blobs ("azblob://<key>"), http(s) URLs, or paths relative to a
// local media root.
package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/heartmarshall/mindump-backend/internal/config"
	"github.com/heartmarshall/mindump-backend/internal/domain"
)

const blobScheme = "azblob://"

// blobDownloader is the slice of *azblob.Client the resolver needs.
type blobDownloader interface {
	DownloadStream(ctx context.Context, containerName, blobName string, o *azblob.DownloadStreamOptions) (azblob.DownloadStreamResponse, error)
}

// Resolver fetches media for the extractor.
type Resolver struct {
	blobs     blobDownloader
	container string
	http      *http.Client
	localRoot string
	maxBytes  int64
	log       *slog.Logger
}

// New builds a Resolver from StorageConfig. The Azure backend is enabled only
// when a connection string is configured.
func New(cfg config.StorageConfig, logger *slog.Logger) (*Resolver, error) {
	r := &Resolver{
		container: cfg.AzureContainer,
		http:      &http.Client{Timeout: cfg.FetchTimeout},
		localRoot: cfg.LocalMediaRoot,
		maxBytes:  cfg.MaxMediaBytes,
		log:       logger.With("adapter", "media"),
	}

	if cfg.IsAzure() {
		client, err := azblob.NewClientFromConnectionString(cfg.AzureConnectionString, nil)
		if err != nil {
			return nil, fmt.Errorf("create blob client: %w", err)
		}
		r.blobs = client
	}

	return r, nil
}

// Resolve loads the media behind ref.
func (r *Resolver) Resolve(ctx context.Context, ref string) (*domain.Media, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrInvalidRef
	}

	var (
		m   *domain.Media
		err error
	)
	switch {
	case strings.HasPrefix(ref, blobScheme):
		m, err = r.fromBlob(ctx, strings.TrimPrefix(ref, blobScheme))
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		m, err = r.fromHTTP(ctx, ref)
	default:
		m, err = r.fromLocal(ref)
	}
	if err != nil {
		return nil, err
	}

	if m.MIMEType == "" || m.MIMEType == "application/octet-stream" {
		m.MIMEType = detect(m.Data)
	}

	r.log.DebugContext(ctx, "media resolved",
		slog.String("mime", m.MIMEType),
		slog.Int("bytes", len(m.Data)),
	)
	return m, nil
}

func (r *Resolver) fromBlob(ctx context.Context, key string) (*domain.Media, error) {
	if r.blobs == nil {
		return nil, fmt.Errorf("%w: blob storage not configured", ErrUnsupported)
	}
	if key == "" || strings.Contains(key, "..") {
		return nil, ErrInvalidRef
	}

	resp, err := r.blobs.DownloadStream(ctx, r.container, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("download blob %s: %w", key, err)
	}
	defer resp.Body.Close()

	data, err := r.readLimited(resp.Body)
	if err != nil {
		return nil, err
	}

	m := &domain.Media{Data: data}
	if resp.ContentType != nil {
		m.MIMEType = baseType(*resp.ContentType)
	}
	return m, nil
}

func (r *Resolver) fromHTTP(ctx context.Context, url string) (*domain.Media, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRef, err)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch media: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("fetch media: unexpected status %d", resp.StatusCode)
	}

	data, err := r.readLimited(resp.Body)
	if err != nil {
		return nil, err
	}
	return &domain.Media{Data: data, MIMEType: baseType(resp.Header.Get("Content-Type"))}, nil
}

func (r *Resolver) fromLocal(ref string) (*domain.Media, error) {
	if r.localRoot == "" {
		return nil, fmt.Errorf("%w: no local media root", ErrUnsupported)
	}

	rel := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(ref, "file://")))
	if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, ErrInvalidRef
	}

	f, err := os.Open(filepath.Join(r.localRoot, rel))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open media: %w", err)
	}
	defer f.Close()

	data, err := r.readLimited(f)
	if err != nil {
		return nil, err
	}
	return &domain.Media{Data: data, MIMEType: mime.TypeByExtension(filepath.Ext(rel))}, nil
}

func (r *Resolver) readLimited(src io.Reader) ([]byte, error) {
	limit := r.maxBytes
	if limit <= 0 {
		limit = 10 << 20
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(src, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read media: %w", err)
	}
	if n > limit {
		return nil, ErrTooLarge
	}
	return buf.Bytes(), nil
}

func baseType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return mt
}

func detect(data []byte) string {
	return baseType(http.DetectContentType(data))
}
