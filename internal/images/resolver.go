package images

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"

	"restaurant-orders/internal/domain"
)

const svgMIME = "image/svg+xml"

type Optimizer interface {
	Optimize(ctx context.Context, svg string) (string, error)
}

// Stored describes a persisted file.
type Stored struct {
	Name string
	URL  string
}

type BlobStore interface {
	Store(ctx context.Context, r io.Reader, ext string) (Stored, error)
}

type Resolver struct {
	optimizer Optimizer
	blobs     BlobStore
	workers   int
}

func NewResolver(optimizer Optimizer, blobs BlobStore, workers int) *Resolver {
	if workers <= 0 {
		workers = 1
	}
	return &Resolver{optimizer: optimizer, blobs: blobs, workers: workers}
}

// Resolve stores every source and returns their URLs in source order.
func (r *Resolver) Resolve(ctx context.Context, sources []Source) ([]string, error) {
	if len(sources) == 0 {
		return nil, domain.ErrNoImageSource
	}
	for _, src := range sources {
		if err := src.Validate(); err != nil {
			return nil, err
		}
	}

	urls := make([]string, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			stored, err := r.resolve(gctx, src)
			if err != nil {
				return err
			}
			urls[i] = stored.URL
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

func (r *Resolver) resolve(ctx context.Context, src Source) (Stored, error) {
	switch src.Kind {
	case KindSVG:
		return r.storeSVG(ctx, src.Text)
	case KindBase64:
		return r.storeBase64(ctx, src.Text)
	default:
		return r.storeUpload(ctx, src.Upload)
	}
}

func (r *Resolver) storeSVG(ctx context.Context, text string) (Stored, error) {
	optimized, err := r.optimizer.Optimize(ctx, text)
	if err != nil {
		return Stored{}, fmt.Errorf("%w: %v", domain.ErrOptimizationFailed, err)
	}
	return r.blobs.Store(ctx, strings.NewReader(optimized), ".svg")
}

func (r *Resolver) storeBase64(ctx context.Context, text string) (Stored, error) {
	declared, payload := splitDataURL(text)
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Stored{}, fmt.Errorf("%w: invalid base64 image: %v", domain.ErrInvalidInput, err)
	}

	mt := declared
	if mt == "" {
		mt = mimetype.Detect(data).String()
	}
	mt = baseMIME(mt)
	if mt == svgMIME {
		return r.storeSVG(ctx, string(data))
	}

	ext, err := ExtensionFor(mt)
	if err != nil {
		return Stored{}, err
	}
	return r.blobs.Store(ctx, bytes.NewReader(data), ext)
}

func (r *Resolver) storeUpload(ctx context.Context, u *Upload) (Stored, error) {
	ext, err := ExtensionFor(u.ContentType)
	if err != nil {
		return Stored{}, err
	}

	rc, err := u.Open()
	if err != nil {
		return Stored{}, fmt.Errorf("open upload %q: %w", u.Filename, err)
	}
	defer rc.Close()

	return r.blobs.Store(ctx, rc, ext)
}

// ExtensionFor maps a declared image MIME type to a file extension.
func ExtensionFor(contentType string) (string, error) {
	mt := baseMIME(contentType)
	if !strings.HasPrefix(mt, "image/") {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedMediaType, contentType)
	}
	m := mimetype.Lookup(mt)
	if m == nil || m.Extension() == "" {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedMediaType, contentType)
	}
	return m.Extension(), nil
}

func baseMIME(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}

// splitDataURL accepts both "data:<mime>;base64,<payload>" and a bare payload.
func splitDataURL(s string) (string, string) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "data:") {
		return "", s
	}
	header, payload, ok := strings.Cut(s, ",")
	if !ok {
		return "", s
	}
	header = strings.TrimPrefix(header, "data:")
	header = strings.TrimSuffix(header, ";base64")
	return header, payload
}
