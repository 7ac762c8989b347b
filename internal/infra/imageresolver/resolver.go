// Package imageresolver turns stored image paths into the public HTTPS
// URLs a listing can reference. Upload and normalization happen before
// a book reaches the publish pipeline.
package imageresolver

import (
	"fmt"
	"net/url"
	"strings"

	"booklister/internal/domain/book"
	"booklister/internal/pkg/config"
	"booklister/internal/pkg/errs"
)

type Resolver struct {
	baseURL string
}

func New(cfg config.ImageConfig) (*Resolver, error) {
	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if !strings.HasPrefix(base, "https://") {
		return nil, errs.New(fmt.Sprintf("image base url must be https, got %q", cfg.PublicBaseURL))
	}
	return &Resolver{baseURL: base}, nil
}

// ListingURLs builds one HTTPS URL per stored image path. An empty path
// list or a malformed resulting URL is an error; the marketplace
// rejects listings without images.
func (r *Resolver) ListingURLs(b *book.BookRecord) ([]string, error) {
	if len(b.ImagePaths) == 0 {
		return nil, errs.Wrap(errs.ErrMissingImages, b.ID.String())
	}

	urls := make([]string, 0, len(b.ImagePaths))
	for _, path := range b.ImagePaths {
		full := r.baseURL + "/" + strings.TrimLeft(path, "/")
		parsed, err := url.Parse(full)
		if err != nil || parsed.Scheme != "https" || parsed.Host == "" {
			return nil, errs.New(fmt.Sprintf("malformed image url %q", full))
		}
		urls = append(urls, full)
	}
	return urls, nil
}
