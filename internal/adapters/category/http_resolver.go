package category

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/apperrors"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	portsrepo "github.com/Cheker-dimassi/banking-system-microservices/internal/core/ports/repositories"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/middleware"
	"github.com/dgraph-io/ristretto"
)

const cacheKeyPrefix = "category:"

// HTTPResolver looks categories up on the category service and caches hits.
type HTTPResolver struct {
	baseURL string
	client  *http.Client
	cache   *ristretto.Cache
	ttl     time.Duration
}

// Ensure HTTPResolver implements portsrepo.CategoryResolver
var _ portsrepo.CategoryResolver = (*HTTPResolver)(nil)

type categoryResponse struct {
	Success  bool `json:"success"`
	Category *struct {
		CategoryID string `json:"categoryId"`
		Name       string `json:"name"`
	} `json:"category"`
}

func NewHTTPResolver(baseURL string, timeout, ttl time.Duration) (*HTTPResolver, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     10000,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize category cache: %w", err)
	}
	return &HTTPResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		cache:   cache,
		ttl:     ttl,
	}, nil
}

// Resolve returns the category with id. Unknown ids yield apperrors.ErrNotFound,
// any transport or server failure apperrors.ErrUnavailable.
func (r *HTTPResolver) Resolve(ctx context.Context, id string) (*domain.Category, error) {
	id = strings.TrimSpace(id)
	key := cacheKeyPrefix + id
	if cached, ok := r.cache.Get(key); ok {
		if c, ok := cached.(domain.Category); ok {
			return &c, nil
		}
	}

	logger := middleware.GetLoggerFromCtx(ctx).With(slog.String("category_id", id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/categories/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build category request: %w", apperrors.ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if requestID, ok := middleware.GetRequestIDFromCtx(ctx); ok {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		logger.Warn("Category service unreachable", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: category service unreachable: %w", apperrors.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: category %s", apperrors.ErrNotFound, id)
	case resp.StatusCode != http.StatusOK:
		logger.Warn("Category service returned an error", slog.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: category service returned %d", apperrors.ErrUnavailable, resp.StatusCode)
	}

	var body categoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode category response: %w", apperrors.ErrUnavailable, err)
	}
	if body.Category == nil {
		return nil, fmt.Errorf("%w: category %s", apperrors.ErrNotFound, id)
	}

	category := domain.Category{ID: body.Category.CategoryID, Name: body.Category.Name}
	if category.ID == "" {
		category.ID = id
	}
	r.cache.SetWithTTL(key, category, 1, r.ttl)
	return &category, nil
}

// Wait blocks until pending cache writes are visible.
func (r *HTTPResolver) Wait() {
	r.cache.Wait()
}

// Close stops the cache's background goroutines.
func (r *HTTPResolver) Close() {
	r.cache.Close()
}
