// Package service implements the query engine and the ingestion pipeline
// on top of the RecordStore contract.
package service

import (
	"context"
	"fmt"
	"log"

	"github.com/pdssp/planet-crs-registry/internal/wkts/cache"
	"github.com/pdssp/planet-crs-registry/internal/wkts/domain"
	"github.com/pdssp/planet-crs-registry/internal/wkts/repository"
)

// Pagination defaults, matching the original registry's query bounds.
const (
	DefaultPageSize    = 50
	DefaultMaxPageSize = 100
)

// PagedRecords is the envelope every paginated response carries so
// clients can render pagination controls without a second query.
type PagedRecords struct {
	Items      []domain.RecordSummary `json:"items"`
	TotalCount int                    `json:"total_count"`
	TotalPages int                    `json:"total_pages"`
	Page       int                    `json:"page"`
	PageSize   int                    `json:"page_size"`
}

// QueryService validates query parameters and shapes store results.
type QueryService struct {
	store       repository.RecordStore
	cache       *cache.RecordCache // nil when caching is disabled
	maxPageSize int
}

// NewQueryService creates a QueryService. maxPageSize <= 0 falls back to
// DefaultMaxPageSize; cache may be nil.
func NewQueryService(store repository.RecordStore, c *cache.RecordCache, maxPageSize int) *QueryService {
	if maxPageSize <= 0 {
		maxPageSize = DefaultMaxPageSize
	}
	return &QueryService{store: store, cache: c, maxPageSize: maxPageSize}
}

// normalizePage applies defaults and bounds. page_size outside
// [1, maxPageSize] is rejected rather than clamped.
func (s *QueryService) normalizePage(page domain.PageRequest) (domain.PageRequest, error) {
	if page.Page == 0 {
		page.Page = 1
	}
	if page.PageSize == 0 {
		page.PageSize = DefaultPageSize
	}
	if page.Page < 1 {
		return page, fmt.Errorf("%w: page %d", domain.ErrInvalidPageSize, page.Page)
	}
	if page.PageSize < 1 || page.PageSize > s.maxPageSize {
		return page, fmt.Errorf("%w: page_size %d not in [1, %d]", domain.ErrInvalidPageSize, page.PageSize, s.maxPageSize)
	}
	return page, nil
}

func paged(items []domain.CrsRecord, total int, page domain.PageRequest) *PagedRecords {
	summaries := make([]domain.RecordSummary, 0, len(items))
	for _, rec := range items {
		summaries = append(summaries, domain.Summarize(rec))
	}
	totalPages := (total + page.PageSize - 1) / page.PageSize
	return &PagedRecords{
		Items:      summaries,
		TotalCount: total,
		TotalPages: totalPages,
		Page:       page.Page,
		PageSize:   page.PageSize,
	}
}

// ListRecords returns one page of records matching the filter. A page past
// the end yields an empty item list.
func (s *QueryService) ListRecords(ctx context.Context, f repository.Filter, page domain.PageRequest) (*PagedRecords, error) {
	page, err := s.normalizePage(page)
	if err != nil {
		return nil, err
	}
	items, total, err := s.store.List(ctx, f, page)
	if err != nil {
		return nil, err
	}
	return paged(items, total, page), nil
}

// SearchRecords runs a case-insensitive substring search over wkt and
// solar_body. An empty term lists everything.
func (s *QueryService) SearchRecords(ctx context.Context, term string, page domain.PageRequest) (*PagedRecords, error) {
	page, err := s.normalizePage(page)
	if err != nil {
		return nil, err
	}
	items, total, err := s.store.Search(ctx, term, page)
	if err != nil {
		return nil, err
	}
	return paged(items, total, page), nil
}

// GetRecord fetches a single record by its full key, through the cache
// when one is configured. Cache failures degrade to store reads.
func (s *QueryService) GetRecord(ctx context.Context, key domain.Key) (*domain.CrsRecord, error) {
	if s.cache != nil {
		rec, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Printf("[warn] operation=cache_get key=%s error=%v", key, err)
		} else if rec != nil {
			return rec, nil
		}
	}

	rec, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, rec); err != nil {
			log.Printf("[warn] operation=cache_set key=%s error=%v", key, err)
		}
	}
	return rec, nil
}

// Lookup resolves a partial key: a fully-qualified key yields the single
// record, a partial key one page of matching records.
func (s *QueryService) Lookup(ctx context.Context, pk domain.PartialKey, page domain.PageRequest) (*domain.CrsRecord, *PagedRecords, error) {
	if key, ok := pk.Full(); ok {
		rec, err := s.GetRecord(ctx, key)
		return rec, nil, err
	}

	f := repository.Filter{Namespace: pk.Namespace}
	if pk.Version != nil {
		f.Version = *pk.Version
	}
	list, err := s.ListRecords(ctx, f, page)
	return nil, list, err
}

// CountRecords counts records matching the filter.
func (s *QueryService) CountRecords(ctx context.Context, f repository.Filter) (int, error) {
	return s.store.Count(ctx, f)
}

// CountSearch counts search matches for the term.
func (s *QueryService) CountSearch(ctx context.Context, term string) (int, error) {
	return s.store.SearchCount(ctx, term)
}

// Versions lists the distinct versions, optionally within a namespace.
func (s *QueryService) Versions(ctx context.Context, namespace string) ([]int, error) {
	return s.store.Versions(ctx, namespace)
}

// SolarBodies lists the distinct solar bodies.
func (s *QueryService) SolarBodies(ctx context.Context) ([]string, error) {
	return s.store.SolarBodies(ctx)
}

// AllRecords walks every page of records matching the filter. Callers
// that need the full result set, such as the OGC identifier listings,
// use this instead of a single oversized page.
func (s *QueryService) AllRecords(ctx context.Context, f repository.Filter) ([]domain.CrsRecord, error) {
	var out []domain.CrsRecord
	page := domain.PageRequest{Page: 1, PageSize: s.maxPageSize}
	for {
		items, total, err := s.store.List(ctx, f, page)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
		if len(out) >= total || len(items) == 0 {
			return out, nil
		}
		page.Page++
	}
}
