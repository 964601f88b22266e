// Package repository persists CRS records. The RecordStore contract is
// the only access path to the stored collection; composite-key uniqueness
// is enforced by the storage engine, not by callers.
package repository

import (
	"context"

	"github.com/pdssp/planet-crs-registry/internal/wkts/domain"
)

// Filter selects records by equality on the denormalized columns. Zero
// values mean "no filter". SolarBody matches case-insensitively.
type Filter struct {
	Namespace string
	Version   int
	SolarBody string
}

// RecordStore is the persistence contract consumed by the query and
// ingestion services. List and Search order results by (namespace,
// version, code) ascending and return the unpaginated total alongside the
// page; a page past the end yields an empty slice, not an error.
type RecordStore interface {
	// Insert persists a new record. The existence check and the insert
	// are a single atomic operation: under concurrent ingestion of the
	// same key at most one caller succeeds, the rest get ErrDuplicateKey.
	Insert(ctx context.Context, rec *domain.CrsRecord) error
	Exists(ctx context.Context, key domain.Key) (bool, error)
	// Get returns ErrNotFound when no record matches the key.
	Get(ctx context.Context, key domain.Key) (*domain.CrsRecord, error)
	List(ctx context.Context, f Filter, page domain.PageRequest) ([]domain.CrsRecord, int, error)
	Count(ctx context.Context, f Filter) (int, error)
	// Search is a case-insensitive substring match over wkt and
	// solar_body. An empty term matches everything.
	Search(ctx context.Context, term string, page domain.PageRequest) ([]domain.CrsRecord, int, error)
	SearchCount(ctx context.Context, term string) (int, error)
	Versions(ctx context.Context, namespace string) ([]int, error)
	SolarBodies(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
	Close()
}

// escapeLike neutralizes LIKE metacharacters in a user-supplied term so
// matching stays a pure substring test.
func escapeLike(term string) string {
	out := make([]byte, 0, len(term))
	for i := 0; i < len(term); i++ {
		switch term[i] {
		case '\\', '%', '_':
			out = append(out, '\\')
		}
		out = append(out, term[i])
	}
	return string(out)
}
