package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sqlite "modernc.org/sqlite"

	"github.com/pdssp/planet-crs-registry/internal/wkts/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS wkts (
    id              TEXT PRIMARY KEY,
    namespace       TEXT NOT NULL,
    version         INTEGER NOT NULL,
    code            INTEGER NOT NULL,
    solar_body      TEXT NOT NULL,
    datum_name      TEXT NOT NULL,
    ellipsoid_name  TEXT NOT NULL,
    projection_name TEXT NOT NULL,
    wkt             TEXT NOT NULL,
    created_at      TIMESTAMP NOT NULL,
    UNIQUE (namespace, version, code)
);
CREATE INDEX IF NOT EXISTS wkts_version_idx ON wkts (version);
`

// SQLite extended result codes for constraint violations on the primary
// key and the composite unique index.
const (
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

// SqliteStore is the embedded RecordStore used for development, tests and
// single-node deployments.
type SqliteStore struct {
	db *sql.DB
}

// NewSqliteStore opens (or creates) the database at path and ensures the
// schema. ":memory:" gives a throwaway in-memory store.
func NewSqliteStore(path string) (*SqliteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps in-memory databases coherent and
	// serializes writers, which sqlite requires anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create wkts schema: %w", err)
	}
	return &SqliteStore{db: db}, nil
}

func (s *SqliteStore) Insert(ctx context.Context, rec *domain.CrsRecord) error {
	const q = `
INSERT INTO wkts (id, namespace, version, code, solar_body, datum_name, ellipsoid_name, projection_name, wkt, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`
	_, err := s.db.ExecContext(ctx, q,
		rec.ID, rec.Namespace, rec.Version, rec.Code,
		rec.SolarBody, rec.DatumName, rec.EllipsoidName, rec.ProjectionName,
		rec.Wkt, rec.CreatedAt,
	)
	if err != nil {
		var se *sqlite.Error
		if errors.As(err, &se) && (se.Code() == sqliteConstraintUnique || se.Code() == sqliteConstraintPrimaryKey) {
			return domain.ErrDuplicateKey
		}
		return fmt.Errorf("insert wkt %s: %w", rec.ID, err)
	}
	return nil
}

func (s *SqliteStore) Exists(ctx context.Context, key domain.Key) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM wkts WHERE namespace = ? AND version = ? AND code = ?);`
	var exists bool
	if err := s.db.QueryRowContext(ctx, q, key.Namespace, key.Version, key.Code).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists %s: %w", key, err)
	}
	return exists, nil
}

func (s *SqliteStore) Get(ctx context.Context, key domain.Key) (*domain.CrsRecord, error) {
	const q = `
SELECT id, namespace, version, code, solar_body, datum_name, ellipsoid_name, projection_name, wkt, created_at
FROM wkts WHERE namespace = ? AND version = ? AND code = ?;
`
	var rec domain.CrsRecord
	err := s.db.QueryRowContext(ctx, q, key.Namespace, key.Version, key.Code).Scan(
		&rec.ID, &rec.Namespace, &rec.Version, &rec.Code,
		&rec.SolarBody, &rec.DatumName, &rec.EllipsoidName, &rec.ProjectionName,
		&rec.Wkt, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return &rec, nil
}

func (s *SqliteStore) List(ctx context.Context, f Filter, page domain.PageRequest) ([]domain.CrsRecord, int, error) {
	where, args := sqliteFilterClause(f)

	total, err := s.count(ctx, where, args)
	if err != nil {
		return nil, 0, err
	}

	q := `SELECT id, namespace, version, code, solar_body, datum_name, ellipsoid_name, projection_name, wkt, created_at FROM wkts` +
		where + ` ORDER BY namespace, version, code LIMIT ? OFFSET ?;`
	items, err := s.query(ctx, q, append(args, page.PageSize, page.Offset()))
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *SqliteStore) Count(ctx context.Context, f Filter) (int, error) {
	where, args := sqliteFilterClause(f)
	return s.count(ctx, where, args)
}

func (s *SqliteStore) Search(ctx context.Context, term string, page domain.PageRequest) ([]domain.CrsRecord, int, error) {
	where, args := sqliteSearchClause(term)

	total, err := s.count(ctx, where, args)
	if err != nil {
		return nil, 0, err
	}

	q := `SELECT id, namespace, version, code, solar_body, datum_name, ellipsoid_name, projection_name, wkt, created_at FROM wkts` +
		where + ` ORDER BY namespace, version, code LIMIT ? OFFSET ?;`
	items, err := s.query(ctx, q, append(args, page.PageSize, page.Offset()))
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *SqliteStore) SearchCount(ctx context.Context, term string) (int, error) {
	where, args := sqliteSearchClause(term)
	return s.count(ctx, where, args)
}

func (s *SqliteStore) Versions(ctx context.Context, namespace string) ([]int, error) {
	q := `SELECT DISTINCT version FROM wkts`
	var args []any
	if namespace != "" {
		q += ` WHERE namespace = ?`
		args = append(args, namespace)
	}
	q += ` ORDER BY version;`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func (s *SqliteStore) SolarBodies(ctx context.Context) ([]string, error) {
	const q = `SELECT DISTINCT solar_body FROM wkts ORDER BY solar_body;`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list solar bodies: %w", err)
	}
	defer rows.Close()

	var bodies []string
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, err
		}
		bodies = append(bodies, b)
	}
	return bodies, rows.Err()
}

func (s *SqliteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SqliteStore) Close() {
	s.db.Close()
}

func (s *SqliteStore) count(ctx context.Context, where string, args []any) (int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM wkts`+where+`;`, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count wkts: %w", err)
	}
	return total, nil
}

func (s *SqliteStore) query(ctx context.Context, q string, args []any) ([]domain.CrsRecord, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query wkts: %w", err)
	}
	defer rows.Close()

	out := make([]domain.CrsRecord, 0, 16)
	for rows.Next() {
		var rec domain.CrsRecord
		if err := rows.Scan(
			&rec.ID, &rec.Namespace, &rec.Version, &rec.Code,
			&rec.SolarBody, &rec.DatumName, &rec.EllipsoidName, &rec.ProjectionName,
			&rec.Wkt, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func sqliteFilterClause(f Filter) (string, []any) {
	var conds []string
	var args []any
	if f.Namespace != "" {
		conds = append(conds, "namespace = ?")
		args = append(args, f.Namespace)
	}
	if f.Version != 0 {
		conds = append(conds, "version = ?")
		args = append(args, f.Version)
	}
	if f.SolarBody != "" {
		conds = append(conds, "lower(solar_body) = lower(?)")
		args = append(args, f.SolarBody)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func sqliteSearchClause(term string) (string, []any) {
	if term == "" {
		return "", nil
	}
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	return ` WHERE (lower(wkt) LIKE ? ESCAPE '\' OR lower(solar_body) LIKE ? ESCAPE '\')`, []any{pattern, pattern}
}
