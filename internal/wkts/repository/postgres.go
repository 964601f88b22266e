package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pdssp/planet-crs-registry/internal/wkts/domain"
)

const pgSchema = `
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
    created_at      TIMESTAMPTZ NOT NULL,
    CONSTRAINT wkts_namespace_version_code_key UNIQUE (namespace, version, code)
);
CREATE INDEX IF NOT EXISTS wkts_solar_body_idx ON wkts (lower(solar_body));
CREATE INDEX IF NOT EXISTS wkts_version_idx ON wkts (version);
`

const pgCols = "id, namespace, version, code, solar_body, datum_name, ellipsoid_name, projection_name, wkt, created_at"

// uniqueViolation is the Postgres error code raised by the composite-key
// constraint.
const uniqueViolation = "23505"

// PostgresStore is the pgx-backed RecordStore used in production.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore ensures the schema exists and returns the store.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		return nil, fmt.Errorf("create wkts schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Insert(ctx context.Context, rec *domain.CrsRecord) error {
	const q = `
INSERT INTO wkts (` + pgCols + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
`
	_, err := s.pool.Exec(ctx, q,
		rec.ID, rec.Namespace, rec.Version, rec.Code,
		rec.SolarBody, rec.DatumName, rec.EllipsoidName, rec.ProjectionName,
		rec.Wkt, rec.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrDuplicateKey
		}
		return fmt.Errorf("insert wkt %s: %w", rec.ID, err)
	}
	return nil
}

func (s *PostgresStore) Exists(ctx context.Context, key domain.Key) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM wkts WHERE namespace = $1 AND version = $2 AND code = $3);`
	var exists bool
	if err := s.pool.QueryRow(ctx, q, key.Namespace, key.Version, key.Code).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists %s: %w", key, err)
	}
	return exists, nil
}

func (s *PostgresStore) Get(ctx context.Context, key domain.Key) (*domain.CrsRecord, error) {
	const q = `SELECT ` + pgCols + ` FROM wkts WHERE namespace = $1 AND version = $2 AND code = $3;`
	var rec domain.CrsRecord
	err := s.pool.QueryRow(ctx, q, key.Namespace, key.Version, key.Code).Scan(
		&rec.ID, &rec.Namespace, &rec.Version, &rec.Code,
		&rec.SolarBody, &rec.DatumName, &rec.EllipsoidName, &rec.ProjectionName,
		&rec.Wkt, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return &rec, nil
}

func (s *PostgresStore) List(ctx context.Context, f Filter, page domain.PageRequest) ([]domain.CrsRecord, int, error) {
	var args []any
	where := pgFilterClause(f, &args)

	total, err := s.count(ctx, where, args)
	if err != nil {
		return nil, 0, err
	}

	args = append(args, page.PageSize)
	limit := len(args)
	args = append(args, page.Offset())
	offset := len(args)

	q := `SELECT ` + pgCols + ` FROM wkts` + where +
		fmt.Sprintf(` ORDER BY namespace, version, code LIMIT $%d OFFSET $%d;`, limit, offset)

	items, err := s.query(ctx, q, args)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *PostgresStore) Count(ctx context.Context, f Filter) (int, error) {
	var args []any
	where := pgFilterClause(f, &args)
	return s.count(ctx, where, args)
}

func (s *PostgresStore) Search(ctx context.Context, term string, page domain.PageRequest) ([]domain.CrsRecord, int, error) {
	where, args := pgSearchClause(term)

	total, err := s.count(ctx, where, args)
	if err != nil {
		return nil, 0, err
	}

	args = append(args, page.PageSize, page.Offset())
	q := `SELECT ` + pgCols + ` FROM wkts` + where +
		fmt.Sprintf(` ORDER BY namespace, version, code LIMIT $%d OFFSET $%d;`, len(args)-1, len(args))

	items, err := s.query(ctx, q, args)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *PostgresStore) SearchCount(ctx context.Context, term string) (int, error) {
	where, args := pgSearchClause(term)
	return s.count(ctx, where, args)
}

func (s *PostgresStore) Versions(ctx context.Context, namespace string) ([]int, error) {
	q := `SELECT DISTINCT version FROM wkts`
	var args []any
	if namespace != "" {
		q += ` WHERE namespace = $1`
		args = append(args, namespace)
	}
	q += ` ORDER BY version;`

	rows, err := s.pool.Query(ctx, q, args...)
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

func (s *PostgresStore) SolarBodies(ctx context.Context) ([]string, error) {
	const q = `SELECT DISTINCT solar_body FROM wkts ORDER BY solar_body;`
	rows, err := s.pool.Query(ctx, q)
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

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) count(ctx context.Context, where string, args []any) (int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM wkts`+where+`;`, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count wkts: %w", err)
	}
	return total, nil
}

func (s *PostgresStore) query(ctx context.Context, q string, args []any) ([]domain.CrsRecord, error) {
	rows, err := s.pool.Query(ctx, q, args...)
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

func pgFilterClause(f Filter, args *[]any) string {
	var conds []string
	if f.Namespace != "" {
		*args = append(*args, f.Namespace)
		conds = append(conds, fmt.Sprintf("namespace = $%d", len(*args)))
	}
	if f.Version != 0 {
		*args = append(*args, f.Version)
		conds = append(conds, fmt.Sprintf("version = $%d", len(*args)))
	}
	if f.SolarBody != "" {
		*args = append(*args, f.SolarBody)
		conds = append(conds, fmt.Sprintf("lower(solar_body) = lower($%d)", len(*args)))
	}
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func pgSearchClause(term string) (string, []any) {
	if term == "" {
		return "", nil
	}
	pattern := "%" + escapeLike(term) + "%"
	return ` WHERE (wkt ILIKE $1 ESCAPE '\' OR solar_body ILIKE $1 ESCAPE '\')`, []any{pattern}
}
