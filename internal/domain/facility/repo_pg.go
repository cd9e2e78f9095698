package facility

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/malariaconnect/api/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const facCols = `id, facility_code, facility_name, province, district, subdistrict, phase, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, f *Facility) error {
	f.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO facility (id, facility_code, facility_name, province, district, subdistrict, phase)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		f.ID, f.FacilityCode, f.FacilityName, f.Province, f.District, f.Subdistrict, f.Phase,
	)
	return err
}

func (r *repoPG) ListByCode(ctx context.Context, code string) ([]*Facility, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+facCols+` FROM facility WHERE facility_code = $1 ORDER BY created_at`, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFacilities(rows)
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Facility, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM facility`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+facCols+` FROM facility ORDER BY facility_code LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	facilities, err := collectFacilities(rows)
	return facilities, total, err
}

func (r *repoPG) ExistsExact(ctx context.Context, f *Facility) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM facility
			WHERE facility_code = $1 AND facility_name = $2 AND province = $3
			  AND district = $4 AND subdistrict = $5 AND phase = $6
		)`,
		f.FacilityCode, f.FacilityName, f.Province, f.District, f.Subdistrict, f.Phase,
	).Scan(&exists)
	return exists, err
}

func collectFacilities(rows pgx.Rows) ([]*Facility, error) {
	var out []*Facility
	for rows.Next() {
		var f Facility
		if err := rows.Scan(&f.ID, &f.FacilityCode, &f.FacilityName, &f.Province,
			&f.District, &f.Subdistrict, &f.Phase, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}
