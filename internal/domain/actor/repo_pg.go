package actor

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

const actorCols = `id, name, email_address, phone_number, role, facility_code, province, district, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, a *Actor) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO actor (id, name, email_address, phone_number, role, facility_code, province, district)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.Name, a.EmailAddress, a.PhoneNumber, a.Role, a.FacilityCode, a.Province, a.District,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Actor, error) {
	return scanActor(r.conn(ctx).QueryRow(ctx, `SELECT `+actorCols+` FROM actor WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, a *Actor) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE actor SET
			name=$2, email_address=$3, phone_number=$4, role=$5,
			facility_code=$6, province=$7, district=$8, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.Name, a.EmailAddress, a.PhoneNumber, a.Role, a.FacilityCode, a.Province, a.District,
	)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Actor, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM actor`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+actorCols+` FROM actor ORDER BY created_at LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	actors, err := collectActors(rows)
	return actors, total, err
}

func (r *repoPG) ListByRole(ctx context.Context, role Role) ([]*Actor, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+actorCols+` FROM actor WHERE role = $1 ORDER BY created_at`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectActors(rows)
}

func (r *repoPG) ListByRoleAndFacility(ctx context.Context, role Role, facilityCode string) ([]*Actor, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+actorCols+` FROM actor WHERE role = $1 AND facility_code = $2 ORDER BY created_at`,
		role, facilityCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectActors(rows)
}

func (r *repoPG) ListByRoleAndProvinces(ctx context.Context, role Role, provinces []string) ([]*Actor, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+actorCols+` FROM actor WHERE role = $1 AND province = ANY($2) ORDER BY created_at`,
		role, provinces)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectActors(rows)
}

func scanActor(row pgx.Row) (*Actor, error) {
	var a Actor
	err := row.Scan(&a.ID, &a.Name, &a.EmailAddress, &a.PhoneNumber, &a.Role,
		&a.FacilityCode, &a.Province, &a.District, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func collectActors(rows pgx.Rows) ([]*Actor, error) {
	var out []*Actor
	for rows.Next() {
		var a Actor
		if err := rows.Scan(&a.ID, &a.Name, &a.EmailAddress, &a.PhoneNumber, &a.Role,
			&a.FacilityCode, &a.Province, &a.District, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
