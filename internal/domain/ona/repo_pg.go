package ona

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

const formCols = `id, uuid, form_id, id_string, title, active, created_at, updated_at`

func (r *repoPG) UpsertForm(ctx context.Context, f *Form) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO ona_form (id, uuid, form_id, id_string, title)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (uuid) DO UPDATE SET
			form_id = EXCLUDED.form_id,
			id_string = EXCLUDED.id_string,
			title = EXCLUDED.title,
			updated_at = NOW()`,
		f.ID, f.UUID, f.FormID, f.IDString, f.Title)
	return err
}

func (r *repoPG) ListForms(ctx context.Context) ([]*Form, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+formCols+` FROM ona_form ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectForms(rows)
}

func (r *repoPG) ListActiveForms(ctx context.Context) ([]*Form, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+formCols+` FROM ona_form WHERE active ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectForms(rows)
}

func (r *repoPG) SetActive(ctx context.Context, onaUUID string, active bool) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE ona_form SET active = $2, updated_at = NOW() WHERE uuid = $1`,
		onaUUID, active)
	return err
}

func collectForms(rows pgx.Rows) ([]*Form, error) {
	var out []*Form
	for rows.Next() {
		var f Form
		if err := rows.Scan(&f.ID, &f.UUID, &f.FormID, &f.IDString, &f.Title,
			&f.Active, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}
