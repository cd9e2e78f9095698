package digest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/malariaconnect/api/internal/domain/cases"
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

func digestTable(level cases.DigestLevel) string {
	switch level {
	case cases.LevelNational:
		return "national_digest"
	case cases.LevelProvincial:
		return "provincial_digest"
	case cases.LevelDistrict:
		return "district_digest"
	default:
		return "digest"
	}
}

func (r *repoPG) CreateDigest(ctx context.Context, level cases.DigestLevel) (*Digest, error) {
	d := &Digest{ID: uuid.New(), CreatedAt: time.Now()}
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO `+digestTable(level)+` (id, created_at) VALUES ($1, $2)`,
		d.ID, d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *repoPG) AddRecipient(ctx context.Context, level cases.DigestLevel, digestID, actorID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO `+digestTable(level)+`_recipient (digest_id, actor_id)
		VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		digestID, actorID)
	return err
}
