package cases

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

func NewAuditRepo(pool *pgxpool.Pool) AuditRepository {
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

const caseCols = `id, first_name, last_name, locality, date_of_birth, create_date_time,
	sa_id_number, msisdn, id_type, abroad, reported_by, gender, facility_code,
	landmark, landmark_description, case_number, ona_id, ona_uuid, ona_form_id_string,
	form_id, digest_id, national_digest_id, provincial_digest_id, district_digest_id,
	jembi_alert_sent, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, c *ReportedCase) error {
	c.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO reported_case (
			id, first_name, last_name, locality, date_of_birth, create_date_time,
			sa_id_number, msisdn, id_type, abroad, reported_by, gender, facility_code,
			landmark, landmark_description, case_number, ona_id, ona_uuid,
			ona_form_id_string, form_id
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
		c.ID, c.FirstName, c.LastName, c.Locality, c.DateOfBirth, c.CreateDateTime,
		c.SAIDNumber, c.MSISDN, c.IDType, c.Abroad, c.ReportedBy, c.Gender, c.FacilityCode,
		c.Landmark, c.LandmarkDescription, c.CaseNumber, c.OnaID, c.OnaUUID,
		c.OnaFormIDString, c.FormID,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*ReportedCase, error) {
	return scanCase(r.conn(ctx).QueryRow(ctx,
		`SELECT `+caseCols+` FROM reported_case WHERE id = $1`, id))
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*ReportedCase, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM reported_case`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+caseCols+` FROM reported_case
		ORDER BY create_date_time DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out, err := collectCases(rows)
	return out, total, err
}

func (r *repoPG) ExistsByOnaUUID(ctx context.Context, onaUUID string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM reported_case WHERE ona_uuid = $1)`, onaUUID).Scan(&exists)
	return exists, err
}

func (r *repoPG) CountByCaseNumberPrefix(ctx context.Context, prefix string) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM reported_case WHERE case_number LIKE $1 || '%'`, prefix).Scan(&n)
	return n, err
}

func (r *repoPG) AddNotifiedEHP(ctx context.Context, caseID, actorID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO case_ehp (case_id, actor_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, caseID, actorID)
	return err
}

func (r *repoPG) NotifiedEHPs(ctx context.Context, caseID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT actor_id FROM case_ehp WHERE case_id = $1`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *repoPG) SetJembiAlertSent(ctx context.Context, caseID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE reported_case SET jembi_alert_sent = TRUE, updated_at = NOW()
		WHERE id = $1`, caseID)
	return err
}

func (r *repoPG) CountUnclaimed(ctx context.Context, level DigestLevel) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM reported_case WHERE `+digestColumn(level)+` IS NULL`).Scan(&n)
	return n, err
}

// digestColumn maps a level to its claim column. Each level claims the same
// batch independently through its own column.
func digestColumn(level DigestLevel) string {
	switch level {
	case LevelNational:
		return "national_digest_id"
	case LevelProvincial:
		return "provincial_digest_id"
	case LevelDistrict:
		return "district_digest_id"
	default:
		return "digest_id"
	}
}

func (r *repoPG) ClaimForDigest(ctx context.Context, level DigestLevel, digestID uuid.UUID) ([]*ReportedCase, error) {
	col := digestColumn(level)
	rows, err := r.conn(ctx).Query(ctx, `
		UPDATE reported_case SET `+col+` = $1, updated_at = NOW()
		WHERE `+col+` IS NULL
		RETURNING `+caseCols, digestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCases(rows)
}

func (r *repoPG) CreateSMS(ctx context.Context, s *SMS) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO sms (id, to_msisdn, content, message_id) VALUES ($1,$2,$3,$4)`,
		s.ID, s.To, s.Content, s.MessageID)
	return err
}

func (r *repoPG) CreateEmail(ctx context.Context, e *Email) error {
	e.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO email (id, to_address, html_content, pdf_content) VALUES ($1,$2,$3,$4)`,
		e.ID, e.To, e.HTMLContent, e.PDFContent)
	return err
}

func (r *repoPG) CreateInboundSMS(ctx context.Context, s *InboundSMS) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO inbound_sms (id, from_msisdn, content, reply_to_message_id)
		VALUES ($1,$2,$3,$4)`,
		s.ID, s.From, s.Content, s.ReplyToMessageID)
	return err
}

func (r *repoPG) CreateSMSEvent(ctx context.Context, e *SMSEvent) error {
	e.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO sms_event (id, message_id, event_type, event_timestamp)
		VALUES ($1,$2,$3,$4)`,
		e.ID, e.MessageID, e.EventType, e.Timestamp)
	return err
}

func scanCase(row pgx.Row) (*ReportedCase, error) {
	var c ReportedCase
	err := row.Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Locality, &c.DateOfBirth, &c.CreateDateTime,
		&c.SAIDNumber, &c.MSISDN, &c.IDType, &c.Abroad, &c.ReportedBy, &c.Gender, &c.FacilityCode,
		&c.Landmark, &c.LandmarkDescription, &c.CaseNumber, &c.OnaID, &c.OnaUUID, &c.OnaFormIDString,
		&c.FormID, &c.DigestID, &c.NationalDigestID, &c.ProvincialDigestID, &c.DistrictDigestID,
		&c.JembiAlertSent, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func collectCases(rows pgx.Rows) ([]*ReportedCase, error) {
	var out []*ReportedCase
	for rows.Next() {
		var c ReportedCase
		if err := rows.Scan(
			&c.ID, &c.FirstName, &c.LastName, &c.Locality, &c.DateOfBirth, &c.CreateDateTime,
			&c.SAIDNumber, &c.MSISDN, &c.IDType, &c.Abroad, &c.ReportedBy, &c.Gender, &c.FacilityCode,
			&c.Landmark, &c.LandmarkDescription, &c.CaseNumber, &c.OnaID, &c.OnaUUID, &c.OnaFormIDString,
			&c.FormID, &c.DigestID, &c.NationalDigestID, &c.ProvincialDigestID, &c.DistrictDigestID,
			&c.JembiAlertSent, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
