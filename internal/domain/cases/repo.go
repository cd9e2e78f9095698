package cases

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, c *ReportedCase) error
	GetByID(ctx context.Context, id uuid.UUID) (*ReportedCase, error)
	List(ctx context.Context, limit, offset int) ([]*ReportedCase, int, error)

	// ExistsByOnaUUID is the dedup key for the Ona sync.
	ExistsByOnaUUID(ctx context.Context, onaUUID string) (bool, error)

	// CountByCaseNumberPrefix counts cases whose case_number starts with the
	// given prefix, used to assign the next per-facility per-day sequence.
	CountByCaseNumberPrefix(ctx context.Context, prefix string) (int, error)

	AddNotifiedEHP(ctx context.Context, caseID, actorID uuid.UUID) error
	NotifiedEHPs(ctx context.Context, caseID uuid.UUID) ([]uuid.UUID, error)
	SetJembiAlertSent(ctx context.Context, caseID uuid.UUID) error

	// CountUnclaimed counts cases not yet claimed at the given digest level.
	// The legacy level is the compiler's trigger condition.
	CountUnclaimed(ctx context.Context, level DigestLevel) (int, error)

	// ClaimForDigest atomically stamps every case whose claim column for the
	// level is still null with digestID and returns the claimed rows.
	ClaimForDigest(ctx context.Context, level DigestLevel, digestID uuid.UUID) ([]*ReportedCase, error)
}

type AuditRepository interface {
	CreateSMS(ctx context.Context, s *SMS) error
	CreateEmail(ctx context.Context, e *Email) error
	CreateInboundSMS(ctx context.Context, s *InboundSMS) error
	CreateSMSEvent(ctx context.Context, e *SMSEvent) error
}
