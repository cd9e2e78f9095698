package digest

import (
	"context"

	"github.com/google/uuid"

	"github.com/malariaconnect/api/internal/domain/cases"
)

type Repository interface {
	// CreateDigest inserts a fresh digest row in the table for the level.
	CreateDigest(ctx context.Context, level cases.DigestLevel) (*Digest, error)

	// AddRecipient records that an actor was sent the digest.
	AddRecipient(ctx context.Context, level cases.DigestLevel, digestID, actorID uuid.UUID) error
}
