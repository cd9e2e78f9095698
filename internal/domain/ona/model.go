package ona

import (
	"time"

	"github.com/google/uuid"
)

// Form is a registered Ona form. Newly discovered forms start inactive; an
// operator activates the ones whose records should become cases.
type Form struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UUID      string    `db:"uuid" json:"uuid"`
	FormID    int64     `db:"form_id" json:"form_id"`
	IDString  string    `db:"id_string" json:"id_string"`
	Title     string    `db:"title" json:"title"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
