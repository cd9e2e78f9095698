package cases

import (
	"time"

	"github.com/google/uuid"
)

// SMS is the audit row for an outbound text message. It is written only
// after the gateway accepted the message; a failed send leaves no row.
type SMS struct {
	ID        uuid.UUID `db:"id" json:"id"`
	To        string    `db:"to_msisdn" json:"to"`
	Content   string    `db:"content" json:"content"`
	MessageID string    `db:"message_id" json:"message_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Email is the audit row for an outbound email, keyed by the first
// recipient and storing the rendered HTML and attached PDF bytes.
type Email struct {
	ID          uuid.UUID `db:"id" json:"id"`
	To          string    `db:"to_address" json:"to"`
	HTMLContent string    `db:"html_content" json:"html_content"`
	PDFContent  []byte    `db:"pdf_content" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// InboundSMS is a message received on the gateway webhook, typically a
// reply to one of our alerts.
type InboundSMS struct {
	ID               uuid.UUID `db:"id" json:"id"`
	From             string    `db:"from_msisdn" json:"from"`
	Content          string    `db:"content" json:"content"`
	ReplyToMessageID string    `db:"reply_to_message_id" json:"reply_to_message_id,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// SMSEvent is a delivery status callback for a previously sent message.
type SMSEvent struct {
	ID        uuid.UUID `db:"id" json:"id"`
	MessageID string    `db:"message_id" json:"message_id"`
	EventType string    `db:"event_type" json:"event_type"`
	Timestamp time.Time `db:"event_timestamp" json:"timestamp"`
}
