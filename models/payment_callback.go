package models

import (
	"time"

	"gorm.io/gorm"
)

// PaymentCallback is the append-only audit log of every webhook delivery we
// receive, recorded verbatim before any correlation is attempted. Rows are
// never updated or deleted.
type PaymentCallback struct {
	gorm.Model
	Provider   string    `gorm:"not null" json:"provider"`
	RawPayload string    `gorm:"type:text" json:"raw_payload"`
	RawHeaders string    `gorm:"type:text" json:"raw_headers"`
	ReceivedAt time.Time `gorm:"not null" json:"received_at"`
}
