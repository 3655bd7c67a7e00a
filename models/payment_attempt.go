package models

import "gorm.io/gorm"

// Payment attempt statuses. An attempt is created as "initiated" (the push
// reached the provider) or "failed" (the provider rejected it); only the
// callback handler may move it to "completed" or "failed" afterwards.
const (
	PaymentInitiated = "initiated"
	PaymentFailed    = "failed"
	PaymentCompleted = "completed"
)

type PaymentAttempt struct {
	gorm.Model
	SubscriberMsisdn  string `gorm:"not null;index" json:"subscriber_msisdn"`
	Amount            int64  `gorm:"not null" json:"amount"`
	ExternalReference string `gorm:"index" json:"external_reference"`
	// TransactionRef is extracted from the provider's initiation response so
	// the callback can correlate without digging through stored JSON.
	TransactionRef   string `gorm:"index" json:"transaction_ref"`
	ProviderResponse string `gorm:"type:text" json:"provider_response"`
	ProviderCallback string `gorm:"type:text" json:"provider_callback"`
	Status           string `gorm:"not null" json:"status"`
}
