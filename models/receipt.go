package models

import "gorm.io/gorm"

// Receipt is the durable proof of payment, created exactly once per order
// when a successful M-Pesa callback is correlated.
type Receipt struct {
	gorm.Model
	ReceiptNo            string `gorm:"unique;not null" json:"receipt_no"`
	OrderID              uint   `gorm:"not null;index" json:"order_id"`
	PaymentAttemptID     *uint  `json:"payment_attempt_id"`
	TransactionReference string `gorm:"index" json:"transaction_reference"`
	Amount               int64  `gorm:"not null" json:"amount"`
	Phone                string `json:"phone"`
	Provider             string `json:"provider"`
	ProviderPayload      string `gorm:"type:text" json:"provider_payload"`
}
