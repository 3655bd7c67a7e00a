package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	OrderPending = "pending"
	OrderPaid    = "paid"
)

type Order struct {
	gorm.Model
	OrderNumber   string `gorm:"unique;not null" json:"order_number"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	Amount        int64  `gorm:"not null" json:"amount"`
	Status        string `gorm:"not null;default:pending" json:"status"`
	MpesaPhone    string `json:"mpesa_phone"`
	PaymentMethod string `json:"payment_method"`
	// Set by the initiate handler when the caller supplies an order number as
	// the external reference. Best effort, may stay nil.
	PaymentAttemptID *uint      `json:"payment_attempt_id"`
	ReceiptID        *uint      `json:"receipt_id"`
	PaidAt           *time.Time `json:"paid_at"`
}
