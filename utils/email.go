package utils

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/gomail.v2"

	"github.com/DevNathanHub/Edau-sub000/models"
)

// SendReceiptEmail mails the customer their payment receipt. Failures are
// logged and swallowed; a payment must never look unconfirmed because SMTP
// was down.
func SendReceiptEmail(email string, order *models.Order, receipt *models.Receipt) {
	if email == "" {
		return
	}

	m := gomail.NewMessage()
	m.SetHeader("From", os.Getenv("SMTP_SENDER"))
	m.SetHeader("To", email)
	m.SetHeader("Subject", fmt.Sprintf("Payment received for order %s", order.OrderNumber))
	m.SetBody("text/plain", fmt.Sprintf(
		"Hello %s,\n\nWe have received your payment of KES %d for order %s.\nReceipt number: %s\nM-Pesa reference: %s\n\nThank you for shopping with Edau Farm.",
		order.CustomerName, receipt.Amount, order.OrderNumber, receipt.ReceiptNo, receipt.TransactionReference,
	))

	d := gomail.NewDialer(
		os.Getenv("SMTP_HOST"),
		465,
		os.Getenv("SMTP_USER"),
		os.Getenv("SMTP_PASS"),
	)

	if err := d.DialAndSend(m); err != nil {
		log.Printf("Failed to send receipt email to %s: %v", email, err)
		return
	}

	log.Printf("Receipt email sent to %s for order %s", email, order.OrderNumber)
}
