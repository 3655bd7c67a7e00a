package payments

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/DevNathanHub/Edau-sub000/models"
	"github.com/DevNathanHub/Edau-sub000/mpesa"
	"github.com/DevNathanHub/Edau-sub000/utils"
)

// MpesaCallback receives the provider's asynchronous confirmation. The
// provider penalizes integrations that answer slowly or with errors, so this
// handler always returns 200 "ok" no matter what happens inside: the raw
// delivery is written to the audit log first, and every later step only logs
// its own failure.
func MpesaCallback(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Printf("Failed to read M-Pesa callback body: %v", err)
		c.String(http.StatusOK, "ok")
		return
	}

	headers, _ := json.Marshal(c.Request.Header)
	callback := models.PaymentCallback{
		Provider:   "mpesa",
		RawPayload: string(body),
		RawHeaders: string(headers),
		ReceivedAt: time.Now(),
	}
	if err := utils.DB.Create(&callback).Error; err != nil {
		log.Printf("Failed to record M-Pesa callback: %v", err)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("M-Pesa callback body is not JSON, recorded for reconciliation: %v", err)
		c.String(http.StatusOK, "ok")
		return
	}

	transactionRef := mpesa.TransactionReference(payload)
	externalRef := mpesa.ExternalReference(payload)
	success := mpesa.IsSuccess(payload)

	attempt := findAttempt(transactionRef, externalRef)
	if attempt == nil {
		// Possible under concurrent delivery before the initiation write
		// lands, or a reference we never issued. The audit row above is the
		// durable record either way.
		log.Printf("M-Pesa callback matched no payment attempt (txn=%q ext=%q)", transactionRef, externalRef)
	} else {
		status := models.PaymentFailed
		if success {
			status = models.PaymentCompleted
		}
		nonCritical("update payment attempt status", func() error {
			return utils.DB.Model(attempt).Updates(map[string]interface{}{
				"status":            status,
				"provider_callback": string(body),
			}).Error
		})
	}

	if success {
		settleOrder(externalRef, transactionRef, string(body), attempt)
	}

	c.String(http.StatusOK, "ok")
}

// findAttempt locates the payment attempt a callback concerns, trying the
// provider's transaction reference first and the caller-supplied external
// reference second. Nil means no match, which is a valid outcome, not an
// error.
func findAttempt(transactionRef, externalRef string) *models.PaymentAttempt {
	var attempt models.PaymentAttempt

	if transactionRef != "" {
		if err := utils.DB.Where("transaction_ref = ?", transactionRef).First(&attempt).Error; err == nil {
			return &attempt
		}
	}
	if externalRef != "" {
		if err := utils.DB.Where("external_reference = ?", externalRef).First(&attempt).Error; err == nil {
			return &attempt
		}
	}
	return nil
}

// settleOrder moves the referenced order to paid and writes its receipt.
// The paid transition is a conditional update so that a re-delivered
// callback, or two racing deliveries, can claim the order at most once.
func settleOrder(externalRef, transactionRef, rawPayload string, attempt *models.PaymentAttempt) {
	if externalRef == "" && attempt != nil {
		externalRef = attempt.ExternalReference
	}
	if externalRef == "" {
		log.Printf("M-Pesa callback has no order reference, skipping settlement (txn=%q)", transactionRef)
		return
	}

	var order models.Order
	if err := utils.DB.Where("order_number = ?", externalRef).First(&order).Error; err != nil {
		log.Printf("M-Pesa callback references unknown order %q, skipping settlement", externalRef)
		return
	}

	if order.ReceiptID != nil {
		log.Printf("Order %s already has receipt %d, ignoring duplicate callback", order.OrderNumber, *order.ReceiptID)
		return
	}

	now := time.Now()
	claim := utils.DB.Model(&models.Order{}).
		Where("id = ? AND status <> ?", order.ID, models.OrderPaid).
		Updates(map[string]interface{}{"status": models.OrderPaid, "paid_at": now})
	if claim.Error != nil {
		log.Printf("Failed to mark order %s paid: %v", order.OrderNumber, claim.Error)
		return
	}
	if claim.RowsAffected == 0 {
		log.Printf("Order %s was already paid, ignoring duplicate callback", order.OrderNumber)
		return
	}

	amount := order.Amount
	phone := order.MpesaPhone
	var attemptID *uint
	if attempt != nil {
		amount = attempt.Amount
		phone = attempt.SubscriberMsisdn
		attemptID = &attempt.ID
	}

	receipt := models.Receipt{
		ReceiptNo:            "RCT-" + uuid.NewString(),
		OrderID:              order.ID,
		PaymentAttemptID:     attemptID,
		TransactionReference: transactionRef,
		Amount:               amount,
		Phone:                phone,
		Provider:             "mpesa",
		ProviderPayload:      rawPayload,
	}
	if err := utils.DB.Create(&receipt).Error; err != nil {
		log.Printf("Failed to create receipt for order %s: %v", order.OrderNumber, err)
		return
	}

	nonCritical("back-link receipt onto order "+order.OrderNumber, func() error {
		return utils.DB.Model(&order).Update("receipt_id", receipt.ID).Error
	})

	log.Printf("Order %s paid, receipt %s created (txn=%q)", order.OrderNumber, receipt.ReceiptNo, transactionRef)

	// Off the webhook path; the provider is waiting on our 200.
	go utils.SendReceiptEmail(order.CustomerEmail, &order, &receipt)
}
