package payments

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DevNathanHub/Edau-sub000/models"
	"github.com/DevNathanHub/Edau-sub000/mpesa"
	"github.com/DevNathanHub/Edau-sub000/utils"
)

// InitiateMpesaPayment validates the request, fires an STK push at the
// customer's phone and records the attempt. The order attachment at the end
// is best effort: the push already reached the gateway, so a bad external
// reference must not turn the whole initiation into a failure.
func InitiateMpesaPayment(c *gin.Context) {
	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "status": "error", "message": "Invalid request payload"})
		return
	}

	rawPhone := firstString(req, "phone_number", "phone", "msisdn", "mpesa_phone")
	if rawPhone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "status": "error", "message": "Phone number is required"})
		return
	}

	phone := utils.NormalizePhone(rawPhone)
	if !utils.IsValidMsisdn(phone) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "status": "error", "message": "Invalid phone number format, expected a Kenyan number like 0712345678"})
		return
	}

	amount, err := parseAmount(req["amount"])
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "status": "error", "message": "Amount must be a positive whole number"})
		return
	}

	client, err := mpesa.NewClientFromEnv()
	if err != nil {
		log.Printf("M-Pesa gateway not configured: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "status": "error", "message": "Payment gateway is not configured"})
		return
	}

	externalRef := firstString(req, "external_reference")
	metadata, _ := req["metadata"].(map[string]interface{})

	result, err := client.InitiatePush(c.Request.Context(), mpesa.PushRequest{
		Phone:             phone,
		Amount:            amount,
		ExternalReference: externalRef,
		CallbackURL:       firstString(req, "callback_url"),
		Metadata:          metadata,
	})
	if err != nil {
		// The push may or may not have gone out; without a provider response
		// there is nothing to correlate, so no attempt is recorded.
		log.Printf("M-Pesa initiate failed for %s: %v", phone, err)
		if errors.Is(err, mpesa.ErrGatewayUnreachable) {
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "status": "error", "message": "Could not reach the payment gateway, please try again"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "status": "error", "message": "Payment initiation failed"})
		return
	}

	accepted := result.Parsed != nil && mpesa.InitiationAccepted(result.Parsed)

	status := models.PaymentFailed
	if accepted {
		status = models.PaymentInitiated
	}

	attempt := models.PaymentAttempt{
		SubscriberMsisdn:  phone,
		Amount:            amount,
		ExternalReference: externalRef,
		TransactionRef:    mpesa.TransactionReference(result.Parsed),
		ProviderResponse:  result.Raw,
		Status:            status,
	}
	if err := utils.DB.Create(&attempt).Error; err != nil {
		log.Printf("Failed to record payment attempt for %s: %v", phone, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "status": "error", "message": "Failed to record payment attempt"})
		return
	}

	if !accepted {
		mpesaError := mpesa.ResponseDescription(result.Parsed)
		if mpesaError == "" {
			mpesaError = result.Raw
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"status":  "error",
			"message": "Payment could not be initiated",
			"error": gin.H{
				"code":           "MPESA_ERROR",
				"mpesaError":     mpesaError,
				"originalStatus": result.StatusCode,
			},
		})
		return
	}

	if externalRef != "" {
		nonCritical("attach payment to order "+externalRef, func() error {
			return attachToOrder(externalRef, attempt.ID, phone)
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "status": "success", "data": mpesa.Data(result.Parsed)})
}

func attachToOrder(orderNumber string, attemptID uint, phone string) error {
	var order models.Order
	if err := utils.DB.Where("order_number = ?", orderNumber).First(&order).Error; err != nil {
		return err
	}
	return utils.DB.Model(&order).Updates(map[string]interface{}{
		"payment_attempt_id": attemptID,
		"mpesa_phone":        phone,
		"payment_method":     "mpesa",
	}).Error
}
