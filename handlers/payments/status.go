package payments

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DevNathanHub/Edau-sub000/mpesa"
)

// PaymentStatus lets a client poll the provider for an initiated push while
// the callback is still in flight. Pure passthrough, no state of its own.
func PaymentStatus(c *gin.Context) {
	reference := c.Query("reference")
	if reference == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "status": "error", "message": "reference query parameter is required"})
		return
	}

	client, err := mpesa.NewClientFromEnv()
	if err != nil {
		log.Printf("M-Pesa gateway not configured: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "status": "error", "message": "Payment gateway is not configured"})
		return
	}

	result, err := client.QueryStatus(c.Request.Context(), reference)
	if err != nil {
		log.Printf("M-Pesa status query failed for %q: %v", reference, err)
		if errors.Is(err, mpesa.ErrGatewayUnreachable) {
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "status": "error", "message": "Could not reach the payment gateway, please try again"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "status": "error", "message": "Status query failed"})
		return
	}

	if result.OK() && result.Parsed != nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "status": "success", "data": mpesa.Data(result.Parsed)})
		return
	}

	mpesaError := mpesa.ResponseDescription(result.Parsed)
	if mpesaError == "" {
		mpesaError = result.Raw
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"status":  "error",
		"message": "Could not retrieve payment status",
		"error": gin.H{
			"code":           "MPESA_ERROR",
			"mpesaError":     mpesaError,
			"originalStatus": result.StatusCode,
		},
	})
}
