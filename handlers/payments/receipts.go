package payments

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DevNathanHub/Edau-sub000/models"
	"github.com/DevNathanHub/Edau-sub000/utils"
)

// GetOrderReceipt returns the receipt for a paid order, or 404 while the
// payment is still unconfirmed. The UI uses the presence of a receipt as the
// definitive "payment confirmed" signal.
func GetOrderReceipt(c *gin.Context) {
	orderNumber := c.Param("order_number")

	var order models.Order
	if err := utils.DB.Where("order_number = ?", orderNumber).First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	if order.ReceiptID == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No receipt for this order yet"})
		return
	}

	var receipt models.Receipt
	if err := utils.DB.First(&receipt, *order.ReceiptID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Receipt not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"receipt": receipt})
}
