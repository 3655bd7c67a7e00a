package payments

import "github.com/gin-gonic/gin"

func RegisterPaymentRoutes(r *gin.Engine) {
	r.POST("/api/payments/initiate", InitiateMpesaPayment)
	r.POST("/api/payments/mpesa/callback", MpesaCallback)
	r.GET("/api/payments/status", PaymentStatus)
	r.GET("/api/orders/:order_number/receipt", GetOrderReceipt)
}
