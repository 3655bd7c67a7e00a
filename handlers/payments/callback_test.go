package payments_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/DevNathanHub/Edau-sub000/models"
)

func seedAttempt(t *testing.T, db *gorm.DB, txnRef, externalRef string, amount int64) *models.PaymentAttempt {
	t.Helper()
	attempt := &models.PaymentAttempt{
		SubscriberMsisdn:  "254712345678",
		Amount:            amount,
		ExternalReference: externalRef,
		TransactionRef:    txnRef,
		Status:            models.PaymentInitiated,
	}
	require.NoError(t, db.Create(attempt).Error)
	return attempt
}

func TestCallbackSettlesOrderAndCreatesReceipt(t *testing.T) {
	db := setupDB(t)
	order := seedOrder(t, db, "ORDER123", 500)
	attempt := seedAttempt(t, db, "TXN1", "ORDER123", 500)
	r := setupRouter()

	w := postJSON(r, "/api/payments/mpesa/callback", `{"data":{"ResponseCode":0,"external_reference":"ORDER123","TransactionReference":"TXN1"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	// Audit record is always written.
	var callbacks []models.PaymentCallback
	require.NoError(t, db.Find(&callbacks).Error)
	require.Len(t, callbacks, 1)
	assert.Equal(t, "mpesa", callbacks[0].Provider)
	assert.Contains(t, callbacks[0].RawPayload, "TXN1")

	var freshAttempt models.PaymentAttempt
	require.NoError(t, db.First(&freshAttempt, attempt.ID).Error)
	assert.Equal(t, models.PaymentCompleted, freshAttempt.Status)
	assert.Contains(t, freshAttempt.ProviderCallback, "ORDER123")

	var freshOrder models.Order
	require.NoError(t, db.First(&freshOrder, order.ID).Error)
	assert.Equal(t, models.OrderPaid, freshOrder.Status)
	require.NotNil(t, freshOrder.PaidAt)
	require.NotNil(t, freshOrder.ReceiptID)

	var receipt models.Receipt
	require.NoError(t, db.First(&receipt, *freshOrder.ReceiptID).Error)
	assert.Equal(t, "TXN1", receipt.TransactionReference)
	assert.Equal(t, int64(500), receipt.Amount)
	assert.Equal(t, "254712345678", receipt.Phone)
	assert.Equal(t, order.ID, receipt.OrderID)
	require.NotNil(t, receipt.PaymentAttemptID)
	assert.Equal(t, attempt.ID, *receipt.PaymentAttemptID)
}

func TestCallbackRedeliveryCreatesOneReceipt(t *testing.T) {
	db := setupDB(t)
	order := seedOrder(t, db, "ORDER123", 500)
	seedAttempt(t, db, "TXN1", "ORDER123", 500)
	r := setupRouter()

	body := `{"data":{"ResponseCode":0,"external_reference":"ORDER123","TransactionReference":"TXN1"}}`
	first := postJSON(r, "/api/payments/mpesa/callback", body)
	require.Equal(t, http.StatusOK, first.Code)

	var afterFirst models.Order
	require.NoError(t, db.First(&afterFirst, order.ID).Error)
	require.NotNil(t, afterFirst.ReceiptID)
	firstReceiptID := *afterFirst.ReceiptID

	second := postJSON(r, "/api/payments/mpesa/callback", body)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "ok", second.Body.String())

	var receiptCount int64
	db.Model(&models.Receipt{}).Count(&receiptCount)
	assert.Equal(t, int64(1), receiptCount)

	var afterSecond models.Order
	require.NoError(t, db.First(&afterSecond, order.ID).Error)
	require.NotNil(t, afterSecond.ReceiptID)
	assert.Equal(t, firstReceiptID, *afterSecond.ReceiptID)

	// Both deliveries are still on the audit log.
	var callbackCount int64
	db.Model(&models.PaymentCallback{}).Count(&callbackCount)
	assert.Equal(t, int64(2), callbackCount)
}

func TestCallbackMatchingNothingOnlyAudits(t *testing.T) {
	db := setupDB(t)
	order := seedOrder(t, db, "ORDER123", 500)
	attempt := seedAttempt(t, db, "TXN1", "ORDER123", 500)
	r := setupRouter()

	w := postJSON(r, "/api/payments/mpesa/callback", `{"data":{"ResponseCode":0,"external_reference":"GHOST","TransactionReference":"NOPE"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	var callbackCount int64
	db.Model(&models.PaymentCallback{}).Count(&callbackCount)
	assert.Equal(t, int64(1), callbackCount)

	var freshAttempt models.PaymentAttempt
	require.NoError(t, db.First(&freshAttempt, attempt.ID).Error)
	assert.Equal(t, models.PaymentInitiated, freshAttempt.Status)

	var freshOrder models.Order
	require.NoError(t, db.First(&freshOrder, order.ID).Error)
	assert.Equal(t, models.OrderPending, freshOrder.Status)
	assert.Nil(t, freshOrder.ReceiptID)

	var receiptCount int64
	db.Model(&models.Receipt{}).Count(&receiptCount)
	assert.Equal(t, int64(0), receiptCount)
}

func TestCallbackFailureMarksAttemptFailed(t *testing.T) {
	db := setupDB(t)
	order := seedOrder(t, db, "ORDER123", 500)
	attempt := seedAttempt(t, db, "TXN1", "ORDER123", 500)
	r := setupRouter()

	w := postJSON(r, "/api/payments/mpesa/callback", `{"ResultCode":1032,"ResultDesc":"Request cancelled by user","TransactionReference":"TXN1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var freshAttempt models.PaymentAttempt
	require.NoError(t, db.First(&freshAttempt, attempt.ID).Error)
	assert.Equal(t, models.PaymentFailed, freshAttempt.Status)

	var freshOrder models.Order
	require.NoError(t, db.First(&freshOrder, order.ID).Error)
	assert.Equal(t, models.OrderPending, freshOrder.Status)
	assert.Nil(t, freshOrder.ReceiptID)
}

func TestCallbackMatchesByExternalReferenceAlone(t *testing.T) {
	db := setupDB(t)
	seedOrder(t, db, "ORDER77", 250)
	attempt := seedAttempt(t, db, "", "ORDER77", 250)
	r := setupRouter()

	w := postJSON(r, "/api/payments/mpesa/callback", `{"success":true,"external_reference":"ORDER77","MpesaReceiptNumber":"QXZ9"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var freshAttempt models.PaymentAttempt
	require.NoError(t, db.First(&freshAttempt, attempt.ID).Error)
	assert.Equal(t, models.PaymentCompleted, freshAttempt.Status)

	var receipt models.Receipt
	require.NoError(t, db.Where("transaction_reference = ?", "QXZ9").First(&receipt).Error)
	assert.Equal(t, int64(250), receipt.Amount)
}

func TestCallbackWithUnparseableBodyStillAcknowledges(t *testing.T) {
	db := setupDB(t)
	r := setupRouter()

	w := postJSON(r, "/api/payments/mpesa/callback", `this is not json`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	var callbacks []models.PaymentCallback
	require.NoError(t, db.Find(&callbacks).Error)
	require.Len(t, callbacks, 1)
	assert.Equal(t, "this is not json", callbacks[0].RawPayload)
}

func TestReceiptEndpoint(t *testing.T) {
	db := setupDB(t)
	seedOrder(t, db, "ORDER123", 500)
	seedAttempt(t, db, "TXN1", "ORDER123", 500)
	r := setupRouter()

	// Before settlement the UI must see "not yet confirmed".
	w := getPath(r, "/api/orders/ORDER123/receipt")
	assert.Equal(t, http.StatusNotFound, w.Code)

	postJSON(r, "/api/payments/mpesa/callback", `{"success":true,"external_reference":"ORDER123","TransactionReference":"TXN1"}`)

	w = getPath(r, "/api/orders/ORDER123/receipt")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "TXN1")

	w = getPath(r, "/api/orders/MISSING/receipt")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
