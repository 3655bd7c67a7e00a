package payments_test

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/DevNathanHub/Edau-sub000/handlers/payments"
	"github.com/DevNathanHub/Edau-sub000/models"
	"github.com/DevNathanHub/Edau-sub000/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupDB points the global connection at a fresh in-memory database. Handler
// tests must not run in parallel because of the shared global.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	utils.MigrateModels(db)
	utils.DB = db
	return db
}

func setupRouter() *gin.Engine {
	r := gin.New()
	payments.RegisterPaymentRoutes(r)
	return r
}

// stubGateway stands in for the M-Pesa aggregator, serving a canned status
// and body and counting how many calls reached it.
type stubGateway struct {
	server *httptest.Server
	hits   int
	status int
	body   string
}

func newStubGateway(t *testing.T, status int, body string) *stubGateway {
	t.Helper()
	g := &stubGateway{status: status, body: body}
	g.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.hits++
		w.WriteHeader(g.status)
		w.Write([]byte(g.body))
	}))
	t.Cleanup(g.server.Close)
	t.Setenv("MPESA_API_URL", g.server.URL)
	t.Setenv("MPESA_API_KEY", "test-key")
	return g
}

func seedOrder(t *testing.T, db *gorm.DB, orderNumber string, amount int64) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNumber:  orderNumber,
		CustomerName: "Jane Wanjiku",
		Amount:       amount,
		Status:       models.OrderPending,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func getPath(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
