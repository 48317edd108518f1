package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-pos/config"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type response struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func call(t *testing.T, h http.Handler, method, path string, body interface{}, token string) (int, response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var res response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res), w.Body.String())
	return w.Code, res
}

func into[T any](t *testing.T, res response) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(res.Data, &v))
	return v
}

func newTestApp(t *testing.T) *application {
	t.Helper()
	hash, err := utils.HashPIN("2468")
	require.NoError(t, err)

	app, err := setup(&config.Config{
		MaxTableNumber:     services.DefaultMaxTableNumber,
		BusyThreshold:      services.DefaultBusyThreshold,
		ArchiveDriver:      "sqlite",
		ArchiveDSN:         "file:" + t.Name() + "?mode=memory&cache=shared",
		StaffName:          "manager",
		StaffPINHash:       hash,
		RateLimitPerSecond: 100,
		RateLimitBurst:     20,
		CORSOrigin:         "*",
	})
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return app
}

// Order taken at the terminal, cooked through the kitchen endpoints, paid
// in cash and read back from the archive.
func TestEndToEndIntegration(t *testing.T) {
	app := newTestApp(t)
	r := app.Router

	code, res := call(t, r, http.MethodPost, "/login", map[string]string{"name": "manager", "pin": "2468"}, "")
	require.Equal(t, http.StatusOK, code, res.Message)
	token := into[map[string]string](t, res)["token"]
	require.NotEmpty(t, token)

	code, res = call(t, r, http.MethodPost, "/orders", map[string]string{"table_identifier": "table 4"}, "")
	require.Equal(t, http.StatusCreated, code, res.Message)
	orderID := into[models.OrderSnapshot](t, res).ID

	code, res = call(t, r, http.MethodPost, "/orders/current/items", map[string]interface{}{
		"menu_id":              10,
		"quantity":             2,
		"special_instructions": "no onions",
	}, "")
	require.Equal(t, http.StatusOK, code, res.Message)
	order := into[models.OrderSnapshot](t, res)
	assert.InDelta(t, 30.22, order.Total, 0.01)

	code, res = call(t, r, http.MethodPost, "/orders/current/send", nil, "")
	require.Equal(t, http.StatusOK, code, res.Message)

	code, res = call(t, r, http.MethodGet, "/kitchen/queue", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, into[services.KitchenQueueStatus](t, res).QueueLength)

	for _, status := range []string{"PREP_STARTED", "READY_FOR_PICKUP", "SERVED"} {
		code, res = call(t, r, http.MethodPatch, "/kitchen/tickets/"+strconv.Itoa(orderID), map[string]string{"status": status}, "")
		require.Equal(t, http.StatusOK, code, status+": "+res.Message)
	}

	code, res = call(t, r, http.MethodGet, "/orders/"+strconv.Itoa(orderID), nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, models.OrderStatusServed, into[models.OrderSnapshot](t, res).Status)

	code, res = call(t, r, http.MethodPost, "/payments", map[string]interface{}{
		"order_id": orderID,
		"method":   "cash",
		"amount":   40,
	}, "")
	require.Equal(t, http.StatusOK, code, res.Message)
	assert.True(t, into[models.PaymentResult](t, res).Success)

	code, res = call(t, r, http.MethodGet, "/orders/"+strconv.Itoa(orderID)+"/receipt", nil, "")
	require.Equal(t, http.StatusOK, code)
	receipt := into[models.Receipt](t, res)
	assert.Equal(t, models.ReceiptPaid, receipt.PaymentStatus)
	assert.InDelta(t, 9.78, receipt.Change, 0.01)

	code, res = call(t, r, http.MethodGet, "/admin/stats", nil, token)
	require.Equal(t, http.StatusOK, code)
	stats := into[services.BusinessStats](t, res)
	assert.Equal(t, 0, stats.ActiveOrders)
	assert.Equal(t, 1, stats.CompletedOrders)

	// the archive is written behind, so poll until the rows land
	var archived []models.OrderRecord
	require.Eventually(t, func() bool {
		archived = nil
		readArchive(r, "/admin/archive/orders", token, &archived)
		return len(archived) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, orderID, archived[0].OrderID)
	assert.Len(t, archived[0].Items, 1)

	require.Eventually(t, func() bool {
		var records []models.TransactionRecord
		readArchive(r, "/admin/archive/orders/"+strconv.Itoa(orderID)+"/transactions", token, &records)
		return len(records) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

// readArchive decodes the data of an archive listing, leaving out untouched on any error.
func readArchive(h http.Handler, path, token string, out interface{}) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		return
	}
	var res response
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		return
	}
	_ = json.Unmarshal(res.Data, out)
}

func TestManagerRoutesNeedToken(t *testing.T) {
	app := newTestApp(t)

	code, _ := call(t, app.Router, http.MethodGet, "/admin/stats", nil, "")
	assert.Equal(t, http.StatusUnauthorized, code)

	cashier, err := utils.GenerateToken("sam", models.RoleCashier)
	require.NoError(t, err)
	code, _ = call(t, app.Router, http.MethodGet, "/admin/stats", nil, cashier)
	assert.Equal(t, http.StatusForbidden, code)
}
