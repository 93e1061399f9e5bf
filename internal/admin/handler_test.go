package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"pharmacy-store/internal/migrate"
	"pharmacy-store/internal/models"
	"pharmacy-store/internal/schema"
	"pharmacy-store/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	events []*models.EntityChangedEvent
}

func (p *recordingPublisher) PublishEntityChanged(ctx context.Context, event *models.EntityChangedEvent) error {
	p.events = append(p.events, event)
	return nil
}

type consoleFixture struct {
	router    *gin.Engine
	store     *store.Store
	publisher *recordingPublisher
	customer  *models.Customer
	product   *models.Product
	cart      *models.Cart
}

func setupConsole(t *testing.T, readOnly bool) *consoleFixture {
	t.Helper()

	db, err := store.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	runner, err := migrate.NewRunner(db)
	require.NoError(t, err)
	_, err = runner.Up(context.Background())
	require.NoError(t, err)

	f := &consoleFixture{store: store.New(db), publisher: &recordingPublisher{}}
	ctx := context.Background()

	shop := &models.MedicineShop{Name: "Corner Pharmacy", Address: "12 Main St"}
	require.NoError(t, f.store.CreateShop(ctx, shop))
	f.customer = &models.Customer{Name: "Asha", Address: "4 Lake Road", Pincode: "560001", Age: 34}
	require.NoError(t, f.store.CreateCustomer(ctx, f.customer))
	f.product = &models.Product{
		Name:              "Paracetamol",
		Type:              "tablet",
		Quantity:          "10 strips",
		Price:             decimal.RequireFromString("19.99"),
		CommissionPercent: decimal.RequireFromString("5.00"),
		ShopID:            shop.ID,
	}
	require.NoError(t, f.store.CreateProduct(ctx, f.product))
	f.cart = &models.Cart{CustomerID: f.customer.ID}
	require.NoError(t, f.store.CreateCart(ctx, f.cart))
	_, err = f.store.AddCartItem(ctx, f.cart.ID, f.product.ID, 2)
	require.NoError(t, err)

	deps := Deps{DB: db, Reader: f.store, Publisher: f.publisher}
	if !readOnly {
		deps.Writer = f.store
	}
	f.router = gin.New()
	NewHandler(deps).SetupRoutes(f.router)
	return f
}

func (f *consoleFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthAndReady(t *testing.T) {
	f := setupConsole(t, false)

	w := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["read_only"])

	w = f.do(t, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListEntities(t *testing.T) {
	f := setupConsole(t, false)

	w := f.do(t, http.MethodGet, "/admin/entities", nil)
	require.Equal(t, http.StatusOK, w.Code)

	entities := decode(t, w)["entities"].([]interface{})
	assert.Len(t, entities, len(schema.Tables()))
}

func TestListAndGetRows(t *testing.T) {
	f := setupConsole(t, false)

	w := f.do(t, http.MethodGet, "/admin/entities/Product?limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(1), body["total"])
	assert.Len(t, body["rows"], 1)

	w = f.do(t, http.MethodGet, "/admin/entities/customer/"+f.customer.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Asha", decode(t, w)["name"])

	w = f.do(t, http.MethodGet, "/admin/entities/Customer/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodGet, "/admin/entities/Customer/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/admin/entities/Order", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodGet, "/admin/entities/Product?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateRow(t *testing.T) {
	f := setupConsole(t, false)
	path := "/admin/entities/Customer/" + f.customer.ID.String()

	w := f.do(t, http.MethodPatch, path, map[string]interface{}{"gender": "FEMALE", "age": 35})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "FEMALE", body["gender"])
	assert.Equal(t, float64(35), body["age"])

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, "Customer", f.publisher.events[0].Entity)
	assert.Equal(t, models.ChangeUpdated, f.publisher.events[0].Operation)

	w = f.do(t, http.MethodPatch, path, map[string]interface{}{"gender": "UNKNOWN"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPatch, path, map[string]interface{}{"customer_id": uuid.NewString()})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPatch, path, map[string]interface{}{"doctor_id": uuid.NewString()})
	assert.Equal(t, http.StatusConflict, w.Code)

	assert.Len(t, f.publisher.events, 1)
}

func TestDeleteRowCascades(t *testing.T) {
	f := setupConsole(t, false)

	w := f.do(t, http.MethodDelete, "/admin/entities/Customer/"+f.customer.ID.String(), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	n, err := f.store.Count(context.Background(), schema.CartItemsTable)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, models.ChangeDeleted, f.publisher.events[0].Operation)

	w = f.do(t, http.MethodDelete, "/admin/entities/Customer/"+f.customer.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReadOnlyConsoleRefusesWrites(t *testing.T) {
	f := setupConsole(t, true)
	path := "/admin/entities/Product/" + strconv.FormatInt(f.product.ID, 10)

	w := f.do(t, http.MethodPatch, path, map[string]interface{}{"product_name": "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, f.publisher.events)
}

func TestUpdatePaymentFollowsStatusRules(t *testing.T) {
	f := setupConsole(t, false)
	ctx := context.Background()

	p := &models.Payment{
		TransactionID: "txn-42",
		TotalPrice:    decimal.RequireFromString("39.98"),
		Method:        models.PaymentCard,
		CartID:        f.cart.ID,
		CustomerID:    f.customer.ID,
	}
	require.NoError(t, f.store.CreatePayment(ctx, p))
	path := "/admin/entities/Payment/" + p.ID.String()

	w := f.do(t, http.MethodPatch, path, map[string]interface{}{"total_price": "0.01"})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = f.do(t, http.MethodPatch, path, map[string]interface{}{"transaction_id": "txn-forged"})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = f.do(t, http.MethodPatch, path, map[string]interface{}{"payment_status": "COMPLETED", "total_price": "0.01"})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = f.do(t, http.MethodPatch, path, map[string]interface{}{"payment_date": "2024-03-01T10:00:00Z"})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = f.do(t, http.MethodPatch, path, map[string]interface{}{
		"payment_status": "COMPLETED",
		"payment_date":   "2024-03-01T10:00:00Z",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "COMPLETED", decode(t, w)["payment_status"])

	w = f.do(t, http.MethodPatch, path, map[string]interface{}{"payment_status": "PENDING"})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	w = f.do(t, http.MethodPatch, path, map[string]interface{}{"payment_status": "FAILED"})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	got, err := f.store.GetPayment(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, got.Status)
	assert.Equal(t, "txn-42", got.TransactionID)
	assert.True(t, decimal.RequireFromString("39.98").Equal(got.TotalPrice))

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, "Payment", f.publisher.events[0].Entity)
}

func TestUpdateRowValidatesModel(t *testing.T) {
	f := setupConsole(t, false)
	ctx := context.Background()

	customerPath := "/admin/entities/Customer/" + f.customer.ID.String()
	w := f.do(t, http.MethodPatch, customerPath, map[string]interface{}{"pincode": "ab-cd"})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	customer, err := f.store.GetCustomer(ctx, f.customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "560001", customer.Pincode)

	productPath := "/admin/entities/Product/" + strconv.FormatInt(f.product.ID, 10)
	w = f.do(t, http.MethodPatch, productPath, map[string]interface{}{
		"product_mfg_date": "2024-06-01",
		"product_exp_date": "2024-01-01",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = f.do(t, http.MethodPatch, productPath, map[string]interface{}{"product_mfg_date": "2024-06-01"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Checked against the stored manufacturing date.
	w = f.do(t, http.MethodPatch, productPath, map[string]interface{}{"product_exp_date": "2024-05-31"})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = f.do(t, http.MethodPatch, productPath, map[string]interface{}{"product_exp_date": "2026-06-01"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	product, err := f.store.GetProduct(ctx, f.product.ID)
	require.NoError(t, err)
	require.NotNil(t, product.ExpDate)
	assert.Equal(t, 2026, product.ExpDate.Year())

	assert.Len(t, f.publisher.events, 2)
}
