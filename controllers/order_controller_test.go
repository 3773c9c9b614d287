package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"order-service/controllers"
	"order-service/models"
	"order-service/routes"
	"order-service/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- Mock OrderService ---

type mockOrderService struct {
	createFn func(ctx context.Context, userID uuid.UUID, userEmail string, req *models.CreateOrderRequest) (*models.Order, *services.ServiceError)
	payFn    func(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool, req *models.PayOrderRequest) (*models.Order, *services.ServiceError)
	statusFn func(ctx context.Context, orderID uuid.UUID, req *models.UpdateStatusRequest) (*models.Order, *services.ServiceError)
	cancelFn func(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool) (*models.Order, *services.ServiceError)
	getFn    func(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool) (*models.Order, *services.ServiceError)
	listFn   func(ctx context.Context, userID uuid.UUID, page, limit int) (*services.OrderListResponse, *services.ServiceError)
	allFn    func(ctx context.Context, page, limit int) (*services.OrderListResponse, *services.ServiceError)
	statsFn  func(ctx context.Context) (*models.OrderStats, *services.ServiceError)
}

func (m *mockOrderService) CreateOrder(ctx context.Context, userID uuid.UUID, userEmail string, req *models.CreateOrderRequest) (*models.Order, *services.ServiceError) {
	return m.createFn(ctx, userID, userEmail, req)
}
func (m *mockOrderService) MarkAsPaid(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool, req *models.PayOrderRequest) (*models.Order, *services.ServiceError) {
	return m.payFn(ctx, orderID, userID, isAdmin, req)
}
func (m *mockOrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, req *models.UpdateStatusRequest) (*models.Order, *services.ServiceError) {
	return m.statusFn(ctx, orderID, req)
}
func (m *mockOrderService) CancelOrder(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool) (*models.Order, *services.ServiceError) {
	return m.cancelFn(ctx, orderID, userID, isAdmin)
}
func (m *mockOrderService) GetOrderByID(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool) (*models.Order, *services.ServiceError) {
	return m.getFn(ctx, orderID, userID, isAdmin)
}
func (m *mockOrderService) GetUserOrders(ctx context.Context, userID uuid.UUID, page, limit int) (*services.OrderListResponse, *services.ServiceError) {
	return m.listFn(ctx, userID, page, limit)
}
func (m *mockOrderService) GetAllOrders(ctx context.Context, page, limit int) (*services.OrderListResponse, *services.ServiceError) {
	return m.allFn(ctx, page, limit)
}
func (m *mockOrderService) GetOrderStats(ctx context.Context) (*models.OrderStats, *services.ServiceError) {
	return m.statsFn(ctx)
}

// --- Helpers ---

func setupRouter(svc services.OrderService) *gin.Engine {
	r := gin.New()
	oc := controllers.NewOrderController(svc)
	routes.RegisterOrderRoutes(r, oc)
	return r
}

func authedRequest(method, path string, body []byte, role string) *http.Request {
	var req *http.Request
	if body != nil {
		req, _ = http.NewRequest(method, path, bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}
	req.Header.Set("X-User-ID", uuid.NewString())
	req.Header.Set("X-User-Role", role)
	req.Header.Set("X-User-Email", "customer@example.com")
	return req
}

func sampleOrder() *models.Order {
	return &models.Order{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		OrderNumber: "ORD-20260830-abcd1234",
		Status:      models.StatusPending,
		TotalPrice:  decimal.RequireFromString("93.25"),
	}
}

func createOrderBody() []byte {
	body, _ := json.Marshal(models.CreateOrderRequest{
		Items: []models.CreateOrderItem{{ProductID: uuid.New(), Quantity: 2}},
		ShippingAddress: models.ShippingAddress{
			FullName:    "Ada Lovelace",
			Address:     "12 Byron St",
			City:        "London",
			Country:     "UK",
			PhoneNumber: "+44 20 1234 5678",
		},
		PaymentMethod: models.PaymentCreditCard,
	})
	return body
}

// --- Tests ---

func TestController_CreateOrder_Success(t *testing.T) {
	svc := &mockOrderService{
		createFn: func(_ context.Context, _ uuid.UUID, _ string, _ *models.CreateOrderRequest) (*models.Order, *services.ServiceError) {
			return sampleOrder(), nil
		},
	}
	r := setupRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(http.MethodPost, "/orders", createOrderBody(), "user"))

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NotNil(t, resp["order"])
}

func TestController_CreateOrder_Unauthenticated(t *testing.T) {
	r := setupRouter(&mockOrderService{})

	req, _ := http.NewRequest(http.MethodPost, "/orders", bytes.NewBuffer(createOrderBody()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestController_CreateOrder_BadRequest(t *testing.T) {
	r := setupRouter(&mockOrderService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(http.MethodPost, "/orders", []byte(`{"items":[]}`), "user"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestController_CreateOrder_Conflict(t *testing.T) {
	svc := &mockOrderService{
		createFn: func(_ context.Context, _ uuid.UUID, _ string, _ *models.CreateOrderRequest) (*models.Order, *services.ServiceError) {
			return nil, &services.ServiceError{StatusCode: 409, Message: "Insufficient stock"}
		},
	}
	r := setupRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(http.MethodPost, "/orders", createOrderBody(), "user"))

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestController_GetOrderByID_InvalidID(t *testing.T) {
	r := setupRouter(&mockOrderService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(http.MethodGet, "/orders/not-a-uuid", nil, "user"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestController_GetOrderByID_Forbidden(t *testing.T) {
	svc := &mockOrderService{
		getFn: func(_ context.Context, _, _ uuid.UUID, _ bool) (*models.Order, *services.ServiceError) {
			return nil, &services.ServiceError{StatusCode: 403, Message: "You do not have access to this order"}
		},
	}
	r := setupRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(http.MethodGet, "/orders/"+uuid.NewString(), nil, "user"))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestController_PayOrder_Success(t *testing.T) {
	svc := &mockOrderService{
		payFn: func(_ context.Context, _, _ uuid.UUID, _ bool, _ *models.PayOrderRequest) (*models.Order, *services.ServiceError) {
			o := sampleOrder()
			o.IsPaid = true
			o.Status = models.StatusProcessing
			return o, nil
		},
	}
	r := setupRouter(svc)

	body, _ := json.Marshal(models.PayOrderRequest{
		PaymentResult: models.PaymentResult{PaymentID: "pay_123", PaymentStatus: "COMPLETED"},
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(http.MethodPut, "/orders/"+uuid.NewString()+"/pay", body, "user"))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestController_PayOrder_EmptyBody(t *testing.T) {
	svc := &mockOrderService{
		payFn: func(_ context.Context, _, _ uuid.UUID, _ bool, req *models.PayOrderRequest) (*models.Order, *services.ServiceError) {
			assert.Empty(t, req.PaymentResult.PaymentID)
			o := sampleOrder()
			o.IsPaid = true
			o.Status = models.StatusProcessing
			return o, nil
		},
	}
	r := setupRouter(svc)

	// Cash-on-delivery payers send no payload at all.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(http.MethodPut, "/orders/"+uuid.NewString()+"/pay", nil, "user"))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestController_UpdateStatus_AdminOnly(t *testing.T) {
	svc := &mockOrderService{
		statusFn: func(_ context.Context, _ uuid.UUID, _ *models.UpdateStatusRequest) (*models.Order, *services.ServiceError) {
			o := sampleOrder()
			o.Status = models.StatusShipped
			return o, nil
		},
	}
	r := setupRouter(svc)

	body, _ := json.Marshal(models.UpdateStatusRequest{Status: models.StatusShipped, TrackingNumber: "TRK-0001"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(http.MethodPut, "/orders/"+uuid.NewString()+"/status", body, "user"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(http.MethodPut, "/orders/"+uuid.NewString()+"/status", body, "admin"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestController_CancelOrder_Success(t *testing.T) {
	svc := &mockOrderService{
		cancelFn: func(_ context.Context, _, _ uuid.UUID, _ bool) (*models.Order, *services.ServiceError) {
			o := sampleOrder()
			o.Status = models.StatusCancelled
			return o, nil
		},
	}
	r := setupRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(http.MethodPut, "/orders/"+uuid.NewString()+"/cancel", nil, "user"))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestController_GetAllOrders_AdminOnly(t *testing.T) {
	svc := &mockOrderService{
		allFn: func(_ context.Context, page, limit int) (*services.OrderListResponse, *services.ServiceError) {
			return &services.OrderListResponse{
				Orders: []models.Order{*sampleOrder()},
				Meta:   services.MetaData{Page: page, Limit: limit, TotalOrders: 1, TotalPages: 1},
			}, nil
		},
	}
	r := setupRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(http.MethodGet, "/admin/orders", nil, "user"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(http.MethodGet, "/admin/orders?page=1&limit=10", nil, "admin"))
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NotNil(t, resp["orders"])
}

func TestController_GetOrderStats(t *testing.T) {
	svc := &mockOrderService{
		statsFn: func(_ context.Context) (*models.OrderStats, *services.ServiceError) {
			return &models.OrderStats{
				TotalOrders: 3,
				TotalSales:  decimal.RequireFromString("250.00"),
				StatusCounts: map[models.OrderStatus]int64{
					models.StatusPending:   2,
					models.StatusDelivered: 1,
				},
			}, nil
		},
	}
	r := setupRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(http.MethodGet, "/admin/orders/stats", nil, "admin"))

	assert.Equal(t, http.StatusOK, w.Code)
}
