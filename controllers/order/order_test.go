package orderControllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/restaurant-pos-api/auth"
	"github.com/junaidrashid-git/restaurant-pos-api/metrics"
	"github.com/junaidrashid-git/restaurant-pos-api/middleware"
	"github.com/junaidrashid-git/restaurant-pos-api/models"
	"github.com/junaidrashid-git/restaurant-pos-api/realtime"
	"github.com/junaidrashid-git/restaurant-pos-api/testutil"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fixture struct {
	db     *gorm.DB
	svc    *Service
	events *realtime.Recorder
	waiter models.User
	momo   models.MenuItem
	chowm  models.MenuItem
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testutil.NewDB(t)
	events := &realtime.Recorder{}
	svc := NewService(db, testutil.Logger(), events, metrics.New(), decimal.RequireFromString("0.13"))
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.Local) }
	return fixture{
		db:     db,
		svc:    svc,
		events: events,
		waiter: testutil.CreateUser(t, db, models.RoleWaiter, "waiter@restaurant.com", "waiter123"),
		momo:   testutil.CreateMenuItem(t, db, "Chicken Momo", "250"),
		chowm:  testutil.CreateMenuItem(t, db, "Veg Chowmein", "180"),
	}
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func strPtr(s string) *string { return &s }

func (f fixture) standardItems() []OrderItemRequest {
	return []OrderItemRequest{
		{MenuItemID: f.momo.ID, Quantity: 2, UnitPrice: price("250")},
		{MenuItemID: f.chowm.ID, Quantity: 1, UnitPrice: price("180")},
	}
}

func (f fixture) create(t *testing.T, req CreateOrderRequest) models.Order {
	t.Helper()
	order, err := f.svc.CreateOrder(context.Background(), f.waiter, req)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	return order
}

func (f fixture) table(t *testing.T, id string) models.Table {
	t.Helper()
	var table models.Table
	if err := f.db.First(&table, "id = ?", id).Error; err != nil {
		t.Fatal(err)
	}
	return table
}

func TestCreateOrderTotalsAndNumber(t *testing.T) {
	f := newFixture(t)

	order := f.create(t, CreateOrderRequest{OrderType: "TAKEAWAY", Items: f.standardItems()})

	if !order.Subtotal.Equal(decimal.RequireFromString("680")) {
		t.Errorf("subtotal = %s, want 680", order.Subtotal)
	}
	if !order.Tax.Equal(decimal.RequireFromString("88.40")) {
		t.Errorf("tax = %s, want 88.40", order.Tax)
	}
	if !order.Total.Equal(decimal.RequireFromString("768.40")) {
		t.Errorf("total = %s, want 768.40", order.Total)
	}
	if !order.Total.Equal(order.Subtotal.Add(order.Tax)) {
		t.Error("total must equal subtotal + tax")
	}
	if order.OrderNumber != "ORD20260314001" {
		t.Errorf("order number = %s", order.OrderNumber)
	}
	if order.Status != models.OrderStatusPending || len(order.Items) != 2 {
		t.Fatalf("order = %+v", order)
	}
	if !order.Items[0].TotalPrice.Equal(decimal.RequireFromString("500")) {
		t.Errorf("line total = %s, want 500", order.Items[0].TotalPrice)
	}

	second := f.create(t, CreateOrderRequest{OrderType: "DELIVERY", Items: f.standardItems()})
	if second.OrderNumber != "ORD20260314002" {
		t.Errorf("second order number = %s", second.OrderNumber)
	}

	f.svc.now = func() time.Time { return time.Date(2026, 3, 15, 9, 0, 0, 0, time.Local) }
	nextDay := f.create(t, CreateOrderRequest{OrderType: "DELIVERY", Items: f.standardItems()})
	if nextDay.OrderNumber != "ORD20260315001" {
		t.Errorf("next day order number = %s", nextDay.OrderNumber)
	}

	events := f.events.Find(realtime.RoomKitchen, realtime.EventNewOrder)
	if len(events) != 3 {
		t.Fatalf("kitchen got %d new-order events, want 3", len(events))
	}
	payload := events[0].Payload.(gin.H)
	if payload["orderNumber"] != "ORD20260314001" {
		t.Errorf("event payload = %v", payload)
	}
}

func TestTotalsRoundsTaxToCents(t *testing.T) {
	items := []OrderItemRequest{{Quantity: 3, UnitPrice: price("9.99")}}
	subtotal, tax, total := Totals(items, decimal.RequireFromString("0.13"))
	if subtotal.String() != "29.97" || tax.String() != "3.9" || total.String() != "33.87" {
		t.Fatalf("got %s / %s / %s", subtotal, tax, total)
	}
	if got := FormatOrderNumber(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), 1234); got != "ORD202601021234" {
		t.Fatalf("wide sequence = %s", got)
	}
}

func TestCreateDineInClaimsTable(t *testing.T) {
	f := newFixture(t)
	table := testutil.CreateTable(t, f.db, 5, models.TableAvailable)

	order := f.create(t, CreateOrderRequest{TableID: &table.ID, OrderType: "DINE_IN", Items: f.standardItems()})

	got := f.table(t, table.ID)
	if got.Status != models.TableOccupied {
		t.Errorf("table status = %s, want OCCUPIED", got.Status)
	}
	if got.CurrentOrderID == nil || *got.CurrentOrderID != order.ID {
		t.Errorf("table current order = %v, want %s", got.CurrentOrderID, order.ID)
	}

	_, err := f.svc.CreateOrder(context.Background(), f.waiter, CreateOrderRequest{TableID: &table.ID, OrderType: "DINE_IN", Items: f.standardItems()})
	if !errors.Is(err, ErrTableUnavailable) {
		t.Fatalf("second order on occupied table: %v", err)
	}
	if got := f.table(t, table.ID); *got.CurrentOrderID != order.ID {
		t.Error("failed order must not touch the table")
	}
}

func TestCreateOrderRejectsUnavailableTable(t *testing.T) {
	f := newFixture(t)
	for i, status := range []models.TableStatus{models.TableReserved, models.TableCleaning, models.TableOccupied} {
		table := testutil.CreateTable(t, f.db, 10+i, status)

		_, err := f.svc.CreateOrder(context.Background(), f.waiter, CreateOrderRequest{TableID: &table.ID, OrderType: "DINE_IN", Items: f.standardItems()})
		if !errors.Is(err, ErrTableUnavailable) {
			t.Fatalf("%s: err = %v", status, err)
		}
		if got := f.table(t, table.ID); got.Status != status || got.CurrentOrderID != nil {
			t.Fatalf("%s: table changed to %+v", status, got)
		}
	}

	var count int64
	f.db.Model(&models.Order{}).Count(&count)
	if count != 0 {
		t.Fatalf("%d orders stored, want 0", count)
	}
}

func TestCreateTakeawayWithTableDoesNotClaim(t *testing.T) {
	f := newFixture(t)
	table := testutil.CreateTable(t, f.db, 3, models.TableAvailable)

	f.create(t, CreateOrderRequest{TableID: &table.ID, OrderType: "TAKEAWAY", Items: f.standardItems()})
	if got := f.table(t, table.ID); got.Status != models.TableAvailable {
		t.Fatalf("takeaway claimed the table: %s", got.Status)
	}
}

func TestCreateOrderMenuItemChecks(t *testing.T) {
	f := newFixture(t)
	f.db.Model(&f.chowm).Update("is_active", false)

	_, err := f.svc.CreateOrder(context.Background(), f.waiter, CreateOrderRequest{OrderType: "TAKEAWAY", Items: f.standardItems()})
	if err == nil || !strings.Contains(err.Error(), "Veg Chowmein is not available") {
		t.Fatalf("inactive item: %v", err)
	}

	missing := []OrderItemRequest{{MenuItemID: "00000000-0000-0000-0000-000000000000", Quantity: 1, UnitPrice: price("1")}}
	_, err = f.svc.CreateOrder(context.Background(), f.waiter, CreateOrderRequest{OrderType: "TAKEAWAY", Items: missing})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("missing item: %v", err)
	}

	var seq int64
	f.db.Model(&models.OrderSequence{}).Count(&seq)
	if seq != 0 {
		t.Error("rejected orders must not consume a sequence number")
	}
}

func TestUpdateOrderTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	table := testutil.CreateTable(t, f.db, 1, models.TableAvailable)
	order := f.create(t, CreateOrderRequest{TableID: &table.ID, OrderType: "DINE_IN", Items: f.standardItems()})

	if _, err := f.svc.UpdateOrder(ctx, order.ID, UpdateOrderRequest{Status: strPtr("READY")}); err == nil ||
		!strings.Contains(err.Error(), "Invalid status transition from PENDING to READY") {
		t.Fatalf("skipping stages: %v", err)
	}

	for _, st := range []string{"CONFIRMED", "PREPARING", "READY", "SERVED"} {
		updated, err := f.svc.UpdateOrder(ctx, order.ID, UpdateOrderRequest{Status: strPtr(st)})
		if err != nil {
			t.Fatalf("-> %s: %v", st, err)
		}
		if string(updated.Status) != st {
			t.Fatalf("status = %s, want %s", updated.Status, st)
		}
	}
	if got := f.table(t, table.ID); got.Status != models.TableOccupied {
		t.Fatalf("table released early: %s", got.Status)
	}

	done, err := f.svc.UpdateOrder(ctx, order.ID, UpdateOrderRequest{Status: strPtr("COMPLETED"), SpecialNotes: strPtr("thanks")})
	if err != nil {
		t.Fatal(err)
	}
	if done.CompletedAt == nil || done.SpecialNotes == nil || *done.SpecialNotes != "thanks" {
		t.Fatalf("completed order = %+v", done)
	}
	if got := f.table(t, table.ID); got.Status != models.TableAvailable || got.CurrentOrderID != nil {
		t.Fatalf("table after completion = %+v", got)
	}

	if _, err := f.svc.UpdateOrder(ctx, order.ID, UpdateOrderRequest{Status: strPtr("CANCELLED")}); err == nil {
		t.Fatal("a completed order must not be cancelled")
	}
	if _, err := f.svc.UpdateOrder(ctx, "missing", UpdateOrderRequest{Status: strPtr("CONFIRMED")}); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("missing order: %v", err)
	}

	updates := f.events.Find(realtime.RoomWaiter, realtime.EventOrderUpdated)
	if len(updates) != 5 {
		t.Fatalf("waiter got %d order-updated events, want 5", len(updates))
	}
}

func TestCancelOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	table := testutil.CreateTable(t, f.db, 2, models.TableAvailable)
	order := f.create(t, CreateOrderRequest{TableID: &table.ID, OrderType: "DINE_IN", Items: f.standardItems()})

	if err := f.svc.CancelOrder(ctx, order.ID); err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	var got models.Order
	f.db.First(&got, "id = ?", order.ID)
	if got.Status != models.OrderStatusCancelled || got.CompletedAt == nil {
		t.Fatalf("order after cancel = %+v", got)
	}
	if tbl := f.table(t, table.ID); tbl.Status != models.TableAvailable || tbl.CurrentOrderID != nil {
		t.Fatalf("table after cancel = %+v", tbl)
	}
	if len(f.events.Find(realtime.RoomKitchen, realtime.EventOrderUpdated)) != 1 {
		t.Fatal("kitchen not told about the cancellation")
	}

	if err := f.svc.CancelOrder(ctx, order.ID); !errors.Is(err, ErrOrderAlreadyClosed) {
		t.Fatalf("second cancel: %v", err)
	}
	if err := f.svc.CancelOrder(ctx, "missing"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("missing order: %v", err)
	}
}

func TestCancelOrderWithPaymentsIsRefused(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	table := testutil.CreateTable(t, f.db, 4, models.TableAvailable)
	order := f.create(t, CreateOrderRequest{TableID: &table.ID, OrderType: "DINE_IN", Items: f.standardItems()})

	payment := models.Payment{
		OrderID:     order.ID,
		Amount:      decimal.NewFromInt(100),
		Method:      models.PaymentMethodCash,
		Status:      models.PaymentStatusFailed,
		Gateway:     models.GatewayCash,
		ProcessedBy: f.waiter.ID,
	}
	if err := f.db.Create(&payment).Error; err != nil {
		t.Fatal(err)
	}

	if err := f.svc.CancelOrder(ctx, order.ID); !errors.Is(err, ErrCancelWithPayments) {
		t.Fatalf("CancelOrder = %v, want ErrCancelWithPayments", err)
	}
	if _, err := f.svc.UpdateOrder(ctx, order.ID, UpdateOrderRequest{Status: strPtr("CANCELLED")}); !errors.Is(err, ErrCancelWithPayments) {
		t.Fatalf("UpdateOrder(CANCELLED) = %v, want ErrCancelWithPayments", err)
	}

	var got models.Order
	f.db.First(&got, "id = ?", order.ID)
	if got.Status != models.OrderStatusPending {
		t.Fatalf("status = %s, want PENDING", got.Status)
	}
	if tbl := f.table(t, table.ID); tbl.Status != models.TableOccupied {
		t.Fatalf("table released: %s", tbl.Status)
	}
}

func TestKitchenQueueOrdering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.Local)
	mk := func(minute int, status string) models.Order {
		f.svc.now = func() time.Time { return base.Add(time.Duration(minute) * time.Minute) }
		o := f.create(t, CreateOrderRequest{OrderType: "TAKEAWAY", Items: f.standardItems()})
		f.db.Model(&models.Order{}).Where("id = ?", o.ID).Updates(map[string]any{
			"status":     status,
			"created_at": base.Add(time.Duration(minute) * time.Minute),
		})
		return o
	}

	preparingOld := mk(1, "PREPARING")
	pendingNew := mk(5, "PENDING")
	confirmed := mk(3, "CONFIRMED")
	pendingOld := mk(2, "PENDING")
	mk(0, "READY")
	mk(4, "CANCELLED")

	queue, err := f.svc.KitchenQueue(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{pendingOld.ID, pendingNew.ID, confirmed.ID, preparingOld.ID}
	if len(queue) != len(want) {
		t.Fatalf("queue has %d orders, want %d", len(queue), len(want))
	}
	for i, id := range want {
		if queue[i].ID != id {
			t.Fatalf("queue[%d] = %s (%s), want %s", i, queue[i].OrderNumber, queue[i].Status, id)
		}
	}
}

func TestListOrdersFiltersAndPaginates(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		f.create(t, CreateOrderRequest{OrderType: "TAKEAWAY", Items: f.standardItems()})
	}
	f.create(t, CreateOrderRequest{OrderType: "DELIVERY", Items: f.standardItems()})

	orders, total, err := f.svc.ListOrders(context.Background(), ListFilter{OrderType: "TAKEAWAY", Page: 1, Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(orders) != 2 {
		t.Fatalf("total=%d len=%d", total, len(orders))
	}
}

func TestCreateOrderHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newFixture(t)

	r := gin.New()
	r.Use(middleware.ErrorHandler(testutil.Logger()))
	r.POST("/api/orders", func(c *gin.Context) { auth.SetUser(c, f.waiter) }, f.svc.CreateOrderHandler())

	body := `{"orderType":"TAKEAWAY","items":[{"menuItemId":"` + f.momo.ID + `","quantity":2,"unitPrice":250},{"menuItemId":"` + f.chowm.ID + `","quantity":1,"unitPrice":180}]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var env struct {
		Success bool `json:"success"`
		Data    struct {
			Order struct {
				OrderNumber string          `json:"orderNumber"`
				Total       decimal.Decimal `json:"total"`
			} `json:"order"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if !env.Success || !env.Data.Order.Total.Equal(decimal.RequireFromString("768.40")) {
		t.Fatalf("response = %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{"orderType":"PICKUP","items":[]}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid body: %d", w.Code)
	}
}
