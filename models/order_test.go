package models

import "testing"

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusConfirmed, OrderStatusPreparing, true},
		{OrderStatusPreparing, OrderStatusReady, true},
		{OrderStatusReady, OrderStatusServed, true},
		{OrderStatusServed, OrderStatusCompleted, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusServed, OrderStatusCancelled, true},

		{OrderStatusPending, OrderStatusPreparing, false},
		{OrderStatusPending, OrderStatusCompleted, false},
		{OrderStatusReady, OrderStatusConfirmed, false},
		{OrderStatusPending, OrderStatusPending, false},
		{OrderStatusCompleted, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusCompleted, OrderStatusCompleted, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("%s -> %s = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestParseOrderStatus(t *testing.T) {
	for _, s := range []string{"PENDING", "SERVED", "CANCELLED"} {
		if _, err := ParseOrderStatus(s); err != nil {
			t.Errorf("ParseOrderStatus(%q) failed: %v", s, err)
		}
	}
	for _, s := range []string{"", "pending", "SHIPPED"} {
		if _, err := ParseOrderStatus(s); err == nil {
			t.Errorf("ParseOrderStatus(%q) should fail", s)
		}
	}
}

func TestCanSettle(t *testing.T) {
	if !OrderStatusPending.CanSettle() || !OrderStatusServed.CanSettle() {
		t.Error("non-terminal orders must be settleable")
	}
	if OrderStatusCompleted.CanSettle() || OrderStatusCancelled.CanSettle() {
		t.Error("terminal orders must not settle again")
	}
}

func TestHoldsTable(t *testing.T) {
	tableID := "t-1"
	o := Order{TableID: &tableID, OrderType: OrderTypeDineIn, Status: OrderStatusPreparing}
	if !o.HoldsTable() {
		t.Error("active dine-in order with a table should hold it")
	}
	o.OrderType = OrderTypeTakeaway
	if o.HoldsTable() {
		t.Error("takeaway order never holds a table")
	}
	o.OrderType = OrderTypeDineIn
	o.Status = OrderStatusCompleted
	if o.HoldsTable() {
		t.Error("completed order must release its table")
	}
}
