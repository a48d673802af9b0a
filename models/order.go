package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string
type OrderType string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusPreparing OrderStatus = "PREPARING"
	OrderStatusReady     OrderStatus = "READY"
	OrderStatusServed    OrderStatus = "SERVED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"

	OrderTypeDineIn   OrderType = "DINE_IN"
	OrderTypeTakeaway OrderType = "TAKEAWAY"
	OrderTypeDelivery OrderType = "DELIVERY"
)

// orderStages is the forward path every order walks. CANCELLED sits outside it.
var orderStages = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusServed,
	OrderStatusCompleted,
}

// ActiveOrderStatuses are the statuses of an order still holding its table.
var ActiveOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusServed,
}

// KitchenOrderStatuses are the statuses shown on the kitchen queue.
var KitchenOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(s)
	if st == OrderStatusCancelled || st.Stage() >= 0 {
		return st, nil
	}
	return "", fmt.Errorf("invalid order status %q", s)
}

func ParseOrderType(s string) (OrderType, error) {
	switch t := OrderType(s); t {
	case OrderTypeDineIn, OrderTypeTakeaway, OrderTypeDelivery:
		return t, nil
	}
	return "", fmt.Errorf("invalid order type %q", s)
}

// Stage is the position of s on the forward path, -1 for CANCELLED or unknown values.
func (s OrderStatus) Stage() int {
	for i, st := range orderStages {
		if st == s {
			return i
		}
	}
	return -1
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// CanTransitionTo accepts the next forward stage, or CANCELLED from any
// non-terminal status. Nothing leaves a terminal status.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	i := s.Stage()
	return i >= 0 && i+1 < len(orderStages) && orderStages[i+1] == next
}

// CanSettle reports whether a full payment may close the order directly.
func (s OrderStatus) CanSettle() bool {
	return !s.IsTerminal()
}

type Order struct {
	ID            string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OrderNumber   string          `gorm:"uniqueIndex;not null" json:"orderNumber"`
	TableID       *string         `gorm:"type:varchar(36);index" json:"tableId"`
	Table         *Table          `gorm:"foreignKey:TableID" json:"table,omitempty"`
	CustomerName  *string         `gorm:"size:100" json:"customerName"`
	CustomerPhone *string         `gorm:"size:20" json:"customerPhone"`
	OrderType     OrderType       `gorm:"type:varchar(20);not null" json:"orderType"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Payments      []Payment       `gorm:"foreignKey:OrderID" json:"payments,omitempty"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	Tax           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"tax"`
	Total         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	Status        OrderStatus     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	SpecialNotes  *string         `gorm:"size:500" json:"specialNotes"`
	CreatedBy     string          `gorm:"type:varchar(36);index;not null" json:"createdBy"`
	Creator       *User           `gorm:"foreignKey:CreatedBy" json:"user,omitempty"`
	CreatedAt     time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	CompletedAt   *time.Time      `json:"completedAt"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// HoldsTable reports whether the order keeps its table OCCUPIED.
func (o Order) HoldsTable() bool {
	return o.TableID != nil && o.OrderType == OrderTypeDineIn && !o.Status.IsTerminal()
}

type OrderItem struct {
	ID         string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OrderID    string          `gorm:"type:varchar(36);index;not null" json:"orderId"`
	MenuItemID string          `gorm:"type:varchar(36);index;not null" json:"menuItemId"`
	MenuItem   *MenuItem       `gorm:"foreignKey:MenuItemID" json:"menuItem,omitempty"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unitPrice"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"totalPrice"`
	Notes      *string         `gorm:"size:200" json:"notes"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

// OrderSequence is the per-day counter behind order numbers.
type OrderSequence struct {
	Day       string `gorm:"primaryKey;type:varchar(8)"`
	LastValue int    `gorm:"not null"`
}
