package orderControllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/restaurant-pos-api/apperror"
	"github.com/junaidrashid-git/restaurant-pos-api/auth"
	"github.com/junaidrashid-git/restaurant-pos-api/models"
	"github.com/junaidrashid-git/restaurant-pos-api/realtime"
	"github.com/junaidrashid-git/restaurant-pos-api/response"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrOrderNotFound      = apperror.NotFound("Order not found")
	ErrTableNotFound      = apperror.NotFound("Table not found")
	ErrTableUnavailable   = apperror.Conflict("Table is not available")
	ErrCancelWithPayments = apperror.Conflict("Cannot cancel order with payments")
	ErrOrderAlreadyClosed = apperror.Conflict("Order is already completed or cancelled")
	ErrInvalidUnitPrice   = apperror.BadRequest("Unit price cannot be negative")
	ErrNotAuthenticated   = apperror.Unauthorized("Authentication required")
)

// -------- Request Structs --------

type OrderItemRequest struct {
	MenuItemID string           `json:"menuItemId" binding:"required,uuid"`
	Quantity   int              `json:"quantity" binding:"required,min=1"`
	UnitPrice  *decimal.Decimal `json:"unitPrice" binding:"required"`
	Notes      *string          `json:"notes" binding:"omitempty,max=200"`
}

type CreateOrderRequest struct {
	TableID       *string            `json:"tableId" binding:"omitempty,uuid"`
	CustomerName  *string            `json:"customerName" binding:"omitempty,max=100"`
	CustomerPhone *string            `json:"customerPhone" binding:"omitempty,max=20"`
	OrderType     string             `json:"orderType" binding:"required,oneof=DINE_IN TAKEAWAY DELIVERY"`
	Items         []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	SpecialNotes  *string            `json:"specialNotes" binding:"omitempty,max=500"`
}

type UpdateOrderRequest struct {
	Status       *string `json:"status" binding:"omitempty,oneof=PENDING CONFIRMED PREPARING READY SERVED COMPLETED CANCELLED"`
	SpecialNotes *string `json:"specialNotes" binding:"omitempty,max=500"`
}

// -------- Helpers --------

func (r OrderItemRequest) price() decimal.Decimal {
	if r.UnitPrice == nil {
		return decimal.Zero
	}
	return *r.UnitPrice
}

// Totals computes subtotal, tax rounded to cents, and total.
func Totals(items []OrderItemRequest, taxRate decimal.Decimal) (subtotal, tax, total decimal.Decimal) {
	subtotal = decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.price().Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	tax = subtotal.Mul(taxRate).Round(2)
	return subtotal, tax, subtotal.Add(tax)
}

// FormatOrderNumber renders ORD + YYYYMMDD + a sequence padded to three digits.
func FormatOrderNumber(day time.Time, seq int) string {
	return fmt.Sprintf("ORD%s%03d", day.Format("20060102"), seq)
}

// nextOrderNumber bumps the per-day counter inside tx. The upsert holds the
// counter row until tx ends, so concurrent creations get distinct values.
func nextOrderNumber(tx *gorm.DB, now time.Time) (string, error) {
	day := now.Format("20060102")
	seq := models.OrderSequence{Day: day, LastValue: 1}
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "day"}},
		DoUpdates: clause.Assignments(map[string]any{
			"last_value": gorm.Expr("order_sequences.last_value + 1"),
		}),
	}).Create(&seq).Error
	if err != nil {
		return "", fmt.Errorf("bump order sequence: %w", err)
	}
	if err := tx.First(&seq, "day = ?", day).Error; err != nil {
		return "", fmt.Errorf("read order sequence: %w", err)
	}
	return FormatOrderNumber(now, seq.LastValue), nil
}

func (s *Service) loadOrder(ctx context.Context, id string) (models.Order, error) {
	var order models.Order
	err := orderDetail(s.db.WithContext(ctx)).First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return order, ErrOrderNotFound
	}
	return order, err
}

// -------- Core Logic --------

// CreateOrder validates the lines, prices them, and stores the order. A
// DINE_IN order claims its table in the same transaction.
func (s *Service) CreateOrder(ctx context.Context, user models.User, req CreateOrderRequest) (models.Order, error) {
	orderType, err := models.ParseOrderType(req.OrderType)
	if err != nil {
		return models.Order{}, apperror.BadRequest("%s", err.Error())
	}
	for _, item := range req.Items {
		if item.price().IsNegative() {
			return models.Order{}, ErrInvalidUnitPrice
		}
	}

	subtotal, tax, total := Totals(req.Items, s.taxRate)
	now := s.now()

	var orderID string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.TableID != nil {
			var table models.Table
			err := tx.First(&table, "id = ?", *req.TableID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTableNotFound
			}
			if err != nil {
				return err
			}
			if table.Status != models.TableAvailable {
				return ErrTableUnavailable
			}
		}

		items := make([]models.OrderItem, 0, len(req.Items))
		for _, line := range req.Items {
			var menuItem models.MenuItem
			err := tx.First(&menuItem, "id = ?", line.MenuItemID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Menu item %s not found", line.MenuItemID)
			}
			if err != nil {
				return err
			}
			if !menuItem.IsActive {
				return apperror.Conflict("Menu item %s is not available", menuItem.Name)
			}

			items = append(items, models.OrderItem{
				MenuItemID: line.MenuItemID,
				Quantity:   line.Quantity,
				UnitPrice:  line.price(),
				TotalPrice: line.price().Mul(decimal.NewFromInt(int64(line.Quantity))),
				Notes:      line.Notes,
			})
		}

		orderNumber, err := nextOrderNumber(tx, now)
		if err != nil {
			return err
		}

		order := models.Order{
			OrderNumber:   orderNumber,
			TableID:       req.TableID,
			CustomerName:  req.CustomerName,
			CustomerPhone: req.CustomerPhone,
			OrderType:     orderType,
			Items:         items,
			Subtotal:      subtotal,
			Tax:           tax,
			Total:         total,
			Status:        models.OrderStatusPending,
			SpecialNotes:  req.SpecialNotes,
			CreatedBy:     user.ID,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		if order.TableID != nil && orderType == models.OrderTypeDineIn {
			claimed, err := models.ClaimTable(tx, *order.TableID, order.ID)
			if err != nil {
				return err
			}
			if !claimed {
				return ErrTableUnavailable
			}
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}

	s.metrics.OrderCreated(string(order.OrderType))
	s.logger.Infow("order created",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"order_type", order.OrderType,
		"total", order.Total.StringFixed(2),
		"user_id", user.ID,
	)
	s.publisher.Publish(realtime.RoomKitchen, realtime.EventNewOrder, gin.H{
		"orderId":      order.ID,
		"orderNumber":  order.OrderNumber,
		"items":        order.Items,
		"specialNotes": order.SpecialNotes,
		"createdAt":    order.CreatedAt,
	})
	return order, nil
}

// UpdateOrder applies a status transition and/or a notes edit.
func (s *Service) UpdateOrder(ctx context.Context, id string, req UpdateOrderRequest) (models.Order, error) {
	var next models.OrderStatus
	if req.Status != nil {
		st, err := models.ParseOrderStatus(*req.Status)
		if err != nil {
			return models.Order{}, apperror.BadRequest("%s", err.Error())
		}
		next = st
	}

	transitioned := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}

		updates := map[string]any{}
		if req.SpecialNotes != nil {
			updates["special_notes"] = *req.SpecialNotes
		}

		if next != "" && next != order.Status {
			if !order.Status.CanTransitionTo(next) {
				return apperror.Conflict("Invalid status transition from %s to %s", order.Status, next)
			}
			if next == models.OrderStatusCancelled {
				if err := refuseWithPayments(tx, order.ID); err != nil {
					return err
				}
			}
			updates["status"] = next
			transitioned = true
			if next.IsTerminal() {
				updates["completed_at"] = s.now()
			}
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return err
		}

		if transitioned && next.IsTerminal() && order.TableID != nil {
			return models.ReleaseTable(tx, *order.TableID, order.ID)
		}
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}

	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return models.Order{}, err
	}

	if transitioned {
		s.metrics.OrderTransition(string(order.Status))
		s.logger.Infow("order status changed", "order_id", order.ID, "status", order.Status)
	}
	s.publishUpdate(order)
	return order, nil
}

// CancelOrder cancels an unpaid, still open order and frees its table.
func (s *Service) CancelOrder(ctx context.Context, id string) error {
	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}

		if err := refuseWithPayments(tx, order.ID); err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return ErrOrderAlreadyClosed
		}

		now := s.now()
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, order.Status).
			Updates(map[string]any{"status": models.OrderStatusCancelled, "completed_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrOrderAlreadyClosed
		}
		order.Status = models.OrderStatusCancelled
		order.UpdatedAt = now

		if order.TableID != nil && order.OrderType == models.OrderTypeDineIn {
			return models.ReleaseTable(tx, *order.TableID, order.ID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.OrderTransition(string(models.OrderStatusCancelled))
	s.logger.Infow("order cancelled", "order_id", order.ID, "order_number", order.OrderNumber)
	s.publishUpdate(order)
	return nil
}

func refuseWithPayments(tx *gorm.DB, orderID string) error {
	var count int64
	if err := tx.Model(&models.Payment{}).Where("order_id = ?", orderID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrCancelWithPayments
	}
	return nil
}

func (s *Service) publishUpdate(order models.Order) {
	payload := gin.H{
		"orderId":   order.ID,
		"status":    order.Status,
		"updatedAt": order.UpdatedAt,
	}
	s.publisher.Publish(realtime.RoomKitchen, realtime.EventOrderUpdated, payload)
	s.publisher.Publish(realtime.RoomWaiter, realtime.EventOrderUpdated, payload)
}

// -------- Handlers --------

// POST /api/orders
func (s *Service) CreateOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := auth.CurrentUser(c)
		if !ok {
			c.Error(ErrNotAuthenticated)
			return
		}

		var req CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}

		order, err := s.CreateOrder(c.Request.Context(), user, req)
		if err != nil {
			c.Error(err)
			return
		}
		response.Message(c, http.StatusCreated, "Order created successfully", gin.H{"order": order})
	}
}

// PUT /api/orders/:id
func (s *Service) UpdateOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}

		order, err := s.UpdateOrder(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			c.Error(err)
			return
		}
		response.Message(c, http.StatusOK, "Order updated successfully", gin.H{"order": order})
	}
}

// DELETE /api/orders/:id
func (s *Service) CancelOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.CancelOrder(c.Request.Context(), c.Param("id")); err != nil {
			c.Error(err)
			return
		}
		response.Message(c, http.StatusOK, "Order cancelled successfully", nil)
	}
}
