package paymentControllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/restaurant-pos-api/apperror"
	"github.com/junaidrashid-git/restaurant-pos-api/auth"
	"github.com/junaidrashid-git/restaurant-pos-api/gateway"
	"github.com/junaidrashid-git/restaurant-pos-api/models"
	"github.com/junaidrashid-git/restaurant-pos-api/realtime"
	"github.com/junaidrashid-git/restaurant-pos-api/response"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrOrderNotFound        = apperror.NotFound("Order not found")
	ErrPaymentNotFound      = apperror.NotFound("Payment not found")
	ErrOrderCancelled       = apperror.Conflict("Cannot process payment for cancelled order")
	ErrExceedsBalance       = apperror.Conflict("Payment amount exceeds remaining balance")
	ErrInvalidAmount        = apperror.BadRequest("Amount must be greater than 0 with at most 2 decimal places")
	ErrInvalidMethod        = apperror.BadRequest("Invalid payment method")
	ErrPaymentFailed        = apperror.Conflict("Payment failed")
	ErrConfirmationRequired = apperror.Conflict("Payment confirmation required")
	ErrNotRefundable        = apperror.Conflict("Only completed payments can be refunded")
	ErrRefundTooLarge       = apperror.Conflict("Refund amount cannot exceed payment amount")
	ErrRefundFailed         = apperror.Conflict("Refund processing failed")
	ErrAlreadyRefunded      = apperror.Conflict("Payment has already been refunded")
	ErrReferenceUsed        = apperror.Conflict("Gateway reference has already been used for another payment")
	ErrAmountMismatch       = apperror.Conflict("Gateway amount does not match payment amount")
	ErrNotAuthenticated     = apperror.Unauthorized("Authentication required")
)

const defaultRefundReason = "Customer request"

// -------- Request Structs --------

type RecordPaymentRequest struct {
	OrderID       string           `json:"orderId" binding:"required,uuid"`
	Amount        *decimal.Decimal `json:"amount" binding:"required"`
	Method        string           `json:"method" binding:"required,oneof=CASH CARD KHALTI ESEWA MOBILE_WALLET"`
	TransactionID string           `json:"transactionId" binding:"omitempty,max=100"`
	Metadata      gateway.Metadata `json:"metadata"`
}

type RefundRequest struct {
	Amount *decimal.Decimal `json:"amount" binding:"required"`
	Reason string           `json:"reason" binding:"omitempty,max=200"`
}

// -------- Helpers --------

func validAmount(amount *decimal.Decimal) bool {
	return amount != nil && amount.IsPositive() && amount.Equal(amount.Round(2))
}

// completedTotal sums COMPLETED amounts for orderID inside tx. Refund records
// are COMPLETED with negative amounts and reduce the total.
func completedTotal(tx *gorm.DB, orderID string) (decimal.Decimal, error) {
	var payments []models.Payment
	err := tx.Select("amount", "status").
		Where("order_id = ? AND status = ?", orderID, models.PaymentStatusCompleted).
		Find(&payments).Error
	if err != nil {
		return decimal.Zero, err
	}
	return models.CompletedTotal(payments), nil
}

func (s *Service) findOrder(tx *gorm.DB, id string, lock bool) (models.Order, error) {
	var order models.Order
	if lock {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := tx.First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return order, ErrOrderNotFound
	}
	return order, err
}

// referenceUsed reports whether ref already confirmed a payment on gw.
func referenceUsed(tx *gorm.DB, gw models.PaymentGateway, ref string) (bool, error) {
	var count int64
	err := tx.Model(&models.Payment{}).
		Where("gateway = ? AND gateway_ref = ?", gw, ref).
		Count(&count).Error
	return count > 0, err
}

func (s *Service) loadPayment(ctx context.Context, id string) (models.Payment, error) {
	var payment models.Payment
	err := paymentDetail(s.db.WithContext(ctx)).First(&payment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return payment, ErrPaymentNotFound
	}
	return payment, err
}

// -------- Core Logic --------

// RecordPayment confirms the payment with its gateway, then stores it if it
// still fits the order's remaining balance. A payment that covers the balance
// settles the order and frees its table.
func (s *Service) RecordPayment(ctx context.Context, user models.User, req RecordPaymentRequest) (models.Payment, error) {
	if !validAmount(req.Amount) {
		return models.Payment{}, ErrInvalidAmount
	}
	amount := *req.Amount
	method, ok := models.ParsePaymentMethod(req.Method)
	if !ok {
		return models.Payment{}, ErrInvalidMethod
	}

	// Fail fast before asking a gateway about a payment we would refuse.
	if err := s.checkBalance(s.db.WithContext(ctx), req.OrderID, amount, false); err != nil {
		return models.Payment{}, err
	}

	result, err := s.gateways.Charge(ctx, method, amount, req.Metadata)
	if err != nil {
		s.metrics.Payment(string(method), string(models.PaymentStatusFailed))
		s.logger.Warnw("payment rejected by gateway",
			"order_id", req.OrderID,
			"method", method,
			"error", err,
		)
		switch {
		case errors.Is(err, gateway.ErrConfirmationRequired):
			return models.Payment{}, ErrConfirmationRequired
		case errors.Is(err, gateway.ErrAmountMismatch):
			return models.Payment{}, ErrAmountMismatch
		}
		return models.Payment{}, ErrPaymentFailed
	}

	meta, err := json.Marshal(req.Metadata)
	if err != nil {
		return models.Payment{}, err
	}

	transactionID := req.TransactionID
	if transactionID == "" {
		transactionID = result.Reference
	}
	if transactionID == "" {
		transactionID = fmt.Sprintf("TXN_%d", s.now().UnixMilli())
	}

	var (
		paymentID string
		settled   models.Order
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkBalance(tx, req.OrderID, amount, true); err != nil {
			return err
		}
		order, err := s.findOrder(tx, req.OrderID, false)
		if err != nil {
			return err
		}

		payment := models.Payment{
			OrderID:       order.ID,
			Amount:        amount,
			Method:        method,
			Status:        result.Status,
			Gateway:       result.Gateway,
			TransactionID: transactionID,
			Metadata:      datatypes.JSON(meta),
			ProcessedBy:   user.ID,
		}
		if result.Reference != "" {
			used, err := referenceUsed(tx, result.Gateway, result.Reference)
			if err != nil {
				return err
			}
			if used {
				return ErrReferenceUsed
			}
			payment.GatewayRef = &result.Reference
		}
		if err := tx.Create(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrReferenceUsed
			}
			return err
		}
		paymentID = payment.ID

		paid, err := completedTotal(tx, order.ID)
		if err != nil {
			return err
		}
		if paid.LessThan(order.Total) || !order.Status.CanSettle() {
			return nil
		}

		now := s.now()
		if err := tx.Model(&order).Updates(map[string]any{
			"status":       models.OrderStatusCompleted,
			"completed_at": now,
		}).Error; err != nil {
			return err
		}
		if order.TableID != nil {
			if err := models.ReleaseTable(tx, *order.TableID, order.ID); err != nil {
				return err
			}
		}
		settled = order
		settled.Status = models.OrderStatusCompleted
		settled.UpdatedAt = now
		return nil
	})
	if err != nil {
		return models.Payment{}, err
	}

	payment, err := s.loadPayment(ctx, paymentID)
	if err != nil {
		return models.Payment{}, err
	}

	s.metrics.Payment(string(payment.Method), string(payment.Status))
	s.logger.Infow("payment recorded",
		"payment_id", payment.ID,
		"order_id", payment.OrderID,
		"amount", payment.Amount.StringFixed(2),
		"method", payment.Method,
		"gateway", payment.Gateway,
		"simulated", result.Simulated,
		"user_id", user.ID,
	)

	orderNumber := ""
	if payment.Order != nil {
		orderNumber = payment.Order.OrderNumber
	}
	s.publisher.Publish(realtime.RoomWaiter, realtime.EventPaymentReceived, gin.H{
		"paymentId":   payment.ID,
		"orderId":     payment.OrderID,
		"orderNumber": orderNumber,
		"amount":      payment.Amount,
		"method":      payment.Method,
		"status":      payment.Status,
	})
	if settled.ID != "" {
		s.metrics.OrderTransition(string(models.OrderStatusCompleted))
		update := gin.H{"orderId": settled.ID, "status": settled.Status, "updatedAt": settled.UpdatedAt}
		s.publisher.Publish(realtime.RoomKitchen, realtime.EventOrderUpdated, update)
		s.publisher.Publish(realtime.RoomWaiter, realtime.EventOrderUpdated, update)
	}
	return payment, nil
}

// checkBalance refuses payments for missing or cancelled orders and amounts
// above what is still owed. With lock set the order row stays locked until
// the surrounding transaction ends.
func (s *Service) checkBalance(tx *gorm.DB, orderID string, amount decimal.Decimal, lock bool) error {
	order, err := s.findOrder(tx, orderID, lock)
	if err != nil {
		return err
	}
	if order.Status == models.OrderStatusCancelled {
		return ErrOrderCancelled
	}
	paid, err := completedTotal(tx, orderID)
	if err != nil {
		return err
	}
	if amount.GreaterThan(order.Total.Sub(paid)) {
		return ErrExceedsBalance
	}
	return nil
}

// Refund returns part or all of a completed payment through its gateway and
// records the refund as a negative payment. The original stays locked and
// flipped to REFUNDED across the gateway call, so a gateway failure rolls the
// flip back and a concurrent refund of the same payment waits, then fails.
func (s *Service) Refund(ctx context.Context, user models.User, id string, req RefundRequest) (models.Payment, error) {
	if !validAmount(req.Amount) {
		return models.Payment{}, ErrInvalidAmount
	}
	amount := *req.Amount
	reason := req.Reason
	if reason == "" {
		reason = defaultRefundReason
	}

	var (
		original      models.Payment
		refundID      string
		gatewayRefund bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&original, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaymentNotFound
		}
		if err != nil {
			return err
		}
		if original.Status != models.PaymentStatusCompleted {
			return ErrNotRefundable
		}
		if amount.GreaterThan(original.Amount) {
			return ErrRefundTooLarge
		}

		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", original.ID, models.PaymentStatusCompleted).
			Update("status", models.PaymentStatusRefunded)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyRefunded
		}

		if err := s.refundAtGateway(ctx, original, amount); err != nil {
			return err
		}
		gatewayRefund = true

		refundMeta, err := json.Marshal(map[string]string{"originalPaymentId": original.ID, "reason": reason})
		if err != nil {
			return err
		}
		refund := models.Payment{
			OrderID:           original.OrderID,
			Amount:            amount.Neg(),
			Method:            original.Method,
			Status:            models.PaymentStatusCompleted,
			Gateway:           original.Gateway,
			TransactionID:     fmt.Sprintf("REF_%d", s.now().UnixMilli()),
			OriginalPaymentID: &original.ID,
			Reason:            &reason,
			Metadata:          datatypes.JSON(refundMeta),
			ProcessedBy:       user.ID,
		}
		if err := tx.Create(&refund).Error; err != nil {
			return err
		}
		refundID = refund.ID
		return nil
	})
	if err != nil {
		if gatewayRefund {
			s.logger.Errorw("refund issued at gateway but not recorded",
				"payment_id", original.ID,
				"gateway", original.Gateway,
				"amount", amount.StringFixed(2),
				"error", err,
			)
		}
		return models.Payment{}, err
	}

	s.metrics.Refund(string(original.Gateway))
	s.logger.Infow("refund issued",
		"payment_id", original.ID,
		"refund_id", refundID,
		"amount", amount.StringFixed(2),
		"gateway", original.Gateway,
		"user_id", user.ID,
	)
	return s.loadPayment(ctx, refundID)
}

// refundAtGateway sends amount back through the gateway that confirmed p.
// Payments stored before GatewayRef existed fall back to their metadata.
func (s *Service) refundAtGateway(ctx context.Context, p models.Payment, amount decimal.Decimal) error {
	ref := ""
	if p.GatewayRef != nil {
		ref = *p.GatewayRef
	} else if len(p.Metadata) > 0 {
		var meta gateway.Metadata
		if err := json.Unmarshal(p.Metadata, &meta); err != nil {
			s.logger.Warnw("unreadable payment metadata", "payment_id", p.ID, "error", err)
		}
		ref = meta.Ref(p.Gateway)
	}

	err := s.gateways.Refund(ctx, p.Gateway, ref, amount)
	if err == nil {
		return nil
	}
	s.logger.Warnw("refund rejected by gateway",
		"payment_id", p.ID,
		"gateway", p.Gateway,
		"error", err,
	)
	if errors.Is(err, gateway.ErrUnsupported) {
		return apperror.Conflict("Refunds are not supported for %s payments", p.Gateway)
	}
	return ErrRefundFailed
}

// -------- Handlers --------

// POST /api/payments
func (s *Service) RecordPaymentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := auth.CurrentUser(c)
		if !ok {
			c.Error(ErrNotAuthenticated)
			return
		}

		var req RecordPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}

		payment, err := s.RecordPayment(c.Request.Context(), user, req)
		if err != nil {
			c.Error(err)
			return
		}
		response.Message(c, http.StatusCreated, "Payment processed successfully", gin.H{"payment": payment})
	}
}

// POST /api/payments/:id/refund
func (s *Service) RefundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := auth.CurrentUser(c)
		if !ok {
			c.Error(ErrNotAuthenticated)
			return
		}

		var req RefundRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}

		refund, err := s.Refund(c.Request.Context(), user, c.Param("id"), req)
		if err != nil {
			c.Error(err)
			return
		}
		response.Message(c, http.StatusOK, "Refund processed successfully", gin.H{"refund": refund})
	}
}
