package paymentControllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/restaurant-pos-api/apperror"
	"github.com/junaidrashid-git/restaurant-pos-api/gateway"
	"github.com/junaidrashid-git/restaurant-pos-api/models"
	"github.com/junaidrashid-git/restaurant-pos-api/response"
	"github.com/shopspring/decimal"
)

// Telr transaction advice status for an authorised payment.
const telrAuthorised = "A"

type TelrSessionRequest struct {
	OrderID string `json:"orderId" binding:"required,uuid"`
}

// POST /api/payments/telr/session
//
// Opens a Telr hosted payment page for whatever is still owed on the order.
// The wallet app pays there and the client later submits the returned
// orderRef as metadata.telrOrderRef.
func (s *Service) TelrSessionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TelrSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
		ctx := c.Request.Context()

		order, err := s.findOrder(s.db.WithContext(ctx), req.OrderID, false)
		if err != nil {
			c.Error(err)
			return
		}
		if order.Status == models.OrderStatusCancelled {
			c.Error(ErrOrderCancelled)
			return
		}
		paid, err := completedTotal(s.db.WithContext(ctx), order.ID)
		if err != nil {
			c.Error(err)
			return
		}
		remaining := order.Total.Sub(paid)
		if !remaining.IsPositive() {
			c.Error(apperror.Conflict("Order %s has nothing left to pay", order.OrderNumber))
			return
		}

		session, err := s.gateways.OpenSession(ctx, gateway.SessionRequest{
			CartID:      order.ID,
			Amount:      remaining,
			Currency:    s.cfg.Currency,
			Description: "Order " + order.OrderNumber,
			ReturnURL:   s.cfg.TelrReturnURL,
			Test:        s.cfg.TelrTestMode,
		})
		if err != nil {
			s.logger.Errorw("failed to open telr session", "order_id", order.ID, "error", err)
			c.Error(apperror.Conflict("Could not start wallet payment"))
			return
		}

		response.OK(c, http.StatusOK, gin.H{
			"orderRef":   session.Ref,
			"paymentUrl": session.URL,
			"amount":     remaining,
		})
	}
}

// POST /api/payments/telr/webhook
//
// Telr transaction advice. The signature is checked by middleware. An
// authorised advice is recorded as a MOBILE_WALLET payment on behalf of the
// staff member who created the order. Each Telr order reference settles one
// payment, so a repeated advice is a no-op. Telr is always answered 200 for
// business rejections so it stops retrying.
func (s *Service) TelrWebhookHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		tranRef := c.PostForm("tran_ref")
		orderID := c.PostForm("tran_cartid")
		status := c.PostForm("tran_status")

		log := s.logger.With("tran_ref", tranRef, "order_id", orderID, "tran_status", status)

		if status != telrAuthorised {
			log.Infow("ignoring telr advice")
			c.Status(http.StatusOK)
			return
		}

		telrOrder := c.PostForm("tran_order")
		if telrOrder == "" {
			log.Warnw("telr advice without order reference")
			c.Status(http.StatusOK)
			return
		}

		amount, err := decimal.NewFromString(c.PostForm("tran_amount"))
		if err != nil {
			log.Warnw("telr advice with bad amount", "tran_amount", c.PostForm("tran_amount"))
			c.Status(http.StatusOK)
			return
		}

		order, err := s.findOrder(s.db.WithContext(ctx), orderID, false)
		if err != nil {
			log.Warnw("telr advice for unknown order", "error", err)
			c.Status(http.StatusOK)
			return
		}
		var creator models.User
		if err := s.db.WithContext(ctx).First(&creator, "id = ?", order.CreatedBy).Error; err != nil {
			c.Error(fmt.Errorf("load order creator: %w", err))
			return
		}

		payment, err := s.RecordPayment(ctx, creator, RecordPaymentRequest{
			OrderID:       order.ID,
			Amount:        &amount,
			Method:        string(models.PaymentMethodMobileWallet),
			TransactionID: tranRef,
			Metadata:      gateway.Metadata{TelrOrderRef: telrOrder},
		})
		if errors.Is(err, ErrReferenceUsed) {
			log.Infow("duplicate telr advice")
			c.Status(http.StatusOK)
			return
		}
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			log.Warnw("telr advice not recorded", "reason", appErr.Message)
			c.Status(http.StatusOK)
			return
		}
		if err != nil {
			c.Error(err)
			return
		}

		log.Infow("telr payment recorded", "payment_id", payment.ID)
		c.Status(http.StatusOK)
	}
}
