package paymentControllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/restaurant-pos-api/models"
	"github.com/junaidrashid-git/restaurant-pos-api/response"
	"github.com/shopspring/decimal"
)

type ListFilter struct {
	OrderID string
	Method  string
	Status  string
	Window  *response.DateRange
	Page    int
	Limit   int
}

type MethodTotal struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// Summary aggregates COMPLETED payments. Refunds are COMPLETED records with
// negative amounts, so NetAmount is TotalAmount minus TotalRefunds.
type Summary struct {
	TotalPayments int                                   `json:"totalPayments"`
	TotalAmount   decimal.Decimal                       `json:"totalAmount"`
	TotalRefunds  decimal.Decimal                       `json:"totalRefunds"`
	NetAmount     decimal.Decimal                       `json:"netAmount"`
	MethodSummary map[models.PaymentMethod]*MethodTotal `json:"methodSummary"`
}

func (s *Service) ListPayments(ctx context.Context, f ListFilter) ([]models.Payment, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Payment{})
	if f.OrderID != "" {
		q = q.Where("order_id = ?", f.OrderID)
	}
	if f.Method != "" {
		q = q.Where("method = ?", f.Method)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Window != nil {
		q = q.Where("created_at >= ? AND created_at < ?", f.Window.From, f.Window.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []models.Payment
	err := q.Preload("Order").
		Preload("Processor").
		Order("created_at DESC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&payments).Error
	return payments, total, err
}

func (s *Service) GetPayment(ctx context.Context, id string) (models.Payment, error) {
	return s.loadPayment(ctx, id)
}

// PaymentsForOrder lists an order's payments, newest first.
func (s *Service) PaymentsForOrder(ctx context.Context, orderID string) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.db.WithContext(ctx).
		Preload("Processor").
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}

func (s *Service) Summarize(ctx context.Context, window *response.DateRange) (Summary, error) {
	q := s.db.WithContext(ctx).
		Select("method", "amount").
		Where("status = ?", models.PaymentStatusCompleted)
	if window != nil {
		q = q.Where("created_at >= ? AND created_at < ?", window.From, window.To)
	}

	var payments []models.Payment
	if err := q.Find(&payments).Error; err != nil {
		return Summary{}, err
	}

	sum := Summary{
		TotalAmount:   decimal.Zero,
		TotalRefunds:  decimal.Zero,
		MethodSummary: make(map[models.PaymentMethod]*MethodTotal),
	}
	for _, p := range payments {
		sum.TotalPayments++
		if p.IsRefund() {
			sum.TotalRefunds = sum.TotalRefunds.Add(p.Amount.Abs())
		} else {
			sum.TotalAmount = sum.TotalAmount.Add(p.Amount)
		}

		mt, ok := sum.MethodSummary[p.Method]
		if !ok {
			mt = &MethodTotal{Total: decimal.Zero}
			sum.MethodSummary[p.Method] = mt
		}
		mt.Count++
		mt.Total = mt.Total.Add(p.Amount)
	}
	sum.NetAmount = sum.TotalAmount.Sub(sum.TotalRefunds)
	return sum, nil
}

// -------- Handlers --------

// GET /api/payments
func (s *Service) ListPaymentsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		window, err := response.ParseDateRange(c)
		if err != nil {
			c.Error(err)
			return
		}
		page, limit := response.Page(c)

		payments, total, err := s.ListPayments(c.Request.Context(), ListFilter{
			OrderID: c.Query("orderId"),
			Method:  c.Query("method"),
			Status:  c.Query("status"),
			Window:  window,
			Page:    page,
			Limit:   limit,
		})
		if err != nil {
			c.Error(err)
			return
		}
		response.OK(c, http.StatusOK, gin.H{
			"payments":   payments,
			"pagination": response.NewPagination(page, limit, total),
		})
	}
}

// GET /api/payments/:id
func (s *Service) GetPaymentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		payment, err := s.GetPayment(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.Error(err)
			return
		}
		response.OK(c, http.StatusOK, gin.H{"payment": payment})
	}
}

// GET /api/payments/order/:orderId
func (s *Service) OrderPaymentsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		payments, err := s.PaymentsForOrder(c.Request.Context(), c.Param("orderId"))
		if err != nil {
			c.Error(err)
			return
		}
		response.OK(c, http.StatusOK, gin.H{"payments": payments})
	}
}

// GET /api/payments/summary
func (s *Service) SummaryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		window, err := response.ParseDateRange(c)
		if err != nil {
			c.Error(err)
			return
		}
		summary, err := s.Summarize(c.Request.Context(), window)
		if err != nil {
			c.Error(err)
			return
		}
		response.OK(c, http.StatusOK, gin.H{"summary": summary})
	}
}
