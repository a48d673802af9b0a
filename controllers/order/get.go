package orderControllers

import (
	"context"
	"errors"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/restaurant-pos-api/models"
	"github.com/junaidrashid-git/restaurant-pos-api/response"
	"gorm.io/gorm"
)

type ListFilter struct {
	Status    string
	OrderType string
	TableID   string
	Window    *response.DateRange
	Page      int
	Limit     int
}

func (s *Service) ListOrders(ctx context.Context, f ListFilter) ([]models.Order, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Order{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.OrderType != "" {
		q = q.Where("order_type = ?", f.OrderType)
	}
	if f.TableID != "" {
		q = q.Where("table_id = ?", f.TableID)
	}
	if f.Window != nil {
		q = q.Where("created_at >= ? AND created_at < ?", f.Window.From, f.Window.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := orderDetail(q).
		Preload("Payments").
		Order("created_at DESC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&orders).Error
	return orders, total, err
}

// GetOrder returns the order with its payments and who took them.
func (s *Service) GetOrder(ctx context.Context, id string) (models.Order, error) {
	var order models.Order
	err := orderDetail(s.db.WithContext(ctx)).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Payments.Processor").
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return order, ErrOrderNotFound
	}
	return order, err
}

// KitchenQueue lists orders the kitchen still has to work on, earliest stage
// first and oldest first within a stage.
func (s *Service) KitchenQueue(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := orderDetail(s.db.WithContext(ctx)).
		Where("status IN ?", models.KitchenOrderStatuses).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].Status.Stage() < orders[j].Status.Stage()
	})
	return orders, nil
}

// -------- Handlers --------

// GET /api/orders
func (s *Service) ListOrdersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		window, err := response.ParseDateRange(c)
		if err != nil {
			c.Error(err)
			return
		}
		page, limit := response.Page(c)

		orders, total, err := s.ListOrders(c.Request.Context(), ListFilter{
			Status:    c.Query("status"),
			OrderType: c.Query("orderType"),
			TableID:   c.Query("tableId"),
			Window:    window,
			Page:      page,
			Limit:     limit,
		})
		if err != nil {
			c.Error(err)
			return
		}
		response.OK(c, http.StatusOK, gin.H{
			"orders":     orders,
			"pagination": response.NewPagination(page, limit, total),
		})
	}
}

// GET /api/orders/:id
func (s *Service) GetOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := s.GetOrder(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.Error(err)
			return
		}
		response.OK(c, http.StatusOK, gin.H{"order": order})
	}
}

// GET /api/orders/kitchen/active
func (s *Service) KitchenQueueHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := s.KitchenQueue(c.Request.Context())
		if err != nil {
			c.Error(err)
			return
		}
		response.OK(c, http.StatusOK, gin.H{"orders": orders})
	}
}
