package reportControllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/restaurant-pos-api/models"
	"github.com/junaidrashid-git/restaurant-pos-api/response"
	"github.com/shopspring/decimal"
)

const recentOrdersLimit = 5

type TodayStats struct {
	Sales           decimal.Decimal `json:"sales"`
	Orders          int             `json:"orders"`
	CompletedOrders int             `json:"completedOrders"`
	PendingOrders   int             `json:"pendingOrders"`
}

type Dashboard struct {
	Today               TodayStats          `json:"today"`
	ActiveTables        int64               `json:"activeTables"`
	LowStockIngredients []models.Ingredient `json:"lowStockIngredients"`
	RecentOrders        []models.Order      `json:"recentOrders"`
}

// Dashboard reports the current local day. Sales counts COMPLETED orders
// only, so open tabs do not inflate the figure.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	db := s.db.WithContext(ctx)
	today := response.Today(s.now())

	var orders []models.Order
	if err := db.Select("id", "status", "total").
		Where("created_at >= ? AND created_at < ?", today.From, today.To).
		Find(&orders).Error; err != nil {
		return Dashboard{}, err
	}

	var d Dashboard
	d.Today.Orders = len(orders)
	for _, o := range orders {
		switch o.Status {
		case models.OrderStatusCompleted:
			d.Today.CompletedOrders++
			d.Today.Sales = d.Today.Sales.Add(o.Total)
		case models.OrderStatusPending, models.OrderStatusConfirmed, models.OrderStatusPreparing:
			d.Today.PendingOrders++
		}
	}

	if err := db.Model(&models.Table{}).Where("status = ?", models.TableOccupied).Count(&d.ActiveTables).Error; err != nil {
		return Dashboard{}, err
	}
	if err := db.Where("is_active = ? AND current_stock <= min_stock", true).
		Order("current_stock ASC, name ASC").
		Find(&d.LowStockIngredients).Error; err != nil {
		return Dashboard{}, err
	}
	if err := db.Preload("Table").Preload("Creator").
		Order("created_at DESC").
		Limit(recentOrdersLimit).
		Find(&d.RecentOrders).Error; err != nil {
		return Dashboard{}, err
	}
	return d, nil
}

// GET /api/reports/dashboard
func (s *Service) DashboardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := s.Dashboard(c.Request.Context())
		if err != nil {
			c.Error(err)
			return
		}
		response.OK(c, http.StatusOK, d)
	}
}
