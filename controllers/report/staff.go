package reportControllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/restaurant-pos-api/models"
	"github.com/junaidrashid-git/restaurant-pos-api/response"
	"github.com/shopspring/decimal"
)

type StaffPerformance struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	Role                 models.Role     `json:"role"`
	TotalOrders          int             `json:"totalOrders"`
	TotalSales           decimal.Decimal `json:"totalSales"`
	AverageOrderValue    decimal.Decimal `json:"averageOrderValue"`
	TotalItems           int             `json:"totalItems"`
	AverageItemsPerOrder decimal.Decimal `json:"averageItemsPerOrder"`
}

// StaffPerformance credits COMPLETED orders in the window to the active
// waiter or manager who took them.
func (s *Service) StaffPerformance(ctx context.Context, w response.DateRange) ([]StaffPerformance, error) {
	db := s.db.WithContext(ctx)

	var staff []models.User
	if err := db.Where("role IN ? AND is_active = ?", []models.Role{models.RoleWaiter, models.RoleManager}, true).
		Order("first_name ASC, last_name ASC").
		Find(&staff).Error; err != nil {
		return nil, err
	}

	var orders []models.Order
	if err := db.Preload("Items").
		Where("status = ? AND created_at >= ? AND created_at < ?", models.OrderStatusCompleted, w.From, w.To).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	byUser := map[string][]models.Order{}
	for _, o := range orders {
		byUser[o.CreatedBy] = append(byUser[o.CreatedBy], o)
	}

	out := make([]StaffPerformance, 0, len(staff))
	for _, u := range staff {
		p := StaffPerformance{ID: u.ID, Name: u.FullName(), Role: u.Role}
		for _, o := range byUser[u.ID] {
			p.TotalOrders++
			p.TotalSales = p.TotalSales.Add(o.Total)
			for _, it := range o.Items {
				p.TotalItems += it.Quantity
			}
		}
		p.AverageOrderValue = average(p.TotalSales, p.TotalOrders)
		p.AverageItemsPerOrder = average(decimal.NewFromInt(int64(p.TotalItems)), p.TotalOrders)
		out = append(out, p)
	}
	return out, nil
}

// GET /api/reports/staff-performance
func (s *Service) StaffPerformanceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		w, err := requiredRange(c)
		if err != nil {
			c.Error(err)
			return
		}
		data, err := s.StaffPerformance(c.Request.Context(), w)
		if err != nil {
			c.Error(err)
			return
		}
		response.OK(c, http.StatusOK, gin.H{"performanceData": data, "dateRange": rangeJSON(w)})
	}
}
