package reportControllers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/restaurant-pos-api/apperror"
	"github.com/junaidrashid-git/restaurant-pos-api/models"
	"github.com/junaidrashid-git/restaurant-pos-api/response"
	"github.com/shopspring/decimal"
)

const topItemsLimit = 10

var ErrDateRangeRequired = apperror.BadRequest("Start date and end date are required")

type SalesSummary struct {
	TotalSales        decimal.Decimal `json:"totalSales"`
	TotalOrders       int             `json:"totalOrders"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	DateRange         dateRangeJSON   `json:"dateRange"`
}

type dateRangeJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type DayTotal struct {
	Date   string          `json:"date"`
	Sales  decimal.Decimal `json:"sales"`
	Orders int             `json:"orders"`
}

type ItemSales struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type MethodTotal struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type SalesReport struct {
	Summary         SalesSummary                          `json:"summary"`
	SalesByDate     []DayTotal                            `json:"salesByDate"`
	TopSellingItems []ItemSales                           `json:"topSellingItems"`
	PaymentMethods  map[models.PaymentMethod]*MethodTotal `json:"paymentMethods"`
}

func average(total decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(n))).Round(2)
}

func rangeJSON(w response.DateRange) dateRangeJSON {
	return dateRangeJSON{Start: w.From.Format(time.RFC3339), End: w.To.Format(time.RFC3339)}
}

// Sales summarises COMPLETED orders created inside the window.
func (s *Service) Sales(ctx context.Context, w response.DateRange) (SalesReport, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Preload("Items.MenuItem").
		Preload("Payments", "status = ?", models.PaymentStatusCompleted).
		Where("status = ? AND created_at >= ? AND created_at < ?", models.OrderStatusCompleted, w.From, w.To).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return SalesReport{}, err
	}

	report := SalesReport{
		SalesByDate:     []DayTotal{},
		TopSellingItems: []ItemSales{},
		PaymentMethods:  map[models.PaymentMethod]*MethodTotal{},
	}
	total := decimal.Zero
	days := map[string]*DayTotal{}
	var dayOrder []string
	items := map[string]*ItemSales{}

	for _, o := range orders {
		total = total.Add(o.Total)

		day := o.CreatedAt.In(w.From.Location()).Format("2006-01-02")
		d, ok := days[day]
		if !ok {
			d = &DayTotal{Date: day}
			days[day] = d
			dayOrder = append(dayOrder, day)
		}
		d.Sales = d.Sales.Add(o.Total)
		d.Orders++

		for _, it := range o.Items {
			name := it.MenuItemID
			if it.MenuItem != nil {
				name = it.MenuItem.Name
			}
			row, ok := items[name]
			if !ok {
				row = &ItemSales{Name: name}
				items[name] = row
			}
			row.Quantity += it.Quantity
			row.Revenue = row.Revenue.Add(it.TotalPrice)
		}

		for _, p := range o.Payments {
			m, ok := report.PaymentMethods[p.Method]
			if !ok {
				m = &MethodTotal{}
				report.PaymentMethods[p.Method] = m
			}
			m.Count++
			m.Amount = m.Amount.Add(p.Amount)
		}
	}

	for _, day := range dayOrder {
		report.SalesByDate = append(report.SalesByDate, *days[day])
	}
	for _, row := range items {
		report.TopSellingItems = append(report.TopSellingItems, *row)
	}
	sort.Slice(report.TopSellingItems, func(i, j int) bool {
		a, b := report.TopSellingItems[i], report.TopSellingItems[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return a.Name < b.Name
	})
	if len(report.TopSellingItems) > topItemsLimit {
		report.TopSellingItems = report.TopSellingItems[:topItemsLimit]
	}

	report.Summary = SalesSummary{
		TotalSales:        total,
		TotalOrders:       len(orders),
		AverageOrderValue: average(total, len(orders)),
		DateRange:         rangeJSON(w),
	}
	return report, nil
}

func requiredRange(c *gin.Context) (response.DateRange, error) {
	w, err := response.ParseDateRange(c)
	if err != nil {
		return response.DateRange{}, err
	}
	if w == nil {
		return response.DateRange{}, ErrDateRangeRequired
	}
	return *w, nil
}

// GET /api/reports/sales
func (s *Service) SalesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		w, err := requiredRange(c)
		if err != nil {
			c.Error(err)
			return
		}
		report, err := s.Sales(c.Request.Context(), w)
		if err != nil {
			c.Error(err)
			return
		}
		response.OK(c, http.StatusOK, report)
	}
}
