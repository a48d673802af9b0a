package reportControllers

import (
	"fmt"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/restaurant-pos-api/models"
	"github.com/tealeg/xlsx"
)

func addRow(sheet *xlsx.Sheet, values ...any) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetValue(v)
	}
}

// Workbook lays a sales report out over three sheets.
func (r SalesReport) Workbook() (*xlsx.File, error) {
	file := xlsx.NewFile()

	summary, err := file.AddSheet("Summary")
	if err != nil {
		return nil, err
	}
	addRow(summary, "From", r.Summary.DateRange.Start)
	addRow(summary, "To", r.Summary.DateRange.End)
	addRow(summary, "Total Sales", r.Summary.TotalSales.StringFixed(2))
	addRow(summary, "Total Orders", r.Summary.TotalOrders)
	addRow(summary, "Average Order Value", r.Summary.AverageOrderValue.StringFixed(2))
	addRow(summary)
	addRow(summary, "Payment Method", "Count", "Amount")
	methods := make([]string, 0, len(r.PaymentMethods))
	for m := range r.PaymentMethods {
		methods = append(methods, string(m))
	}
	sort.Strings(methods)
	for _, m := range methods {
		t := r.PaymentMethods[models.PaymentMethod(m)]
		addRow(summary, m, t.Count, t.Amount.StringFixed(2))
	}

	byDate, err := file.AddSheet("By Date")
	if err != nil {
		return nil, err
	}
	addRow(byDate, "Date", "Orders", "Sales")
	for _, d := range r.SalesByDate {
		addRow(byDate, d.Date, d.Orders, d.Sales.StringFixed(2))
	}

	top, err := file.AddSheet("Top Items")
	if err != nil {
		return nil, err
	}
	addRow(top, "Item", "Quantity", "Revenue")
	for _, it := range r.TopSellingItems {
		addRow(top, it.Name, it.Quantity, it.Revenue.StringFixed(2))
	}
	return file, nil
}

// GET /api/reports/sales/export
func (s *Service) ExportSalesHandler() gin.HandlerFunc {
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
		file, err := report.Workbook()
		if err != nil {
			c.Error(err)
			return
		}

		name := fmt.Sprintf("sales_%s_%s.xlsx", w.From.Format("20060102"), w.To.AddDate(0, 0, -1).Format("20060102"))
		c.Header("Content-Disposition", "attachment; filename="+name)
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")
		if err := file.Write(c.Writer); err != nil {
			s.logger.Errorw("write sales export", "error", err)
		}
	}
}
