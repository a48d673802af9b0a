package menuControllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/restaurant-pos-api/apperror"
	"github.com/junaidrashid-git/restaurant-pos-api/models"
	"github.com/junaidrashid-git/restaurant-pos-api/response"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

// Spreadsheet columns, shared by import and export.
var itemColumns = []string{
	"ID", "Name", "Description", "Price", "Category",
	"IsVegetarian", "IsSpicy", "PreparationTime",
}

var (
	ErrFileRequired = apperror.BadRequest("Excel file is required")
	ErrBadSheet     = apperror.BadRequest("Failed to parse Excel file")
	ErrEmptySheet   = apperror.BadRequest("Excel file is empty or missing header row")
)

type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(strings.ToLower(s))
	return b || strings.EqualFold(s, "yes")
}

// ImportItems upserts menu items from the first sheet of an xlsx workbook.
// Rows match existing items by ID, then by name. Unknown categories are
// created on the fly; rows without a name or a valid price are skipped.
func (s *Service) ImportItems(ctx context.Context, r io.ReaderAt, size int64) (ImportResult, error) {
	var res ImportResult

	xlFile, err := xlsx.OpenReaderAt(r, size)
	if err != nil {
		return res, ErrBadSheet
	}
	if len(xlFile.Sheets) == 0 || xlFile.Sheets[0].MaxRow < 2 {
		return res, ErrEmptySheet
	}
	sheet := xlFile.Sheets[0]

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categories := map[string]string{}

		for i := 1; i < sheet.MaxRow; i++ {
			row := sheet.Rows[i]
			if row == nil {
				res.Skipped++
				continue
			}
			get := func(index int) string {
				if index < len(row.Cells) {
					return strings.TrimSpace(row.Cells[index].String())
				}
				return ""
			}

			id, name, desc := get(0), get(1), get(2)
			price, perr := decimal.NewFromString(get(3))
			categoryName := get(4)
			if name == "" || categoryName == "" || perr != nil || price.IsNegative() {
				res.Skipped++
				continue
			}
			prep, _ := strconv.Atoi(get(7))
			if prep < 1 || prep > 120 {
				prep = 15
			}

			categoryID, ok := categories[categoryName]
			if !ok {
				var category models.Category
				if err := tx.Where(models.Category{Name: categoryName}).
					Attrs(models.Category{IsActive: true}).
					FirstOrCreate(&category).Error; err != nil {
					return err
				}
				categoryID = category.ID
				categories[categoryName] = categoryID
			}

			fields := models.MenuItem{
				Name:            name,
				Description:     desc,
				Price:           price.Round(2),
				CategoryID:      categoryID,
				IsVegetarian:    parseBool(get(5)),
				IsSpicy:         parseBool(get(6)),
				PreparationTime: prep,
			}

			var existing models.MenuItem
			err := gorm.ErrRecordNotFound
			if id != "" {
				err = tx.First(&existing, "id = ?", id).Error
			}
			if errors.Is(err, gorm.ErrRecordNotFound) {
				err = tx.First(&existing, "name = ?", name).Error
			}
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				fields.IsActive = true
				if err := tx.Create(&fields).Error; err != nil {
					return err
				}
				res.Created++
			case err != nil:
				return err
			default:
				if err := tx.Model(&existing).Updates(map[string]any{
					"name":             fields.Name,
					"description":      fields.Description,
					"price":            fields.Price,
					"category_id":      fields.CategoryID,
					"is_vegetarian":    fields.IsVegetarian,
					"is_spicy":         fields.IsSpicy,
					"preparation_time": fields.PreparationTime,
				}).Error; err != nil {
					return err
				}
				res.Updated++
			}
		}
		return nil
	})
	return res, err
}

// ExportItems writes every menu item to a single-sheet workbook.
func (s *Service) ExportItems(ctx context.Context) (*xlsx.File, error) {
	var items []models.MenuItem
	if err := s.db.WithContext(ctx).Preload("Category").Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Menu")
	if err != nil {
		return nil, err
	}
	header := sheet.AddRow()
	for _, h := range itemColumns {
		header.AddCell().SetValue(h)
	}
	for _, it := range items {
		row := sheet.AddRow()
		row.AddCell().SetValue(it.ID)
		row.AddCell().SetValue(it.Name)
		row.AddCell().SetValue(it.Description)
		row.AddCell().SetValue(it.Price.StringFixed(2))
		category := ""
		if it.Category != nil {
			category = it.Category.Name
		}
		row.AddCell().SetValue(category)
		row.AddCell().SetBool(it.IsVegetarian)
		row.AddCell().SetBool(it.IsSpicy)
		row.AddCell().SetInt(it.PreparationTime)
	}
	return file, nil
}

// POST /api/menu/items/import
func (s *Service) ImportItemsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		header, err := c.FormFile("file")
		if err != nil {
			c.Error(ErrFileRequired)
			return
		}
		file, err := header.Open()
		if err != nil {
			c.Error(err)
			return
		}
		defer file.Close()

		res, err := s.ImportItems(c.Request.Context(), file, header.Size)
		if err != nil {
			c.Error(err)
			return
		}
		s.logger.Infow("menu import finished", "created", res.Created, "updated", res.Updated, "skipped", res.Skipped)
		response.Message(c, http.StatusOK, "Import completed", res)
	}
}

// GET /api/menu/items/export
func (s *Service) ExportItemsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := s.ExportItems(c.Request.Context())
		if err != nil {
			c.Error(err)
			return
		}
		c.Header("Content-Disposition", "attachment; filename=menu.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")
		if err := file.Write(c.Writer); err != nil {
			s.logger.Errorw("write menu export", "error", err)
		}
	}
}
