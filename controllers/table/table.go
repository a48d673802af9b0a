// Package tableControllers manages dining tables, their staff assignment and
// the manual status edits allowed outside of the order flow.
package tableControllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/restaurant-pos-api/apperror"
	"github.com/junaidrashid-git/restaurant-pos-api/models"
	"github.com/junaidrashid-git/restaurant-pos-api/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrTableNotFound     = apperror.NotFound("Table not found")
	ErrDuplicateNumber   = apperror.Conflict("Table number already exists")
	ErrActiveOrders      = apperror.Conflict("Cannot delete table with active orders")
	ErrTableHeld         = apperror.Conflict("Table status is managed by its current order")
	ErrStatusNotSettable = apperror.Conflict("Table status can only be set to AVAILABLE, RESERVED or CLEANING")
	ErrUserUnavailable   = apperror.NotFound("User not found or inactive")
	ErrNotWaiterRole     = apperror.Conflict("Only waiters can be assigned to tables")
)

type Service struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

func NewService(db *gorm.DB, logger *zap.SugaredLogger) *Service {
	return &Service{db: db, logger: logger}
}

// -------- Request Structs --------

type CreateTableRequest struct {
	Number   int    `json:"number" binding:"required,min=1"`
	Capacity int    `json:"capacity" binding:"required,min=1,max=20"`
	Status   string `json:"status" binding:"omitempty,oneof=AVAILABLE RESERVED CLEANING"`
}

type UpdateTableRequest struct {
	Number   *int    `json:"number" binding:"omitempty,min=1"`
	Capacity *int    `json:"capacity" binding:"omitempty,min=1,max=20"`
	Status   *string `json:"status" binding:"omitempty,oneof=AVAILABLE OCCUPIED RESERVED CLEANING"`
}

type AssignRequest struct {
	UserID string `json:"userId" binding:"required,uuid"`
}

// -------- Helpers --------

func (s *Service) find(tx *gorm.DB, id string) (models.Table, error) {
	var table models.Table
	err := tx.Preload("AssignedUser").First(&table, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return table, ErrTableNotFound
	}
	return table, err
}

func (s *Service) numberTaken(tx *gorm.DB, number int, exceptID string) (bool, error) {
	var count int64
	q := tx.Model(&models.Table{}).Where("number = ?", number)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// -------- Core Logic --------

// ListTables returns every table with its most recent active order.
func (s *Service) ListTables(ctx context.Context) ([]models.Table, error) {
	db := s.db.WithContext(ctx)

	var tables []models.Table
	if err := db.Preload("AssignedUser").Order("number ASC").Find(&tables).Error; err != nil {
		return nil, err
	}

	var active []models.Order
	err := db.Preload("Items.MenuItem").
		Where("table_id IS NOT NULL AND status IN ?", models.ActiveOrderStatuses).
		Order("created_at DESC").
		Find(&active).Error
	if err != nil {
		return nil, err
	}

	latest := make(map[string]models.Order, len(active))
	for _, o := range active {
		if _, seen := latest[*o.TableID]; !seen {
			latest[*o.TableID] = o
		}
	}
	for i := range tables {
		tables[i].Orders = []models.Order{}
		if o, ok := latest[tables[i].ID]; ok {
			tables[i].Orders = append(tables[i].Orders, o)
		}
	}
	return tables, nil
}

// GetTable returns the table with its full order history.
func (s *Service) GetTable(ctx context.Context, id string) (models.Table, error) {
	var table models.Table
	err := s.db.WithContext(ctx).
		Preload("AssignedUser").
		Preload("Orders", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Orders.Items.MenuItem").
		Preload("Orders.Payments").
		First(&table, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return table, ErrTableNotFound
	}
	return table, err
}

func (s *Service) CreateTable(ctx context.Context, req CreateTableRequest) (models.Table, error) {
	db := s.db.WithContext(ctx)
	taken, err := s.numberTaken(db, req.Number, "")
	if err != nil {
		return models.Table{}, err
	}
	if taken {
		return models.Table{}, ErrDuplicateNumber
	}

	table := models.Table{Number: req.Number, Capacity: req.Capacity, Status: models.TableAvailable}
	if req.Status != "" {
		table.Status = models.TableStatus(req.Status)
	}
	if err := db.Create(&table).Error; err != nil {
		return models.Table{}, err
	}
	s.logger.Infow("table created", "table_id", table.ID, "number", table.Number)
	return table, nil
}

// UpdateTable edits number and capacity. Status may only move among
// AVAILABLE, RESERVED and CLEANING, and not while an order holds the table.
func (s *Service) UpdateTable(ctx context.Context, id string, req UpdateTableRequest) (models.Table, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		table, err := s.find(tx, id)
		if err != nil {
			return err
		}

		updates := map[string]any{}
		if req.Number != nil && *req.Number != table.Number {
			taken, err := s.numberTaken(tx, *req.Number, id)
			if err != nil {
				return err
			}
			if taken {
				return ErrDuplicateNumber
			}
			updates["number"] = *req.Number
		}
		if req.Capacity != nil {
			updates["capacity"] = *req.Capacity
		}
		if len(updates) > 0 {
			if err := tx.Model(&models.Table{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
		}

		if req.Status == nil || models.TableStatus(*req.Status) == table.Status {
			return nil
		}
		next := models.TableStatus(*req.Status)
		if next == models.TableOccupied {
			return ErrStatusNotSettable
		}
		res := tx.Model(&models.Table{}).
			Where("id = ? AND current_order_id IS NULL", id).
			Update("status", next)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTableHeld
		}
		return nil
	})
	if err != nil {
		return models.Table{}, err
	}
	return s.find(s.db.WithContext(ctx), id)
}

// DeleteTable removes a table with no active orders. Past orders keep their
// data but lose the table link.
func (s *Service) DeleteTable(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		table, err := s.find(tx, id)
		if err != nil {
			return err
		}

		var active int64
		if err := tx.Model(&models.Order{}).
			Where("table_id = ? AND status IN ?", id, models.ActiveOrderStatuses).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 || table.CurrentOrderID != nil {
			return ErrActiveOrders
		}

		if err := tx.Model(&models.Order{}).Where("table_id = ?", id).Update("table_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Delete(&table).Error; err != nil {
			return err
		}
		s.logger.Infow("table deleted", "table_id", id, "number", table.Number)
		return nil
	})
}

// Assign puts an active floor staff member in charge of the table.
func (s *Service) Assign(ctx context.Context, id, userID string) (models.Table, error) {
	db := s.db.WithContext(ctx)
	table, err := s.find(db, id)
	if err != nil {
		return table, err
	}

	var user models.User
	err = db.First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !user.IsActive) {
		return table, ErrUserUnavailable
	}
	if err != nil {
		return table, err
	}
	switch user.Role {
	case models.RoleWaiter, models.RoleManager, models.RoleAdmin:
	default:
		return table, ErrNotWaiterRole
	}

	if err := db.Model(&models.Table{}).Where("id = ?", table.ID).Update("assigned_to", userID).Error; err != nil {
		return table, err
	}
	return s.find(db, id)
}

func (s *Service) Unassign(ctx context.Context, id string) (models.Table, error) {
	db := s.db.WithContext(ctx)
	table, err := s.find(db, id)
	if err != nil {
		return table, err
	}
	// By id: the preloaded AssignedUser would otherwise be written back.
	if err := db.Model(&models.Table{}).Where("id = ?", table.ID).Update("assigned_to", nil).Error; err != nil {
		return table, err
	}
	return s.find(db, id)
}

// StatusSummary counts tables per status.
func (s *Service) StatusSummary(ctx context.Context) (map[models.TableStatus]int, error) {
	var rows []struct {
		Status models.TableStatus
		Count  int
	}
	err := s.db.WithContext(ctx).Model(&models.Table{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	summary := make(map[models.TableStatus]int, len(rows))
	for _, r := range rows {
		summary[r.Status] = r.Count
	}
	return summary, nil
}

// -------- Handlers --------

// GET /api/tables
func (s *Service) ListTablesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tables, err := s.ListTables(c.Request.Context())
		if err != nil {
			c.Error(err)
			return
		}
		response.OK(c, http.StatusOK, gin.H{"tables": tables})
	}
}

// GET /api/tables/:id
func (s *Service) GetTableHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		table, err := s.GetTable(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.Error(err)
			return
		}
		response.OK(c, http.StatusOK, gin.H{"table": table})
	}
}

// POST /api/tables
func (s *Service) CreateTableHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateTableRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
		table, err := s.CreateTable(c.Request.Context(), req)
		if err != nil {
			c.Error(err)
			return
		}
		response.Message(c, http.StatusCreated, "Table created successfully", gin.H{"table": table})
	}
}

// PUT /api/tables/:id
func (s *Service) UpdateTableHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateTableRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
		table, err := s.UpdateTable(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			c.Error(err)
			return
		}
		response.Message(c, http.StatusOK, "Table updated successfully", gin.H{"table": table})
	}
}

// DELETE /api/tables/:id
func (s *Service) DeleteTableHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.DeleteTable(c.Request.Context(), c.Param("id")); err != nil {
			c.Error(err)
			return
		}
		response.Message(c, http.StatusOK, "Table deleted successfully", nil)
	}
}

// POST /api/tables/:id/assign
func (s *Service) AssignHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AssignRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
		table, err := s.Assign(c.Request.Context(), c.Param("id"), req.UserID)
		if err != nil {
			c.Error(err)
			return
		}
		response.Message(c, http.StatusOK, "Table assigned successfully", gin.H{"table": table})
	}
}

// POST /api/tables/:id/unassign
func (s *Service) UnassignHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		table, err := s.Unassign(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.Error(err)
			return
		}
		response.Message(c, http.StatusOK, "Table unassigned successfully", gin.H{"table": table})
	}
}

// GET /api/tables/status/summary
func (s *Service) StatusSummaryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := s.StatusSummary(c.Request.Context())
		if err != nil {
			c.Error(err)
			return
		}
		response.OK(c, http.StatusOK, gin.H{"summary": summary})
	}
}
