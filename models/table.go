package models

import (
	"time"

	"gorm.io/gorm"
)

type TableStatus string

const (
	TableAvailable TableStatus = "AVAILABLE"
	TableOccupied  TableStatus = "OCCUPIED"
	TableReserved  TableStatus = "RESERVED"
	TableCleaning  TableStatus = "CLEANING"
)

func ParseTableStatus(s string) (TableStatus, bool) {
	switch st := TableStatus(s); st {
	case TableAvailable, TableOccupied, TableReserved, TableCleaning:
		return st, true
	}
	return "", false
}

// Table is a dining table. Status and CurrentOrderID only change together with
// the order that occupies the table.
type Table struct {
	ID             string      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Number         int         `gorm:"uniqueIndex;not null" json:"number"`
	Capacity       int         `gorm:"not null" json:"capacity"`
	Status         TableStatus `gorm:"type:varchar(20);not null;default:'AVAILABLE'" json:"status"`
	CurrentOrderID *string     `gorm:"type:varchar(36)" json:"currentOrderId"`
	AssignedTo     *string     `gorm:"type:varchar(36)" json:"assignedTo"`
	AssignedUser   *User       `gorm:"foreignKey:AssignedTo" json:"assignedUser,omitempty"`
	Orders         []Order     `gorm:"foreignKey:TableID" json:"orders,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

func (t *Table) BeforeCreate(tx *gorm.DB) error {
	ensureID(&t.ID)
	return nil
}

// ClaimTable marks an AVAILABLE table OCCUPIED by orderID. It reports false
// when the table was not AVAILABLE at the time of the update.
func ClaimTable(tx *gorm.DB, tableID, orderID string) (bool, error) {
	res := tx.Model(&Table{}).
		Where("id = ? AND status = ?", tableID, TableAvailable).
		Updates(map[string]any{"status": TableOccupied, "current_order_id": orderID})
	return res.RowsAffected == 1, res.Error
}

// ReleaseTable frees the table if orderID still holds it.
func ReleaseTable(tx *gorm.DB, tableID, orderID string) error {
	return tx.Model(&Table{}).
		Where("id = ? AND current_order_id = ?", tableID, orderID).
		Updates(map[string]any{"status": TableAvailable, "current_order_id": nil}).Error
}
