// Package testutil opens throwaway databases and fixtures for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/junaidrashid-git/restaurant-pos-api/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory SQLite database private to t.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func Logger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func CreateUser(t testing.TB, db *gorm.DB, role models.Role, email, password string) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{
		Email:     email,
		Username:  strings.Split(email, "@")[0],
		Password:  string(hash),
		FirstName: "Test",
		LastName:  string(role),
		Role:      role,
		IsActive:  true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func CreateMenuItem(t testing.TB, db *gorm.DB, name string, price string) models.MenuItem {
	t.Helper()

	var category models.Category
	if err := db.Where(models.Category{Name: "Main Course"}).
		Attrs(models.Category{SortOrder: 1, IsActive: true}).
		FirstOrCreate(&category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	item := models.MenuItem{
		Name:            name,
		Price:           decimal.RequireFromString(price),
		CategoryID:      category.ID,
		IsActive:        true,
		PreparationTime: 15,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("create menu item: %v", err)
	}
	return item
}

func CreateTable(t testing.TB, db *gorm.DB, number int, status models.TableStatus) models.Table {
	t.Helper()

	table := models.Table{Number: number, Capacity: 4, Status: status}
	if err := db.Create(&table).Error; err != nil {
		t.Fatalf("create table: %v", err)
	}
	return table
}
