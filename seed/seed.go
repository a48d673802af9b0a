// Package seed loads a starter catalog (staff, menu, tables, stock) from YAML
// and writes it without touching rows that already exist.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/junaidrashid-git/restaurant-pos-api/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type Catalog struct {
	Users       []User       `yaml:"users"`
	Categories  []Category   `yaml:"categories"`
	Modifiers   []Modifier   `yaml:"modifiers"`
	MenuItems   []MenuItem   `yaml:"menuItems"`
	Tables      []Table      `yaml:"tables"`
	Ingredients []Ingredient `yaml:"ingredients"`
}

type User struct {
	Email     string      `yaml:"email"`
	Username  string      `yaml:"username"`
	Password  string      `yaml:"password"`
	FirstName string      `yaml:"firstName"`
	LastName  string      `yaml:"lastName"`
	Role      models.Role `yaml:"role"`
}

type Category struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	SortOrder   int    `yaml:"sortOrder"`
}

type Modifier struct {
	Name  string          `yaml:"name"`
	Price decimal.Decimal `yaml:"price"`
}

type MenuItem struct {
	Name            string          `yaml:"name"`
	Description     string          `yaml:"description"`
	Price           decimal.Decimal `yaml:"price"`
	Category        string          `yaml:"category"`
	IsVegetarian    bool            `yaml:"isVegetarian"`
	IsSpicy         bool            `yaml:"isSpicy"`
	PreparationTime int             `yaml:"preparationTime"`
	Modifiers       []string        `yaml:"modifiers"`
	// Ingredients maps ingredient name to the quantity one portion uses.
	Ingredients map[string]decimal.Decimal `yaml:"ingredients"`
}

type Table struct {
	Number   int `yaml:"number"`
	Capacity int `yaml:"capacity"`
}

type Ingredient struct {
	Name         string          `yaml:"name"`
	Description  string          `yaml:"description"`
	Unit         string          `yaml:"unit"`
	CurrentStock decimal.Decimal `yaml:"currentStock"`
	MinStock     decimal.Decimal `yaml:"minStock"`
	CostPerUnit  decimal.Decimal `yaml:"costPerUnit"`
	Supplier     string          `yaml:"supplier"`
}

// Counts reports how many rows of each kind were inserted.
type Counts struct {
	Users, Categories, Modifiers, MenuItems, Tables, Ingredients, Usages int
}

func Parse(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse catalog: %w", err)
	}
	return c, c.validate()
}

// Load reads a catalog file, or the built-in one when path is empty.
func Load(path string) (Catalog, error) {
	if path == "" {
		return Parse(defaultCatalog)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, err
	}
	return Parse(data)
}

func (c Catalog) validate() error {
	for _, u := range c.Users {
		if _, ok := models.ParseRole(string(u.Role)); !ok {
			return fmt.Errorf("user %s: unknown role %q", u.Email, u.Role)
		}
		if len(u.Password) < 6 {
			return fmt.Errorf("user %s: password shorter than 6 characters", u.Email)
		}
	}
	categories := map[string]bool{}
	for _, cat := range c.Categories {
		categories[cat.Name] = true
	}
	ingredients := map[string]bool{}
	for _, ing := range c.Ingredients {
		ingredients[ing.Name] = true
	}
	modifiers := map[string]bool{}
	for _, m := range c.Modifiers {
		modifiers[m.Name] = true
	}
	for _, it := range c.MenuItems {
		if !categories[it.Category] {
			return fmt.Errorf("menu item %s: unknown category %q", it.Name, it.Category)
		}
		if it.Price.IsNegative() {
			return fmt.Errorf("menu item %s: negative price", it.Name)
		}
		for _, m := range it.Modifiers {
			if !modifiers[m] {
				return fmt.Errorf("menu item %s: unknown modifier %q", it.Name, m)
			}
		}
		for name := range it.Ingredients {
			if !ingredients[name] {
				return fmt.Errorf("menu item %s: unknown ingredient %q", it.Name, name)
			}
		}
	}
	return nil
}

// insert creates row unless a row matching where already exists, and
// reports whether it created one.
func insert[T any](tx *gorm.DB, where T, row *T) (bool, error) {
	var existing T
	err := tx.Where(&where).First(&existing).Error
	if err == nil {
		*row = existing
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	return true, tx.Create(row).Error
}

// Apply writes the catalog in one transaction. Existing rows, matched by
// their natural key, are left as they are, so running it twice is harmless.
func Apply(ctx context.Context, db *gorm.DB, c Catalog, logger *zap.SugaredLogger) (Counts, error) {
	var n Counts
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range c.Users {
			hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			row := models.User{
				Email:     strings.ToLower(u.Email),
				Username:  u.Username,
				Password:  string(hash),
				FirstName: u.FirstName,
				LastName:  u.LastName,
				Role:      u.Role,
				IsActive:  true,
			}
			created, err := insert(tx, models.User{Email: row.Email}, &row)
			if err != nil {
				return fmt.Errorf("user %s: %w", u.Email, err)
			}
			if created {
				n.Users++
			}
		}

		categoryIDs := map[string]string{}
		for _, cat := range c.Categories {
			row := models.Category{Name: cat.Name, Description: cat.Description, SortOrder: cat.SortOrder, IsActive: true}
			created, err := insert(tx, models.Category{Name: cat.Name}, &row)
			if err != nil {
				return fmt.Errorf("category %s: %w", cat.Name, err)
			}
			if created {
				n.Categories++
			}
			categoryIDs[cat.Name] = row.ID
		}

		modifiers := map[string]models.Modifier{}
		for _, m := range c.Modifiers {
			row := models.Modifier{Name: m.Name, Price: m.Price.Round(2), IsActive: true}
			created, err := insert(tx, models.Modifier{Name: m.Name}, &row)
			if err != nil {
				return fmt.Errorf("modifier %s: %w", m.Name, err)
			}
			if created {
				n.Modifiers++
			}
			modifiers[m.Name] = row
		}

		ingredientIDs := map[string]string{}
		for _, ing := range c.Ingredients {
			row := models.Ingredient{
				Name:         ing.Name,
				Description:  ing.Description,
				Unit:         ing.Unit,
				CurrentStock: ing.CurrentStock.Round(2),
				MinStock:     ing.MinStock.Round(2),
				CostPerUnit:  ing.CostPerUnit.Round(2),
				Supplier:     ing.Supplier,
				IsActive:     true,
			}
			created, err := insert(tx, models.Ingredient{Name: ing.Name}, &row)
			if err != nil {
				return fmt.Errorf("ingredient %s: %w", ing.Name, err)
			}
			if created {
				n.Ingredients++
			}
			ingredientIDs[ing.Name] = row.ID
		}

		for _, it := range c.MenuItems {
			row := models.MenuItem{
				Name:            it.Name,
				Description:     it.Description,
				Price:           it.Price.Round(2),
				CategoryID:      categoryIDs[it.Category],
				IsActive:        true,
				IsVegetarian:    it.IsVegetarian,
				IsSpicy:         it.IsSpicy,
				PreparationTime: it.PreparationTime,
			}
			created, err := insert(tx, models.MenuItem{Name: it.Name}, &row)
			if err != nil {
				return fmt.Errorf("menu item %s: %w", it.Name, err)
			}
			if !created {
				continue
			}
			n.MenuItems++

			if len(it.Modifiers) > 0 {
				mods := make([]models.Modifier, 0, len(it.Modifiers))
				for _, name := range it.Modifiers {
					mods = append(mods, modifiers[name])
				}
				if err := tx.Model(&row).Association("Modifiers").Append(mods); err != nil {
					return fmt.Errorf("menu item %s modifiers: %w", it.Name, err)
				}
			}

			names := make([]string, 0, len(it.Ingredients))
			for name := range it.Ingredients {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				usage := models.IngredientUsage{
					MenuItemID:   row.ID,
					IngredientID: ingredientIDs[name],
					Quantity:     it.Ingredients[name].Round(3),
				}
				if err := tx.Create(&usage).Error; err != nil {
					return fmt.Errorf("menu item %s uses %s: %w", it.Name, name, err)
				}
				n.Usages++
			}
		}

		for _, t := range c.Tables {
			row := models.Table{Number: t.Number, Capacity: t.Capacity, Status: models.TableAvailable}
			created, err := insert(tx, models.Table{Number: t.Number}, &row)
			if err != nil {
				return fmt.Errorf("table %d: %w", t.Number, err)
			}
			if created {
				n.Tables++
			}
		}
		return nil
	})
	if err != nil {
		return n, err
	}
	logger.Infow("catalog seeded",
		"users", n.Users, "categories", n.Categories, "modifiers", n.Modifiers,
		"menu_items", n.MenuItems, "ingredients", n.Ingredients, "usages", n.Usages, "tables", n.Tables)
	return n, nil
}
