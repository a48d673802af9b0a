package menuControllers

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/junaidrashid-git/restaurant-pos-api/models"
	"github.com/junaidrashid-git/restaurant-pos-api/testutil"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
)

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func newService(t *testing.T) *Service {
	t.Helper()
	return NewService(testutil.NewDB(t), testutil.Logger())
}

func mustCategory(t *testing.T, s *Service, name string, order int) models.Category {
	t.Helper()
	c, err := s.CreateCategory(context.Background(), CategoryRequest{Name: name, SortOrder: order})
	if err != nil {
		t.Fatalf("create category %q: %v", name, err)
	}
	return c
}

func TestCreateCategoryRejectsDuplicateName(t *testing.T) {
	s := newService(t)
	mustCategory(t, s, "Drinks", 3)

	_, err := s.CreateCategory(context.Background(), CategoryRequest{Name: " Drinks "})
	if !errors.Is(err, ErrCategoryExists) {
		t.Fatalf("want ErrCategoryExists, got %v", err)
	}
}

func TestDeleteCategoryWithItemsIsRefused(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	cat := mustCategory(t, s, "Starters", 1)
	if _, err := s.CreateItem(ctx, MenuItemRequest{Name: "Samosa", Price: price("60"), CategoryID: cat.ID, PreparationTime: 5}); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteCategory(ctx, cat.ID); !errors.Is(err, ErrCategoryHasItems) {
		t.Fatalf("want ErrCategoryHasItems, got %v", err)
	}

	empty := mustCategory(t, s, "Seasonal", 9)
	if err := s.DeleteCategory(ctx, empty.ID); err != nil {
		t.Fatalf("delete empty category: %v", err)
	}
	if err := s.DeleteCategory(ctx, empty.ID); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("want ErrCategoryNotFound, got %v", err)
	}
}

func TestListItemsOrdersByCategoryThenName(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	drinks := mustCategory(t, s, "Drinks", 2)
	mains := mustCategory(t, s, "Mains", 1)

	for _, req := range []MenuItemRequest{
		{Name: "Lassi", Price: price("90"), CategoryID: drinks.ID},
		{Name: "Veg Thali", Price: price("350"), CategoryID: mains.ID, IsVegetarian: true},
		{Name: "Chicken Momo", Price: price("250"), CategoryID: mains.ID, IsSpicy: true},
	} {
		if _, err := s.CreateItem(ctx, req); err != nil {
			t.Fatalf("create %s: %v", req.Name, err)
		}
	}

	items, err := s.ListItems(ctx, ItemFilter{})
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, it := range items {
		got = append(got, it.Name)
	}
	want := []string{"Chicken Momo", "Veg Thali", "Lassi"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	items, err = s.ListItems(ctx, ItemFilter{Search: "momo"})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Name != "Chicken Momo" {
		t.Fatalf("search momo returned %+v", items)
	}

	items, err = s.ListItems(ctx, ItemFilter{CategoryID: drinks.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Name != "Lassi" {
		t.Fatalf("category filter returned %+v", items)
	}
}

func TestCreateItemValidatesCategoryAndPrice(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	cat := mustCategory(t, s, "Mains", 1)

	if _, err := s.CreateItem(ctx, MenuItemRequest{Name: "Dal", Price: price("-1"), CategoryID: cat.ID}); !errors.Is(err, ErrNegativePrice) {
		t.Fatalf("want ErrNegativePrice, got %v", err)
	}
	if _, err := s.CreateItem(ctx, MenuItemRequest{Name: "Dal", Price: price("100"), CategoryID: "00000000-0000-0000-0000-000000000000"}); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("want ErrCategoryNotFound, got %v", err)
	}
}

func TestUpdateItemReplacesModifiersAndToggles(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	cat := mustCategory(t, s, "Mains", 1)
	cheese, err := s.CreateModifier(ctx, ModifierRequest{Name: "Extra Cheese", Price: price("40")})
	if err != nil {
		t.Fatal(err)
	}
	egg, err := s.CreateModifier(ctx, ModifierRequest{Name: "Add Egg", Price: price("30")})
	if err != nil {
		t.Fatal(err)
	}

	item, err := s.CreateItem(ctx, MenuItemRequest{Name: "Fried Rice", Price: price("220"), CategoryID: cat.ID, ModifierIDs: []string{cheese.ID}})
	if err != nil {
		t.Fatal(err)
	}
	if len(item.Modifiers) != 1 {
		t.Fatalf("want 1 modifier, got %d", len(item.Modifiers))
	}

	inactive := false
	item, err = s.UpdateItem(ctx, item.ID, UpdateMenuItemRequest{IsActive: &inactive, Price: price("240"), ModifierIDs: []string{egg.ID}})
	if err != nil {
		t.Fatal(err)
	}
	if item.IsActive {
		t.Fatal("item still active")
	}
	if !item.Price.Equal(decimal.RequireFromString("240")) {
		t.Fatalf("price = %s", item.Price)
	}
	if len(item.Modifiers) != 1 || item.Modifiers[0].ID != egg.ID {
		t.Fatalf("modifiers = %+v", item.Modifiers)
	}

	active := true
	items, err := s.ListItems(ctx, ItemFilter{IsActive: &active})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Fatalf("inactive item listed: %+v", items)
	}
}

func TestDeleteItemWithOrderLinesIsRefused(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	item := testutil.CreateMenuItem(t, s.db, "Chicken Momo", "250")
	waiter := testutil.CreateUser(t, s.db, models.RoleWaiter, "waiter@restaurant.com", "waiter123")

	order := models.Order{
		OrderNumber: "ORD-20260314-0001",
		OrderType:   models.OrderTypeTakeaway,
		Status:      models.OrderStatusPending,
		CreatedBy:   waiter.ID,
		Items: []models.OrderItem{{
			MenuItemID: item.ID,
			Quantity:   1,
			UnitPrice:  item.Price,
			TotalPrice: item.Price,
		}},
	}
	if err := s.db.Create(&order).Error; err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteItem(ctx, item.ID); !errors.Is(err, ErrItemHasOrders) {
		t.Fatalf("want ErrItemHasOrders, got %v", err)
	}

	other := testutil.CreateMenuItem(t, s.db, "Veg Chowmein", "180")
	if err := s.DeleteItem(ctx, other.ID); err != nil {
		t.Fatalf("delete unused item: %v", err)
	}
	if _, err := s.GetItem(ctx, other.ID); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("want ErrItemNotFound, got %v", err)
	}
}

func TestCreateModifierRejectsDuplicate(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	if _, err := s.CreateModifier(ctx, ModifierRequest{Name: "No Onion", Price: price("0")}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateModifier(ctx, ModifierRequest{Name: "No Onion", Price: price("0")}); !errors.Is(err, ErrModifierExists) {
		t.Fatalf("want ErrModifierExists, got %v", err)
	}
	mods, err := s.ListModifiers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(mods) != 1 {
		t.Fatalf("want 1 modifier, got %d", len(mods))
	}
}

func workbook(t *testing.T, rows [][]string) *bytes.Reader {
	t.Helper()
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Menu")
	if err != nil {
		t.Fatal(err)
	}
	for _, cells := range rows {
		row := sheet.AddRow()
		for _, v := range cells {
			row.AddCell().SetValue(v)
		}
	}
	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		t.Fatal(err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestImportItemsUpsertsAndSkips(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	existing := testutil.CreateMenuItem(t, s.db, "Chicken Momo", "250")

	r := workbook(t, [][]string{
		itemColumns,
		{"", "Chicken Momo", "Steamed", "270", "Main Course", "false", "true", "20"},
		{"", "Mango Lassi", "", "120", "Drinks", "yes", "no", "5"},
		{"", "", "nameless", "10", "Drinks", "", "", ""},
		{"", "Bad Price", "", "abc", "Drinks", "", "", ""},
	})

	res, err := s.ImportItems(ctx, r, r.Size())
	if err != nil {
		t.Fatal(err)
	}
	if res != (ImportResult{Created: 1, Updated: 1, Skipped: 2}) {
		t.Fatalf("result = %+v", res)
	}

	momo, err := s.GetItem(ctx, existing.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !momo.Price.Equal(decimal.RequireFromString("270")) || !momo.IsSpicy || momo.PreparationTime != 20 {
		t.Fatalf("momo not updated: %+v", momo)
	}

	var lassi models.MenuItem
	if err := s.db.Preload("Category").First(&lassi, "name = ?", "Mango Lassi").Error; err != nil {
		t.Fatal(err)
	}
	if !lassi.IsVegetarian || lassi.Category == nil || lassi.Category.Name != "Drinks" {
		t.Fatalf("lassi = %+v", lassi)
	}
}

func TestImportRejectsHeaderOnlySheet(t *testing.T) {
	s := newService(t)
	r := workbook(t, [][]string{itemColumns})
	if _, err := s.ImportItems(context.Background(), r, r.Size()); !errors.Is(err, ErrEmptySheet) {
		t.Fatalf("want ErrEmptySheet, got %v", err)
	}
}

func TestExportItemsWritesHeaderAndRows(t *testing.T) {
	s := newService(t)
	testutil.CreateMenuItem(t, s.db, "Chicken Momo", "250")

	file, err := s.ExportItems(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	sheet := file.Sheets[0]
	if sheet.MaxRow != 2 {
		t.Fatalf("rows = %d", sheet.MaxRow)
	}
	if got := sheet.Rows[1].Cells[3].String(); got != "250.00" {
		t.Fatalf("price cell = %q", got)
	}
	if got := sheet.Rows[1].Cells[4].String(); got != "Main Course" {
		t.Fatalf("category cell = %q", got)
	}
}
