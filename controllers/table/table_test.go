package tableControllers

import (
	"context"
	"errors"
	"testing"

	"github.com/junaidrashid-git/restaurant-pos-api/models"
	"github.com/junaidrashid-git/restaurant-pos-api/testutil"
	"github.com/shopspring/decimal"
)

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func TestCreateAndUpdateTable(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db, testutil.Logger())
	ctx := context.Background()

	table, err := svc.CreateTable(ctx, CreateTableRequest{Number: 1, Capacity: 4})
	if err != nil {
		t.Fatal(err)
	}
	if table.Status != models.TableAvailable {
		t.Fatalf("status = %s", table.Status)
	}
	if _, err := svc.CreateTable(ctx, CreateTableRequest{Number: 1, Capacity: 2}); !errors.Is(err, ErrDuplicateNumber) {
		t.Fatalf("duplicate number = %v", err)
	}

	other, _ := svc.CreateTable(ctx, CreateTableRequest{Number: 2, Capacity: 2})
	if _, err := svc.UpdateTable(ctx, other.ID, UpdateTableRequest{Number: intPtr(1)}); !errors.Is(err, ErrDuplicateNumber) {
		t.Fatalf("renumber onto existing = %v", err)
	}

	updated, err := svc.UpdateTable(ctx, table.ID, UpdateTableRequest{Capacity: intPtr(6), Status: strPtr("RESERVED")})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Capacity != 6 || updated.Status != models.TableReserved {
		t.Fatalf("updated = %+v", updated)
	}
	if _, err := svc.UpdateTable(ctx, table.ID, UpdateTableRequest{Status: strPtr("OCCUPIED")}); !errors.Is(err, ErrStatusNotSettable) {
		t.Fatalf("manual OCCUPIED = %v", err)
	}
}

func TestHeldTableStatusIsLocked(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db, testutil.Logger())
	ctx := context.Background()
	waiter := testutil.CreateUser(t, db, models.RoleWaiter, "w@restaurant.com", "waiter123")
	table := testutil.CreateTable(t, db, 9, models.TableAvailable)

	order := models.Order{
		OrderNumber: "ORD20260314001",
		TableID:     &table.ID,
		OrderType:   models.OrderTypeDineIn,
		Subtotal:    decimal.NewFromInt(10),
		Tax:         decimal.Zero,
		Total:       decimal.NewFromInt(10),
		Status:      models.OrderStatusPending,
		CreatedBy:   waiter.ID,
	}
	db.Create(&order)
	if ok, err := models.ClaimTable(db, table.ID, order.ID); !ok || err != nil {
		t.Fatalf("claim: %v %v", ok, err)
	}

	if _, err := svc.UpdateTable(ctx, table.ID, UpdateTableRequest{Status: strPtr("CLEANING")}); !errors.Is(err, ErrTableHeld) {
		t.Fatalf("status edit on held table = %v", err)
	}
	if err := svc.DeleteTable(ctx, table.ID); !errors.Is(err, ErrActiveOrders) {
		t.Fatalf("delete held table = %v", err)
	}

	tables, err := svc.ListTables(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(tables) != 1 || len(tables[0].Orders) != 1 || tables[0].Orders[0].ID != order.ID {
		t.Fatalf("list = %+v", tables)
	}

	summary, err := svc.StatusSummary(ctx)
	if err != nil || summary[models.TableOccupied] != 1 {
		t.Fatalf("summary = %v, %v", summary, err)
	}

	db.Model(&order).Update("status", models.OrderStatusCompleted)
	models.ReleaseTable(db, table.ID, order.ID)
	if err := svc.DeleteTable(ctx, table.ID); err != nil {
		t.Fatalf("delete released table: %v", err)
	}
	var kept models.Order
	db.First(&kept, "id = ?", order.ID)
	if kept.TableID != nil {
		t.Fatal("past order still points at the deleted table")
	}
}

func TestAssign(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db, testutil.Logger())
	ctx := context.Background()
	table := testutil.CreateTable(t, db, 3, models.TableAvailable)
	waiter := testutil.CreateUser(t, db, models.RoleWaiter, "w@restaurant.com", "waiter123")
	cook := testutil.CreateUser(t, db, models.RoleKitchenStaff, "k@restaurant.com", "kitchen123")

	got, err := svc.Assign(ctx, table.ID, waiter.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.AssignedTo == nil || *got.AssignedTo != waiter.ID || got.AssignedUser == nil {
		t.Fatalf("assigned = %+v", got)
	}
	if _, err := svc.Assign(ctx, table.ID, cook.ID); !errors.Is(err, ErrNotWaiterRole) {
		t.Fatalf("kitchen staff = %v", err)
	}

	got, err = svc.Unassign(ctx, table.ID)
	if err != nil || got.AssignedTo != nil {
		t.Fatalf("unassign = %+v, %v", got, err)
	}
}
