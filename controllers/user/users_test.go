package userControllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/restaurant-pos-api/auth"
	"github.com/junaidrashid-git/restaurant-pos-api/middleware"
	"github.com/junaidrashid-git/restaurant-pos-api/models"
	"github.com/junaidrashid-git/restaurant-pos-api/testutil"
	"golang.org/x/crypto/bcrypt"
)

func newService(t *testing.T) *Service {
	t.Helper()
	s := NewService(testutil.NewDB(t), testutil.Logger())
	s.cost = bcrypt.MinCost
	return s
}

func cashier() CreateUserRequest {
	return CreateUserRequest{
		Email:     "Cashier@Restaurant.com",
		Username:  "cashier",
		Password:  "cashier123",
		FirstName: "Sita",
		LastName:  "Sharma",
		Role:      models.RoleCashier,
	}
}

func TestCreateUserHashesAndNormalises(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, cashier())
	if err != nil {
		t.Fatal(err)
	}
	if user.Email != "cashier@restaurant.com" {
		t.Fatalf("email = %q", user.Email)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("cashier123")) != nil {
		t.Fatal("password not hashed with bcrypt")
	}

	if _, err := s.CreateUser(ctx, cashier()); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("want ErrEmailTaken, got %v", err)
	}
	dup := cashier()
	dup.Email = "other@restaurant.com"
	if _, err := s.CreateUser(ctx, dup); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("want ErrUsernameTaken, got %v", err)
	}
	bad := cashier()
	bad.Email, bad.Username, bad.Role = "x@restaurant.com", "xavier", "CHEF"
	if _, err := s.CreateUser(ctx, bad); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("want ErrInvalidRole, got %v", err)
	}
}

func TestUpdateUserChangesRoleAndPassword(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	user, err := s.CreateUser(ctx, cashier())
	if err != nil {
		t.Fatal(err)
	}

	role := models.RoleManager
	pw := "newsecret"
	updated, err := s.UpdateUser(ctx, user.ID, UpdateUserRequest{Role: &role, Password: &pw})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Role != models.RoleManager {
		t.Fatalf("role = %s", updated.Role)
	}
	if bcrypt.CompareHashAndPassword([]byte(updated.Password), []byte(pw)) != nil {
		t.Fatal("password not updated")
	}

	if _, err := s.UpdateUser(ctx, "missing", UpdateUserRequest{Role: &role}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound, got %v", err)
	}
}

func TestSetStatusRefusesSelfDeactivation(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, s.db, models.RoleAdmin, "admin@restaurant.com", "admin123")
	user, err := s.CreateUser(ctx, cashier())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.SetStatus(ctx, admin.ID, admin.ID, false); !errors.Is(err, ErrSelfDeactivate) {
		t.Fatalf("want ErrSelfDeactivate, got %v", err)
	}
	got, err := s.SetStatus(ctx, admin.ID, user.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if got.IsActive {
		t.Fatal("user still active")
	}

	inactive := false
	users, total, err := s.ListUsers(ctx, ListFilter{IsActive: &inactive, Page: 1, Limit: 20})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || users[0].ID != user.ID {
		t.Fatalf("inactive users = %+v", users)
	}
}

func TestListUsersSearchesAndFiltersRole(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	testutil.CreateUser(t, s.db, models.RoleWaiter, "ram@restaurant.com", "waiter123")
	testutil.CreateUser(t, s.db, models.RoleWaiter, "hari@restaurant.com", "waiter123")
	testutil.CreateUser(t, s.db, models.RoleKitchenStaff, "chef@restaurant.com", "kitchen123")

	users, total, err := s.ListUsers(ctx, ListFilter{Role: string(models.RoleWaiter), Page: 1, Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(users) != 1 {
		t.Fatalf("total = %d, page = %d", total, len(users))
	}

	users, _, err = s.ListUsers(ctx, ListFilter{Search: "HARI", Page: 1, Limit: 20})
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 || users[0].Email != "hari@restaurant.com" {
		t.Fatalf("search = %+v", users)
	}
}

func TestDeleteHandlerDeactivates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := newService(t)
	admin := testutil.CreateUser(t, s.db, models.RoleAdmin, "admin@restaurant.com", "admin123")
	waiter := testutil.CreateUser(t, s.db, models.RoleWaiter, "waiter@restaurant.com", "waiter123")

	r := gin.New()
	r.Use(middleware.ErrorHandler(testutil.Logger()))
	r.Use(func(c *gin.Context) { auth.SetUser(c, admin) })
	r.DELETE("/users/:id", s.DeleteUserHandler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/users/"+waiter.ID, nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "User deactivated successfully") {
		t.Fatalf("status = %d body = %s", w.Code, w.Body)
	}

	var stored models.User
	if err := s.db.First(&stored, "id = ?", waiter.ID).Error; err != nil {
		t.Fatal(err)
	}
	if stored.IsActive {
		t.Fatal("waiter still active")
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/users/"+admin.ID, nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("self delete status = %d", w.Code)
	}
}
