package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"pantry-market/models"
)

type testEnv struct {
	users      *fakeUserStore
	products   *fakeProductStore
	orders     *fakeOrderStore
	deliveries *fakeDeliveryStore

	userCtl     *UserController
	productCtl  *ProductController
	orderCtl    *OrderController
	deliveryCtl *DeliveryController
}

func newTestEnv() *testEnv {
	users := newFakeUserStore()
	products := newFakeProductStore()
	deliveries := newFakeDeliveryStore()
	orders := newFakeOrderStore(deliveries)
	return &testEnv{
		users:       users,
		products:    products,
		orders:      orders,
		deliveries:  deliveries,
		userCtl:     NewUserController(users),
		productCtl:  NewProductController(products, users),
		orderCtl:    NewOrderController(orders, products, deliveries, users, nil),
		deliveryCtl: NewDeliveryController(deliveries, orders, users),
	}
}

func (e *testEnv) seedUser(t *testing.T, role models.Role, email string) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		Email:   email,
		Role:    role,
		Name:    "Test " + string(role),
		Phone:   "0771234567",
		Address: "12 Main St",
		City:    "Colombo",
	}
	user.Password = string(hashed)
	switch role {
	case models.RoleVendor:
		user.Vendor = &models.VendorProfile{
			BusinessType:       "Bakery",
			RegistrationNumber: "REG-100",
			EstablishedYear:    "2015",
			OpeningHours:       "8-18",
			IsConnected:        true,
		}
	case models.RoleDriver:
		user.Driver = &models.DriverProfile{
			LicenseNumber:        "L-100",
			VehicleLicenseNumber: "V-100",
			NICNumber:            "N-100",
			VehicleType:          "bike",
		}
	}
	require.NoError(t, e.users.Insert(context.Background(), user))
	return user
}

func (e *testEnv) seedProduct(t *testing.T, vendorID primitive.ObjectID, name string, original, discounted float64) *models.Product {
	t.Helper()
	product := &models.Product{
		VendorID:        vendorID,
		Name:            name,
		Description:     "near expiry",
		Image:           "https://img.example/" + name,
		OriginalPrice:   original,
		DiscountedPrice: discounted,
		Quantity:        "1 pack",
		ExpiryDate:      time.Now().Add(48 * time.Hour),
		Category:        models.CategoryBakery,
		IsAvailable:     true,
	}
	require.NoError(t, e.products.Insert(context.Background(), product))
	return product
}

// do routes a single request through a one-route mux router so that path
// variables resolve, and returns the recorded response.
func do(t *testing.T, method, pattern, path string, h http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(raw)
	} else {
		reqBody = &bytes.Buffer{}
	}

	router := mux.NewRouter()
	router.HandleFunc(pattern, h).Methods(method)

	req := httptest.NewRequest(method, path, reqBody)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}
