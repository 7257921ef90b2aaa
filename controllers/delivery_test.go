package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"pantry-market/models"
)

func (e *testEnv) seedOrderWithDelivery(t *testing.T, customer *models.User) (*models.Order, *models.Delivery) {
	t.Helper()
	order := &models.Order{
		CustomerID:    customer.ID,
		Items:         []models.OrderItem{{ProductID: primitive.NewObjectID(), Quantity: 1, Price: 100}},
		TotalAmount:   100,
		Status:        models.OrderPending,
		Type:          models.TypeOrder,
		PaymentStatus: models.PaymentPending,
	}
	delivery := &models.Delivery{
		CustomerID: customer.ID,
		Address: models.DeliveryAddress{
			Street: "12 Main St", City: "Colombo", PostalCode: "00100",
		},
		PreferredTime: "evening",
		Status:        models.DeliveryPending,
	}
	require.NoError(t, e.orders.CreateWithDelivery(context.Background(), order, delivery))
	return order, delivery
}

func TestCreateDelivery(t *testing.T) {
	env := newTestEnv()
	customer := env.seedUser(t, models.RoleCustomer, "customer@example.com")

	order := &models.Order{
		CustomerID:    customer.ID,
		Items:         []models.OrderItem{{ProductID: primitive.NewObjectID(), Quantity: 1, Price: 50}},
		TotalAmount:   50,
		Status:        models.OrderPending,
		Type:          models.TypeOrder,
		PaymentStatus: models.PaymentPending,
	}
	require.NoError(t, env.orders.CreateWithDelivery(context.Background(), order, nil))

	body := createDeliveryRequest{
		OrderID: order.ID.Hex(),
		Address: models.DeliveryAddress{
			Street: "12 Main St", City: "Colombo", PostalCode: "00100",
		},
		PreferredTime: "morning",
	}
	rec := do(t, "POST", "/api/deliveries", "/api/deliveries", asUser(env.deliveryCtl.CreateDelivery, customer), body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	delivery := decode[models.Delivery](t, rec)
	assert.Equal(t, models.DeliveryPending, delivery.Status)
	assert.Equal(t, order.ID, delivery.OrderID)

	// incomplete address is rejected
	body.Address.PostalCode = ""
	rec = do(t, "POST", "/api/deliveries", "/api/deliveries", asUser(env.deliveryCtl.CreateDelivery, customer), body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// unknown order is rejected
	body.Address.PostalCode = "00100"
	body.OrderID = primitive.NewObjectID().Hex()
	rec = do(t, "POST", "/api/deliveries", "/api/deliveries", asUser(env.deliveryCtl.CreateDelivery, customer), body)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetDeliveryByOrder(t *testing.T) {
	env := newTestEnv()
	customer := env.seedUser(t, models.RoleCustomer, "customer@example.com")
	stranger := env.seedUser(t, models.RoleCustomer, "stranger@example.com")
	driver := env.seedUser(t, models.RoleDriver, "driver@example.com")
	order, delivery := env.seedOrderWithDelivery(t, customer)

	delivery.DriverID = &driver.ID
	delivery.Status = models.DeliveryAssigned
	require.NoError(t, env.deliveries.Update(context.Background(), delivery))

	pattern := "/api/deliveries/order/{orderId}"
	path := "/api/deliveries/order/" + order.ID.Hex()

	rec := do(t, "GET", pattern, path, asUser(env.deliveryCtl.GetDeliveryByOrder, stranger), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	for _, u := range []*models.User{customer, driver} {
		rec = do(t, "GET", pattern, path, asUser(env.deliveryCtl.GetDeliveryByOrder, u), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		view := decode[models.DeliveryView](t, rec)
		require.NotNil(t, view.Driver)
		assert.Equal(t, driver.Phone, view.Driver.Phone)
	}

	rec = do(t, "GET", pattern, "/api/deliveries/order/"+primitive.NewObjectID().Hex(),
		asUser(env.deliveryCtl.GetDeliveryByOrder, customer), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateDeliveryStatusRequiresDriver(t *testing.T) {
	env := newTestEnv()
	customer := env.seedUser(t, models.RoleCustomer, "customer@example.com")
	admin := env.seedUser(t, models.RoleAdmin, "admin@example.com")
	_, delivery := env.seedOrderWithDelivery(t, customer)

	pattern := "/api/deliveries/{id}/status"
	path := "/api/deliveries/" + delivery.ID.Hex() + "/status"

	// cannot leave pending without a driver
	rec := do(t, "PUT", pattern, path, asUser(env.deliveryCtl.UpdateDeliveryStatus, admin),
		map[string]string{"status": "assigned"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	stored, err := env.deliveries.FindByID(context.Background(), delivery.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryPending, stored.Status)
}

func TestUpdateDeliveryStatusAssignsDriverAndWalksStates(t *testing.T) {
	env := newTestEnv()
	customer := env.seedUser(t, models.RoleCustomer, "customer@example.com")
	admin := env.seedUser(t, models.RoleAdmin, "admin@example.com")
	driver := env.seedUser(t, models.RoleDriver, "driver@example.com")
	_, delivery := env.seedOrderWithDelivery(t, customer)

	pattern := "/api/deliveries/{id}/status"
	path := "/api/deliveries/" + delivery.ID.Hex() + "/status"

	// a non-driver cannot be assigned
	rec := do(t, "PUT", pattern, path, asUser(env.deliveryCtl.UpdateDeliveryStatus, admin),
		map[string]string{"status": "assigned", "driver": customer.ID.Hex()})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, "PUT", pattern, path, asUser(env.deliveryCtl.UpdateDeliveryStatus, admin),
		map[string]string{"status": "assigned", "driver": driver.ID.Hex()})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decode[models.DeliveryView](t, rec)
	require.NotNil(t, view.Driver)
	assert.Equal(t, driver.Name, view.Driver.Name)

	// skipping in_progress is rejected
	rec = do(t, "PUT", pattern, path, asUser(env.deliveryCtl.UpdateDeliveryStatus, admin),
		map[string]string{"status": "completed"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for _, status := range []string{"in_progress", "completed"} {
		rec = do(t, "PUT", pattern, path, asUser(env.deliveryCtl.UpdateDeliveryStatus, admin),
			map[string]string{"status": status})
		require.Equal(t, http.StatusOK, rec.Code, status)
	}

	// completed is terminal
	rec = do(t, "PUT", pattern, path, asUser(env.deliveryCtl.UpdateDeliveryStatus, admin),
		map[string]string{"status": "cancelled"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListMyDeliveries(t *testing.T) {
	env := newTestEnv()
	customer := env.seedUser(t, models.RoleCustomer, "customer@example.com")
	driver := env.seedUser(t, models.RoleDriver, "driver@example.com")
	_, mine := env.seedOrderWithDelivery(t, customer)
	env.seedOrderWithDelivery(t, customer) // unassigned

	mine.DriverID = &driver.ID
	mine.Status = models.DeliveryAssigned
	require.NoError(t, env.deliveries.Update(context.Background(), mine))

	rec := do(t, "GET", "/api/deliveries/mine", "/api/deliveries/mine",
		asUser(env.deliveryCtl.ListMyDeliveries, driver), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	deliveries := decode[[]models.Delivery](t, rec)
	require.Len(t, deliveries, 1)
	assert.Equal(t, mine.ID, deliveries[0].ID)
}

func TestDeleteDelivery(t *testing.T) {
	env := newTestEnv()
	customer := env.seedUser(t, models.RoleCustomer, "customer@example.com")
	admin := env.seedUser(t, models.RoleAdmin, "admin@example.com")
	_, delivery := env.seedOrderWithDelivery(t, customer)

	pattern := "/api/deliveries/{id}"
	rec := do(t, "DELETE", pattern, "/api/deliveries/"+delivery.ID.Hex(),
		asUser(env.deliveryCtl.DeleteDelivery, admin), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, "DELETE", pattern, "/api/deliveries/"+delivery.ID.Hex(),
		asUser(env.deliveryCtl.DeleteDelivery, admin), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
