package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pantry-market/models"
	"pantry-market/statemachine"
	"pantry-market/store"
	"pantry-market/utils"
)

// DeliveryController handles delivery lifecycle requests.
type DeliveryController struct {
	Deliveries store.DeliveryStore
	Orders     store.OrderStore
	Users      store.UserStore
}

// NewDeliveryController creates a new DeliveryController.
func NewDeliveryController(deliveries store.DeliveryStore, orders store.OrderStore, users store.UserStore) *DeliveryController {
	return &DeliveryController{Deliveries: deliveries, Orders: orders, Users: users}
}

type createDeliveryRequest struct {
	OrderID       string                 `json:"orderId"`
	Address       models.DeliveryAddress `json:"address"`
	PreferredTime string                 `json:"preferredTime"`
}

// CreateDelivery records a delivery for an existing order of the
// authenticated customer.
func (dc *DeliveryController) CreateDelivery(w http.ResponseWriter, r *http.Request) {
	customerID, err := sessionObjectID(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	var req createDeliveryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, utils.Validationf("invalid request body"))
		return
	}
	orderID, err := primitive.ObjectIDFromHex(req.OrderID)
	if err != nil {
		utils.WriteError(w, utils.Validationf("invalid orderId"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	if _, err := dc.Orders.FindByID(ctx, orderID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteError(w, utils.NotFoundf("order not found"))
			return
		}
		utils.WriteError(w, err)
		return
	}

	delivery := &models.Delivery{
		OrderID:       orderID,
		CustomerID:    customerID,
		Address:       req.Address,
		PreferredTime: req.PreferredTime,
		Status:        models.DeliveryPending,
	}
	if err := delivery.Validate(); err != nil {
		utils.WriteError(w, err)
		return
	}

	if err := dc.Deliveries.Insert(ctx, delivery); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, delivery)
}

// GetDeliveryByOrder returns the delivery linked to an order, with driver
// identity attached when assigned. Readable by the owning customer, the
// assigned driver, or an admin.
func (dc *DeliveryController) GetDeliveryByOrder(w http.ResponseWriter, r *http.Request) {
	requesterID, err := sessionObjectID(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	orderID, err := objectIDVar(r, "orderId")
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	delivery, err := dc.Deliveries.FindByOrder(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		utils.WriteError(w, utils.NotFoundf("no delivery exists for this order"))
		return
	}
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	isAssignedDriver := delivery.DriverID != nil && *delivery.DriverID == requesterID
	if delivery.CustomerID != requesterID && !isAssignedDriver && sessionRole(r) != models.RoleAdmin {
		utils.WriteError(w, utils.Forbiddenf("not authorized to view this delivery"))
		return
	}

	view, err := withDriver(ctx, dc.Users, delivery)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, view)
}

// ListDeliveries returns every delivery. Admin only.
func (dc *DeliveryController) ListDeliveries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	deliveries, err := dc.Deliveries.List(ctx, nil)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, deliveries)
}

// ListMyDeliveries returns the deliveries assigned to the authenticated
// driver.
func (dc *DeliveryController) ListMyDeliveries(w http.ResponseWriter, r *http.Request) {
	driverID, err := sessionObjectID(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	deliveries, err := dc.Deliveries.List(ctx, &driverID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, deliveries)
}

// UpdateDeliveryStatus moves a delivery along its status state machine and
// optionally assigns a driver. Admin only. A delivery may not leave pending
// without a driver.
func (dc *DeliveryController) UpdateDeliveryStatus(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDVar(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	var body struct {
		Status models.DeliveryStatus `json:"status"`
		Driver string                `json:"driver,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.WriteError(w, utils.Validationf("invalid request body"))
		return
	}
	if !models.ValidDeliveryStatus(body.Status) {
		utils.WriteError(w, utils.Validationf("invalid delivery status: %s", body.Status))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	delivery, err := dc.Deliveries.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		utils.WriteError(w, utils.NotFoundf("delivery not found"))
		return
	}
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	if err := statemachine.Deliveries.Can(string(delivery.Status), string(body.Status)); err != nil {
		utils.WriteError(w, err)
		return
	}

	if body.Driver != "" {
		driverID, err := primitive.ObjectIDFromHex(body.Driver)
		if err != nil {
			utils.WriteError(w, utils.Validationf("invalid driver id"))
			return
		}
		driver, err := dc.Users.FindByID(ctx, driverID)
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteError(w, utils.NotFoundf("driver not found"))
			return
		}
		if err != nil {
			utils.WriteError(w, err)
			return
		}
		if driver.Role != models.RoleDriver {
			utils.WriteError(w, utils.Validationf("user %s is not a driver", body.Driver))
			return
		}
		delivery.DriverID = &driverID
	}

	// driverless deliveries stay pending (or get cancelled)
	if delivery.DriverID == nil && body.Status != models.DeliveryCancelled {
		utils.WriteError(w, utils.Validationf("cannot move a delivery out of pending without a driver"))
		return
	}

	delivery.Status = body.Status
	if err := dc.Deliveries.Update(ctx, delivery); err != nil {
		utils.WriteError(w, err)
		return
	}

	view, err := withDriver(ctx, dc.Users, delivery)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, view)
}

// DeleteDelivery removes a delivery record. Admin escape hatch; deliveries
// are otherwise never deleted.
func (dc *DeliveryController) DeleteDelivery(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDVar(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	if err := dc.Deliveries.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteError(w, utils.NotFoundf("delivery not found"))
			return
		}
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "delivery removed"})
}
