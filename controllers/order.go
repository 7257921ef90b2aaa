package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pantry-market/models"
	"pantry-market/statemachine"
	"pantry-market/store"
	"pantry-market/utils"
)

// OrderController handles order placement and tracking requests.
type OrderController struct {
	Orders     store.OrderStore
	Products   store.ProductStore
	Deliveries store.DeliveryStore
	Users      store.UserStore
	Email      *utils.EmailService
}

// NewOrderController creates a new OrderController.
func NewOrderController(orders store.OrderStore, products store.ProductStore, deliveries store.DeliveryStore, users store.UserStore, email *utils.EmailService) *OrderController {
	return &OrderController{
		Orders:     orders,
		Products:   products,
		Deliveries: deliveries,
		Users:      users,
		Email:      email,
	}
}

type cartItem struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

type placeOrderRequest struct {
	Items                 []cartItem              `json:"items"`
	Type                  models.OrderType        `json:"type"`
	DeliveryAddress       *models.DeliveryAddress `json:"deliveryAddress,omitempty"`
	PreferredDeliveryTime string                  `json:"preferredDeliveryTime,omitempty"`
}

type orderResponse struct {
	models.Order
	Delivery *models.DeliveryView `json:"delivery,omitempty"`
}

// CreateOrder places an order or reservation from a cart. Every referenced
// product is resolved before anything is written, so a cart naming a missing
// product creates neither an order nor a delivery. Each line's price is the
// product's discounted price at this moment; later catalog changes never
// touch it.
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	customerID, err := sessionObjectID(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, utils.Validationf("invalid request body"))
		return
	}
	if len(req.Items) == 0 {
		utils.WriteError(w, utils.Validationf("no order items"))
		return
	}
	if req.Type != models.TypeOrder && req.Type != models.TypeReservation {
		utils.WriteError(w, utils.Validationf("type must be order or reservation"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	items := make([]models.OrderItem, 0, len(req.Items))
	totalAmount := 0.0
	for _, item := range req.Items {
		if item.Quantity < 1 {
			utils.WriteError(w, utils.Validationf("item quantity must be at least 1"))
			return
		}
		productID, err := primitive.ObjectIDFromHex(item.Product)
		if err != nil {
			utils.WriteError(w, utils.NotFoundf("product not found: %s", item.Product))
			return
		}
		product, err := oc.Products.FindByID(ctx, productID)
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteError(w, utils.NotFoundf("product not found: %s", item.Product))
			return
		}
		if err != nil {
			utils.WriteError(w, err)
			return
		}

		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Quantity:  item.Quantity,
			Price:     product.DiscountedPrice,
		})
		totalAmount += product.DiscountedPrice * float64(item.Quantity)
	}

	order := &models.Order{
		CustomerID:            customerID,
		Items:                 items,
		TotalAmount:           totalAmount,
		DeliveryAddress:       req.DeliveryAddress,
		PreferredDeliveryTime: req.PreferredDeliveryTime,
		Status:                models.OrderPending,
		Type:                  req.Type,
		PaymentStatus:         models.PaymentPending,
	}

	var delivery *models.Delivery
	if req.Type == models.TypeOrder && req.DeliveryAddress != nil {
		delivery = &models.Delivery{
			CustomerID:    customerID,
			Address:       *req.DeliveryAddress,
			PreferredTime: req.PreferredDeliveryTime,
			Status:        models.DeliveryPending,
		}
		if err := delivery.Validate(); err != nil {
			utils.WriteError(w, err)
			return
		}
	}

	if err := oc.Orders.CreateWithDelivery(ctx, order, delivery); err != nil {
		utils.WriteError(w, err)
		return
	}

	oc.notify(ctx, customerID, func(user *models.User) error {
		return oc.Email.SendOrderConfirmation(user.Email, user.Name, order.ID.Hex(), order.TotalAmount)
	})

	utils.WriteJSON(w, http.StatusCreated, order)
}

// GetOrders returns the authenticated customer's orders, newest first.
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	customerID, err := sessionObjectID(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	orders, err := oc.Orders.ListByCustomer(ctx, customerID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, orders)
}

// GetOrderByID returns one order, readable by its customer or an admin.
// Delivery-type orders carry their delivery (with driver identity) attached.
func (oc *OrderController) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	requesterID, err := sessionObjectID(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	id, err := objectIDVar(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	order, err := oc.Orders.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		utils.WriteError(w, utils.NotFoundf("order not found"))
		return
	}
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if order.CustomerID != requesterID && sessionRole(r) != models.RoleAdmin {
		utils.WriteError(w, utils.Forbiddenf("not authorized to view this order"))
		return
	}

	resp := orderResponse{Order: *order}
	if order.Type == models.TypeOrder {
		delivery, err := oc.Deliveries.FindByOrder(ctx, order.ID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			utils.WriteError(w, err)
			return
		}
		if delivery != nil {
			view, err := withDriver(ctx, oc.Users, delivery)
			if err != nil {
				utils.WriteError(w, err)
				return
			}
			resp.Delivery = view
		}
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

// UpdateOrderStatus moves an order along its status state machine. Admin
// only; invalid transitions are rejected.
func (oc *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDVar(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	var body struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.WriteError(w, utils.Validationf("invalid request body"))
		return
	}
	if !models.ValidOrderStatus(body.Status) {
		utils.WriteError(w, utils.Validationf("invalid order status: %s", body.Status))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	order, err := oc.Orders.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		utils.WriteError(w, utils.NotFoundf("order not found"))
		return
	}
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	if err := statemachine.Orders.Can(string(order.Status), string(body.Status)); err != nil {
		utils.WriteError(w, err)
		return
	}
	order.Status = body.Status
	if err := oc.Orders.Update(ctx, order); err != nil {
		utils.WriteError(w, err)
		return
	}

	oc.notify(ctx, order.CustomerID, func(user *models.User) error {
		return oc.Email.SendOrderStatusUpdate(user.Email, user.Name, order.ID.Hex(), string(order.Status))
	})

	utils.WriteJSON(w, http.StatusOK, order)
}

// UpdatePaymentStatus resolves an order's pending payment to completed or
// failed. Admin only.
func (oc *OrderController) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDVar(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	var body struct {
		PaymentStatus models.PaymentStatus `json:"paymentStatus"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.WriteError(w, utils.Validationf("invalid request body"))
		return
	}
	if !models.ValidPaymentStatus(body.PaymentStatus) {
		utils.WriteError(w, utils.Validationf("invalid payment status: %s", body.PaymentStatus))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	order, err := oc.Orders.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		utils.WriteError(w, utils.NotFoundf("order not found"))
		return
	}
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	if err := statemachine.Payments.Can(string(order.PaymentStatus), string(body.PaymentStatus)); err != nil {
		utils.WriteError(w, err)
		return
	}
	order.PaymentStatus = body.PaymentStatus
	if err := oc.Orders.Update(ctx, order); err != nil {
		utils.WriteError(w, err)
		return
	}

	oc.notify(ctx, order.CustomerID, func(user *models.User) error {
		return oc.Email.SendPaymentStatusUpdate(user.Email, user.Name, order.ID.Hex(), string(order.PaymentStatus))
	})

	utils.WriteJSON(w, http.StatusOK, order)
}

// notify looks up the customer and sends a mail in the background. Mail
// failures are logged, never surfaced to the request.
func (oc *OrderController) notify(ctx context.Context, customerID primitive.ObjectID, send func(*models.User) error) {
	if oc.Email == nil {
		return
	}
	user, err := oc.Users.FindByID(ctx, customerID)
	if err != nil {
		log.Printf("notification lookup for %s: %v", customerID.Hex(), err)
		return
	}
	go func() {
		if err := send(user); err != nil {
			log.Printf("failed to send email to %s: %v", user.Email, err)
		}
	}()
}
