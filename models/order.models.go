package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pantry-market/utils"
)

// OrderStatus is the fulfillment state of an order.
type OrderStatus string

const (
	OrderPending        OrderStatus = "pending"
	OrderConfirmed      OrderStatus = "confirmed"
	OrderProcessing     OrderStatus = "processing"
	OrderOutForDelivery OrderStatus = "out_for_delivery"
	OrderDelivered      OrderStatus = "delivered"
	OrderCancelled      OrderStatus = "cancelled"
)

// OrderType distinguishes delivered orders from self-collect reservations.
type OrderType string

const (
	TypeOrder       OrderType = "order"
	TypeReservation OrderType = "reservation"
)

// PaymentStatus is the payment state of an order, tracked independently of
// fulfillment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// OrderItem is one line of an order. Price is the product's discounted price
// captured at order time; later catalog changes never touch it.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"product" json:"productId"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Price     float64            `bson:"price" json:"price"`
}

// DeliveryAddress is the address snapshot taken at checkout.
type DeliveryAddress struct {
	Street       string `bson:"street" json:"street"`
	City         string `bson:"city" json:"city"`
	PostalCode   string `bson:"postalCode" json:"postalCode"`
	Instructions string `bson:"instructions,omitempty" json:"instructions,omitempty"`
}

// Validate checks that the required address fields are present.
func (a *DeliveryAddress) Validate() error {
	if a.Street == "" || a.City == "" || a.PostalCode == "" {
		return utils.Validationf("delivery address requires street, city and postalCode")
	}
	return nil
}

// Order is a customer's purchase or reservation. Orders are never deleted;
// cancellation is a status.
type Order struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CustomerID            primitive.ObjectID `bson:"customer" json:"customerId"`
	Items                 []OrderItem        `bson:"items" json:"items"`
	TotalAmount           float64            `bson:"totalAmount" json:"totalAmount"`
	DeliveryAddress       *DeliveryAddress   `bson:"deliveryAddress,omitempty" json:"deliveryAddress,omitempty"`
	PreferredDeliveryTime string             `bson:"preferredDeliveryTime,omitempty" json:"preferredDeliveryTime,omitempty"`
	Status                OrderStatus        `bson:"status" json:"status"`
	Type                  OrderType          `bson:"type" json:"type"`
	PaymentStatus         PaymentStatus      `bson:"paymentStatus" json:"paymentStatus"`
	CreatedAt             time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt             time.Time          `bson:"updated_at" json:"updated_at"`
}

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderProcessing, OrderOutForDelivery,
		OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// ValidPaymentStatus reports whether s is a known payment status.
func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed:
		return true
	}
	return false
}
