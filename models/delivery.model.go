package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pantry-market/utils"
)

// DeliveryStatus is the fulfillment state of a delivery.
type DeliveryStatus string

const (
	DeliveryPending    DeliveryStatus = "pending"
	DeliveryAssigned   DeliveryStatus = "assigned"
	DeliveryInProgress DeliveryStatus = "in_progress"
	DeliveryCompleted  DeliveryStatus = "completed"
	DeliveryCancelled  DeliveryStatus = "cancelled"
)

// ValidDeliveryStatus reports whether s is a known delivery status.
func ValidDeliveryStatus(s DeliveryStatus) bool {
	switch s {
	case DeliveryPending, DeliveryAssigned, DeliveryInProgress,
		DeliveryCompleted, DeliveryCancelled:
		return true
	}
	return false
}

// Delivery is the physical fulfillment of a delivery-type order. It holds a
// weak reference to its order; exactly one exists per delivery-type order.
// A delivery without a driver must stay pending.
type Delivery struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	OrderID       primitive.ObjectID  `bson:"order" json:"orderId"`
	CustomerID    primitive.ObjectID  `bson:"customer" json:"customerId"`
	Address       DeliveryAddress     `bson:"address" json:"address"`
	PreferredTime string              `bson:"preferredTime" json:"preferredTime"`
	Status        DeliveryStatus      `bson:"status" json:"status"`
	DriverID      *primitive.ObjectID `bson:"driver,omitempty" json:"driverId,omitempty"`
	CreatedAt     time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time           `bson:"updated_at" json:"updated_at"`
}

// Validate checks the field-level delivery invariants.
func (d *Delivery) Validate() error {
	if err := d.Address.Validate(); err != nil {
		return err
	}
	if d.PreferredTime == "" {
		return utils.Validationf("preferredTime is required")
	}
	return nil
}

// DriverSummary is the driver identity joined onto delivery reads.
type DriverSummary struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Phone string             `json:"phone"`
}

// DeliveryView is a delivery with its driver identity attached, when assigned.
type DeliveryView struct {
	Delivery
	Driver *DriverSummary `json:"driver,omitempty"`
}
