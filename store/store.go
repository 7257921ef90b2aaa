// Package store is the data-access layer. Interfaces keep the workflow code
// independent of MongoDB; the Mongo* types are the production implementations.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pantry-market/models"
)

var (
	// ErrNotFound is returned when a looked-up record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when an email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
)

// ProductFilter narrows a public listing query. Zero values mean no filter.
type ProductFilter struct {
	Category string
	VendorID primitive.ObjectID
	Search   string
}

// UserStore persists accounts of every role.
type UserStore interface {
	Insert(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
	List(ctx context.Context, role models.Role) ([]models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ProductStore persists vendor listings.
type ProductStore interface {
	Insert(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	ListAvailable(ctx context.Context, f ProductFilter) ([]models.Product, error)
	ListByVendor(ctx context.Context, vendorID primitive.ObjectID) ([]models.Product, error)
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// OrderStore persists orders. CreateWithDelivery writes the order and, when
// delivery is non-nil, its linked delivery in one atomic unit.
type OrderStore interface {
	CreateWithDelivery(ctx context.Context, o *models.Order, d *models.Delivery) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.Order, error)
	Update(ctx context.Context, o *models.Order) error
}

// DeliveryStore persists deliveries.
type DeliveryStore interface {
	Insert(ctx context.Context, d *models.Delivery) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Delivery, error)
	FindByOrder(ctx context.Context, orderID primitive.ObjectID) (*models.Delivery, error)
	List(ctx context.Context, driverID *primitive.ObjectID) ([]models.Delivery, error)
	Update(ctx context.Context, d *models.Delivery) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
