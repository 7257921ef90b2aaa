package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pantry-market/models"
)

// MongoOrderStore implements OrderStore on the orders and deliveries
// collections. It keeps a client handle for multi-document transactions.
type MongoOrderStore struct {
	Client     *mongo.Client
	Orders     *mongo.Collection
	Deliveries *mongo.Collection
}

// NewMongoOrderStore wires the orders and deliveries collections.
func NewMongoOrderStore(client *mongo.Client, db *mongo.Database) *MongoOrderStore {
	return &MongoOrderStore{
		Client:     client,
		Orders:     db.Collection("orders"),
		Deliveries: db.Collection("deliveries"),
	}
}

// CreateWithDelivery inserts the order and, when delivery is non-nil, the
// linked delivery inside one transaction, so a crash cannot leave a
// delivery-type order without its delivery. Requires a replica-set
// deployment, as Mongo transactions do.
func (s *MongoOrderStore) CreateWithDelivery(ctx context.Context, o *models.Order, d *models.Delivery) error {
	now := time.Now()
	o.ID = primitive.NewObjectID()
	o.CreatedAt = now
	o.UpdatedAt = now

	session, err := s.Client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := s.Orders.InsertOne(sc, o); err != nil {
			return nil, err
		}
		if d != nil {
			d.ID = primitive.NewObjectID()
			d.OrderID = o.ID
			d.CreatedAt = now
			d.UpdatedAt = now
			if _, err := s.Deliveries.InsertOne(sc, d); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

func (s *MongoOrderStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := s.Orders.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *MongoOrderStore) ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.Orders.Find(ctx, bson.M{"customer": customerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *MongoOrderStore) Update(ctx context.Context, o *models.Order) error {
	o.UpdatedAt = time.Now()
	result, err := s.Orders.ReplaceOne(ctx, bson.M{"_id": o.ID}, o)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
