package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"pantry-market/models"
)

// MongoDeliveryStore implements DeliveryStore on a deliveries collection.
type MongoDeliveryStore struct {
	Collection *mongo.Collection
}

// NewMongoDeliveryStore wires the deliveries collection.
func NewMongoDeliveryStore(db *mongo.Database) *MongoDeliveryStore {
	return &MongoDeliveryStore{Collection: db.Collection("deliveries")}
}

func (s *MongoDeliveryStore) Insert(ctx context.Context, d *models.Delivery) error {
	d.ID = primitive.NewObjectID()
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	_, err := s.Collection.InsertOne(ctx, d)
	return err
}

func (s *MongoDeliveryStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Delivery, error) {
	var delivery models.Delivery
	err := s.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&delivery)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

func (s *MongoDeliveryStore) FindByOrder(ctx context.Context, orderID primitive.ObjectID) (*models.Delivery, error) {
	var delivery models.Delivery
	err := s.Collection.FindOne(ctx, bson.M{"order": orderID}).Decode(&delivery)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

func (s *MongoDeliveryStore) List(ctx context.Context, driverID *primitive.ObjectID) ([]models.Delivery, error) {
	filter := bson.M{}
	if driverID != nil {
		filter["driver"] = *driverID
	}
	cursor, err := s.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	deliveries := []models.Delivery{}
	if err := cursor.All(ctx, &deliveries); err != nil {
		return nil, err
	}
	return deliveries, nil
}

func (s *MongoDeliveryStore) Update(ctx context.Context, d *models.Delivery) error {
	d.UpdatedAt = time.Now()
	result, err := s.Collection.ReplaceOne(ctx, bson.M{"_id": d.ID}, d)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoDeliveryStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
