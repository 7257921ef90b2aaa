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

// MongoProductStore implements ProductStore on a products collection.
type MongoProductStore struct {
	Collection *mongo.Collection
}

// NewMongoProductStore wires the products collection.
func NewMongoProductStore(db *mongo.Database) *MongoProductStore {
	return &MongoProductStore{Collection: db.Collection("products")}
}

func (s *MongoProductStore) Insert(ctx context.Context, p *models.Product) error {
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	_, err := s.Collection.InsertOne(ctx, p)
	return err
}

func (s *MongoProductStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := s.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *MongoProductStore) ListAvailable(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	filter := bson.M{"isAvailable": true}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if !f.VendorID.IsZero() {
		filter["vendor"] = f.VendorID
	}
	if f.Search != "" {
		filter["name"] = primitive.Regex{Pattern: f.Search, Options: "i"}
	}

	cursor, err := s.Collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "expiryDate", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *MongoProductStore) ListByVendor(ctx context.Context, vendorID primitive.ObjectID) ([]models.Product, error) {
	cursor, err := s.Collection.Find(ctx, bson.M{"vendor": vendorID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *MongoProductStore) Update(ctx context.Context, p *models.Product) error {
	p.UpdatedAt = time.Now()
	result, err := s.Collection.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoProductStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
