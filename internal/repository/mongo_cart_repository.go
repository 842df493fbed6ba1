package repository

import (
	"context"
	"errors"
	"fmt"
	"github.com/nikolayk812/storefront-cart/internal/domain"
	"github.com/nikolayk812/storefront-cart/internal/port"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"time"
)

type mongoCartRepository struct {
	collection *mongo.Collection
}

// NewMongoCart stores one document per owner in the carts collection.
func NewMongoCart(database *mongo.Database) port.CartRepository {
	return &mongoCartRepository{
		collection: database.Collection("carts"),
	}
}

func ConnectMongo(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("client.Ping: %w", err)
	}

	return client.Database(database), nil
}

func (r *mongoCartRepository) GetCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	if ownerID == "" {
		return domain.Cart{}, domain.ErrEmptyOwner
	}

	var record cartRecord
	err := r.collection.FindOne(ctx, bson.M{"_id": ownerID}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Cart{OwnerID: ownerID}, nil
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("collection.FindOne: %w", err)
	}

	cart, err := mapRecordToCart(ownerID, record)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("mapRecordToCart: %w", err)
	}

	return cart, nil
}

func (r *mongoCartRepository) SaveCart(ctx context.Context, cart domain.Cart) error {
	if cart.OwnerID == "" {
		return domain.ErrEmptyOwner
	}

	record := mapCartToRecord(cart, time.Now().UTC())
	opts := options.Replace().SetUpsert(true)

	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": cart.OwnerID}, record, opts); err != nil {
		return fmt.Errorf("collection.ReplaceOne: %w", err)
	}

	return nil
}

func (r *mongoCartRepository) DeleteCart(ctx context.Context, ownerID string) (bool, error) {
	if ownerID == "" {
		return false, domain.ErrEmptyOwner
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": ownerID})
	if err != nil {
		return false, fmt.Errorf("collection.DeleteOne: %w", err)
	}

	return result.DeletedCount > 0, nil
}
