package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/naturalmart/shop-api/internal/domain"
)

// Collection name kept from the original data set so existing documents
// remain readable.
const anonOrderCollectionName = "unknownOrder"

// AnonOrderRepository owns standalone orders placed by purchasers with no
// matching user record.
type AnonOrderRepository interface {
	Insert(ctx context.Context, order domain.Order) error
	Confirm(ctx context.Context, orderID primitive.ObjectID) (bool, error)
	Delete(ctx context.Context, orderID primitive.ObjectID) (bool, error)
	MarkDelivered(ctx context.Context, orderID primitive.ObjectID) (bool, error)
	List(ctx context.Context) ([]domain.Order, error)
}

type anonOrderRepository struct {
	collection *mongo.Collection
}

func NewAnonOrderRepository(db *mongo.Database) AnonOrderRepository {
	return &anonOrderRepository{collection: db.Collection(anonOrderCollectionName)}
}

func (r *anonOrderRepository) Insert(ctx context.Context, order domain.Order) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.collection.InsertOne(ctx, order)
	if err != nil {
		return fmt.Errorf("failed to insert anonymous order: %w", err)
	}
	if res.InsertedID == nil {
		return domain.ErrWriteFailed
	}
	return nil
}

func (r *anonOrderRepository) Confirm(ctx context.Context, orderID primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": orderID},
		bson.M{"$set": bson.M{"status": domain.OrderConfirmed}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to confirm anonymous order: %w", err)
	}
	return res.ModifiedCount > 0, nil
}

func (r *anonOrderRepository) Delete(ctx context.Context, orderID primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": orderID})
	if err != nil {
		return false, fmt.Errorf("failed to delete anonymous order: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *anonOrderRepository) MarkDelivered(ctx context.Context, orderID primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": orderID},
		bson.M{"$set": bson.M{"deliveryStatus": true}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark anonymous order delivered: %w", err)
	}
	return res.ModifiedCount > 0, nil
}

func (r *anonOrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list anonymous orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []domain.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode anonymous orders: %w", err)
	}
	return orders, nil
}
