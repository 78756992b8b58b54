package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/naturalmart/shop-api/internal/domain"
	"github.com/naturalmart/shop-api/pkg/logger"
)

const (
	userCollectionName = "users"

	opTimeout = 3 * time.Second
)

// UserRepository owns the users collection, including each user's embedded
// orders array. The embedded-order operations report whether a document was
// modified so callers can fall back to the anonymous order store.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	AppendOrder(ctx context.Context, email string, order domain.Order) error
	ConfirmOrder(ctx context.Context, orderID primitive.ObjectID) (bool, error)
	PullOrder(ctx context.Context, orderID primitive.ObjectID) (bool, error)
	MarkOrderDelivered(ctx context.Context, orderID primitive.ObjectID) (bool, error)

	OrdersByEmail(ctx context.Context, email string) ([]domain.Order, error)
	AllEmbeddedOrders(ctx context.Context) ([]domain.Order, error)
}

type userRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) UserRepository {
	collection := db.Collection(userCollectionName)

	// Ensure the unique email index (idempotent operation). The duplicate
	// registration check relies on it under concurrent registers.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		logger.Warn("Failed to create unique email index (may already exist)", "error", err)
	}

	return &userRepository{collection: collection}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = time.Now().UTC()

	_, err := r.collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var u domain.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &u, nil
}

// AppendOrder atomically appends one order to the user's embedded list. The
// filter re-checks user existence at write time: if the user vanished
// between the caller's lookup and this write, no document matches and the
// append fails instead of being silently dropped.
func (r *userRepository) AppendOrder(ctx context.Context, email string, order domain.Order) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$push": bson.M{"orders": order}},
	)
	if err != nil {
		return fmt.Errorf("failed to append order for %s: %w", email, err)
	}
	if res.ModifiedCount != 1 {
		return domain.ErrWriteFailed
	}
	return nil
}

func (r *userRepository) ConfirmOrder(ctx context.Context, orderID primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"orders._id": orderID},
		bson.M{"$set": bson.M{"orders.$.status": domain.OrderConfirmed}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to confirm embedded order: %w", err)
	}
	// An already-confirmed order modifies nothing and counts as a miss.
	return res.ModifiedCount > 0, nil
}

func (r *userRepository) PullOrder(ctx context.Context, orderID primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"orders._id": orderID},
		bson.M{"$pull": bson.M{"orders": bson.M{"_id": orderID}}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to pull embedded order: %w", err)
	}
	return res.ModifiedCount > 0, nil
}

func (r *userRepository) MarkOrderDelivered(ctx context.Context, orderID primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"orders._id": orderID},
		bson.M{"$set": bson.M{"orders.$.deliveryStatus": true}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark embedded order delivered: %w", err)
	}
	return res.ModifiedCount > 0, nil
}

func (r *userRepository) OrdersByEmail(ctx context.Context, email string) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{
		"email":  email,
		"orders": bson.M{"$exists": true, "$ne": bson.A{}},
	}
	opts := options.FindOne().SetProjection(bson.M{"orders": 1})

	var doc struct {
		Orders []domain.Order `bson:"orders"`
	}
	err := r.collection.FindOne(ctx, filter, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Absent user and empty order list are treated identically.
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find orders for %s: %w", email, err)
	}
	return doc.Orders, nil
}

func (r *userRepository) AllEmbeddedOrders(ctx context.Context) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{"orders": bson.M{"$exists": true, "$ne": bson.A{}}}
	opts := options.Find().SetProjection(bson.M{"orders": 1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list users with orders: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		Orders []domain.Order `bson:"orders"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode embedded orders: %w", err)
	}

	var orders []domain.Order
	for _, doc := range docs {
		orders = append(orders, doc.Orders...)
	}
	return orders, nil
}
