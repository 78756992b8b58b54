package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/naturalmart/shop-api/internal/domain"
)

const productCollectionName = "products"

type ProductRepository interface {
	Insert(ctx context.Context, product *domain.Product) error
	List(ctx context.Context) ([]domain.Product, error)
	Delete(ctx context.Context, productID primitive.ObjectID) (bool, error)
}

type productRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) ProductRepository {
	return &productRepository{collection: db.Collection(productCollectionName)}
}

func (r *productRepository) Insert(ctx context.Context, product *domain.Product) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	product.CreatedAt = time.Now().UTC()

	if _, err := r.collection.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []domain.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func (r *productRepository) Delete(ctx context.Context, productID primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": productID})
	if err != nil {
		return false, fmt.Errorf("failed to delete product: %w", err)
	}
	return res.DeletedCount > 0, nil
}
