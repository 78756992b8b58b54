package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name      string             `bson:"name" json:"name"`
	Price     float64            `bson:"price" json:"price"`
	Image     string             `bson:"image" json:"image"`
	Details   interface{}        `bson:"details" json:"details"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// CreateProductRequest accepts price as either a JSON number or a numeric
// string; it is coerced before storage.
type CreateProductRequest struct {
	Name    string      `json:"name"`
	Price   interface{} `json:"price"`
	Image   string      `json:"image"`
	Details interface{} `json:"details"`
}

func (r *CreateProductRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" || r.Price == nil || strings.TrimSpace(r.Image) == "" || r.Details == nil {
		return fmt.Errorf("all fields (name, price, image, details) are required")
	}
	if _, err := r.PriceValue(); err != nil {
		return err
	}
	return nil
}

func (r *CreateProductRequest) PriceValue() (float64, error) {
	switch v := r.Price.(type) {
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("price must be a number")
		}
		return f, nil
	default:
		return 0, fmt.Errorf("price must be a number")
	}
}

// ParseProductID rejects malformed identifiers before any store access.
func ParseProductID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return id, nil
}
