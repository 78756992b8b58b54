package domain

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
)

// Order lives either embedded in a user document's orders array or as a
// standalone document in the anonymous order collection. It never migrates
// between the two. Cancellation removes the document instead of setting a
// terminal status; DeliveryStatus is independent of Status and only ever
// flips false to true.
type Order struct {
	ID              primitive.ObjectID `bson:"_id" json:"_id"`
	Product         interface{}        `bson:"product" json:"product"`
	CustomerDetails interface{}        `bson:"customerDetails" json:"customerDetails"`
	Quantity        int                `bson:"quantity" json:"quantity"`
	Status          OrderStatus        `bson:"status" json:"status"`
	DeliveryStatus  bool               `bson:"deliveryStatus" json:"deliveryStatus"`
	OrderDate       time.Time          `bson:"orderDate" json:"orderDate"`
}

type PlaceOrderRequest struct {
	Email           string      `json:"email"`
	Product         interface{} `json:"product"`
	CustomerDetails interface{} `json:"customerDetails"`
	Quantity        int         `json:"quantity"`
}

func (r *PlaceOrderRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
}

func (r *PlaceOrderRequest) Validate() error {
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if r.Product == nil {
		return fmt.Errorf("product is required")
	}
	if r.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	return nil
}

// NewOrder builds a fresh pending order with its own identifier. The
// identifier is generated here, before the write, so the same value is
// returned to the caller regardless of which store receives the order.
func NewOrder(req *PlaceOrderRequest) Order {
	return Order{
		ID:              primitive.NewObjectID(),
		Product:         req.Product,
		CustomerDetails: req.CustomerDetails,
		Quantity:        req.Quantity,
		Status:          OrderPending,
		DeliveryStatus:  false,
		OrderDate:       time.Now().UTC(),
	}
}

// ParseOrderID rejects malformed identifiers before any store access.
func ParseOrderID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return id, nil
}
