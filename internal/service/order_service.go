package service

import (
	"context"
	"fmt"
	"time"

	"github.com/naturalmart/shop-api/internal/domain"
	"github.com/naturalmart/shop-api/internal/repo/mongodb"
	"github.com/naturalmart/shop-api/pkg/events"
	"github.com/naturalmart/shop-api/pkg/logger"
)

// OrderLocation reports which of the two stores received or held an order.
type OrderLocation int

const (
	LocationEmbedded OrderLocation = iota
	LocationStandalone
)

type OrderService interface {
	Place(ctx context.Context, req *domain.PlaceOrderRequest) (*domain.Order, OrderLocation, error)
	Confirm(ctx context.Context, rawOrderID string) (OrderLocation, error)
	Cancel(ctx context.Context, rawOrderID string) (OrderLocation, error)
	MarkDelivered(ctx context.Context, rawOrderID string) (OrderLocation, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Order, error)
}

type orderService struct {
	userRepo mongodb.UserRepository
	anonRepo mongodb.AnonOrderRepository
	eventBus events.Publisher
}

func NewOrderService(userRepo mongodb.UserRepository, anonRepo mongodb.AnonOrderRepository, eventBus events.Publisher) OrderService {
	return &orderService{
		userRepo: userRepo,
		anonRepo: anonRepo,
		eventBus: eventBus,
	}
}

// Place routes a purchase to one of the two stores. A user lookup by email
// decides the destination; the order identifier is generated once and the
// order never migrates afterwards. No transaction spans the lookup and the
// write: a user created concurrently in between still gets an anonymous
// order, and a user deleted in between surfaces as a write failure.
func (s *orderService) Place(ctx context.Context, req *domain.PlaceOrderRequest) (*domain.Order, OrderLocation, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, 0, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to look up purchaser: %w", err)
	}

	order := domain.NewOrder(req)

	location := LocationStandalone
	if user != nil {
		if err := s.userRepo.AppendOrder(ctx, req.Email, order); err != nil {
			return nil, 0, fmt.Errorf("failed to append order for %s: %w", req.Email, err)
		}
		location = LocationEmbedded
	} else {
		if err := s.anonRepo.Insert(ctx, order); err != nil {
			return nil, 0, fmt.Errorf("failed to insert anonymous order: %w", err)
		}
	}

	s.publish(ctx, events.OrderCreated, events.OrderCreatedEvent{
		OrderID:        order.ID.Hex(),
		PurchaserEmail: req.Email,
		Anonymous:      location == LocationStandalone,
		Quantity:       order.Quantity,
		OrderDate:      order.OrderDate,
	})

	return &order, location, nil
}

// Confirm, Cancel and MarkDelivered share the same two-phase fallback: try
// the embedded location first, then the standalone one, short-circuiting on
// the first store that reports a modification. The ordering is part of the
// observable behavior and must not be collapsed into a single query.

func (s *orderService) Confirm(ctx context.Context, rawOrderID string) (OrderLocation, error) {
	orderID, err := domain.ParseOrderID(rawOrderID)
	if err != nil {
		return 0, err
	}

	if ok, err := s.userRepo.ConfirmOrder(ctx, orderID); err != nil {
		return 0, fmt.Errorf("failed to confirm order: %w", err)
	} else if ok {
		s.publish(ctx, events.OrderConfirmed, events.OrderConfirmedEvent{
			OrderID:     rawOrderID,
			ConfirmedAt: time.Now().UTC(),
		})
		return LocationEmbedded, nil
	}

	if ok, err := s.anonRepo.Confirm(ctx, orderID); err != nil {
		return 0, fmt.Errorf("failed to confirm anonymous order: %w", err)
	} else if ok {
		s.publish(ctx, events.OrderConfirmed, events.OrderConfirmedEvent{
			OrderID:     rawOrderID,
			ConfirmedAt: time.Now().UTC(),
		})
		return LocationStandalone, nil
	}

	return 0, domain.ErrNotFound
}

func (s *orderService) Cancel(ctx context.Context, rawOrderID string) (OrderLocation, error) {
	orderID, err := domain.ParseOrderID(rawOrderID)
	if err != nil {
		return 0, err
	}

	if ok, err := s.userRepo.PullOrder(ctx, orderID); err != nil {
		return 0, fmt.Errorf("failed to cancel order: %w", err)
	} else if ok {
		s.publish(ctx, events.OrderCanceled, events.OrderCanceledEvent{
			OrderID:    rawOrderID,
			CanceledAt: time.Now().UTC(),
		})
		return LocationEmbedded, nil
	}

	if ok, err := s.anonRepo.Delete(ctx, orderID); err != nil {
		return 0, fmt.Errorf("failed to cancel anonymous order: %w", err)
	} else if ok {
		s.publish(ctx, events.OrderCanceled, events.OrderCanceledEvent{
			OrderID:    rawOrderID,
			CanceledAt: time.Now().UTC(),
		})
		return LocationStandalone, nil
	}

	return 0, domain.ErrNotFound
}

func (s *orderService) MarkDelivered(ctx context.Context, rawOrderID string) (OrderLocation, error) {
	orderID, err := domain.ParseOrderID(rawOrderID)
	if err != nil {
		return 0, err
	}

	if ok, err := s.userRepo.MarkOrderDelivered(ctx, orderID); err != nil {
		return 0, fmt.Errorf("failed to mark order delivered: %w", err)
	} else if ok {
		s.publish(ctx, events.OrderDelivered, events.OrderDeliveredEvent{
			OrderID:     rawOrderID,
			DeliveredAt: time.Now().UTC(),
		})
		return LocationEmbedded, nil
	}

	if ok, err := s.anonRepo.MarkDelivered(ctx, orderID); err != nil {
		return 0, fmt.Errorf("failed to mark anonymous order delivered: %w", err)
	} else if ok {
		s.publish(ctx, events.OrderDelivered, events.OrderDeliveredEvent{
			OrderID:     rawOrderID,
			DeliveredAt: time.Now().UTC(),
		})
		return LocationStandalone, nil
	}

	// An order already flagged delivered modifies nothing in either store
	// and is indistinguishable from a missing one.
	return 0, domain.ErrNotFound
}

// ListAll returns embedded orders first, then standalone ones, in store scan
// order. The concatenation order is fixed for deterministic output.
func (s *orderService) ListAll(ctx context.Context) ([]domain.Order, error) {
	embedded, err := s.userRepo.AllEmbeddedOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list embedded orders: %w", err)
	}

	standalone, err := s.anonRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list anonymous orders: %w", err)
	}

	all := make([]domain.Order, 0, len(embedded)+len(standalone))
	all = append(all, embedded...)
	all = append(all, standalone...)
	return all, nil
}

func (s *orderService) ListByEmail(ctx context.Context, email string) ([]domain.Order, error) {
	orders, err := s.userRepo.OrdersByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *orderService) publish(ctx context.Context, subject string, event interface{}) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, subject, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish order event", "error", err, "subject", subject)
	}
}
