package notify

import (
	"encoding/json"
	"fmt"

	"github.com/naturalmart/shop-api/internal/platform/mailer"
	"github.com/naturalmart/shop-api/pkg/events"
	"github.com/naturalmart/shop-api/pkg/logger"
)

const queueGroup = "notify"

// Notifier consumes order and user events and sends the corresponding
// transactional emails. Orders from unregistered purchasers are confirmed
// too; only an event without an address is skipped.
type Notifier struct {
	bus    events.Subscriber
	mailer mailer.Service
}

func New(bus events.Subscriber, m mailer.Service) *Notifier {
	return &Notifier{bus: bus, mailer: m}
}

// Start registers the queue subscriptions. Handlers run on the event bus
// dispatch goroutines; send failures are logged, never retried.
func (n *Notifier) Start() error {
	if err := n.bus.QueueSubscribe(events.OrderCreated, queueGroup, n.handleOrderCreated); err != nil {
		return fmt.Errorf("subscribe %s: %w", events.OrderCreated, err)
	}
	if err := n.bus.QueueSubscribe(events.UserRegistered, queueGroup, n.handleUserRegistered); err != nil {
		return fmt.Errorf("subscribe %s: %w", events.UserRegistered, err)
	}
	return nil
}

func (n *Notifier) handleOrderCreated(msg *events.Message) {
	var event events.OrderCreatedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Error("Failed to decode order created event", "error", err)
		return
	}

	if event.PurchaserEmail == "" {
		logger.Debug("Skipping notification for order without an address", "order_id", event.OrderID)
		return
	}

	subject := "We received your order"
	text := fmt.Sprintf(
		"Thanks for your order!\n\nOrder ID: %s\nQuantity: %d\nPlaced: %s\n\nWe will let you know once it ships.",
		event.OrderID, event.Quantity, event.OrderDate.Format("Jan 2, 2006 15:04 MST"),
	)

	id, err := n.mailer.Send(event.PurchaserEmail, "", subject, text, "")
	if err != nil {
		logger.Error("Failed to send order confirmation email",
			"order_id", event.OrderID, "to", event.PurchaserEmail, "error", err)
		return
	}

	logger.Info("Order confirmation email sent",
		"order_id", event.OrderID, "to", event.PurchaserEmail, "message_id", id)
}

func (n *Notifier) handleUserRegistered(msg *events.Message) {
	var event events.UserRegisteredEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Error("Failed to decode user registered event", "error", err)
		return
	}

	subject := "Welcome to Natural Mart"
	text := fmt.Sprintf("Hi %s,\n\nYour account is ready. Happy shopping!", event.Name)

	id, err := n.mailer.Send(event.Email, event.Name, subject, text, "")
	if err != nil {
		logger.Error("Failed to send welcome email", "to", event.Email, "error", err)
		return
	}

	logger.Info("Welcome email sent", "to", event.Email, "message_id", id)
}
