package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/sxo6luxe/sxo6-backend/pkg/db/models"
	"github.com/sxo6luxe/sxo6-backend/pkg/logger"
	"github.com/sxo6luxe/sxo6-backend/pkg/mailer"
	"github.com/sxo6luxe/sxo6-backend/pkg/pubsub/idempotency"
)

const orderEmailConsumer = "order-emails"

type orderLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

type sender interface {
	Send(ctx context.Context, msg mailer.Message) (string, error)
}

// Consumer drains the order email subscription: it loads the order, renders
// the template for the event's email type, sends it, and records the attempt
// in the email log.
type Consumer struct {
	orders       orderLoader
	repo         *Repository
	mail         sender
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds an order email consumer.
func NewConsumer(orders orderLoader, repo *Repository, mail sender, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if orders == nil {
		return nil, fmt.Errorf("order loader required")
	}
	if repo == nil {
		return nil, fmt.Errorf("email log repository required")
	}
	if mail == nil {
		return nil, fmt.Errorf("mailer required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("order email subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		orders:       orders,
		repo:         repo,
		mail:         mail,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"email_type": msg.Attributes["email_type"],
	})

	var event OrderEmailEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		c.logg.Error(logCtx, "failed to decode order email event", err)
		return processResult{ack: true}
	}
	if !event.EmailType.IsValid() || event.OrderID == uuid.Nil || event.EventID == uuid.Nil {
		c.logg.Error(logCtx, "malformed order email event", fmt.Errorf("type=%q order=%s", event.EmailType, event.OrderID))
		return processResult{ack: true}
	}
	logCtx = c.logg.WithOrderID(logCtx, event.OrderID.String())

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, orderEmailConsumer, event.EventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handleEvent(ctx, event, logCtx); err != nil {
		c.logg.Error(logCtx, "order email delivery failed", err)
		_ = c.idempotency.Delete(ctx, orderEmailConsumer, event.EventID)
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

func (c *Consumer) handleEvent(ctx context.Context, event OrderEmailEvent, logCtx context.Context) error {
	order, err := c.orders.FindByID(ctx, event.OrderID)
	if err != nil {
		return fmt.Errorf("load order: %w", err)
	}
	if order == nil {
		// The order is gone; redelivery cannot fix that.
		c.logg.Warn(logCtx, "order missing, dropping email event")
		return nil
	}

	subject, html, err := mailer.RenderOrderEmail(event.EmailType, buildOrderEmailData(order))
	if err != nil {
		return fmt.Errorf("render email: %w", err)
	}

	_, sendErr := c.mail.Send(ctx, mailer.Message{
		To:      order.CustomerEmail,
		Subject: subject,
		HTML:    html,
	})
	c.recordAttempt(ctx, logCtx, event, order.CustomerEmail, sendErr)
	if sendErr != nil {
		return fmt.Errorf("send email: %w", sendErr)
	}

	c.logg.Info(logCtx, "order email sent")
	return nil
}

func (c *Consumer) recordAttempt(ctx context.Context, logCtx context.Context, event OrderEmailEvent, recipient string, sendErr error) {
	log := &models.EmailLog{
		OrderID:   &event.OrderID,
		EmailType: event.EmailType,
		Recipient: recipient,
		Success:   sendErr == nil,
	}
	if sendErr != nil {
		detail := sendErr.Error()
		log.Error = &detail
	}
	if err := c.repo.CreateLog(ctx, log); err != nil {
		c.logg.Warn(logCtx, fmt.Sprintf("record email log: %v", err))
	}
}

func buildOrderEmailData(order *models.Order) mailer.OrderEmailData {
	data := mailer.OrderEmailData{
		OrderNumber:  order.OrderNumber,
		CustomerName: order.CustomerName,
		TotalUSD:     order.TotalUSD.StringFixed(2),
	}
	if order.TrackingNumber != nil {
		data.TrackingNumber = *order.TrackingNumber
	}
	for _, item := range order.Items {
		data.Items = append(data.Items, mailer.OrderEmailItem{
			Name:        item.ProductName,
			Variant:     variantLabel(item),
			Quantity:    item.Quantity,
			SubtotalUSD: item.SubtotalUSD.StringFixed(2),
		})
	}
	return data
}

func variantLabel(item models.OrderItem) string {
	parts := []string{}
	if item.VariantSize != nil && *item.VariantSize != "" {
		parts = append(parts, *item.VariantSize)
	}
	if item.VariantColor != nil && *item.VariantColor != "" {
		parts = append(parts, *item.VariantColor)
	}
	return strings.Join(parts, " / ")
}
