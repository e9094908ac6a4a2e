package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/sxo6luxe/sxo6-backend/pkg/enums"
	pkgerrors "github.com/sxo6luxe/sxo6-backend/pkg/errors"
)

// Publisher pushes order email events onto the order email topic.
type Publisher struct {
	topic *pubsub.Publisher
}

// NewPublisher builds a publisher for the order email topic.
func NewPublisher(topic *pubsub.Publisher) (*Publisher, error) {
	if topic == nil {
		return nil, fmt.Errorf("order email topic required")
	}
	return &Publisher{topic: topic}, nil
}

// PublishOrderEmail enqueues one transactional email for the worker.
func (p *Publisher) PublishOrderEmail(ctx context.Context, emailType enums.EmailType, orderID uuid.UUID) error {
	if !emailType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown email type %q", emailType))
	}
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	event := OrderEmailEvent{
		EventID:   uuid.New(),
		EmailType: emailType,
		OrderID:   orderID,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal order email event")
	}

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"email_type": emailType.String(),
		},
	})
	if _, err := result.Get(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "publish order email event")
	}
	return nil
}
