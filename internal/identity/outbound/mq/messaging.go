package mq

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel/codes"

	"github.com/ItsCrotix/NOR-Backend/internal/identity/usecase"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/instrument"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/messaging"
	"github.com/ItsCrotix/NOR-Backend/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishUserRegistered(ctx context.Context, msg usecase.UserRegisteredEvent) error {
	return m.publish(ctx, "PublishUserRegistered", event.UserRegisteredDestination, msg.UserID, event.UserRegisteredMessage{
		UserID:     msg.UserID,
		Email:      msg.Email,
		Role:       msg.Role.String(),
		OccurredAt: msg.OccurredAt,
	})
}

func (m *Messaging) PublishTfaChanged(ctx context.Context, msg usecase.TfaChangedEvent) error {
	destination := event.TfaDisabledDestination
	if msg.Enabled {
		destination = event.TfaEnabledDestination
	}

	return m.publish(ctx, "PublishTfaChanged", destination, msg.UserID, event.TfaChangedMessage{
		UserID:     msg.UserID,
		Email:      msg.Email,
		Method:     msg.Method,
		OccurredAt: msg.OccurredAt,
	})
}

func (m *Messaging) PublishRoleChanged(ctx context.Context, msg usecase.RoleChangedEvent) error {
	return m.publish(ctx, "PublishRoleChanged", event.RoleChangedDestination, msg.UserID, event.RoleChangedMessage{
		UserID:     msg.UserID,
		From:       msg.From.String(),
		To:         msg.To.String(),
		By:         msg.By,
		OccurredAt: msg.OccurredAt,
	})
}

// publish keys every message by the user id so brokers with partitions keep
// per-user ordering.
func (m *Messaging) publish(ctx context.Context, spanName, destination, key string, payload any) error {
	ctx, span := m.ins.Tracer("identity.outbound.mq").Start(ctx, spanName)
	defer span.End()

	body, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, destination, messaging.OutgoingMessage{
		Body:        body,
		Key:         []byte(key),
		OrderingKey: key,
		Headers:     []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
