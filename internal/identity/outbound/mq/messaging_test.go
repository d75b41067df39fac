package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ItsCrotix/NOR-Backend/internal/identity/usecase"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/instrument"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/messaging"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/rbac"
	"github.com/ItsCrotix/NOR-Backend/internal/shared/event"
)

type published struct {
	destination string
	msg         messaging.OutgoingMessage
}

type recorder struct {
	sent []published
	err  error
}

func (r *recorder) Publish(_ context.Context, destination string, msg messaging.OutgoingMessage) (messaging.PublishResult, error) {
	if r.err != nil {
		return messaging.PublishResult{}, r.err
	}
	r.sent = append(r.sent, published{destination: destination, msg: msg})
	return messaging.PublishResult{Topic: destination}, nil
}

var at = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestMessaging_PublishUserRegistered(t *testing.T) {
	rec := &recorder{}
	m := NewMessaging(rec, instrument.NewNoop())

	ctx := instrument.SetCorrelationID(context.Background(), "cid-1")
	require.NoError(t, m.PublishUserRegistered(ctx, usecase.UserRegisteredEvent{
		UserID: "u-1", Email: "driver@nor.example", Role: rbac.RoleUser, OccurredAt: at,
	}))

	require.Len(t, rec.sent, 1)
	assert.Equal(t, event.UserRegisteredDestination, rec.sent[0].destination)
	assert.Equal(t, map[string]string{"cID": "cid-1"}, rec.sent[0].msg.HeaderMap())
	assert.Equal(t, []byte("u-1"), rec.sent[0].msg.Key)

	var body event.UserRegisteredMessage
	require.NoError(t, json.Unmarshal(rec.sent[0].msg.Body, &body))
	assert.Equal(t, event.UserRegisteredMessage{UserID: "u-1", Email: "driver@nor.example", Role: "User", OccurredAt: at}, body)
}

func TestMessaging_PublishTfaChanged(t *testing.T) {
	rec := &recorder{}
	m := NewMessaging(rec, instrument.NewNoop())

	require.NoError(t, m.PublishTfaChanged(context.Background(), usecase.TfaChangedEvent{UserID: "u-1", Enabled: true, OccurredAt: at}))
	require.NoError(t, m.PublishTfaChanged(context.Background(), usecase.TfaChangedEvent{UserID: "u-1", Method: "backup_code", OccurredAt: at}))

	require.Len(t, rec.sent, 2)
	assert.Equal(t, event.TfaEnabledDestination, rec.sent[0].destination)
	assert.Equal(t, event.TfaDisabledDestination, rec.sent[1].destination)
	assert.JSONEq(t, `{"user_id":"u-1","email":"","method":"backup_code","occurred_at":"2024-05-01T12:00:00Z"}`, string(rec.sent[1].msg.Body))
}

func TestMessaging_PublishRoleChanged(t *testing.T) {
	rec := &recorder{}
	m := NewMessaging(rec, instrument.NewNoop())

	require.NoError(t, m.PublishRoleChanged(context.Background(), usecase.RoleChangedEvent{
		UserID: "u-2", From: rbac.RoleUser, To: rbac.RoleAdmin, By: "u-1", OccurredAt: at,
	}))

	require.Len(t, rec.sent, 1)
	assert.JSONEq(t, `{"user_id":"u-2","from":"User","to":"Admin","by":"u-1","occurred_at":"2024-05-01T12:00:00Z"}`, string(rec.sent[0].msg.Body))
}

func TestMessaging_PublishError(t *testing.T) {
	m := NewMessaging(&recorder{err: errors.New("broker down")}, instrument.NewNoop())

	err := m.PublishRoleChanged(context.Background(), usecase.RoleChangedEvent{UserID: "u-2"})
	assert.EqualError(t, err, "broker down")
}
