package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/yogapass/internal/auth/usecase"
	"github.com/shandysiswandi/yogapass/internal/pkg/instrument"
	"github.com/shandysiswandi/yogapass/internal/pkg/messaging"
	"github.com/shandysiswandi/yogapass/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishOtpIssued(ctx context.Context, msg usecase.OtpIssuedEvent) error {
	return m.publish(ctx, "PublishOtpIssued", event.OtpIssuedDestination, msg.Phone, event.OtpIssuedMessage{
		Phone:      msg.Phone,
		IssuanceID: msg.IssuanceID,
		IssuedAt:   msg.IssuedAt.UnixMilli(),
		ExpiresAt:  msg.ExpiresAt.UnixMilli(),
		RequestID:  msg.RequestID,
	})
}

func (m *Messaging) PublishSessionLinked(ctx context.Context, msg usecase.SessionLinkedEvent) error {
	return m.publish(ctx, "PublishSessionLinked", event.SessionLinkedDestination, msg.Phone, event.SessionLinkedMessage{
		IdentityID:    msg.IdentityID,
		ProfileID:     msg.ProfileID,
		Phone:         msg.Phone,
		ProfileLinked: msg.ProfileLinked,
		LinkedAt:      msg.LinkedAt.UnixMilli(),
	})
}

// publish keys every event by phone so brokers that partition or order by
// key keep one member's events in sequence.
func (m *Messaging) publish(ctx context.Context, op, destination, key string, payload any) error {
	ctx, span := m.ins.Tracer("auth.outbound.mq").Start(ctx, op)
	defer span.End()

	body, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if _, err := m.client.Publish(ctx, destination, messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(key),
		Headers: map[string]string{keyOfCorrelationID: instrument.GetCorrelationID(ctx)},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
