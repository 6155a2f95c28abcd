// Package worker consumes ingestion batch events from Pub/Sub and
// triggers a digest refresh for each one, exactly once per event id.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/loopplatform/merchant-pulse/internal/digest"
	"github.com/loopplatform/merchant-pulse/pkg/eventing"
	"github.com/loopplatform/merchant-pulse/pkg/logger"
)

const digestConsumerName = "digest-worker"

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Service consumes ingestion events from Pub/Sub while honoring Redis
// idempotency.
type Service struct {
	subscription *gcppubsub.Subscriber
	refresher    digest.Service
	manager      idempotencyChecker
	logg         *logger.Logger
}

// NewService creates a new digest worker service.
func NewService(subscription *gcppubsub.Subscriber, refresher digest.Service, manager idempotencyChecker, logg *logger.Logger) (*Service, error) {
	if subscription == nil {
		return nil, errors.New("ingestion subscription is required")
	}
	if refresher == nil {
		return nil, errors.New("digest service is required")
	}
	if manager == nil {
		return nil, errors.New("idempotency manager is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}

	return &Service{
		subscription: subscription,
		refresher:    refresher,
		manager:      manager,
		logg:         logg,
	}, nil
}

type processResult struct {
	nack bool
}

// Run starts consuming ingestion messages until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.subscription.Receive(ctx, func(innerCtx context.Context, msg *gcppubsub.Message) {
		if s.process(innerCtx, msg).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

func (s *Service) process(ctx context.Context, msg *gcppubsub.Message) processResult {
	fields := map[string]any{
		"message_id": msg.ID,
	}
	envelope, err := s.buildEnvelope(msg)
	if err != nil {
		fields["error"] = err.Error()
		s.logg.Warn(s.logg.WithFields(ctx, fields), "invalid ingestion envelope")
		return processResult{}
	}
	fields["event_id"] = envelope.EventID
	fields["event_type"] = envelope.EventType
	fields["occurred_at"] = envelope.OccurredAt.Format(time.RFC3339Nano)
	logCtx := s.logg.WithFields(ctx, fields)

	if envelope.EventType != eventing.EventIngestionBatchCompleted {
		s.logg.Info(logCtx, "event type skipped")
		return processResult{}
	}

	if len(envelope.Data) > 0 {
		var batch eventing.BatchCompletedData
		if err := json.Unmarshal(envelope.Data, &batch); err == nil && batch.BatchID != "" {
			fields["batch_id"] = batch.BatchID
			logCtx = s.logg.WithFields(ctx, fields)
		}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		s.logg.Warn(logCtx, "invalid event id")
		return processResult{}
	}

	already, err := s.manager.CheckAndMarkProcessed(logCtx, digestConsumerName, eventID)
	if err != nil {
		s.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		s.logg.Info(logCtx, "event already processed")
		return processResult{}
	}

	if _, err := s.refresher.Refresh(logCtx); err != nil {
		s.logg.Error(logCtx, "digest refresh failed", err)
		_ = s.manager.Delete(logCtx, digestConsumerName, eventID)
		return processResult{nack: true}
	}

	s.logg.Info(logCtx, "digest refreshed")
	return processResult{}
}

// buildEnvelope accepts both envelope-only payloads and publishers that
// push event metadata into message attributes.
func (s *Service) buildEnvelope(msg *gcppubsub.Message) (*eventing.PayloadEnvelope, error) {
	var stored eventing.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &stored); err != nil {
		return nil, fmt.Errorf("decode payload envelope: %w", err)
	}

	stored.EventType = strings.TrimSpace(stored.EventType)
	if stored.EventType == "" {
		stored.EventType = strings.TrimSpace(msg.Attributes["event_type"])
	}
	if stored.EventType == "" {
		return nil, errors.New("event_type missing")
	}

	stored.EventID = strings.TrimSpace(stored.EventID)
	if stored.EventID == "" {
		stored.EventID = strings.TrimSpace(msg.Attributes["event_id"])
	}
	if stored.EventID == "" {
		return nil, errors.New("event_id missing")
	}

	if stored.OccurredAt.IsZero() {
		if created := strings.TrimSpace(msg.Attributes["created_at"]); created != "" {
			if parsed, err := time.Parse(time.RFC3339Nano, created); err == nil {
				stored.OccurredAt = parsed
			}
		}
	}
	stored.OccurredAt = stored.OccurredAt.UTC()

	return &stored, nil
}
