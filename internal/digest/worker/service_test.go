package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/loopplatform/merchant-pulse/internal/reports"
	"github.com/loopplatform/merchant-pulse/pkg/eventing"
	"github.com/loopplatform/merchant-pulse/pkg/logger"
)

func TestBuildEnvelope(t *testing.T) {
	svc := newTestService(t)
	payload := eventing.PayloadEnvelope{
		Version:    1,
		EventID:    "b6f7f3a2-5bd9-4c10-9917-4a4e3e1f9f01",
		EventType:  eventing.EventIngestionBatchCompleted,
		OccurredAt: time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC),
		Data:       json.RawMessage(`{"batch_id":"batch-7"}`),
	}
	msg := buildMessage(payload, nil)

	env, err := svc.buildEnvelope(msg)
	if err != nil {
		t.Fatalf("build envelope: %v", err)
	}
	if env.EventType != eventing.EventIngestionBatchCompleted {
		t.Fatalf("unexpected event type %v", env.EventType)
	}
	if env.EventID != payload.EventID {
		t.Fatalf("unexpected event id %s", env.EventID)
	}
	if !env.OccurredAt.Equal(payload.OccurredAt) {
		t.Fatalf("unexpected occurred at %v", env.OccurredAt)
	}
}

func TestBuildEnvelopeFallsBackToAttributes(t *testing.T) {
	svc := newTestService(t)
	payload := eventing.PayloadEnvelope{
		Data: json.RawMessage(`{}`),
	}
	msg := buildMessage(payload, map[string]string{
		"event_type": eventing.EventIngestionBatchCompleted,
		"event_id":   "0c0fbd3e-93f8-48a9-9e2a-97e080b24a52",
		"created_at": "2026-03-20T12:00:00Z",
	})

	env, err := svc.buildEnvelope(msg)
	if err != nil {
		t.Fatalf("build envelope: %v", err)
	}
	if env.EventType != eventing.EventIngestionBatchCompleted {
		t.Fatalf("unexpected event type %v", env.EventType)
	}
	if env.EventID != "0c0fbd3e-93f8-48a9-9e2a-97e080b24a52" {
		t.Fatalf("unexpected event id %s", env.EventID)
	}
	want := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	if !env.OccurredAt.Equal(want) {
		t.Fatalf("unexpected occurred at %v", env.OccurredAt)
	}
}

func TestBuildEnvelopeRejectsMissingIdentity(t *testing.T) {
	svc := newTestService(t)

	msg := buildMessage(eventing.PayloadEnvelope{EventID: "evt-1"}, nil)
	if _, err := svc.buildEnvelope(msg); err == nil {
		t.Fatal("expected error for missing event type")
	}

	msg = buildMessage(eventing.PayloadEnvelope{EventType: eventing.EventIngestionBatchCompleted}, nil)
	if _, err := svc.buildEnvelope(msg); err == nil {
		t.Fatal("expected error for missing event id")
	}
}

func TestProcessRefreshes(t *testing.T) {
	manager := &stubManager{}
	refresher := &stubRefresher{}
	svc := newTestServiceWithDeps(t, refresher, manager)

	res := svc.process(context.Background(), buildBatchMessage(t))
	if res.nack {
		t.Fatalf("expected ack, got nack")
	}
	if refresher.calls != 1 {
		t.Fatalf("expected one refresh, got %d", refresher.calls)
	}
	if len(manager.checked) != 1 {
		t.Fatalf("expected one idempotency check, got %d", len(manager.checked))
	}
}

func TestProcessSkipsOtherEventTypes(t *testing.T) {
	manager := &stubManager{}
	refresher := &stubRefresher{}
	svc := newTestServiceWithDeps(t, refresher, manager)

	payload := eventing.PayloadEnvelope{
		EventID:    uuid.NewString(),
		EventType:  "ingestion.batch.started",
		OccurredAt: time.Now().UTC(),
	}
	res := svc.process(context.Background(), buildMessage(payload, nil))
	if res.nack {
		t.Fatalf("skipped event should ack")
	}
	if refresher.calls != 0 {
		t.Fatal("refresher should not run for skipped events")
	}
	if len(manager.checked) != 0 {
		t.Fatal("idempotency manager should not be touched")
	}
}

func TestProcessAlreadyProcessed(t *testing.T) {
	manager := &stubManager{checkResult: true}
	refresher := &stubRefresher{}
	svc := newTestServiceWithDeps(t, refresher, manager)

	res := svc.process(context.Background(), buildBatchMessage(t))
	if res.nack {
		t.Fatalf("expected ack, got nack")
	}
	if refresher.calls != 0 {
		t.Fatal("refresher should not run when already processed")
	}
}

func TestProcessRefreshErrorRetries(t *testing.T) {
	manager := &stubManager{}
	refresher := &stubRefresher{err: errors.New("boom")}
	svc := newTestServiceWithDeps(t, refresher, manager)

	res := svc.process(context.Background(), buildBatchMessage(t))
	if !res.nack {
		t.Fatalf("expected nack on refresh error")
	}
	if len(manager.deleted) != 1 {
		t.Fatalf("expected idempotency delete on failure")
	}
}

func TestProcessInvalidEnvelope(t *testing.T) {
	manager := &stubManager{}
	refresher := &stubRefresher{}
	svc := newTestServiceWithDeps(t, refresher, manager)

	msg := &gcppubsub.Message{Data: []byte("invalid json")}
	res := svc.process(context.Background(), msg)
	if res.nack {
		t.Fatalf("invalid envelope should ack")
	}
	if refresher.calls != 0 {
		t.Fatal("refresher should not run")
	}
	if len(manager.checked) != 0 {
		t.Fatal("idempotency manager should not be touched")
	}
}

func buildBatchMessage(t *testing.T) *gcppubsub.Message {
	t.Helper()
	payload := eventing.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		EventType:  eventing.EventIngestionBatchCompleted,
		OccurredAt: time.Now().UTC(),
		Data:       json.RawMessage(`{"batch_id":"batch-7","opportunities":120}`),
	}
	return buildMessage(payload, nil)
}

func buildMessage(payload eventing.PayloadEnvelope, attrs map[string]string) *gcppubsub.Message {
	data, _ := json.Marshal(payload)
	return &gcppubsub.Message{
		ID:         "msg-1",
		Data:       data,
		Attributes: attrs,
	}
}

func newTestService(t *testing.T) *Service {
	return newTestServiceWithDeps(t, &stubRefresher{}, &stubManager{})
}

func newTestServiceWithDeps(t *testing.T, refresher *stubRefresher, manager *stubManager) *Service {
	t.Helper()
	return &Service{
		refresher: refresher,
		manager:   manager,
		logg:      logger.New(logger.Options{ServiceName: "digest-worker-test"}),
	}
}

type stubRefresher struct {
	calls int
	err   error
}

func (s *stubRefresher) Refresh(ctx context.Context) (*reports.ProgramSummary, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &reports.ProgramSummary{}, nil
}

type stubManager struct {
	checkResult bool
	checkErr    error
	deleteErr   error
	checked     []uuid.UUID
	deleted     []uuid.UUID
}

func (s *stubManager) CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error) {
	s.checked = append(s.checked, eventID)
	return s.checkResult, s.checkErr
}

func (s *stubManager) Delete(ctx context.Context, consumer string, eventID uuid.UUID) error {
	s.deleted = append(s.deleted, eventID)
	return s.deleteErr
}
