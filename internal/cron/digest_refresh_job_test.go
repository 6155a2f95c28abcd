package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/loopplatform/merchant-pulse/internal/reports"
	"github.com/loopplatform/merchant-pulse/pkg/logger"
)

func TestDigestRefreshJobRefreshes(t *testing.T) {
	svc := &fakeDigestService{summary: &reports.ProgramSummary{Merchants: 7, MerchantsWithTelemetry: 5}}
	job := newDigestRefreshJob(t, svc)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if svc.calls != 1 {
		t.Fatalf("expected one refresh, got %d", svc.calls)
	}
}

func TestDigestRefreshJobPropagatesErrors(t *testing.T) {
	svc := &fakeDigestService{err: errors.New("boom")}
	job := newDigestRefreshJob(t, svc)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewDigestRefreshJobValidatesParams(t *testing.T) {
	if _, err := NewDigestRefreshJob(DigestRefreshJobParams{Digest: &fakeDigestService{}}); err == nil {
		t.Fatal("expected error for missing logger")
	}
	if _, err := NewDigestRefreshJob(DigestRefreshJobParams{Logger: logger.New(logger.Options{ServiceName: "test"})}); err == nil {
		t.Fatal("expected error for missing digest service")
	}
}

func newDigestRefreshJob(t *testing.T, svc *fakeDigestService) *digestRefreshJob {
	t.Helper()
	jobIface, err := NewDigestRefreshJob(DigestRefreshJobParams{
		Logger: logger.New(logger.Options{ServiceName: "test"}),
		Digest: svc,
	})
	if err != nil {
		t.Fatalf("NewDigestRefreshJob: %v", err)
	}
	job, ok := jobIface.(*digestRefreshJob)
	if !ok {
		t.Fatalf("expected digestRefreshJob, got %T", jobIface)
	}
	return job
}

type fakeDigestService struct {
	summary *reports.ProgramSummary
	err     error
	calls   int
}

func (f *fakeDigestService) Refresh(ctx context.Context) (*reports.ProgramSummary, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.summary != nil {
		return f.summary, nil
	}
	return &reports.ProgramSummary{}, nil
}
