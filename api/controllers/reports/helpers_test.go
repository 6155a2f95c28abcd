package reports

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/loopplatform/merchant-pulse/internal/engine"
	"github.com/loopplatform/merchant-pulse/internal/reports"
	"github.com/loopplatform/merchant-pulse/pkg/config"
	"github.com/loopplatform/merchant-pulse/pkg/logger"
)

type testReportsService struct {
	listFn     func(ctx context.Context, params reports.ListParams) (*reports.PerformancePage, error)
	merchantFn func(ctx context.Context, accountID string, window int) (*engine.Snapshot, error)
	summaryFn  func(ctx context.Context, params reports.SummaryParams) (*reports.ProgramSummary, error)
	qualityFn  func(ctx context.Context) (*reports.DataQualityReport, error)
	exportFn   func(ctx context.Context, params reports.ExportParams, w io.Writer) error
}

func (s *testReportsService) ListPerformance(ctx context.Context, params reports.ListParams) (*reports.PerformancePage, error) {
	if s.listFn != nil {
		return s.listFn(ctx, params)
	}
	return &reports.PerformancePage{}, nil
}

func (s *testReportsService) MerchantPerformance(ctx context.Context, accountID string, window int) (*engine.Snapshot, error) {
	if s.merchantFn != nil {
		return s.merchantFn(ctx, accountID, window)
	}
	return &engine.Snapshot{AccountID: accountID}, nil
}

func (s *testReportsService) ProgramSummary(ctx context.Context, params reports.SummaryParams) (*reports.ProgramSummary, error) {
	if s.summaryFn != nil {
		return s.summaryFn(ctx, params)
	}
	return &reports.ProgramSummary{}, nil
}

func (s *testReportsService) DataQuality(ctx context.Context) (*reports.DataQualityReport, error) {
	if s.qualityFn != nil {
		return s.qualityFn(ctx)
	}
	return &reports.DataQualityReport{}, nil
}

func (s *testReportsService) ExportPerformanceCSV(ctx context.Context, params reports.ExportParams, w io.Writer) error {
	if s.exportFn != nil {
		return s.exportFn(ctx, params, w)
	}
	return nil
}

func newTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func testReportsConfig() config.ReportsConfig {
	return config.ReportsConfig{
		DefaultWindowWeeks: 4,
		MaxWindowWeeks:     52,
		DefaultMinDaysLive: 0,
	}
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}
