// Package reports computes merchant performance snapshots on demand and
// shapes them for the HTTP surface: paginated listings, single-merchant
// lookups, the program rollup, data-quality checks, and CSV export.
// Snapshots are derived fresh from contract and telemetry rows on every
// call and never persisted.
package reports

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/loopplatform/merchant-pulse/internal/engine"
	"github.com/loopplatform/merchant-pulse/pkg/db/models"
	"github.com/loopplatform/merchant-pulse/pkg/enums"
	pkgerrors "github.com/loopplatform/merchant-pulse/pkg/errors"
	pkgpagination "github.com/loopplatform/merchant-pulse/pkg/pagination"
)

const (
	// DefaultMaxWindowWeeks caps the trailing window at one curve year.
	DefaultMaxWindowWeeks = 52
	// defaultSummaryBatchSize is how many contracts the rollup walks per page.
	defaultSummaryBatchSize = 200
)

type reportsRepository interface {
	ListOpportunities(ctx context.Context, opts opportunityQuery) ([]models.Opportunity, error)
	FindOpportunityByAccountID(ctx context.Context, accountID string) (*models.Opportunity, error)
	CountOpportunities(ctx context.Context) (int64, error)
	WeeklyActualsForAccounts(ctx context.Context, accountIDs []string) ([]models.WeeklyActual, error)
	ListCurvePoints(ctx context.Context) ([]models.SeasonalityCurve, error)
	DistinctVerticals(ctx context.Context) ([]string, error)
	CountMerchantsWithoutTelemetry(ctx context.Context) (int64, error)
	CountTelemetryViolations(ctx context.Context) (int64, error)
	CountMissingFirstOffer(ctx context.Context) (int64, error)
	NewestOrderWeekDate(ctx context.Context) (*time.Time, error)
}

// Service exposes merchant performance reporting.
type Service interface {
	ListPerformance(ctx context.Context, params ListParams) (*PerformancePage, error)
	MerchantPerformance(ctx context.Context, accountID string, window int) (*engine.Snapshot, error)
	ProgramSummary(ctx context.Context, params SummaryParams) (*ProgramSummary, error)
	DataQuality(ctx context.Context) (*DataQualityReport, error)
	ExportPerformanceCSV(ctx context.Context, params ExportParams, w io.Writer) error
}

type service struct {
	repo             reportsRepository
	maxWindowWeeks   int
	summaryBatchSize int
	now              func() time.Time
}

// NewService builds a reporting service backed by the provided repository.
// Non-positive maxWindowWeeks and summaryBatchSize fall back to the
// package defaults.
func NewService(repo reportsRepository, maxWindowWeeks, summaryBatchSize int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	if maxWindowWeeks <= 0 {
		maxWindowWeeks = DefaultMaxWindowWeeks
	}
	if summaryBatchSize <= 0 {
		summaryBatchSize = defaultSummaryBatchSize
	}
	return &service{
		repo:             repo,
		maxWindowWeeks:   maxWindowWeeks,
		summaryBatchSize: summaryBatchSize,
		now:              time.Now,
	}, nil
}

func (s *service) ListPerformance(ctx context.Context, params ListParams) (*PerformancePage, error) {
	window, err := s.normalizeWindow(params.Window)
	if err != nil {
		return nil, err
	}
	if err := validateFilters(params.MinDaysLive, params.Tier); err != nil {
		return nil, err
	}

	limit := pkgpagination.NormalizeLimit(params.Limit)
	query := opportunityQuery{
		vertical: strings.TrimSpace(params.Vertical),
		limit:    pkgpagination.LimitWithBuffer(params.Limit),
	}
	if params.Cursor != "" {
		cursor, err := pkgpagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	rows, err := s.repo.ListOpportunities(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list opportunities")
	}

	// The cursor holds the last delivered row; the next page's strict
	// less-than comparison resumes immediately after it.
	nextCursor := ""
	if len(rows) > limit {
		last := rows[limit-1]
		nextCursor = pkgpagination.EncodeCursor(pkgpagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
		rows = rows[:limit]
	}

	model, err := s.seasonalityModel(ctx)
	if err != nil {
		return nil, err
	}
	snaps, err := s.snapshotPage(ctx, rows, model, window)
	if err != nil {
		return nil, err
	}

	items := make([]PerformanceItem, 0, len(snaps))
	for _, snap := range snaps {
		if !matchesFilters(snap, params.MinDaysLive, params.Tier) {
			continue
		}
		items = append(items, ToPerformanceItem(snap))
	}

	return &PerformancePage{
		Items:  items,
		Cursor: nextCursor,
	}, nil
}

func (s *service) MerchantPerformance(ctx context.Context, accountID string, window int) (*engine.Snapshot, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	normalized, err := s.normalizeWindow(window)
	if err != nil {
		return nil, err
	}

	opp, err := s.repo.FindOpportunityByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "merchant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup opportunity")
	}

	model, err := s.seasonalityModel(ctx)
	if err != nil {
		return nil, err
	}
	snaps, err := s.snapshotPage(ctx, []models.Opportunity{*opp}, model, normalized)
	if err != nil {
		return nil, err
	}
	return &snaps[0], nil
}

func (s *service) ProgramSummary(ctx context.Context, params SummaryParams) (*ProgramSummary, error) {
	window, err := s.normalizeWindow(params.Window)
	if err != nil {
		return nil, err
	}
	if err := validateFilters(params.MinDaysLive, ""); err != nil {
		return nil, err
	}

	acc := newSummaryAccumulator()
	err = s.forEachSnapshot(ctx, "", window, func(snap engine.Snapshot) {
		if snap.DaysLive < params.MinDaysLive {
			return
		}
		acc.add(snap)
	})
	if err != nil {
		return nil, err
	}
	return acc.finalize(s.now().UTC(), window), nil
}

func (s *service) DataQuality(ctx context.Context) (*DataQualityReport, error) {
	report := &DataQualityReport{GeneratedAt: s.now().UTC()}

	total, err := s.repo.CountOpportunities(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count opportunities")
	}
	report.Merchants = int(total)

	missingTelemetry, err := s.repo.CountMerchantsWithoutTelemetry(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count merchants without telemetry")
	}
	report.MerchantsWithoutTelemetry = int(missingTelemetry)

	violations, err := s.repo.CountTelemetryViolations(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count telemetry violations")
	}
	report.TelemetryViolationRows = int(violations)

	missingOffer, err := s.repo.CountMissingFirstOffer(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count missing first offer dates")
	}
	report.MissingFirstOfferRows = int(missingOffer)

	newest, err := s.repo.NewestOrderWeekDate(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find newest order week")
	}
	if newest != nil {
		stamp := newest.UTC()
		report.NewestOrderWeekDate = &stamp
		report.TelemetryAgeDays = int(report.GeneratedAt.Sub(stamp).Hours() / 24)
	}

	curveRows, err := s.repo.ListCurvePoints(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seasonality curves")
	}
	report.Curves = curveQualities(curveRows)

	verticals, err := s.repo.DistinctVerticals(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list verticals")
	}
	report.FallbackCurveLookups = fallbackLookupCount(verticals, curveRows, newest)

	return report, nil
}

// seasonalityModel loads the full curve set and indexes it once per call.
func (s *service) seasonalityModel(ctx context.Context) (*engine.SeasonalityModel, error) {
	curves, err := s.repo.ListCurvePoints(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seasonality curves")
	}
	return engine.NewSeasonalityModel(toCurvePoints(curves)), nil
}

// snapshotPage loads telemetry for one page of contracts and computes
// their snapshots.
func (s *service) snapshotPage(ctx context.Context, rows []models.Opportunity, model *engine.SeasonalityModel, window int) ([]engine.Snapshot, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	accountIDs := make([]string, len(rows))
	for i, row := range rows {
		accountIDs[i] = row.AccountID
	}
	actuals, err := s.repo.WeeklyActualsForAccounts(ctx, accountIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load weekly actuals")
	}
	weeksByAccount := groupWeekRows(actuals)

	snaps := make([]engine.Snapshot, len(rows))
	for i, row := range rows {
		snaps[i] = engine.BuildSnapshot(engine.SnapshotInputs{
			Contract:    toContract(row),
			Weeks:       weeksByAccount[row.AccountID],
			Seasonality: model,
			WindowSize:  window,
		})
	}
	return snaps, nil
}

// forEachSnapshot walks every contract in cursor batches and hands each
// computed snapshot to fn. Rollups and the CSV export share it.
func (s *service) forEachSnapshot(ctx context.Context, vertical string, window int, fn func(engine.Snapshot)) error {
	model, err := s.seasonalityModel(ctx)
	if err != nil {
		return err
	}

	query := opportunityQuery{vertical: vertical, limit: s.summaryBatchSize + 1}
	for {
		rows, err := s.repo.ListOpportunities(ctx, query)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list opportunities")
		}

		var next *pkgpagination.Cursor
		if len(rows) > s.summaryBatchSize {
			last := rows[s.summaryBatchSize-1]
			next = &pkgpagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
			rows = rows[:s.summaryBatchSize]
		}

		snaps, err := s.snapshotPage(ctx, rows, model, window)
		if err != nil {
			return err
		}
		for _, snap := range snaps {
			fn(snap)
		}

		if next == nil {
			return nil
		}
		query.cursor = next
	}
}

// normalizeWindow applies the default trailing window and caps requests
// at the configured maximum.
func (s *service) normalizeWindow(window int) (int, error) {
	if window <= 0 {
		return engine.DefaultTrailingWindow, nil
	}
	if window > s.maxWindowWeeks {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("window cannot exceed %d weeks", s.maxWindowWeeks))
	}
	return window, nil
}

func validateFilters(minDaysLive int, tier enums.PerformanceTier) error {
	if minDaysLive < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "min_days_live cannot be negative")
	}
	if tier != "" && !tier.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid performance tier")
	}
	return nil
}

func matchesFilters(snap engine.Snapshot, minDaysLive int, tier enums.PerformanceTier) bool {
	if snap.DaysLive < minDaysLive {
		return false
	}
	if tier != "" && snap.Tier != tier {
		return false
	}
	return true
}
