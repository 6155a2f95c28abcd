package reports

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/loopplatform/merchant-pulse/pkg/db/models"
)

// Repository exposes the read-only queries behind performance reporting.
// Ingestion owns all writes to these tables.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a reporting repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListOpportunities returns contract records using cursor pagination,
// optionally scoped to one vertical.
func (r *Repository) ListOpportunities(ctx context.Context, opts opportunityQuery) ([]models.Opportunity, error) {
	query := r.db.WithContext(ctx).Model(&models.Opportunity{})

	if opts.vertical != "" {
		query = query.Where("vertical = ?", opts.vertical)
	}
	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.Opportunity
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindOpportunityByAccountID returns the contract record for one merchant.
func (r *Repository) FindOpportunityByAccountID(ctx context.Context, accountID string) (*models.Opportunity, error) {
	var row models.Opportunity
	if err := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// CountOpportunities returns the number of merchants in the program.
func (r *Repository) CountOpportunities(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Opportunity{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// WeeklyActualsForAccounts returns every telemetry row for the given
// merchants. Callers group rows per account; order is unspecified.
func (r *Repository) WeeklyActualsForAccounts(ctx context.Context, accountIDs []string) ([]models.WeeklyActual, error) {
	if len(accountIDs) == 0 {
		return nil, nil
	}
	var rows []models.WeeklyActual
	if err := r.db.WithContext(ctx).Where("account_id IN ?", accountIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListCurvePoints returns every seasonality curve point. The full set is
// two curves of at most 52 weeks each, so no pagination.
func (r *Repository) ListCurvePoints(ctx context.Context) ([]models.SeasonalityCurve, error) {
	var rows []models.SeasonalityCurve
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// DistinctVerticals returns the verticals present across contract records.
func (r *Repository) DistinctVerticals(ctx context.Context) ([]string, error) {
	var verticals []string
	if err := r.db.WithContext(ctx).Model(&models.Opportunity{}).Distinct("vertical").Order("vertical").Pluck("vertical", &verticals).Error; err != nil {
		return nil, err
	}
	return verticals, nil
}

// CountMerchantsWithoutTelemetry returns how many merchants have a
// contract record but no weekly actuals at all.
func (r *Repository) CountMerchantsWithoutTelemetry(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Opportunity{}).
		Where("NOT EXISTS (SELECT 1 FROM weekly_actuals wa WHERE wa.account_id = opportunities.account_id)").
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CountTelemetryViolations counts weekly rows breaking the funnel order
// accepted ≤ shown ≤ orders. The source is expected to uphold it; the
// engine tolerates violations, so reporting surfaces them instead.
func (r *Repository) CountTelemetryViolations(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.WeeklyActual{}).
		Where("accepted_offers > offer_shown OR offer_shown > ecomm_orders").
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CountMissingFirstOffer counts weekly rows without a first_offer_date,
// which depress the days-live calculation for their merchants.
func (r *Repository) CountMissingFirstOffer(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.WeeklyActual{}).
		Where("first_offer_date IS NULL").
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// NewestOrderWeekDate returns the most recent order_week_date across all
// telemetry, or nil when no rows exist.
func (r *Repository) NewestOrderWeekDate(ctx context.Context) (*time.Time, error) {
	var row models.WeeklyActual
	err := r.db.WithContext(ctx).
		Select("order_week_date").
		Order("order_week_date DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	newest := row.OrderWeekDate
	return &newest, nil
}
