package reports

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/loopplatform/merchant-pulse/internal/engine"
	"github.com/loopplatform/merchant-pulse/pkg/enums"
	pkgerrors "github.com/loopplatform/merchant-pulse/pkg/errors"
)

// ExportParams filters the CSV export. It is the list surface without
// pagination, since the export walks every contract.
type ExportParams struct {
	Window      int
	MinDaysLive int
	Vertical    string
	Tier        enums.PerformanceTier
}

var csvHeader = []string{
	"account_id", "merchant_name", "vertical", "pricing_model",
	"latest_iso_week", "days_live", "weeks_with_data",
	"trailing_orders", "trailing_accepted_offers", "trailing_offers_shown",
	"actual_adoption_pct", "expected_adoption_pct", "adoption_variance_bps",
	"eligibility_rate_pct", "window_share_pct",
	"expected_trailing_volume", "forecast_annual_volume",
	"expected_revenue", "actual_revenue", "revenue_variance",
	"volume_contribution", "adoption_contribution", "interaction_contribution",
	"tier", "acv_retention_pct", "acv_band", "used_baseline",
}

// ExportPerformanceCSV streams the filtered snapshot set as CSV, header
// first, one row per merchant, in contract cursor order.
func (s *service) ExportPerformanceCSV(ctx context.Context, params ExportParams, w io.Writer) error {
	window, err := s.normalizeWindow(params.Window)
	if err != nil {
		return err
	}
	if err := validateFilters(params.MinDaysLive, params.Tier); err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv header")
	}

	var writeErr error
	err = s.forEachSnapshot(ctx, strings.TrimSpace(params.Vertical), window, func(snap engine.Snapshot) {
		if writeErr != nil {
			return
		}
		if !matchesFilters(snap, params.MinDaysLive, params.Tier) {
			return
		}
		writeErr = writer.Write(csvRow(snap))
	})
	if err != nil {
		return err
	}
	if writeErr != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, writeErr, "write csv row")
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flush csv")
	}
	return nil
}

func csvRow(s engine.Snapshot) []string {
	return []string{
		s.AccountID,
		s.MerchantName,
		s.Vertical,
		s.PricingModel.String(),
		strconv.Itoa(s.LatestISOWeek),
		strconv.Itoa(s.DaysLive),
		strconv.Itoa(s.Trailing.WeeksWithData),
		formatCount(s.Trailing.Orders),
		formatCount(s.Trailing.AcceptedOffers),
		formatCount(s.Trailing.OffersShown),
		formatRate(s.ActualAdoptionRatePercent),
		formatRate(s.ExpectedAdoptionRatePercent),
		formatRate(s.AdoptionVarianceBps),
		formatRate(s.Trailing.EligibilityRate * 100),
		formatRate(s.WindowSharePercent),
		formatCount(s.ExpectedTrailingVolume),
		formatCount(s.ForecastAnnualVolume),
		formatMoney(s.Revenue.ExpectedRevenue),
		formatMoney(s.Revenue.ActualRevenue),
		formatMoney(s.RevenueVariance),
		formatMoney(s.Revenue.VolumeContribution),
		formatMoney(s.Revenue.AdoptionContribution),
		formatMoney(s.Revenue.InteractionContribution),
		s.Tier.String(),
		formatRate(s.ACVRetentionPercent),
		s.ACVBand.String(),
		strconv.FormatBool(s.UsedBaseline),
	}
}

// formatMoney renders dollar amounts at two decimals.
func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// formatRate renders percents and basis points at two decimals.
func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// formatCount renders order volumes without forcing a decimal tail.
func formatCount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
