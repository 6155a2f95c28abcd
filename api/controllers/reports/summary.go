package reports

import (
	"net/http"

	"github.com/loopplatform/merchant-pulse/api/responses"
	"github.com/loopplatform/merchant-pulse/internal/reports"
	"github.com/loopplatform/merchant-pulse/pkg/config"
	"github.com/loopplatform/merchant-pulse/pkg/logger"
)

// ProgramSummary serves the whole-program rollup: merchant and tier
// counts, revenue totals, and variance decomposition.
func ProgramSummary(service reports.Service, logg *logger.Logger, defaults config.ReportsConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		params, err := parseSummaryParams(r, defaults)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		summary, err := service.ProgramSummary(ctx, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}

// DataQuality serves telemetry coverage and contract hygiene counters.
func DataQuality(service reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		report, err := service.DataQuality(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}
