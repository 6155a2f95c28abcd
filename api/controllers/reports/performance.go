package reports

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/loopplatform/merchant-pulse/api/responses"
	"github.com/loopplatform/merchant-pulse/api/validators"
	"github.com/loopplatform/merchant-pulse/internal/reports"
	"github.com/loopplatform/merchant-pulse/pkg/config"
	pkgerrors "github.com/loopplatform/merchant-pulse/pkg/errors"
	"github.com/loopplatform/merchant-pulse/pkg/logger"
)

// ListPerformance serves the paginated performance report. Filters come
// from the query string; window and min_days_live fall back to the
// configured defaults.
func ListPerformance(service reports.Service, logg *logger.Logger, defaults config.ReportsConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		params, err := parseListParams(r, defaults)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		page, err := service.ListPerformance(ctx, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// MerchantPerformance serves the full snapshot for a single merchant,
// looked up by commerce account id.
func MerchantPerformance(service reports.Service, logg *logger.Logger, defaults config.ReportsConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		accountID := validators.SanitizeString(chi.URLParam(r, "accountID"), 0)
		if accountID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "account id required"))
			return
		}

		window, err := parseWindow(r, defaults)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		snapshot, err := service.MerchantPerformance(ctx, accountID, window)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, reports.ToPerformanceItem(*snapshot))
	}
}
